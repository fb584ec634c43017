package enums

import "fmt"

// SalesCategory is the fixed taxonomy line items are classified into.
type SalesCategory string

const (
	SalesCategoryDeferred      SalesCategory = "deferred"
	SalesCategoryBeer          SalesCategory = "beer"
	SalesCategoryWine          SalesCategory = "wine"
	SalesCategoryLiquor        SalesCategory = "liquor"
	SalesCategoryNonAlcoholic  SalesCategory = "non_alcoholic"
	SalesCategoryFood          SalesCategory = "food"
	SalesCategoryUncategorized SalesCategory = "uncategorized"
)

var validSalesCategories = []SalesCategory{
	SalesCategoryDeferred,
	SalesCategoryBeer,
	SalesCategoryWine,
	SalesCategoryLiquor,
	SalesCategoryNonAlcoholic,
	SalesCategoryFood,
	SalesCategoryUncategorized,
}

// String implements fmt.Stringer.
func (c SalesCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known SalesCategory.
func (c SalesCategory) IsValid() bool {
	for _, candidate := range validSalesCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseSalesCategory converts raw input into a SalesCategory.
func ParseSalesCategory(value string) (SalesCategory, error) {
	for _, candidate := range validSalesCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sales category %q", value)
}
