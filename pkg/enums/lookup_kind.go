package enums

import "fmt"

// LookupKind names the POS configuration table a lookup entry belongs to.
type LookupKind string

const (
	LookupKindSalesCategory LookupKind = "sales_category"
	LookupKindServicePeriod LookupKind = "service_period"
	LookupKindRevenueCenter LookupKind = "revenue_center"
)

var validLookupKinds = []LookupKind{
	LookupKindSalesCategory,
	LookupKindServicePeriod,
	LookupKindRevenueCenter,
}

// IsValid reports whether the value is a known LookupKind.
func (k LookupKind) IsValid() bool {
	for _, candidate := range validLookupKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseLookupKind converts raw input into a LookupKind.
func ParseLookupKind(value string) (LookupKind, error) {
	for _, candidate := range validLookupKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lookup kind %q", value)
}
