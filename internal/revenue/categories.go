package revenue

import (
	"github.com/shopspring/decimal"

	"github.com/tablesight/tablesight-backend/pkg/enums"
)

// RescaleTolerance is the relative divergence between category totals and
// bucket revenue above which the categories are rescaled (0.1%).
const RescaleTolerance = 0.001

// CategorySales is the category partition of a bucket's sales.
// Uncategorized is tracked but is not one of the five rescaled figures.
type CategorySales struct {
	Food          decimal.Decimal
	Beer          decimal.Decimal
	Wine          decimal.Decimal
	Liquor        decimal.Decimal
	NonAlcoholic  decimal.Decimal
	Uncategorized decimal.Decimal
}

// With returns a copy with amount added to category.
func (c CategorySales) With(category enums.SalesCategory, amount decimal.Decimal) CategorySales {
	switch category {
	case enums.SalesCategoryFood:
		c.Food = c.Food.Add(amount)
	case enums.SalesCategoryBeer:
		c.Beer = c.Beer.Add(amount)
	case enums.SalesCategoryWine:
		c.Wine = c.Wine.Add(amount)
	case enums.SalesCategoryLiquor:
		c.Liquor = c.Liquor.Add(amount)
	case enums.SalesCategoryNonAlcoholic:
		c.NonAlcoholic = c.NonAlcoholic.Add(amount)
	case enums.SalesCategoryUncategorized:
		c.Uncategorized = c.Uncategorized.Add(amount)
	}
	return c
}

// Add sums two partitions.
func (c CategorySales) Add(o CategorySales) CategorySales {
	return CategorySales{
		Food:          c.Food.Add(o.Food),
		Beer:          c.Beer.Add(o.Beer),
		Wine:          c.Wine.Add(o.Wine),
		Liquor:        c.Liquor.Add(o.Liquor),
		NonAlcoholic:  c.NonAlcoholic.Add(o.NonAlcoholic),
		Uncategorized: c.Uncategorized.Add(o.Uncategorized),
	}
}

// Alcohol is beer + wine + liquor.
func (c CategorySales) Alcohol() decimal.Decimal {
	return c.Beer.Add(c.Wine).Add(c.Liquor)
}

// Beverage is the non-alcoholic beverage figure.
func (c CategorySales) Beverage() decimal.Decimal {
	return c.NonAlcoholic
}

// Total sums the five rescaled categories.
func (c CategorySales) Total() decimal.Decimal {
	return c.Food.Add(c.Alcohol()).Add(c.NonAlcoholic)
}

func (c *CategorySales) five() []*decimal.Decimal {
	return []*decimal.Decimal{&c.Food, &c.Beer, &c.Wine, &c.Liquor, &c.NonAlcoholic}
}

// RescaleToRevenue scales the five categories by revenue/Total() when that
// ratio differs from 1 by more than RescaleTolerance. Scaled values are
// rounded to cents and the rounding residual is placed on the largest
// category so the five sum exactly to revenue rounded to cents.
//
// A zero Total cannot be scaled and is returned unchanged. The boolean reports
// whether a rescale happened.
func RescaleToRevenue(c CategorySales, revenue decimal.Decimal) (CategorySales, bool) {
	total := c.Total()
	if total.IsZero() {
		return c, false
	}
	ratio := revenue.Div(total)
	if ratio.Sub(decimal.NewFromInt(1)).Abs().LessThanOrEqual(decimal.NewFromFloat(RescaleTolerance)) {
		return c, false
	}

	target := revenue.Round(2)
	out := c
	parts := out.five()
	sum := decimal.Zero
	largest := 0
	for i, p := range parts {
		scaled := p.Mul(revenue).Div(total).Round(2)
		*p = scaled
		sum = sum.Add(scaled)
		if scaled.Abs().GreaterThan(parts[largest].Abs()) {
			largest = i
		}
	}
	if residual := target.Sub(sum); !residual.IsZero() {
		*parts[largest] = parts[largest].Add(residual)
	}
	return out, true
}
