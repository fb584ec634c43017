package revenue

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablesight/tablesight-backend/internal/pos"
	"github.com/tablesight/tablesight-backend/pkg/enums"
)

func TestClassifierPriorityOrder(t *testing.T) {
	c := NewClassifier(pos.Lookups{})
	cases := []struct {
		name string
		want enums.SalesCategory
	}{
		{"Gift Cards", enums.SalesCategoryDeferred},
		{"Beer & Wine Event Package", enums.SalesCategoryDeferred},
		{"Draft Beer", enums.SalesCategoryBeer},
		{"Wine by the Glass", enums.SalesCategoryWine},
		{"Craft Cocktails", enums.SalesCategoryLiquor},
		{"Spirits", enums.SalesCategoryLiquor},
		{"Coffee & Espresso", enums.SalesCategoryNonAlcoholic},
		{"Appetizers", enums.SalesCategoryFood},
		{"ENTREES", enums.SalesCategoryFood},
		{"Miscellaneous", enums.SalesCategoryUncategorized},
		{"", enums.SalesCategoryUncategorized},
		{"Origin Coffee Beans", enums.SalesCategoryNonAlcoholic},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Category(tc.name), "category for %q", tc.name)
	}
}

func TestClassifierResolvesIDsThroughLookups(t *testing.T) {
	c := NewClassifier(pos.Lookups{Categories: map[string]string{"cat-wine": "Red Wine"}})
	assert.Equal(t, "Red Wine", c.CategoryName(pos.Selection{CategoryID: "cat-wine"}))
	assert.Equal(t, "House", c.CategoryName(pos.Selection{CategoryID: "cat-wine", CategoryName: " House "}), "direct name wins")
	assert.Equal(t, "", c.CategoryName(pos.Selection{CategoryID: "unknown"}))
}

func TestClassifyPartitionsByNetPrice(t *testing.T) {
	c := NewClassifier(pos.Lookups{Categories: map[string]string{"c-food": "Kitchen"}})
	voided := pos.Selection{CategoryName: "Beer", NetPrice: decimal.NewFromInt(99), Voided: true}
	selections := []pos.Selection{
		{CategoryID: "c-food", NetPrice: decimal.NewFromInt(30)},
		{CategoryName: "Bottled Beer", NetPrice: decimal.NewFromInt(8)},
		{CategoryName: "Gift Card", NetPrice: decimal.NewFromInt(50)},
		{CategoryID: "c-missing", NetPrice: decimal.NewFromInt(5)},
		{Name: "Open Item", NetPrice: decimal.NewFromInt(7)},
		voided,
	}

	sales, excluded := c.Classify(selections)

	assert.True(t, sales.Food.Equal(decimal.NewFromInt(30)))
	assert.True(t, sales.Beer.Equal(decimal.NewFromInt(8)))
	assert.True(t, sales.Uncategorized.Equal(decimal.NewFromInt(5)), "unresolvable id is uncategorized")
	assert.True(t, excluded.Equal(decimal.NewFromInt(50)))
	assert.True(t, sales.Total().Equal(decimal.NewFromInt(38)), "deferred and uncategorized are outside the five")
	assert.True(t, sales.Alcohol().Equal(decimal.NewFromInt(8)))
	assert.True(t, sales.Beverage().IsZero())
}

func TestCustomRules(t *testing.T) {
	rules := []Rule{{Category: enums.SalesCategoryWine, Keywords: []string{"sake"}}}
	c := NewClassifierWithRules(pos.Lookups{}, rules)
	require.Equal(t, enums.SalesCategoryWine, c.Category("Premium Sake"))
	require.Equal(t, enums.SalesCategoryUncategorized, c.Category("Beer"))
}
