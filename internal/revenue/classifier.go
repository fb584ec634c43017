package revenue

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tablesight/tablesight-backend/internal/pos"
	"github.com/tablesight/tablesight-backend/pkg/enums"
)

// Rule maps category-name keywords to a sales category.
type Rule struct {
	Category enums.SalesCategory
	Keywords []string
}

// Matches reports whether the lowercased name contains any keyword.
func (r Rule) Matches(lowerName string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lowerName, kw) {
			return true
		}
	}
	return false
}

// DefaultRules is evaluated top to bottom; the first matching rule wins.
// Short ambiguous tokens (ale, gin, rum, tea, rose) are left out because they
// show up inside unrelated words.
var DefaultRules = []Rule{
	{Category: enums.SalesCategoryDeferred, Keywords: []string{
		"gift card", "giftcard", "deposit", "event", "catering", "merchandise", "retail", "prepaid", "store credit",
	}},
	{Category: enums.SalesCategoryBeer, Keywords: []string{
		"beer", "draft", "draught", "lager", "pilsner", "stout", "cider", "ipa",
	}},
	{Category: enums.SalesCategoryWine, Keywords: []string{
		"wine", "vino", "champagne", "prosecco",
	}},
	{Category: enums.SalesCategoryLiquor, Keywords: []string{
		"liquor", "spirit", "cocktail", "whiskey", "whisky", "bourbon", "vodka", "tequila", "mezcal",
		"scotch", "cognac", "brandy", "martini", "margarita",
	}},
	{Category: enums.SalesCategoryNonAlcoholic, Keywords: []string{
		"non-alcoholic", "non alcoholic", "soft drink", "soda", "juice", "coffee", "espresso",
		"lemonade", "mocktail", "water", "beverage",
	}},
	{Category: enums.SalesCategoryFood, Keywords: []string{
		"food", "entree", "entrée", "appetizer", "starter", "dessert", "salad", "sandwich", "pizza",
		"pasta", "burger", "sides", "kitchen", "grill", "brunch", "breakfast", "lunch", "dinner",
	}},
}

// Classifier buckets line items into the sales taxonomy.
type Classifier struct {
	rules   []Rule
	lookups pos.Lookups
}

// NewClassifier builds a classifier over DefaultRules.
func NewClassifier(lookups pos.Lookups) *Classifier {
	return NewClassifierWithRules(lookups, DefaultRules)
}

// NewClassifierWithRules builds a classifier over a custom ordered rule list.
func NewClassifierWithRules(lookups pos.Lookups, rules []Rule) *Classifier {
	return &Classifier{rules: rules, lookups: lookups}
}

// CategoryName resolves the display name of a selection's category: the direct
// name field first, then the id lookup.
func (c *Classifier) CategoryName(sel pos.Selection) string {
	if name := strings.TrimSpace(sel.CategoryName); name != "" {
		return name
	}
	if name, ok := c.lookups.CategoryName(sel.CategoryID); ok {
		return name
	}
	return ""
}

// Category classifies a single resolved category name.
func (c *Classifier) Category(name string) enums.SalesCategory {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return enums.SalesCategoryUncategorized
	}
	for _, rule := range c.rules {
		if rule.Matches(lower) {
			return rule.Category
		}
	}
	return enums.SalesCategoryUncategorized
}

// Classify partitions the eligible selections of a check by net price.
// Voided selections and selections without any category reference are
// skipped. The second return value is the amount kept out by deferred
// keywords.
func (c *Classifier) Classify(selections []pos.Selection) (CategorySales, decimal.Decimal) {
	var sales CategorySales
	excluded := decimal.Zero
	for _, sel := range selections {
		if sel.Voided || !sel.HasCategory() {
			continue
		}
		category := c.Category(c.CategoryName(sel))
		if category == enums.SalesCategoryDeferred {
			excluded = excluded.Add(sel.NetPrice)
			continue
		}
		sales = sales.With(category, sel.NetPrice)
	}
	return sales, excluded
}
