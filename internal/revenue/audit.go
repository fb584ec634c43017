package revenue

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Audit carries the side-channel tallies of a calculator run. None of these
// figures feed the revenue number; they exist for reconciliation displays.
type Audit struct {
	VoidedCheckAmount    decimal.Decimal
	VoidedCheckCount     int
	VoidedSelectionTotal decimal.Decimal
	VoidedSelectionCount int

	// DeferredByCategory is keyed by the selection label of uncategorized items.
	DeferredByCategory map[string]decimal.Decimal
	// DeferredOnExcluded is deferred revenue found on voided or deleted checks.
	DeferredOnExcluded decimal.Decimal
	// KeywordExcluded is category-named deferred revenue (gift cards, deposits)
	// kept out of the category buckets by the classifier.
	KeywordExcluded decimal.Decimal

	Refunds                 decimal.Decimal
	RefundCount             int
	RefundsOnExcludedChecks decimal.Decimal
	UnresolvedRefunds       int

	GratuityServiceCharges    decimal.Decimal
	NonGratuityServiceCharges decimal.Decimal
	Discounts                 decimal.Decimal

	SkippedOrders int
}

// DeferredTotal sums DeferredByCategory.
func (a Audit) DeferredTotal() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range a.DeferredByCategory {
		total = total.Add(amount)
	}
	return total
}

// DeferredCategories returns the deferred labels in sorted order.
func (a Audit) DeferredCategories() []string {
	keys := make([]string, 0, len(a.DeferredByCategory))
	for k := range a.DeferredByCategory {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a *Audit) addDeferred(label string, amount decimal.Decimal) {
	if a.DeferredByCategory == nil {
		a.DeferredByCategory = map[string]decimal.Decimal{}
	}
	a.DeferredByCategory[label] = a.DeferredByCategory[label].Add(amount)
}

// Merge folds other into a.
func (a *Audit) Merge(other Audit) {
	a.VoidedCheckAmount = a.VoidedCheckAmount.Add(other.VoidedCheckAmount)
	a.VoidedCheckCount += other.VoidedCheckCount
	a.VoidedSelectionTotal = a.VoidedSelectionTotal.Add(other.VoidedSelectionTotal)
	a.VoidedSelectionCount += other.VoidedSelectionCount
	for label, amount := range other.DeferredByCategory {
		a.addDeferred(label, amount)
	}
	a.DeferredOnExcluded = a.DeferredOnExcluded.Add(other.DeferredOnExcluded)
	a.KeywordExcluded = a.KeywordExcluded.Add(other.KeywordExcluded)
	a.Refunds = a.Refunds.Add(other.Refunds)
	a.RefundCount += other.RefundCount
	a.RefundsOnExcludedChecks = a.RefundsOnExcludedChecks.Add(other.RefundsOnExcludedChecks)
	a.UnresolvedRefunds += other.UnresolvedRefunds
	a.GratuityServiceCharges = a.GratuityServiceCharges.Add(other.GratuityServiceCharges)
	a.NonGratuityServiceCharges = a.NonGratuityServiceCharges.Add(other.NonGratuityServiceCharges)
	a.Discounts = a.Discounts.Add(other.Discounts)
	a.SkippedOrders += other.SkippedOrders
}
