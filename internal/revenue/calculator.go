// Package revenue computes per-check net revenue and the category breakdown
// of point-of-sale orders.
package revenue

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tablesight/tablesight-backend/internal/pos"
	"github.com/tablesight/tablesight-backend/pkg/enums"
)

const unlabeledDeferred = "unlabeled"

// CheckRevenue is the contribution of one surviving check.
//
// Net = Amount - Deferred - Refunds. Discounts and service charges are already
// reflected in Amount or are pass-through, so they are reported but never
// subtracted. This formula reconciles against POS exports within ~1.5% in
// gift-card-heavy months.
type CheckRevenue struct {
	CheckID        string
	Amount         decimal.Decimal
	Deferred       decimal.Decimal
	Refunds        decimal.Decimal
	Net            decimal.Decimal
	Discounts      decimal.Decimal
	ServiceCharges decimal.Decimal
	Tips           decimal.Decimal
	Payments       map[enums.PaymentType]decimal.Decimal
	Categories     CategorySales
}

// OrderRevenue is the result for one order.
type OrderRevenue struct {
	OrderID string
	Net     decimal.Decimal
	Checks  []CheckRevenue
}

// Counted reports whether at least one check survived exclusion.
func (r OrderRevenue) Counted() bool {
	return len(r.Checks) > 0
}

// Calculator is a per-run accumulator. It is not safe for concurrent use;
// build one per aggregation call.
type Calculator struct {
	classifier  *Classifier
	audit       Audit
	seenRefunds map[string]struct{}
}

// NewCalculator builds a calculator that resolves categories through lookups.
func NewCalculator(lookups pos.Lookups) *Calculator {
	return &Calculator{
		classifier:  NewClassifier(lookups),
		seenRefunds: map[string]struct{}{},
	}
}

// Audit returns a copy of the tallies accumulated so far.
func (c *Calculator) Audit() Audit {
	out := c.audit
	out.DeferredByCategory = make(map[string]decimal.Decimal, len(c.audit.DeferredByCategory))
	for k, v := range c.audit.DeferredByCategory {
		out.DeferredByCategory[k] = v
	}
	return out
}

// MarkSkipped records an order that could not be attributed to a date.
func (c *Calculator) MarkSkipped() {
	c.audit.SkippedOrders++
}

// OrderRevenue runs the exclusion rules over every check of the order.
// Refunds are scanned on every check before any exclusion test so the audit
// sees them even when the check is later dropped.
func (c *Calculator) OrderRevenue(order pos.Order) OrderRevenue {
	result := OrderRevenue{OrderID: order.ID, Net: decimal.Zero}
	orderRefunds := map[string]struct{}{}

	for idx, check := range order.Checks {
		refunds := c.scanRefunds(order.ID, idx, check, orderRefunds)

		if order.Excluded() || check.Excluded() {
			c.excludeCheck(check, refunds)
			continue
		}

		contribution := c.checkContribution(check, refunds)
		result.Checks = append(result.Checks, contribution)
		result.Net = result.Net.Add(contribution.Net)
	}
	return result
}

// scanRefunds returns the refund total for a check. Payment ids are used to
// dedupe within the order (revenue) and across calls (audit).
func (c *Calculator) scanRefunds(orderID string, checkIdx int, check pos.Check, orderSeen map[string]struct{}) decimal.Decimal {
	total := decimal.Zero
	for payIdx, payment := range check.Payments {
		amount, indicated := refundAmount(payment)
		if !indicated {
			continue
		}
		if amount.IsZero() {
			c.audit.UnresolvedRefunds++
			continue
		}

		key := payment.ID
		if key == "" {
			key = fmt.Sprintf("%s:%s:%d:%d", orderID, check.ID, checkIdx, payIdx)
		}
		if _, dup := orderSeen[key]; dup {
			continue
		}
		orderSeen[key] = struct{}{}
		total = total.Add(amount)

		if _, seen := c.seenRefunds[key]; seen {
			continue
		}
		c.seenRefunds[key] = struct{}{}
		c.audit.Refunds = c.audit.Refunds.Add(amount)
		c.audit.RefundCount++
	}
	return total
}

// refundAmount applies the refund indicator rules in order: nested refund
// amount, top-level refund amount, then a PARTIAL/FULL status. A FULL status
// without an amount resolves to the payment amount; PARTIAL without one is
// reported as indicated but unresolvable.
func refundAmount(p pos.Payment) (decimal.Decimal, bool) {
	if p.Refund != nil && p.Refund.Amount.IsPositive() {
		return p.Refund.Amount, true
	}
	if p.RefundAmount.IsPositive() {
		return p.RefundAmount, true
	}
	if p.RefundStatus.Refunded() {
		if p.RefundStatus == enums.RefundStatusFull && p.Amount.IsPositive() {
			return p.Amount, true
		}
		return decimal.Zero, true
	}
	return decimal.Zero, false
}

func (c *Calculator) excludeCheck(check pos.Check, refunds decimal.Decimal) {
	c.audit.VoidedCheckAmount = c.audit.VoidedCheckAmount.Add(check.Amount)
	c.audit.VoidedCheckCount++
	c.audit.RefundsOnExcludedChecks = c.audit.RefundsOnExcludedChecks.Add(refunds)
	for _, sel := range check.Selections {
		if sel.Voided || sel.HasCategory() {
			continue
		}
		c.audit.DeferredOnExcluded = c.audit.DeferredOnExcluded.Add(sel.GrossAmount())
	}
}

func (c *Calculator) checkContribution(check pos.Check, refunds decimal.Decimal) CheckRevenue {
	out := CheckRevenue{
		CheckID:        check.ID,
		Amount:         check.Amount,
		Deferred:       decimal.Zero,
		Refunds:        refunds,
		Discounts:      decimal.Zero,
		ServiceCharges: decimal.Zero,
		Tips:           decimal.Zero,
		Payments:       map[enums.PaymentType]decimal.Decimal{},
	}

	for _, sel := range check.Selections {
		if sel.Voided {
			c.audit.VoidedSelectionTotal = c.audit.VoidedSelectionTotal.Add(sel.GrossAmount())
			c.audit.VoidedSelectionCount++
			continue
		}
		if sel.HasCategory() {
			continue
		}
		amount := sel.GrossAmount()
		out.Deferred = out.Deferred.Add(amount)
		c.audit.addDeferred(deferredLabel(sel), amount)
	}

	for _, sc := range check.ServiceCharges {
		out.ServiceCharges = out.ServiceCharges.Add(sc.Amount)
		if sc.Gratuity {
			c.audit.GratuityServiceCharges = c.audit.GratuityServiceCharges.Add(sc.Amount)
		} else {
			c.audit.NonGratuityServiceCharges = c.audit.NonGratuityServiceCharges.Add(sc.Amount)
		}
	}
	for _, d := range check.Discounts {
		out.Discounts = out.Discounts.Add(d.Amount)
	}
	c.audit.Discounts = c.audit.Discounts.Add(out.Discounts)

	for _, p := range check.Payments {
		kind := p.Type
		if !kind.IsValid() {
			kind = enums.PaymentTypeOther
		}
		out.Payments[kind] = out.Payments[kind].Add(p.Amount)
		out.Tips = out.Tips.Add(p.TipAmount)
	}

	var keywordExcluded decimal.Decimal
	out.Categories, keywordExcluded = c.classifier.Classify(check.Selections)
	c.audit.KeywordExcluded = c.audit.KeywordExcluded.Add(keywordExcluded)

	out.Net = out.Amount.Sub(out.Deferred).Sub(out.Refunds)
	return out
}

func deferredLabel(sel pos.Selection) string {
	label := strings.ToLower(strings.TrimSpace(sel.Name))
	if label == "" {
		return unlabeledDeferred
	}
	return label
}
