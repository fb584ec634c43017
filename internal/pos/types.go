// Package pos holds the normalized point-of-sale records the aggregation core
// consumes. Vendor adapters translate their wire shapes into these types.
package pos

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tablesight/tablesight-backend/pkg/enums"
)

// Order is one POS transaction envelope.
type Order struct {
	ID string
	// BusinessDate is the UTC-midnight calendar day the order is attributed to.
	// A zero value marks the order as undatable and it is skipped.
	BusinessDate time.Time
	OpenedAt     time.Time
	ClosedAt     time.Time
	Checks       []Check

	ServicePeriodID   string
	RevenueCenterID   string
	RevenueCenterName string
	DiningOption      string

	Deleted  bool
	Voided   bool
	VoidedAt time.Time
}

// Excluded reports whether the whole order is deleted or voided.
func (o Order) Excluded() bool {
	return o.Deleted || o.Voided
}

// Check is a billable sub-unit of an order.
type Check struct {
	ID string
	// Amount is the upstream pre-discount subtotal ("gross base"). Discounts are
	// already reflected in it by the POS convention.
	Amount         decimal.Decimal
	Selections     []Selection
	Payments       []Payment
	Discounts      []Discount
	ServiceCharges []ServiceCharge
	Deleted        bool
	Voided         bool
}

// Excluded reports whether the check is deleted or voided.
func (c Check) Excluded() bool {
	return c.Deleted || c.Voided
}

// Selection is one line item.
type Selection struct {
	ID           string
	Name         string
	Quantity     decimal.Decimal
	Price        decimal.Decimal
	NetPrice     decimal.Decimal
	CategoryID   string
	CategoryName string
	Voided       bool
}

// HasCategory reports whether the selection carries any category reference.
func (s Selection) HasCategory() bool {
	return s.CategoryID != "" || s.CategoryName != ""
}

// GrossAmount is price × quantity.
func (s Selection) GrossAmount() decimal.Decimal {
	return s.Price.Mul(s.Quantity)
}

// Payment is one tender applied to a check.
type Payment struct {
	ID        string
	Type      enums.PaymentType
	Amount    decimal.Decimal
	TipAmount decimal.Decimal

	// Refund is the nested refund sub-record when present.
	Refund *Refund
	// RefundAmount is a top-level refund amount some payloads carry instead.
	RefundAmount decimal.Decimal
	RefundStatus enums.RefundStatus
}

// Refund is the refund sub-record of a payment.
type Refund struct {
	ID     string
	Amount decimal.Decimal
	Date   time.Time
}

// Discount is an applied discount, tallied for reporting only.
type Discount struct {
	ID     string
	Name   string
	Amount decimal.Decimal
}

// ServiceCharge is an applied service charge, tallied for reporting only.
type ServiceCharge struct {
	ID       string
	Name     string
	Amount   decimal.Decimal
	Gratuity bool
}

// Lookups are the optional POS configuration tables keyed by external id.
type Lookups struct {
	Categories     map[string]string
	ServicePeriods map[string]string
	RevenueCenters map[string]string
}

// CategoryName resolves a category id.
func (l Lookups) CategoryName(id string) (string, bool) {
	return lookup(l.Categories, id)
}

// ServicePeriodName resolves a service period id.
func (l Lookups) ServicePeriodName(id string) (string, bool) {
	return lookup(l.ServicePeriods, id)
}

// RevenueCenterName resolves a revenue center id.
func (l Lookups) RevenueCenterName(id string) (string, bool) {
	return lookup(l.RevenueCenters, id)
}

func lookup(table map[string]string, id string) (string, bool) {
	if id == "" || table == nil {
		return "", false
	}
	name, ok := table[id]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// BusinessDay truncates t to a UTC-midnight calendar date in loc.
func BusinessDay(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseBusinessDate parses YYYYMMDD or YYYY-MM-DD into a UTC-midnight date.
func ParseBusinessDate(raw string) (time.Time, bool) {
	for _, layout := range []string{"20060102", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
