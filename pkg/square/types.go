package square

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money is Square's integer minor-unit amount.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Decimal converts the minor-unit amount to a two-place decimal.
func (m *Money) Decimal() decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return decimal.New(m.Amount, -2)
}

// Order is the subset of a Square order the aggregation reads.
type Order struct {
	ID             string          `json:"id"`
	LocationID     string          `json:"location_id"`
	State          string          `json:"state"`
	CreatedAt      time.Time       `json:"created_at"`
	ClosedAt       time.Time       `json:"closed_at"`
	LineItems      []LineItem      `json:"line_items"`
	Tenders        []Tender        `json:"tenders"`
	Refunds        []Refund        `json:"refunds"`
	ServiceCharges []ServiceCharge `json:"service_charges"`
	Discounts      []Discount      `json:"discounts"`
	TotalMoney     *Money          `json:"total_money"`
	Source         *OrderSource    `json:"source"`
}

// OrderSource names the channel that created the order.
type OrderSource struct {
	Name string `json:"name"`
}

type LineItem struct {
	UID                string `json:"uid"`
	Name               string `json:"name"`
	VariationName      string `json:"variation_name"`
	Quantity           string `json:"quantity"`
	CatalogObjectID    string `json:"catalog_object_id"`
	ItemType           string `json:"item_type"`
	BasePriceMoney     *Money `json:"base_price_money"`
	GrossSalesMoney    *Money `json:"gross_sales_money"`
	TotalDiscountMoney *Money `json:"total_discount_money"`
	TotalMoney         *Money `json:"total_money"`
}

type Tender struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	AmountMoney *Money `json:"amount_money"`
	TipMoney    *Money `json:"tip_money"`
}

type Refund struct {
	ID          string `json:"id"`
	TenderID    string `json:"tender_id"`
	Status      string `json:"status"`
	AmountMoney *Money `json:"amount_money"`
}

type ServiceCharge struct {
	UID          string `json:"uid"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	AppliedMoney *Money `json:"applied_money"`
}

type Discount struct {
	UID          string `json:"uid"`
	Name         string `json:"name"`
	AppliedMoney *Money `json:"applied_money"`
}

// Order states.
const (
	OrderStateOpen      = "OPEN"
	OrderStateCompleted = "COMPLETED"
	OrderStateCanceled  = "CANCELED"
)

// ServiceChargeAutoGratuity marks an automatically applied gratuity.
const ServiceChargeAutoGratuity = "AUTO_GRATUITY"
