package toast

import "github.com/shopspring/decimal"

// Reference is Toast's {guid, entityType} pointer to another entity.
type Reference struct {
	GUID       string `json:"guid"`
	EntityType string `json:"entityType,omitempty"`
	// Name is only present when the order was fetched with expanded references.
	Name string `json:"name,omitempty"`
}

// Order is the subset of the ordersBulk payload the aggregation reads.
type Order struct {
	GUID              string     `json:"guid"`
	BusinessDate      int        `json:"businessDate"`
	OpenedDate        string     `json:"openedDate"`
	ClosedDate        string     `json:"closedDate"`
	Voided            bool       `json:"voided"`
	Deleted           bool       `json:"deleted"`
	VoidDate          string     `json:"voidDate"`
	DiningOption      *Reference `json:"diningOption"`
	RevenueCenter     *Reference `json:"revenueCenter"`
	RestaurantService *Reference `json:"restaurantService"`
	Checks            []Check    `json:"checks"`
}

type Check struct {
	GUID                  string          `json:"guid"`
	Amount                decimal.Decimal `json:"amount"`
	TotalAmount           decimal.Decimal `json:"totalAmount"`
	Voided                bool            `json:"voided"`
	Deleted               bool            `json:"deleted"`
	Selections            []Selection     `json:"selections"`
	Payments              []Payment       `json:"payments"`
	AppliedDiscounts      []Discount      `json:"appliedDiscounts"`
	AppliedServiceCharges []ServiceCharge `json:"appliedServiceCharges"`
}

type Selection struct {
	GUID             string          `json:"guid"`
	DisplayName      string          `json:"displayName"`
	Quantity         decimal.Decimal `json:"quantity"`
	// Price is the line total after discounts; ReceiptLinePrice is the unit
	// price before discounts.
	Price            decimal.Decimal `json:"price"`
	PreDiscountPrice decimal.Decimal `json:"preDiscountPrice"`
	ReceiptLinePrice decimal.Decimal `json:"receiptLinePrice"`
	Voided           bool            `json:"voided"`
	SalesCategory    *Reference      `json:"salesCategory"`
}

type Payment struct {
	GUID          string          `json:"guid"`
	Type          string          `json:"type"`
	PaymentStatus string          `json:"paymentStatus"`
	Amount        decimal.Decimal `json:"amount"`
	TipAmount     decimal.Decimal `json:"tipAmount"`
	RefundStatus  string          `json:"refundStatus"`
	Refund        *Refund         `json:"refund"`
}

type Refund struct {
	RefundAmount    decimal.Decimal `json:"refundAmount"`
	TipRefundAmount decimal.Decimal `json:"tipRefundAmount"`
	RefundDate      string          `json:"refundDate"`
}

type Discount struct {
	GUID           string          `json:"guid"`
	Name           string          `json:"name"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

type ServiceCharge struct {
	GUID         string          `json:"guid"`
	Name         string          `json:"name"`
	ChargeAmount decimal.Decimal `json:"chargeAmount"`
	Gratuity     bool            `json:"gratuity"`
}

// ConfigEntity is a row of a configuration endpoint (sales categories,
// revenue centers, restaurant services).
type ConfigEntity struct {
	GUID string `json:"guid"`
	Name string `json:"name"`
}
