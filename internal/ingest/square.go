package ingest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tablesight/tablesight-backend/internal/pos"
	"github.com/tablesight/tablesight-backend/pkg/db/models"
	"github.com/tablesight/tablesight-backend/pkg/enums"
	"github.com/tablesight/tablesight-backend/pkg/square"
)

const (
	// squareGiftCardItem is the line item type Square uses for gift card sales.
	squareGiftCardItem = "GIFT_CARD"
	// squareUncategorized marks sold items whose catalog entry has no category,
	// keeping them out of deferred revenue.
	squareUncategorized = "square:uncategorized"
)

type squareAPI interface {
	SearchOrders(ctx context.Context, params square.OrderSearchParams) ([]square.Order, error)
	FetchCatalog(ctx context.Context) (*square.Catalog, error)
}

// SquareSource reads closed orders through the Square Orders search and
// categorizes line items through the seller catalog.
type SquareSource struct {
	api squareAPI

	mu      sync.Mutex
	catalog *square.Catalog
}

func NewSquareSource(api squareAPI) *SquareSource {
	return &SquareSource{api: api}
}

func (s *SquareSource) Provider() enums.POSProvider {
	return enums.POSProviderSquare
}

// FetchOrders searches the local-midnight window covering [from, to] and keeps
// the orders whose local close date lands inside it.
func (s *SquareSource) FetchOrders(ctx context.Context, loc models.Location, from, to time.Time) ([]pos.Order, error) {
	catalog, err := s.cachedCatalog(ctx)
	if err != nil {
		return nil, err
	}

	tz := loc.TimeLocation()
	start := localMidnight(from, tz)
	end := localMidnight(to, tz).AddDate(0, 0, 1)

	raw, err := s.api.SearchOrders(ctx, square.OrderSearchParams{
		LocationID: loc.ExternalID,
		ClosedFrom: start,
		ClosedTo:   end,
	})
	if err != nil {
		return nil, err
	}
	out := make([]pos.Order, 0, len(raw))
	for _, o := range raw {
		order := SquareOrder(o, tz, catalog)
		if !inRange(order.BusinessDate, from, to) {
			continue
		}
		out = append(out, order)
	}
	return out, nil
}

// FetchLookups refreshes the cached catalog and returns its category names as
// the sales category table.
func (s *SquareSource) FetchLookups(ctx context.Context, _ models.Location) (LookupTables, error) {
	catalog, err := s.api.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()
	return LookupTables{enums.LookupKindSalesCategory: catalog.CategoryNames}, nil
}

func (s *SquareSource) cachedCatalog(ctx context.Context) (*square.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.catalog != nil {
		return s.catalog, nil
	}
	catalog, err := s.api.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	s.catalog = catalog
	return catalog, nil
}

// SquareOrder maps a Square order onto a single-check pos order. Canceled
// orders are voided, gift card line items carry no category so they count as
// deferred revenue, and refunds hang off the tender they returned money to.
// Other line items take the category of their catalog item; the name is left
// to the sales category lookup.
func SquareOrder(o square.Order, tz *time.Location, catalog *square.Catalog) pos.Order {
	closed := o.ClosedAt
	if closed.IsZero() {
		closed = o.CreatedAt
	}
	out := pos.Order{
		ID:           o.ID,
		BusinessDate: pos.BusinessDay(closed, tz),
		OpenedAt:     o.CreatedAt,
		ClosedAt:     o.ClosedAt,
		Voided:       o.State == square.OrderStateCanceled,
	}
	if out.Voided {
		out.VoidedAt = closed
	}
	if o.Source != nil {
		out.DiningOption = o.Source.Name
	}

	check := pos.Check{ID: o.ID, Voided: out.Voided}
	for _, li := range o.LineItems {
		sel := squareSelection(li, catalog)
		check.Selections = append(check.Selections, sel)
		check.Amount = check.Amount.Add(sel.NetPrice)
	}

	refunds := map[string]decimal.Decimal{}
	for _, r := range o.Refunds {
		if !squareRefundSettled(r.Status) {
			continue
		}
		refunds[r.TenderID] = refunds[r.TenderID].Add(r.AmountMoney.Decimal())
	}
	for _, t := range o.Tenders {
		payment := pos.Payment{
			ID:           t.ID,
			Type:         enums.NormalizePaymentType(t.Type),
			Amount:       t.AmountMoney.Decimal(),
			TipAmount:    t.TipMoney.Decimal(),
			RefundStatus: enums.RefundStatusNone,
		}
		if amount, ok := refunds[t.ID]; ok && amount.IsPositive() {
			payment.Refund = &pos.Refund{ID: t.ID, Amount: amount}
			payment.RefundStatus = enums.RefundStatusPartial
			if amount.GreaterThanOrEqual(payment.Amount) {
				payment.RefundStatus = enums.RefundStatusFull
			}
		}
		check.Payments = append(check.Payments, payment)
	}

	for _, d := range o.Discounts {
		check.Discounts = append(check.Discounts, pos.Discount{ID: d.UID, Name: d.Name, Amount: d.AppliedMoney.Decimal()})
	}
	for _, sc := range o.ServiceCharges {
		check.ServiceCharges = append(check.ServiceCharges, pos.ServiceCharge{
			ID:       sc.UID,
			Name:     sc.Name,
			Amount:   sc.AppliedMoney.Decimal(),
			Gratuity: sc.Type == square.ServiceChargeAutoGratuity,
		})
	}

	out.Checks = []pos.Check{check}
	return out
}

func squareSelection(li square.LineItem, catalog *square.Catalog) pos.Selection {
	qty, err := decimal.NewFromString(strings.TrimSpace(li.Quantity))
	if err != nil || qty.IsZero() {
		qty = decimal.NewFromInt(1)
	}
	gross := li.GrossSalesMoney.Decimal()
	sel := pos.Selection{
		ID:       li.UID,
		Name:     li.Name,
		Quantity: qty,
		Price:    li.BasePriceMoney.Decimal(),
		NetPrice: gross.Sub(li.TotalDiscountMoney.Decimal()),
	}
	if sel.Price.IsZero() {
		sel.Quantity = decimal.NewFromInt(1)
		sel.Price = gross
	}
	if li.ItemType == squareGiftCardItem {
		return sel
	}
	sel.CategoryID = squareUncategorized
	if id, ok := catalog.CategoryFor(li.CatalogObjectID); ok {
		sel.CategoryID = id
	}
	return sel
}

func squareRefundSettled(status string) bool {
	switch strings.ToUpper(status) {
	case "COMPLETED", "APPROVED":
		return true
	default:
		return false
	}
}

func localMidnight(day time.Time, tz *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, tz)
}
