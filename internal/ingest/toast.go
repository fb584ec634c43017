package ingest

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tablesight/tablesight-backend/internal/pos"
	"github.com/tablesight/tablesight-backend/pkg/db/models"
	"github.com/tablesight/tablesight-backend/pkg/enums"
	"github.com/tablesight/tablesight-backend/pkg/toast"
)

// toastTimeLayouts covers the ISO-8601 shapes Toast emits.
var toastTimeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
}

type toastAPI interface {
	OrdersForDates(ctx context.Context, restaurantID string, dates []time.Time) ([]toast.Order, error)
	SalesCategories(ctx context.Context, restaurantID string) ([]toast.ConfigEntity, error)
	RevenueCenters(ctx context.Context, restaurantID string) ([]toast.ConfigEntity, error)
	RestaurantServices(ctx context.Context, restaurantID string) ([]toast.ConfigEntity, error)
}

// ToastSource reads orders through the Toast REST client.
type ToastSource struct {
	api toastAPI
}

func NewToastSource(api toastAPI) *ToastSource {
	return &ToastSource{api: api}
}

func (s *ToastSource) Provider() enums.POSProvider {
	return enums.POSProviderToast
}

func (s *ToastSource) FetchOrders(ctx context.Context, loc models.Location, from, to time.Time) ([]pos.Order, error) {
	raw, err := s.api.OrdersForDates(ctx, loc.ExternalID, businessDates(from, to))
	if err != nil {
		return nil, err
	}
	tz := loc.TimeLocation()
	out := make([]pos.Order, 0, len(raw))
	for _, o := range raw {
		out = append(out, ToastOrder(o, tz))
	}
	return out, nil
}

func (s *ToastSource) FetchLookups(ctx context.Context, loc models.Location) (LookupTables, error) {
	tables := LookupTables{}
	fetches := []struct {
		kind  enums.LookupKind
		fetch func(context.Context, string) ([]toast.ConfigEntity, error)
	}{
		{enums.LookupKindSalesCategory, s.api.SalesCategories},
		{enums.LookupKindRevenueCenter, s.api.RevenueCenters},
		{enums.LookupKindServicePeriod, s.api.RestaurantServices},
	}
	for _, f := range fetches {
		entities, err := f.fetch(ctx, loc.ExternalID)
		if err != nil {
			return nil, err
		}
		table := make(map[string]string, len(entities))
		for _, e := range entities {
			if e.GUID != "" {
				table[e.GUID] = e.Name
			}
		}
		tables[f.kind] = table
	}
	return tables, nil
}

// ToastOrder maps one ordersBulk order. The business date comes from the
// yyyymmdd field, falling back to the opened time in tz.
func ToastOrder(o toast.Order, tz *time.Location) pos.Order {
	opened := parseToastTime(o.OpenedDate)
	out := pos.Order{
		ID:              o.GUID,
		OpenedAt:        opened,
		ClosedAt:        parseToastTime(o.ClosedDate),
		VoidedAt:        parseToastTime(o.VoidDate),
		Deleted:         o.Deleted,
		Voided:          o.Voided,
		ServicePeriodID: guid(o.RestaurantService),
		RevenueCenterID: guid(o.RevenueCenter),
		DiningOption:    guid(o.DiningOption),
	}
	if o.RevenueCenter != nil {
		out.RevenueCenterName = strings.TrimSpace(o.RevenueCenter.Name)
	}
	if o.BusinessDate > 0 {
		out.BusinessDate, _ = pos.ParseBusinessDate(strconv.Itoa(o.BusinessDate))
	}
	if out.BusinessDate.IsZero() {
		out.BusinessDate = pos.BusinessDay(opened, tz)
	}

	out.Checks = make([]pos.Check, 0, len(o.Checks))
	for _, c := range o.Checks {
		out.Checks = append(out.Checks, toastCheck(c))
	}
	return out
}

func toastCheck(c toast.Check) pos.Check {
	check := pos.Check{
		ID:      c.GUID,
		Amount:  c.Amount,
		Deleted: c.Deleted,
		Voided:  c.Voided,
	}
	for _, s := range c.Selections {
		check.Selections = append(check.Selections, toastSelection(s))
	}
	for _, p := range c.Payments {
		if strings.EqualFold(p.PaymentStatus, "VOIDED") {
			continue
		}
		status, err := enums.ParseRefundStatus(p.RefundStatus)
		if err != nil {
			status = enums.RefundStatusNone
		}
		payment := pos.Payment{
			ID:           p.GUID,
			Type:         enums.NormalizePaymentType(p.Type),
			Amount:       p.Amount,
			TipAmount:    p.TipAmount,
			RefundStatus: status,
		}
		if p.Refund != nil {
			payment.Refund = &pos.Refund{
				Amount: p.Refund.RefundAmount,
				Date:   parseToastTime(p.Refund.RefundDate),
			}
		}
		check.Payments = append(check.Payments, payment)
	}
	for _, d := range c.AppliedDiscounts {
		check.Discounts = append(check.Discounts, pos.Discount{ID: d.GUID, Name: d.Name, Amount: d.DiscountAmount})
	}
	for _, sc := range c.AppliedServiceCharges {
		check.ServiceCharges = append(check.ServiceCharges, pos.ServiceCharge{
			ID:       sc.GUID,
			Name:     sc.Name,
			Amount:   sc.ChargeAmount,
			Gratuity: sc.Gratuity,
		})
	}
	return check
}

// toastSelection keeps the unit price before discounts; without a receipt line
// price the whole pre-discount line is treated as a single unit.
func toastSelection(s toast.Selection) pos.Selection {
	sel := pos.Selection{
		ID:       s.GUID,
		Name:     s.DisplayName,
		Quantity: s.Quantity,
		Price:    s.ReceiptLinePrice,
		NetPrice: s.Price,
		Voided:   s.Voided,
	}
	if s.SalesCategory != nil {
		sel.CategoryID = s.SalesCategory.GUID
	}
	if sel.Quantity.IsZero() || sel.Price.IsZero() {
		sel.Quantity = decimal.NewFromInt(1)
		sel.Price = s.PreDiscountPrice
		if sel.Price.IsZero() {
			sel.Price = s.Price
		}
	}
	return sel
}

func guid(ref *toast.Reference) string {
	if ref == nil {
		return ""
	}
	return ref.GUID
}

func parseToastTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range toastTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
