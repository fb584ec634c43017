package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablesight/tablesight-backend/internal/aggregation"
	"github.com/tablesight/tablesight-backend/internal/pos"
	"github.com/tablesight/tablesight-backend/internal/revenue"
	"github.com/tablesight/tablesight-backend/pkg/db/models"
	"github.com/tablesight/tablesight-backend/pkg/enums"
	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
	"github.com/tablesight/tablesight-backend/pkg/square"
	"github.com/tablesight/tablesight-backend/pkg/toast"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

type fakeToast struct {
	dates  []time.Time
	orders []toast.Order
}

func (f *fakeToast) OrdersForDates(_ context.Context, _ string, dates []time.Time) ([]toast.Order, error) {
	f.dates = dates
	return f.orders, nil
}

func (f *fakeToast) SalesCategories(context.Context, string) ([]toast.ConfigEntity, error) {
	return []toast.ConfigEntity{{GUID: "cat-beer", Name: "Draft Beer"}, {GUID: "", Name: "ignored"}}, nil
}

func (f *fakeToast) RevenueCenters(context.Context, string) ([]toast.ConfigEntity, error) {
	return []toast.ConfigEntity{{GUID: "rc-patio", Name: "Patio"}}, nil
}

func (f *fakeToast) RestaurantServices(context.Context, string) ([]toast.ConfigEntity, error) {
	return []toast.ConfigEntity{{GUID: "svc-lunch", Name: "Lunch"}}, nil
}

type fakeSquare struct {
	params       square.OrderSearchParams
	orders       []square.Order
	catalog      *square.Catalog
	catalogCalls int
}

func (f *fakeSquare) SearchOrders(_ context.Context, params square.OrderSearchParams) ([]square.Order, error) {
	f.params = params
	return f.orders, nil
}

func (f *fakeSquare) FetchCatalog(context.Context) (*square.Catalog, error) {
	f.catalogCalls++
	if f.catalog == nil {
		return &square.Catalog{CategoryNames: map[string]string{}, ItemCategory: map[string]string{}}, nil
	}
	return f.catalog, nil
}

func squareCatalog() *square.Catalog {
	return &square.Catalog{
		CategoryNames: map[string]string{"cat-beer": "Draft Beer", "cat-entrees": "Entrees"},
		ItemCategory: map[string]string{
			"var-lager":   "cat-beer",
			"var-brisket": "cat-entrees",
			"var-ribeye":  "cat-entrees",
		},
	}
}

func TestToastOrderMapping(t *testing.T) {
	order := toast.Order{
		GUID:              "o-1",
		BusinessDate:      20240603,
		OpenedDate:        "2024-06-03T19:30:00.000+0000",
		RevenueCenter:     &toast.Reference{GUID: "rc-patio"},
		RestaurantService: &toast.Reference{GUID: "svc-dinner"},
		Checks: []toast.Check{{
			GUID:   "c-1",
			Amount: d("62"),
			Selections: []toast.Selection{
				{GUID: "s-1", DisplayName: "IPA", Quantity: d("2"), ReceiptLinePrice: d("7"), Price: d("14"), SalesCategory: &toast.Reference{GUID: "cat-beer"}},
				{GUID: "s-2", DisplayName: "Gift Card", Quantity: d("1"), PreDiscountPrice: d("25"), Price: d("25")},
			},
			Payments: []toast.Payment{
				{GUID: "p-1", Type: "CREDIT", Amount: d("62"), TipAmount: d("9"), RefundStatus: "partial", Refund: &toast.Refund{RefundAmount: d("5"), RefundDate: "2024-06-04T10:00:00.000+0000"}},
				{GUID: "p-2", Type: "CASH", Amount: d("10"), PaymentStatus: "VOIDED"},
			},
			AppliedDiscounts:      []toast.Discount{{GUID: "disc-1", Name: "Happy hour", DiscountAmount: d("3")}},
			AppliedServiceCharges: []toast.ServiceCharge{{GUID: "sc-1", Name: "Auto grat", ChargeAmount: d("11"), Gratuity: true}},
		}},
	}

	got := ToastOrder(order, time.UTC)

	assert.Equal(t, date(2024, time.June, 3), got.BusinessDate)
	assert.Equal(t, 19, got.OpenedAt.Hour())
	assert.Equal(t, "rc-patio", got.RevenueCenterID)
	assert.Equal(t, "svc-dinner", got.ServicePeriodID)
	require.Len(t, got.Checks, 1)

	check := got.Checks[0]
	assertDecimal(t, "62", check.Amount)
	require.Len(t, check.Selections, 2)
	assert.Equal(t, "cat-beer", check.Selections[0].CategoryID)
	assertDecimal(t, "14", check.Selections[0].GrossAmount())
	assert.False(t, check.Selections[1].HasCategory())
	assertDecimal(t, "25", check.Selections[1].GrossAmount())

	require.Len(t, check.Payments, 1, "voided payments are dropped")
	payment := check.Payments[0]
	assert.Equal(t, enums.PaymentTypeCard, payment.Type)
	assert.Equal(t, enums.RefundStatusPartial, payment.RefundStatus)
	require.NotNil(t, payment.Refund)
	assertDecimal(t, "5", payment.Refund.Amount)
	assert.Equal(t, 4, payment.Refund.Date.Day())

	require.Len(t, check.ServiceCharges, 1)
	assert.True(t, check.ServiceCharges[0].Gratuity)
	require.Len(t, check.Discounts, 1)
	assertDecimal(t, "3", check.Discounts[0].Amount)
}

func TestToastOrderKeepsRevenueCenterName(t *testing.T) {
	got := ToastOrder(toast.Order{
		GUID:          "o-3",
		BusinessDate:  20240603,
		RevenueCenter: &toast.Reference{GUID: "rc-9", Name: " Rooftop Bar "},
	}, time.UTC)

	assert.Equal(t, "rc-9", got.RevenueCenterID)
	assert.Equal(t, "Rooftop Bar", got.RevenueCenterName)

	name := aggregation.RevenueCenterName(got, pos.Lookups{})
	assert.Equal(t, "Rooftop Bar", name, "literal name is used when the lookup table misses")
	assert.True(t, aggregation.IsOutdoor(name))

	assert.Empty(t, ToastOrder(toast.Order{GUID: "o-4", BusinessDate: 20240603}, time.UTC).RevenueCenterName)
}

func TestToastOrderFallsBackToOpenedDateInZone(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	got := ToastOrder(toast.Order{GUID: "o-2", OpenedDate: "2024-06-04T03:00:00.000+0000"}, la)
	assert.Equal(t, date(2024, time.June, 3), got.BusinessDate)

	undatable := ToastOrder(toast.Order{GUID: "o-3"}, la)
	assert.True(t, undatable.BusinessDate.IsZero())
}

func TestToastSourceFetch(t *testing.T) {
	api := &fakeToast{orders: []toast.Order{{GUID: "o-1", BusinessDate: 20240601, Voided: true}}}
	src := NewToastSource(api)
	loc := models.Location{ExternalID: "rest-1", Timezone: "America/New_York"}

	orders, err := src.FetchOrders(context.Background(), loc, date(2024, time.June, 1), date(2024, time.June, 3))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].Excluded())
	assert.Equal(t, []time.Time{date(2024, time.June, 1), date(2024, time.June, 2), date(2024, time.June, 3)}, api.dates)

	tables, err := src.FetchLookups(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"cat-beer": "Draft Beer"}, tables[enums.LookupKindSalesCategory])
	assert.Equal(t, map[string]string{"rc-patio": "Patio"}, tables[enums.LookupKindRevenueCenter])
	assert.Equal(t, map[string]string{"svc-lunch": "Lunch"}, tables[enums.LookupKindServicePeriod])
}

func money(cents int64) *square.Money {
	return &square.Money{Amount: cents, Currency: "USD"}
}

func TestSquareOrderMapping(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	order := square.Order{
		ID:       "sq-1",
		State:    square.OrderStateCompleted,
		ClosedAt: time.Date(2024, 6, 4, 2, 30, 0, 0, time.UTC),
		LineItems: []square.LineItem{
			{UID: "li-1", Name: "Lager", Quantity: "2", CatalogObjectID: "var-lager", BasePriceMoney: money(600), GrossSalesMoney: money(1200), TotalDiscountMoney: money(200)},
			{UID: "li-2", Name: "Gift Card", Quantity: "1", ItemType: "GIFT_CARD", BasePriceMoney: money(2500), GrossSalesMoney: money(2500)},
		},
		Tenders: []square.Tender{
			{ID: "t-1", Type: "CARD", AmountMoney: money(3500), TipMoney: money(400)},
			{ID: "t-2", Type: "CASH", AmountMoney: money(500)},
		},
		Refunds: []square.Refund{
			{ID: "r-1", TenderID: "t-1", Status: "COMPLETED", AmountMoney: money(700)},
			{ID: "r-2", TenderID: "t-2", Status: "PENDING", AmountMoney: money(500)},
		},
		ServiceCharges: []square.ServiceCharge{{UID: "sc-1", Name: "Gratuity", Type: square.ServiceChargeAutoGratuity, AppliedMoney: money(300)}},
		Discounts:      []square.Discount{{UID: "disc-1", Name: "Promo", AppliedMoney: money(200)}},
	}

	got := SquareOrder(order, ny, squareCatalog())
	assert.Equal(t, date(2024, time.June, 3), got.BusinessDate, "closed at 22:30 local")
	assert.False(t, got.Excluded())
	require.Len(t, got.Checks, 1)

	check := got.Checks[0]
	assertDecimal(t, "35", check.Amount)
	require.Len(t, check.Selections, 2)
	assert.Equal(t, "cat-beer", check.Selections[0].CategoryID)
	assert.Empty(t, check.Selections[0].CategoryName)
	assertDecimal(t, "12", check.Selections[0].GrossAmount())
	assertDecimal(t, "10", check.Selections[0].NetPrice)
	assert.False(t, check.Selections[1].HasCategory())

	require.Len(t, check.Payments, 2)
	card := check.Payments[0]
	assert.Equal(t, enums.PaymentTypeCard, card.Type)
	assertDecimal(t, "4", card.TipAmount)
	require.NotNil(t, card.Refund)
	assertDecimal(t, "7", card.Refund.Amount)
	assert.Equal(t, enums.RefundStatusPartial, card.RefundStatus)
	assert.Nil(t, check.Payments[1].Refund, "pending refunds are ignored")

	require.Len(t, check.ServiceCharges, 1)
	assert.True(t, check.ServiceCharges[0].Gratuity)
	assertDecimal(t, "2", check.Discounts[0].Amount)
}

func TestSquareOrderCanceledIsVoided(t *testing.T) {
	got := SquareOrder(square.Order{
		ID:        "sq-2",
		State:     square.OrderStateCanceled,
		CreatedAt: time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC),
		Tenders:   []square.Tender{{ID: "t-1", Type: "CARD", AmountMoney: money(1000)}},
		Refunds:   []square.Refund{{TenderID: "t-1", Status: "COMPLETED", AmountMoney: money(1000)}},
	}, time.UTC, nil)

	assert.True(t, got.Voided)
	assert.Equal(t, date(2024, time.June, 3), got.BusinessDate)
	require.Len(t, got.Checks, 1)
	assert.True(t, got.Checks[0].Voided)
	assert.Equal(t, enums.RefundStatusFull, got.Checks[0].Payments[0].RefundStatus)
}

func TestSquareSourceFetchFiltersToLocalDates(t *testing.T) {
	api := &fakeSquare{catalog: squareCatalog(), orders: []square.Order{
		{ID: "in", State: square.OrderStateCompleted, ClosedAt: time.Date(2024, 6, 3, 23, 0, 0, 0, time.UTC)},
		{ID: "after", State: square.OrderStateCompleted, ClosedAt: time.Date(2024, 6, 4, 12, 0, 0, 0, time.UTC)},
	}}
	src := NewSquareSource(api)
	loc := models.Location{ExternalID: "L1", Timezone: "America/New_York"}

	orders, err := src.FetchOrders(context.Background(), loc, date(2024, time.June, 3), date(2024, time.June, 3))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "in", orders[0].ID)

	assert.Equal(t, "L1", api.params.LocationID)
	assert.Equal(t, time.Date(2024, 6, 3, 4, 0, 0, 0, time.UTC), api.params.ClosedFrom.UTC())
	assert.Equal(t, time.Date(2024, 6, 4, 4, 0, 0, 0, time.UTC), api.params.ClosedTo.UTC())

	tables, err := src.FetchLookups(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"cat-beer": "Draft Beer", "cat-entrees": "Entrees"}, tables[enums.LookupKindSalesCategory])
	assert.Equal(t, 2, api.catalogCalls, "orders load the catalog once, lookups refresh it")
}

func TestSquareCategoriesComeFromCatalogNotItemNames(t *testing.T) {
	api := &fakeSquare{catalog: squareCatalog(), orders: []square.Order{{
		ID:       "sq-3",
		State:    square.OrderStateCompleted,
		ClosedAt: time.Date(2024, 6, 3, 20, 0, 0, 0, time.UTC),
		LineItems: []square.LineItem{
			{UID: "li-1", Name: "Coffee-Rubbed Brisket", Quantity: "1", CatalogObjectID: "var-brisket", GrossSalesMoney: money(3000)},
			{UID: "li-2", Name: "Ribeye", Quantity: "1", CatalogObjectID: "var-ribeye", GrossSalesMoney: money(4000)},
			{UID: "li-3", Name: "Off-menu Special", Quantity: "1", GrossSalesMoney: money(1500)},
		},
	}}}
	src := NewSquareSource(api)
	loc := models.Location{ExternalID: "L1", Timezone: "UTC"}

	tables, err := src.FetchLookups(context.Background(), loc)
	require.NoError(t, err)
	orders, err := src.FetchOrders(context.Background(), loc, date(2024, time.June, 3), date(2024, time.June, 3))
	require.NoError(t, err)
	require.Len(t, orders, 1)

	selections := orders[0].Checks[0].Selections
	require.Len(t, selections, 3)
	for _, sel := range selections {
		assert.Empty(t, sel.CategoryName)
		assert.True(t, sel.HasCategory(), "%s must not count as deferred revenue", sel.Name)
	}

	classifier := revenue.NewClassifier(pos.Lookups{Categories: tables[enums.LookupKindSalesCategory]})
	sales, excluded := classifier.Classify(selections)
	assertDecimal(t, "70", sales.Food)
	assertDecimal(t, "0", sales.NonAlcoholic)
	assertDecimal(t, "15", sales.Uncategorized)
	assertDecimal(t, "0", excluded)
	assert.Equal(t, 1, api.catalogCalls, "orders reuse the catalog loaded with the lookups")
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(NewToastSource(&fakeToast{}), NewSquareSource(&fakeSquare{}))

	src, err := reg.For(enums.POSProviderSquare)
	require.NoError(t, err)
	assert.Equal(t, enums.POSProviderSquare, src.Provider())

	_, err = NewRegistry().For(enums.POSProviderToast)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
