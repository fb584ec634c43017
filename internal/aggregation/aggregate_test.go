package aggregation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablesight/tablesight-backend/internal/pos"
	"github.com/tablesight/tablesight-backend/internal/revenue"
	"github.com/tablesight/tablesight-backend/pkg/enums"
)

var (
	day1 = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func at(date time.Time, hour int) time.Time {
	return date.Add(time.Duration(hour) * time.Hour)
}

func item(category, price string) pos.Selection {
	p := d(price)
	return pos.Selection{CategoryName: category, Price: p, Quantity: decimal.NewFromInt(1), NetPrice: p}
}

func sampleOrders() []pos.Order {
	return []pos.Order{
		{
			ID: "lunch-1", BusinessDate: day1, OpenedAt: at(day1, 12),
			RevenueCenterID: "rc-main",
			Checks: []pos.Check{{
				ID: "c1", Amount: d("50"),
				Selections: []pos.Selection{item("Entrees", "40"), item("Draft Beer", "8")},
				Payments:   []pos.Payment{{ID: "p1", Type: enums.PaymentTypeCard, Amount: d("50"), TipAmount: d("10")}},
				Discounts:  []pos.Discount{{Amount: d("2")}},
			}},
		},
		{
			ID: "dinner-1", BusinessDate: day1, OpenedAt: at(day1, 19),
			RevenueCenterID: "rc-patio",
			Checks: []pos.Check{
				{
					ID: "c2", Amount: d("120"),
					Selections: []pos.Selection{item("Entrees", "70"), item("Wine", "40"), {Name: "Gift Card", Price: d("20"), Quantity: decimal.NewFromInt(1), NetPrice: d("20")}},
					Payments:   []pos.Payment{{ID: "p2", Type: enums.PaymentTypeCash, Amount: d("120"), Refund: &pos.Refund{Amount: d("15")}}},
				},
				{
					ID: "c3", Amount: d("30"),
					Selections: []pos.Selection{item("Cocktails", "30")},
					Payments:   []pos.Payment{{ID: "p3", Type: enums.PaymentTypeGiftCard, Amount: d("30"), TipAmount: d("6")}},
				},
			},
		},
		{
			ID: "voided-1", BusinessDate: day1, OpenedAt: at(day1, 20), Voided: true,
			RevenueCenterID: "rc-main",
			Checks: []pos.Check{{
				ID: "c4", Amount: d("45"),
				Payments: []pos.Payment{{ID: "p4", Amount: d("45"), RefundAmount: d("45")}},
			}},
		},
		{
			ID: "late-1", BusinessDate: day2, OpenedAt: at(day2, 23),
			Checks: []pos.Check{{
				ID: "c5", Amount: d("25"),
				Selections: []pos.Selection{item("Soda", "5"), item("Pizza", "20")},
				Payments:   []pos.Payment{{ID: "p5", Type: "HOUSE_ACCOUNT", Amount: d("25")}},
			}},
		},
	}
}

func TestAggregate_TransactionSummary(t *testing.T) {
	res := Aggregate(sampleOrders(), Options{TZ: time.UTC, Lookups: pos.Lookups{RevenueCenters: map[string]string{"rc-patio": "Garden Patio"}}})

	require.Len(t, res.Daily, 2)
	first := res.Daily[0]
	assert.True(t, first.Date.Equal(day1))
	assert.True(t, first.Gross.Equal(d("200")), "gross %s", first.Gross)
	assert.True(t, first.Net.Equal(d("165")), "net = 200 - 20 deferred - 15 refund, got %s", first.Net)
	assert.True(t, first.Deferred.Equal(d("20")))
	assert.True(t, first.Refunds.Equal(d("15")))
	assert.True(t, first.Voids.Equal(d("45")))
	assert.True(t, first.Discounts.Equal(d("2")))
	assert.Equal(t, 2, first.OrderCount)
	assert.Equal(t, 3, first.CheckCount)
	assert.True(t, first.Payment(enums.PaymentTypeCard).Equal(d("50")))
	assert.True(t, first.Payment(enums.PaymentTypeCash).Equal(d("120")))
	assert.True(t, first.Payment(enums.PaymentTypeGiftCard).Equal(d("30")))
	assert.True(t, first.AverageCheck().Equal(d("82.5")))
	assert.True(t, first.AverageTip().Equal(d("8")))

	second := res.Daily[1]
	assert.True(t, second.Payment(enums.PaymentTypeOther).Equal(d("25")), "unknown tender tags land in other")

	assert.Equal(t, 3, res.OrdersCounted)
	assert.True(t, res.Audit.RefundsOnExcludedChecks.Equal(d("45")))
	assert.True(t, res.Audit.Refunds.Equal(d("60")))
}

func TestAggregate_DaypartRevenueConservesDailyNet(t *testing.T) {
	res := Aggregate(sampleOrders(), Options{TZ: time.UTC})

	sums := map[time.Time]decimal.Decimal{}
	for _, b := range res.Dayparts {
		sums[b.Date] = sums[b.Date].Add(b.Revenue)
	}
	for _, day := range res.Daily {
		assert.True(t, sums[day.Date].Equal(day.Net), "date %s: dayparts %s vs daily %s", day.Date, sums[day.Date], day.Net)
	}
}

func TestAggregate_CategoriesDecomposeRevenue(t *testing.T) {
	res := Aggregate(sampleOrders(), Options{TZ: time.UTC})
	for _, b := range res.Dayparts {
		total := b.Categories.Total()
		if b.Revenue.IsZero() {
			continue
		}
		ratio := total.Div(b.Revenue).Sub(decimal.NewFromInt(1)).Abs()
		assert.True(t, ratio.LessThanOrEqual(decimal.NewFromFloat(revenue.RescaleTolerance)),
			"%s %s categories %s vs revenue %s", b.Date, b.Daypart, total, b.Revenue)
	}
}

func TestAggregate_DaypartsFromOpenHour(t *testing.T) {
	res := Aggregate(sampleOrders(), Options{TZ: time.UTC})

	require.Len(t, res.Dayparts, 3)
	assert.Equal(t, enums.DaypartLunch, res.Dayparts[0].Daypart)
	assert.Equal(t, enums.DaypartDinner, res.Dayparts[1].Daypart)
	assert.Equal(t, 2, res.Dayparts[1].Covers)
	assert.Equal(t, 1, res.Dayparts[1].OrderCount)
	assert.True(t, res.Dayparts[1].Revenue.Equal(d("115")))
	assert.Equal(t, enums.DaypartLateNight, res.Dayparts[2].Daypart)
	assert.True(t, res.Dayparts[2].Date.Equal(day2))
}

func TestAggregate_RevenueCenters(t *testing.T) {
	lookups := pos.Lookups{RevenueCenters: map[string]string{"rc-patio": "Garden Patio"}}
	res := Aggregate(sampleOrders(), Options{TZ: time.UTC, Lookups: lookups})

	require.Len(t, res.RevenueCenters, 2, "orders without a revenue center and voided orders are skipped")
	main := res.RevenueCenters[0]
	assert.Equal(t, "rc-main", main.RevenueCenterID)
	assert.Equal(t, "rc-main", main.Name, "unresolvable names fall back to the id")
	assert.False(t, main.IsOutdoor)
	assert.Equal(t, 1, main.OrderCount)

	patio := res.RevenueCenters[1]
	assert.Equal(t, "Garden Patio", patio.Name)
	assert.True(t, patio.IsOutdoor)
	assert.Equal(t, 2, patio.CheckCount)
	assert.True(t, patio.NetSales.Equal(d("115")))
	assert.True(t, patio.AverageCheck().Equal(d("57.5")))
}

func TestAggregate_FullyVoidedOrderContributesNothing(t *testing.T) {
	order := pos.Order{
		ID: "v", BusinessDate: day1, OpenedAt: at(day1, 12), RevenueCenterID: "rc",
		Checks: []pos.Check{
			{ID: "a", Amount: d("40"), Voided: true, Payments: []pos.Payment{{ID: "r1", RefundAmount: d("12")}}},
			{ID: "b", Amount: d("10"), Deleted: true},
		},
	}
	res := Aggregate([]pos.Order{order}, Options{})

	require.Len(t, res.Daily, 1)
	assert.True(t, res.Daily[0].Net.IsZero())
	assert.True(t, res.Daily[0].Gross.IsZero())
	assert.Equal(t, 0, res.Daily[0].OrderCount)
	assert.True(t, res.Daily[0].AverageCheck().IsZero())
	assert.True(t, res.Daily[0].AverageTip().IsZero())
	assert.True(t, res.Daily[0].Voids.Equal(d("50")))
	assert.Empty(t, res.Dayparts)
	assert.Empty(t, res.RevenueCenters)
	assert.True(t, res.Audit.Refunds.Equal(d("12")))
}

func TestAggregate_DeferredSubtractedOnce(t *testing.T) {
	order := pos.Order{
		ID: "g", BusinessDate: day1, OpenedAt: at(day1, 12),
		Checks: []pos.Check{{
			ID: "c", Amount: d("100"),
			Selections: []pos.Selection{
				item("Entrees", "75"),
				{Name: "Gift Card", Price: d("25"), Quantity: decimal.NewFromInt(1), NetPrice: d("25")},
			},
		}},
	}
	res := Aggregate([]pos.Order{order}, Options{})

	require.Len(t, res.Dayparts, 1)
	assert.True(t, res.Daily[0].Net.Equal(d("75")))
	cats := res.Dayparts[0].Categories
	assert.True(t, cats.Food.Equal(d("75")))
	assert.True(t, cats.Total().Equal(d("75")), "the gift card is in no bucket")
}

func TestAggregate_SkipsUndatableOrders(t *testing.T) {
	res := Aggregate([]pos.Order{{ID: "x", Checks: []pos.Check{{Amount: d("10")}}}}, Options{})
	assert.Empty(t, res.Daily)
	assert.Empty(t, res.Dates)
	assert.Equal(t, 1, res.Audit.SkippedOrders)
}

func TestAggregate_Idempotent(t *testing.T) {
	opts := Options{TZ: time.UTC, Lookups: pos.Lookups{RevenueCenters: map[string]string{"rc-patio": "Garden Patio"}}}
	first := Aggregate(sampleOrders(), opts)
	second := Aggregate(sampleOrders(), opts)
	assert.Equal(t, first, second)
	assert.Equal(t, []time.Time{day1, day2}, first.Dates)
}

func TestAggregate_EmptyInput(t *testing.T) {
	res := Aggregate(nil, Options{})
	assert.Empty(t, res.Daily)
	assert.Empty(t, res.Dayparts)
	assert.Empty(t, res.RevenueCenters)
	assert.Equal(t, 0, res.OrdersCounted)
}
