// Package aggregation turns normalized POS orders into daily, daypart and
// revenue-center facts. Everything here is a pure function of its inputs.
package aggregation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tablesight/tablesight-backend/internal/pos"
	"github.com/tablesight/tablesight-backend/internal/revenue"
	"github.com/tablesight/tablesight-backend/pkg/enums"
)

// Options configures one aggregation call.
type Options struct {
	// TZ is the location's zone, used for hour-of-day daypart bucketing.
	TZ      *time.Location
	Lookups pos.Lookups
	// DaypartChain overrides DefaultDaypartChain when set.
	DaypartChain []DaypartResolver
}

// DailySummary is the transaction summary for one business date.
type DailySummary struct {
	Date           time.Time
	Gross          decimal.Decimal
	Net            decimal.Decimal
	Discounts      decimal.Decimal
	Refunds        decimal.Decimal
	Voids          decimal.Decimal
	ServiceCharges decimal.Decimal
	Deferred       decimal.Decimal
	Payments       map[enums.PaymentType]decimal.Decimal
	Tips           decimal.Decimal
	OrderCount     int
	CheckCount     int
	Categories     revenue.CategorySales
}

// AverageCheck is net / orders, zero without orders.
func (s DailySummary) AverageCheck() decimal.Decimal {
	return safeDiv(s.Net, s.OrderCount)
}

// AverageTip is tips / orders, zero without orders.
func (s DailySummary) AverageTip() decimal.Decimal {
	return safeDiv(s.Tips, s.OrderCount)
}

// Payment returns the total for one tender bucket.
func (s DailySummary) Payment(kind enums.PaymentType) decimal.Decimal {
	return s.Payments[kind]
}

// DaypartBucket is one (date, daypart) fact.
type DaypartBucket struct {
	Date       time.Time
	Daypart    enums.Daypart
	Revenue    decimal.Decimal
	Covers     int
	OrderCount int
	Categories revenue.CategorySales
	Rescaled   bool
}

// RevenueCenterBucket is one (date, revenue center) fact.
type RevenueCenterBucket struct {
	Date            time.Time
	RevenueCenterID string
	Name            string
	IsOutdoor       bool
	NetSales        decimal.Decimal
	OrderCount      int
	CheckCount      int
	Categories      revenue.CategorySales
	Rescaled        bool
}

// AverageCheck is net / checks, zero without checks.
func (b RevenueCenterBucket) AverageCheck() decimal.Decimal {
	return safeDiv(b.NetSales, b.CheckCount)
}

// Result is everything one aggregation call produces.
type Result struct {
	// Dates lists every business date that had at least one datable order,
	// including dates whose orders were all excluded.
	Dates          []time.Time
	Daily          []DailySummary
	Dayparts       []DaypartBucket
	RevenueCenters []RevenueCenterBucket
	Audit          revenue.Audit
	OrdersCounted  int
}

type daypartKey struct {
	date    time.Time
	daypart enums.Daypart
}

type centerKey struct {
	date time.Time
	id   string
}

// Aggregate partitions orders into facts. Orders without a business date are
// skipped and counted in the audit. Output slices are sorted so repeated runs
// over the same input are identical.
func Aggregate(orders []pos.Order, opts Options) Result {
	chain := opts.DaypartChain
	if len(chain) == 0 {
		chain = DefaultDaypartChain()
	}

	calc := revenue.NewCalculator(opts.Lookups)
	daily := map[time.Time]*DailySummary{}
	dayparts := map[daypartKey]*DaypartBucket{}
	centers := map[centerKey]*RevenueCenterBucket{}
	var result Result

	for _, order := range orders {
		if order.BusinessDate.IsZero() {
			calc.MarkSkipped()
			continue
		}
		date := order.BusinessDate.UTC()

		rev := calc.OrderRevenue(order)

		day := daily[date]
		if day == nil {
			day = newDailySummary(date)
			daily[date] = day
		}
		day.Voids = day.Voids.Add(excludedAmount(order))

		if !rev.Counted() {
			continue
		}
		result.OrdersCounted++
		addToDay(day, rev)

		var categories revenue.CategorySales
		for _, check := range rev.Checks {
			categories = categories.Add(check.Categories)
		}

		dpKey := daypartKey{date: date, daypart: ResolveDaypart(chain, order, opts.Lookups, opts.TZ)}
		bucket := dayparts[dpKey]
		if bucket == nil {
			bucket = &DaypartBucket{Date: date, Daypart: dpKey.daypart, Revenue: decimal.Zero}
			dayparts[dpKey] = bucket
		}
		bucket.Revenue = bucket.Revenue.Add(rev.Net)
		bucket.Covers += len(rev.Checks)
		bucket.OrderCount++
		bucket.Categories = bucket.Categories.Add(categories)

		if order.RevenueCenterID == "" {
			continue
		}
		rcKey := centerKey{date: date, id: order.RevenueCenterID}
		center := centers[rcKey]
		if center == nil {
			name := RevenueCenterName(order, opts.Lookups)
			center = &RevenueCenterBucket{
				Date:            date,
				RevenueCenterID: order.RevenueCenterID,
				Name:            name,
				IsOutdoor:       IsOutdoor(name),
				NetSales:        decimal.Zero,
			}
			centers[rcKey] = center
		}
		center.NetSales = center.NetSales.Add(rev.Net)
		center.OrderCount++
		center.CheckCount += len(rev.Checks)
		center.Categories = center.Categories.Add(categories)
	}

	result.Audit = calc.Audit()

	for date, day := range daily {
		result.Dates = append(result.Dates, date)
		day.Categories, _ = revenue.RescaleToRevenue(day.Categories, day.Net)
		result.Daily = append(result.Daily, *day)
	}
	for _, bucket := range dayparts {
		bucket.Categories, bucket.Rescaled = revenue.RescaleToRevenue(bucket.Categories, bucket.Revenue)
		result.Dayparts = append(result.Dayparts, *bucket)
	}
	for _, center := range centers {
		center.Categories, center.Rescaled = revenue.RescaleToRevenue(center.Categories, center.NetSales)
		result.RevenueCenters = append(result.RevenueCenters, *center)
	}

	sort.Slice(result.Dates, func(i, j int) bool { return result.Dates[i].Before(result.Dates[j]) })
	sort.Slice(result.Daily, func(i, j int) bool { return result.Daily[i].Date.Before(result.Daily[j].Date) })
	sort.Slice(result.Dayparts, func(i, j int) bool {
		a, b := result.Dayparts[i], result.Dayparts[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Daypart.Rank() < b.Daypart.Rank()
	})
	sort.Slice(result.RevenueCenters, func(i, j int) bool {
		a, b := result.RevenueCenters[i], result.RevenueCenters[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.RevenueCenterID < b.RevenueCenterID
	})

	return result
}

func newDailySummary(date time.Time) *DailySummary {
	return &DailySummary{
		Date:           date,
		Gross:          decimal.Zero,
		Net:            decimal.Zero,
		Discounts:      decimal.Zero,
		Refunds:        decimal.Zero,
		Voids:          decimal.Zero,
		ServiceCharges: decimal.Zero,
		Deferred:       decimal.Zero,
		Tips:           decimal.Zero,
		Payments:       map[enums.PaymentType]decimal.Decimal{},
	}
}

func addToDay(day *DailySummary, rev revenue.OrderRevenue) {
	day.OrderCount++
	for _, check := range rev.Checks {
		day.CheckCount++
		day.Gross = day.Gross.Add(check.Amount)
		day.Deferred = day.Deferred.Add(check.Deferred)
		day.Refunds = day.Refunds.Add(check.Refunds)
		day.Discounts = day.Discounts.Add(check.Discounts)
		day.ServiceCharges = day.ServiceCharges.Add(check.ServiceCharges)
		day.Tips = day.Tips.Add(check.Tips)
		day.Categories = day.Categories.Add(check.Categories)
		for kind, amount := range check.Payments {
			day.Payments[kind] = day.Payments[kind].Add(amount)
		}
	}
	day.Net = day.Net.Add(rev.Net)
}

// excludedAmount is the gross of the order's voided or deleted checks.
func excludedAmount(order pos.Order) decimal.Decimal {
	total := decimal.Zero
	for _, check := range order.Checks {
		if order.Excluded() || check.Excluded() {
			total = total.Add(check.Amount)
		}
	}
	return total
}

func safeDiv(num decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return num.Div(decimal.NewFromInt(int64(count)))
}
