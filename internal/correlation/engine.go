// Package correlation measures how weather moves a location's daily sales.
// Analyze is pure; Service loads persisted facts and observations for it.
package correlation

import (
	"math"
	"sort"
	"time"
)

const (
	DefaultAnomalyThresholdPct = 20.0
	DefaultMaxAnomalies        = 10
	DefaultPerfectLowF         = 70.0
	DefaultPerfectHighF        = 85.0

	// thresholdEpsilon absorbs float error so a deviation of exactly the
	// threshold is included.
	thresholdEpsilon = 1e-9
)

// Options tunes one analysis. Zero values take the defaults.
type Options struct {
	// From and To are reported as the period bounds. When zero the bounds
	// come from the first and last analyzed day.
	From time.Time
	To   time.Time

	AnomalyThresholdPct float64
	MaxAnomalies        int
	PerfectLowF         float64
	PerfectHighF        float64
}

func (o Options) withDefaults() Options {
	if o.AnomalyThresholdPct <= 0 {
		o.AnomalyThresholdPct = DefaultAnomalyThresholdPct
	}
	if o.MaxAnomalies <= 0 {
		o.MaxAnomalies = DefaultMaxAnomalies
	}
	if o.PerfectLowF == 0 && o.PerfectHighF == 0 {
		o.PerfectLowF = DefaultPerfectLowF
		o.PerfectHighF = DefaultPerfectHighF
	}
	return o
}

type day struct {
	date     time.Time
	sales    float64
	weather  WeatherDay
	expected float64
}

// deviation is the percentage distance from the weekday baseline. ok is false
// when the weekday has no baseline.
func (d day) deviation() (float64, bool) {
	if d.expected == 0 {
		return 0, false
	}
	return (d.sales - d.expected) * 100 / d.expected, true
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

// Analyze joins sales and weather on date and computes the report. Days
// missing from either side are ignored. Empty input gives an empty report
// with zero counts and empty lists.
func Analyze(sales []SalesDay, weather []WeatherDay, opts Options) Report {
	opts = opts.withDefaults()
	days := join(sales, weather)

	report := Report{
		PeriodStart:       opts.From,
		PeriodEnd:         opts.To,
		TotalDaysAnalyzed: len(days),
		Baselines:         []WeekdayBaseline{},
		Temperature:       TemperatureImpact{Buckets: []TemperatureBucket{}},
		SevereDays:        []SevereDay{},
		Anomalies:         []Anomaly{},
	}
	if len(days) == 0 {
		return report
	}
	if report.PeriodStart.IsZero() {
		report.PeriodStart = days[0].date
	}
	if report.PeriodEnd.IsZero() {
		report.PeriodEnd = days[len(days)-1].date
	}

	baselines := weekdayBaselines(days)
	for i := range days {
		days[i].expected = baselines[days[i].date.Weekday()].value()
	}
	for wd, m := range baselines {
		if m.n == 0 {
			continue
		}
		report.Baselines = append(report.Baselines, WeekdayBaseline{
			Weekday:  time.Weekday(wd),
			Name:     time.Weekday(wd).String(),
			Expected: dollars(m.value()),
			Days:     m.n,
		})
	}

	report.Rain = rainImpact(days)
	report.Temperature = temperatureImpact(days)
	report.SevereDays = severeDays(days)
	report.Anomalies = detectAnomalies(days, opts)
	return report
}

func join(sales []SalesDay, weather []WeatherDay) []day {
	byDate := make(map[time.Time]WeatherDay, len(weather))
	for _, w := range weather {
		byDate[dateKey(w.Date)] = w
	}

	totals := map[time.Time]float64{}
	for _, s := range sales {
		key := dateKey(s.Date)
		if _, ok := byDate[key]; !ok {
			continue
		}
		totals[key] += s.NetSales
	}

	days := make([]day, 0, len(totals))
	for date, total := range totals {
		days = append(days, day{date: date, sales: total, weather: byDate[date]})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].date.Before(days[j].date) })
	return days
}

func dateKey(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weekdayBaselines averages normal-weather days per weekday (0=Sunday).
func weekdayBaselines(days []day) [7]mean {
	var out [7]mean
	for _, d := range days {
		if d.weather.Normal() {
			out[d.date.Weekday()].add(d.sales)
		}
	}
	return out
}

// adjustedImpact is the mean of each day's deviation from its own weekday
// baseline. Days without a baseline are left out.
func adjustedImpact(days []day, include func(day) bool) float64 {
	var m mean
	for _, d := range days {
		if !include(d) {
			continue
		}
		if dev, ok := d.deviation(); ok {
			m.add(dev)
		}
	}
	return m.value()
}

func rainImpact(days []day) RainImpact {
	var rainy, normal mean
	loss := 0.0
	for _, d := range days {
		switch {
		case d.weather.Rainy:
			rainy.add(d.sales)
			if d.expected > d.sales {
				loss += d.expected - d.sales
			}
		case d.weather.Normal():
			normal.add(d.sales)
		}
	}

	return RainImpact{
		RainyDays:         rainy.n,
		NormalDays:        normal.n,
		RainyAverage:      dollars(rainy.value()),
		NormalAverage:     dollars(normal.value()),
		RawImpactPct:      pct1(rawImpact(rainy, normal)),
		AdjustedImpactPct: pct1(adjustedImpact(days, func(d day) bool { return d.weather.Rainy })),
		EstimatedLoss:     dollars(loss),
	}
}

func rawImpact(subset, reference mean) float64 {
	if subset.n == 0 || reference.n == 0 || reference.value() == 0 {
		return 0
	}
	return (subset.value() - reference.value()) * 100 / reference.value()
}

func severeDays(days []day) []SevereDay {
	out := []SevereDay{}
	for _, d := range days {
		if !d.weather.Severe {
			continue
		}
		dev, _ := d.deviation()
		out = append(out, SevereDay{
			Date:         d.date,
			Description:  d.weather.Description,
			Actual:       dollars(d.sales),
			Expected:     dollars(d.expected),
			DeviationPct: pct1(dev),
		})
	}
	return out
}

type found struct {
	day       day
	deviation float64
	cause     Cause
	text      string
}

func detectAnomalies(days []day, opts Options) []Anomaly {
	var hits []found
	for _, d := range days {
		dev, ok := d.deviation()
		if !ok || math.Abs(dev) < opts.AnomalyThresholdPct-thresholdEpsilon {
			continue
		}
		cause, text, ok := explain(d, dev, opts)
		if !ok {
			continue
		}
		hits = append(hits, found{day: d, deviation: dev, cause: cause, text: text})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		ai, aj := math.Abs(hits[i].deviation), math.Abs(hits[j].deviation)
		if ai != aj {
			return ai > aj
		}
		return hits[i].day.date.Before(hits[j].day.date)
	})
	if len(hits) > opts.MaxAnomalies {
		hits = hits[:opts.MaxAnomalies]
	}

	out := make([]Anomaly, 0, len(hits))
	for _, h := range hits {
		out = append(out, Anomaly{
			Date:         h.day.date,
			Actual:       dollars(h.day.sales),
			Expected:     dollars(h.day.expected),
			DeviationPct: pct1(h.deviation),
			Cause:        h.cause,
			Explanation:  h.text,
		})
	}
	return out
}

func pct1(v float64) float64 {
	return clean(math.Round(v*10) / 10)
}

func dollars(v float64) float64 {
	return clean(math.Round(v))
}

// clean maps NaN, Inf and negative zero to zero.
func clean(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
		return 0
	}
	return v
}
