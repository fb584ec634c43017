package correlation

type bucketDef struct {
	label string
	min   *float64
	max   *float64
}

func bound(v float64) *float64 { return &v }

// temperatureBuckets are the fixed daily-high ranges in ascending order.
var temperatureBuckets = []bucketDef{
	{label: "below 50°F", max: bound(50)},
	{label: "50-59°F", min: bound(50), max: bound(60)},
	{label: "60-69°F", min: bound(60), max: bound(70)},
	{label: "70-79°F", min: bound(70), max: bound(80)},
	{label: "80-89°F", min: bound(80), max: bound(90)},
	{label: "90°F and above", min: bound(90)},
}

func bucketIndex(highF float64) int {
	for i, b := range temperatureBuckets {
		if b.max == nil || highF < *b.max {
			return i
		}
	}
	return len(temperatureBuckets) - 1
}

func temperatureImpact(days []day) TemperatureImpact {
	stats := make([]mean, len(temperatureBuckets))
	var tagged, heat, cold mean
	for _, d := range days {
		if d.weather.TempHighF != nil {
			high := *d.weather.TempHighF
			stats[bucketIndex(high)].add(d.sales)
			tagged.add(d.sales)
		}
		if d.weather.ExtremeHeat {
			heat.add(d.sales)
		}
		if d.weather.ExtremeCold {
			cold.add(d.sales)
		}
	}

	out := TemperatureImpact{Buckets: []TemperatureBucket{}}
	best := -1
	for i, def := range temperatureBuckets {
		if stats[i].n == 0 {
			continue
		}
		out.Buckets = append(out.Buckets, TemperatureBucket{
			Label:        def.label,
			MinF:         def.min,
			MaxF:         def.max,
			Days:         stats[i].n,
			AverageSales: dollars(stats[i].value()),
		})
		// Strictly greater keeps the first (coolest) bucket on ties.
		if best < 0 || stats[i].value() > stats[best].value() {
			best = i
		}
	}
	if best >= 0 {
		def := temperatureBuckets[best]
		out.SweetSpot = &TemperatureBucket{
			Label:        def.label,
			MinF:         def.min,
			MaxF:         def.max,
			Days:         stats[best].n,
			AverageSales: dollars(stats[best].value()),
		}
	}

	out.Heat = extremeImpact(days, heat, tagged, func(d day) bool { return d.weather.ExtremeHeat })
	out.Cold = extremeImpact(days, cold, tagged, func(d day) bool { return d.weather.ExtremeCold })
	return out
}

func extremeImpact(days []day, subset, tagged mean, include func(day) bool) ExtremeImpact {
	return ExtremeImpact{
		Days:              subset.n,
		AverageSales:      dollars(subset.value()),
		RawImpactPct:      pct1(rawImpact(subset, tagged)),
		AdjustedImpactPct: pct1(adjustedImpact(days, include)),
	}
}
