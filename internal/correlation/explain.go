package correlation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// explainer is one step of the anomaly explanation chain.
type explainer struct {
	cause   Cause
	matches func(d day, deviation float64, opts Options) bool
	explain func(d day) string
}

// explainers run in priority order; the first match explains the anomaly.
var explainers = []explainer{
	{
		cause:   CauseSevereWeather,
		matches: func(d day, _ float64, _ Options) bool { return d.weather.Severe },
		explain: func(d day) string {
			desc := strings.TrimSpace(d.weather.Description)
			if desc == "" {
				desc = "severe conditions"
			}
			return "Severe weather: " + desc
		},
	},
	{
		cause:   CauseRain,
		matches: func(d day, dev float64, _ Options) bool { return d.weather.Rainy && dev < 0 },
		explain: func(d day) string {
			return fmt.Sprintf("Rain with %s inches of precipitation", formatInches(d.weather.PrecipitationIn))
		},
	},
	{
		cause:   CauseExtremeHeat,
		matches: func(d day, dev float64, _ Options) bool { return d.weather.ExtremeHeat && dev < 0 },
		explain: func(d day) string {
			if d.weather.TempHighF == nil {
				return "Extreme heat"
			}
			return fmt.Sprintf("Extreme heat with a high of %s°F", formatNumber(*d.weather.TempHighF))
		},
	},
	{
		cause:   CauseExtremeCold,
		matches: func(d day, _ float64, _ Options) bool { return d.weather.ExtremeCold },
		explain: func(d day) string {
			switch {
			case d.weather.TempLowF != nil:
				return fmt.Sprintf("Extreme cold with a low of %s°F", formatNumber(*d.weather.TempLowF))
			case d.weather.TempHighF != nil:
				return fmt.Sprintf("Extreme cold with a high of only %s°F", formatNumber(*d.weather.TempHighF))
			}
			return "Extreme cold"
		},
	},
	{
		cause: CausePerfectWeather,
		matches: func(d day, dev float64, opts Options) bool {
			high := d.weather.TempHighF
			return high != nil && dev > 0 && *high >= opts.PerfectLowF && *high <= opts.PerfectHighF
		},
		explain: func(d day) string {
			return fmt.Sprintf("Perfect weather with a high of %s°F", formatNumber(*d.weather.TempHighF))
		},
	},
}

func explain(d day, deviation float64, opts Options) (Cause, string, bool) {
	for _, e := range explainers {
		if e.matches(d, deviation, opts) {
			return e.cause, e.explain(d), true
		}
	}
	return "", "", false
}

func formatInches(v float64) string {
	return strconv.FormatFloat(clean(math.Round(v*100)/100), 'f', -1, 64)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(clean(math.Round(v*10)/10), 'f', -1, 64)
}
