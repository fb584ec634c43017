package correlation

import "time"

// SalesDay is one location-day of net sales.
type SalesDay struct {
	Date     time.Time
	NetSales float64
}

// WeatherDay is one location-day of observed weather with its condition flags.
type WeatherDay struct {
	Date            time.Time
	TempHighF       *float64
	TempLowF        *float64
	PrecipitationIn float64
	Description     string
	Rainy           bool
	ExtremeHeat     bool
	ExtremeCold     bool
	Severe          bool
}

// Normal reports whether none of the condition flags are set.
func (w WeatherDay) Normal() bool {
	return !w.Rainy && !w.ExtremeHeat && !w.ExtremeCold && !w.Severe
}

// Cause names the weather condition an anomaly was attributed to.
type Cause string

const (
	CauseSevereWeather  Cause = "severe_weather"
	CauseRain           Cause = "rain"
	CauseExtremeHeat    Cause = "extreme_heat"
	CauseExtremeCold    Cause = "extreme_cold"
	CausePerfectWeather Cause = "perfect_weather"
)

// Report is the weather correlation output for one location and period.
// Percentages carry one decimal place and dollar figures are whole units.
type Report struct {
	PeriodStart       time.Time         `json:"periodStart"`
	PeriodEnd         time.Time         `json:"periodEnd"`
	TotalDaysAnalyzed int               `json:"totalDaysAnalyzed"`
	Baselines         []WeekdayBaseline `json:"weekdayBaselines"`
	Rain              RainImpact        `json:"rain"`
	Temperature       TemperatureImpact `json:"temperature"`
	SevereDays        []SevereDay       `json:"severeWeatherDays"`
	Anomalies         []Anomaly         `json:"weatherExplainedAnomalies"`
}

// WeekdayBaseline is the mean net sales of normal-weather days for a weekday.
type WeekdayBaseline struct {
	Weekday  time.Weekday `json:"weekday"`
	Name     string       `json:"name"`
	Expected float64      `json:"expectedSales"`
	Days     int          `json:"days"`
}

type RainImpact struct {
	RainyDays         int     `json:"rainyDays"`
	NormalDays        int     `json:"normalDays"`
	RainyAverage      float64 `json:"rainyDayAverage"`
	NormalAverage     float64 `json:"normalDayAverage"`
	RawImpactPct      float64 `json:"rawImpactPct"`
	AdjustedImpactPct float64 `json:"adjustedImpactPct"`
	EstimatedLoss     float64 `json:"estimatedLoss"`
}

type TemperatureImpact struct {
	Buckets   []TemperatureBucket `json:"buckets"`
	SweetSpot *TemperatureBucket  `json:"sweetSpot,omitempty"`
	Heat      ExtremeImpact       `json:"extremeHeat"`
	Cold      ExtremeImpact       `json:"extremeCold"`
}

// TemperatureBucket is a fixed daily-high range. MinF is inclusive, MaxF
// exclusive; nil bounds are open.
type TemperatureBucket struct {
	Label        string   `json:"label"`
	MinF         *float64 `json:"minF,omitempty"`
	MaxF         *float64 `json:"maxF,omitempty"`
	Days         int      `json:"days"`
	AverageSales float64  `json:"averageSales"`
}

type ExtremeImpact struct {
	Days              int     `json:"days"`
	AverageSales      float64 `json:"averageSales"`
	RawImpactPct      float64 `json:"rawImpactPct"`
	AdjustedImpactPct float64 `json:"adjustedImpactPct"`
}

type SevereDay struct {
	Date         time.Time `json:"date"`
	Description  string    `json:"description"`
	Actual       float64   `json:"actualSales"`
	Expected     float64   `json:"expectedSales"`
	DeviationPct float64   `json:"deviationPct"`
}

type Anomaly struct {
	Date         time.Time `json:"date"`
	Actual       float64   `json:"actualSales"`
	Expected     float64   `json:"expectedSales"`
	DeviationPct float64   `json:"deviationPct"`
	Cause        Cause     `json:"cause"`
	Explanation  string    `json:"explanation"`
}
