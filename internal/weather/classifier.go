// Package weather fetches, classifies and stores daily weather per location.
package weather

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tablesight/tablesight-backend/pkg/config"
	"github.com/tablesight/tablesight-backend/pkg/db/models"
	"github.com/tablesight/tablesight-backend/pkg/openmeteo"
)

const sourceOpenMeteo = "open-meteo"

// Thresholds are the condition-flag cut-offs in imperial units.
type Thresholds struct {
	RainyInches   float64
	HeatHighF     float64
	ColdHighF     float64
	SevereInches  float64
	SevereGustMPH float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		RainyInches:   0.1,
		HeatHighF:     90,
		ColdHighF:     35,
		SevereInches:  2,
		SevereGustMPH: 45,
	}
}

// ThresholdsFromConfig falls back to the default for every unset field.
func ThresholdsFromConfig(cfg config.WeatherConfig) Thresholds {
	t := DefaultThresholds()
	if cfg.RainyInches > 0 {
		t.RainyInches = cfg.RainyInches
	}
	if cfg.HeatHighF > 0 {
		t.HeatHighF = cfg.HeatHighF
	}
	if cfg.ColdHighF != 0 {
		t.ColdHighF = cfg.ColdHighF
	}
	if cfg.SevereInches > 0 {
		t.SevereInches = cfg.SevereInches
	}
	if cfg.SevereGustMPH > 0 {
		t.SevereGustMPH = cfg.SevereGustMPH
	}
	return t
}

// wmoDescriptions covers the WMO 4677 subset Open-Meteo reports.
var wmoDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snowfall",
	73: "Moderate snowfall",
	75: "Heavy snowfall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Describe returns the text for a WMO code.
func Describe(code *int) string {
	if code == nil {
		return "Unknown"
	}
	if desc, ok := wmoDescriptions[*code]; ok {
		return desc
	}
	return "Unknown"
}

// severeCode reports thunderstorms and heavy snow.
func severeCode(code *int) bool {
	if code == nil {
		return false
	}
	return *code >= 95 || *code == 75 || *code == 86
}

// Classifier derives condition flags from raw archive days.
type Classifier struct {
	thresholds Thresholds
}

func NewClassifier(t Thresholds) Classifier {
	return Classifier{thresholds: t}
}

// Classify maps one archive day onto a persisted observation.
func (c Classifier) Classify(locationID uuid.UUID, day openmeteo.Day) models.DailyWeatherObservation {
	precip := 0.0
	if day.PrecipitationIn != nil {
		precip = *day.PrecipitationIn
	}
	obs := models.DailyWeatherObservation{
		LocationID:      locationID,
		ObservedDate:    day.Date,
		TempHighF:       day.TempMaxF,
		TempLowF:        day.TempMinF,
		PrecipitationIn: precip,
		WindGustMPH:     day.WindGustMaxMPH,
		WeatherCode:     day.WeatherCode,
		Source:          sourceOpenMeteo,
	}

	t := c.thresholds
	obs.IsRainy = precip >= t.RainyInches
	if high := day.TempMaxF; high != nil {
		obs.IsExtremeHeat = *high >= t.HeatHighF
		obs.IsExtremeCold = *high <= t.ColdHighF
	}
	gusty := day.WindGustMaxMPH != nil && *day.WindGustMaxMPH >= t.SevereGustMPH
	obs.IsSevere = severeCode(day.WeatherCode) || precip >= t.SevereInches || gusty

	parts := []string{Describe(day.WeatherCode)}
	if precip >= t.SevereInches {
		parts = append(parts, fmt.Sprintf("%s in of precipitation", strconv.FormatFloat(precip, 'f', -1, 64)))
	}
	if gusty {
		parts = append(parts, fmt.Sprintf("gusts to %s mph", strconv.FormatFloat(*day.WindGustMaxMPH, 'f', 0, 64)))
	}
	obs.Description = strings.Join(parts, ", ")
	return obs
}
