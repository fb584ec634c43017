package correlation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleReport() Report {
	var f fixture
	f.add(mon1, 1000, WeatherDay{TempHighF: temp(75)})
	f.add(mon2, 1200, WeatherDay{TempHighF: temp(77)})
	f.add(mon3, 600, WeatherDay{TempHighF: temp(64), PrecipitationIn: 1.2, Rainy: true})
	return Analyze(f.sales, f.weather, Options{})
}

func TestFormatPromptContext(t *testing.T) {
	out := FormatPromptContext(sampleReport(), 0)

	assert.Contains(t, out, "2024-06-03 to 2024-06-17, 3 days analyzed")
	assert.Contains(t, out, "Rain: -45.5%")
	assert.Contains(t, out, "estimated loss $500")
	assert.Contains(t, out, "Extreme heat: 0.0%")
	assert.Contains(t, out, "Best sales temperature: 70-79°F")
	assert.Contains(t, out, "Severe weather days: 0.")
	assert.Contains(t, out, "- 2024-06-17: -45.5% (Rain with 1.2 inches of precipitation)")
}

func TestFormatPromptContext_RespectsLimit(t *testing.T) {
	report := sampleReport()
	full := FormatPromptContext(report, 0)

	withoutAnomalies := FormatPromptContext(report, strings.Index(full, "\nWeather-explained"))
	assert.NotContains(t, withoutAnomalies, "Weather-explained")
	assert.Contains(t, withoutAnomalies, "Severe weather days")

	tiny := FormatPromptContext(report, 20)
	assert.LessOrEqual(t, len(tiny), 20)
}

func TestFormatPromptContext_EmptyReport(t *testing.T) {
	out := FormatPromptContext(Analyze(nil, nil, Options{}), 0)
	assert.Contains(t, out, "0 days analyzed")
	assert.Contains(t, out, "not enough data")
	assert.NotContains(t, out, "anomalies")
}
