package correlation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultPromptMaxChars bounds FormatPromptContext when no limit is given.
const DefaultPromptMaxChars = 1500

const dateLayout = "2006-01-02"

// FormatPromptContext renders the report as a plain-text block of at most
// maxLen bytes. The summary lines always come first; anomalies are appended
// in rank order while they fit.
func FormatPromptContext(r Report, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultPromptMaxChars
	}

	lines := []string{
		fmt.Sprintf("Weather correlation %s to %s, %d days analyzed.", formatDate(r.PeriodStart), formatDate(r.PeriodEnd), r.TotalDaysAnalyzed),
		fmt.Sprintf("Rain: %s%% vs weekday baseline over %d rainy days, estimated loss $%s.",
			signedPct(r.Rain.AdjustedImpactPct), r.Rain.RainyDays, formatDollars(r.Rain.EstimatedLoss)),
		fmt.Sprintf("Extreme heat: %s%% vs weekday baseline over %d days.", signedPct(r.Temperature.Heat.AdjustedImpactPct), r.Temperature.Heat.Days),
		fmt.Sprintf("Extreme cold: %s%% vs weekday baseline over %d days.", signedPct(r.Temperature.Cold.AdjustedImpactPct), r.Temperature.Cold.Days),
	}
	if spot := r.Temperature.SweetSpot; spot != nil {
		lines = append(lines, fmt.Sprintf("Best sales temperature: %s (avg $%s).", spot.Label, formatDollars(spot.AverageSales)))
	} else {
		lines = append(lines, "Best sales temperature: not enough data.")
	}
	lines = append(lines, fmt.Sprintf("Severe weather days: %d.", len(r.SevereDays)))

	summary := strings.Join(lines, "\n")
	if len(summary) >= maxLen || len(r.Anomalies) == 0 {
		return truncate(summary, maxLen)
	}

	var b strings.Builder
	b.WriteString(summary)
	if !appendLine(&b, "Weather-explained anomalies:", maxLen) {
		return b.String()
	}
	for _, a := range r.Anomalies {
		line := fmt.Sprintf("- %s: %s%% (%s)", formatDate(a.Date), signedPct(a.DeviationPct), a.Explanation)
		if !appendLine(&b, line, maxLen) {
			break
		}
	}
	return b.String()
}

func appendLine(b *strings.Builder, line string, maxLen int) bool {
	extra := len(line)
	if b.Len() > 0 {
		extra++
	}
	if b.Len()+extra > maxLen {
		return false
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(line)
	return true
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	// Back off to a rune boundary.
	for cut > 0 && (s[cut]&0xC0) == 0x80 {
		cut--
	}
	return s[:cut]
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func signedPct(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	if v > 0 {
		return "+" + s
	}
	return s
}

func formatDollars(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}
