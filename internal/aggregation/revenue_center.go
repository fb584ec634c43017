package aggregation

import (
	"regexp"
	"strings"

	"github.com/tablesight/tablesight-backend/internal/pos"
)

var outdoorPattern = regexp.MustCompile(`(?i)terrace|patio|outdoor|garden|deck|rooftop`)

// IsOutdoor reports whether a revenue center name describes an outdoor area.
func IsOutdoor(name string) bool {
	return outdoorPattern.MatchString(name)
}

// RevenueCenterName resolves the display name: lookup table, then the literal
// name on the order, then the id itself.
func RevenueCenterName(order pos.Order, lookups pos.Lookups) string {
	if name, ok := lookups.RevenueCenterName(order.RevenueCenterID); ok {
		return name
	}
	if name := strings.TrimSpace(order.RevenueCenterName); name != "" {
		return name
	}
	return order.RevenueCenterID
}
