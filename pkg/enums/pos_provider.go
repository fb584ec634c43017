package enums

import (
	"fmt"
	"strings"
)

// POSProvider identifies the point-of-sale system a location syncs from.
type POSProvider string

const (
	POSProviderToast  POSProvider = "toast"
	POSProviderSquare POSProvider = "square"
)

var validPOSProviders = []POSProvider{
	POSProviderToast,
	POSProviderSquare,
}

// String implements fmt.Stringer.
func (p POSProvider) String() string {
	return string(p)
}

// IsValid reports whether the value is a known POSProvider.
func (p POSProvider) IsValid() bool {
	for _, candidate := range validPOSProviders {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePOSProvider converts raw input into a POSProvider.
func ParsePOSProvider(value string) (POSProvider, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPOSProviders {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pos provider %q", value)
}
