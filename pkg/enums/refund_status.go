package enums

import (
	"fmt"
	"strings"
)

// RefundStatus mirrors the refund state reported on a POS payment.
type RefundStatus string

const (
	RefundStatusNone    RefundStatus = "NONE"
	RefundStatusPartial RefundStatus = "PARTIAL"
	RefundStatusFull    RefundStatus = "FULL"
)

var validRefundStatuses = []RefundStatus{
	RefundStatusNone,
	RefundStatusPartial,
	RefundStatusFull,
}

// String implements fmt.Stringer.
func (r RefundStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RefundStatus.
func (r RefundStatus) IsValid() bool {
	for _, candidate := range validRefundStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// Refunded reports whether the status indicates money went back to the guest.
func (r RefundStatus) Refunded() bool {
	return r == RefundStatusPartial || r == RefundStatusFull
}

// ParseRefundStatus converts raw input into a RefundStatus. Matching is case-insensitive
// and an empty value maps to RefundStatusNone.
func ParseRefundStatus(value string) (RefundStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	if normalized == "" {
		return RefundStatusNone, nil
	}
	for _, candidate := range validRefundStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund status %q", value)
}
