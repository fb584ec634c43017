package enums

import (
	"fmt"
	"strings"
)

// PaymentType is the tender bucket used by the daily transaction summary.
type PaymentType string

const (
	PaymentTypeCash     PaymentType = "cash"
	PaymentTypeCard     PaymentType = "card"
	PaymentTypeGiftCard PaymentType = "gift_card"
	PaymentTypeOther    PaymentType = "other"
)

var validPaymentTypes = []PaymentType{
	PaymentTypeCash,
	PaymentTypeCard,
	PaymentTypeGiftCard,
	PaymentTypeOther,
}

// String implements fmt.Stringer.
func (p PaymentType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentType.
func (p PaymentType) IsValid() bool {
	for _, candidate := range validPaymentTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentType converts raw input into a PaymentType.
func ParsePaymentType(value string) (PaymentType, error) {
	for _, candidate := range validPaymentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment type %q", value)
}

// NormalizePaymentType maps vendor tender tags onto the four summary buckets.
// Unknown tags land in PaymentTypeOther.
func NormalizePaymentType(tag string) PaymentType {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case "CASH":
		return PaymentTypeCash
	case "CREDIT", "DEBIT", "CARD", "CREDIT_CARD", "DEBIT_CARD", "WALLET", "SQUARE_GIFT_CARD_ON_FILE":
		return PaymentTypeCard
	case "GIFTCARD", "GIFT_CARD", "SQUARE_GIFT_CARD", "REWARDCARD":
		return PaymentTypeGiftCard
	default:
		return PaymentTypeOther
	}
}
