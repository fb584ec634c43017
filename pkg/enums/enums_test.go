package enums

import "testing"

func TestParseDaypart(t *testing.T) {
	got, err := ParseDaypart("late_night")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != DaypartLateNight {
		t.Fatalf("expected late_night, got %s", got)
	}
	if _, err := ParseDaypart("midnight snack"); err == nil {
		t.Fatal("expected error for unknown daypart")
	}
}

func TestDaypartRankIsChronological(t *testing.T) {
	all := AllDayparts()
	for i := 1; i < len(all); i++ {
		if all[i-1].Rank() >= all[i].Rank() {
			t.Fatalf("expected %s to rank before %s", all[i-1], all[i])
		}
	}
	if Daypart("bogus").Rank() != len(all) {
		t.Fatalf("unknown dayparts should rank last")
	}
}

func TestNormalizePaymentType(t *testing.T) {
	cases := map[string]PaymentType{
		"CASH":          PaymentTypeCash,
		"credit":        PaymentTypeCard,
		" GIFTCARD":     PaymentTypeGiftCard,
		"HOUSE_ACCOUNT": PaymentTypeOther,
		"":              PaymentTypeOther,
	}
	for in, want := range cases {
		if got := NormalizePaymentType(in); got != want {
			t.Fatalf("NormalizePaymentType(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseRefundStatus(t *testing.T) {
	got, err := ParseRefundStatus("partial")
	if err != nil || got != RefundStatusPartial {
		t.Fatalf("expected PARTIAL, got %s (%v)", got, err)
	}
	if !got.Refunded() {
		t.Fatal("expected PARTIAL to count as refunded")
	}
	none, err := ParseRefundStatus("")
	if err != nil || none != RefundStatusNone || none.Refunded() {
		t.Fatalf("expected empty status to map to NONE, got %s (%v)", none, err)
	}
	if _, err := ParseRefundStatus("maybe"); err == nil {
		t.Fatal("expected error for unknown refund status")
	}
}

func TestParsePOSProvider(t *testing.T) {
	got, err := ParsePOSProvider(" Toast ")
	if err != nil || got != POSProviderToast {
		t.Fatalf("expected toast, got %s (%v)", got, err)
	}
	if _, err := ParsePOSProvider("clover"); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}
