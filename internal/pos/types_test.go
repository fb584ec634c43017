package pos

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBusinessDayUsesLocationCalendar(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 02:30 UTC on the 2nd is still the evening of the 1st in New York.
	ts := time.Date(2024, 3, 2, 2, 30, 0, 0, time.UTC)
	got := BusinessDay(ts, ny)
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if !BusinessDay(time.Time{}, ny).IsZero() {
		t.Fatal("zero timestamps stay zero")
	}
}

func TestParseBusinessDate(t *testing.T) {
	for _, raw := range []string{"20240115", "2024-01-15"} {
		got, ok := ParseBusinessDate(raw)
		if !ok {
			t.Fatalf("expected %q to parse", raw)
		}
		if !got.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected date for %q: %v", raw, got)
		}
	}
	if _, ok := ParseBusinessDate("15/01/2024"); ok {
		t.Fatal("expected unsupported layout to fail")
	}
}

func TestLookupsIgnoreEmptyEntries(t *testing.T) {
	l := Lookups{Categories: map[string]string{"c1": "Draft Beer", "c2": ""}}
	if name, ok := l.CategoryName("c1"); !ok || name != "Draft Beer" {
		t.Fatalf("expected Draft Beer, got %q %v", name, ok)
	}
	if _, ok := l.CategoryName("c2"); ok {
		t.Fatal("empty names should not resolve")
	}
	if _, ok := l.RevenueCenterName("missing"); ok {
		t.Fatal("nil tables should not resolve")
	}
}

func TestSelectionHelpers(t *testing.T) {
	s := Selection{Price: decimal.RequireFromString("12.50"), Quantity: decimal.NewFromInt(2)}
	if !s.GrossAmount().Equal(decimal.RequireFromString("25")) {
		t.Fatalf("unexpected gross %s", s.GrossAmount())
	}
	if s.HasCategory() {
		t.Fatal("selection without references has no category")
	}
	s.CategoryName = "Gift Card"
	if !s.HasCategory() {
		t.Fatal("a category name counts as a reference")
	}
}
