package aggregation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tablesight/tablesight-backend/internal/pos"
	"github.com/tablesight/tablesight-backend/pkg/enums"
)

func TestDaypartFromHour(t *testing.T) {
	want := map[int]enums.Daypart{
		0: enums.DaypartLateNight, 5: enums.DaypartLateNight,
		6: enums.DaypartBreakfast, 10: enums.DaypartBreakfast,
		11: enums.DaypartLunch, 14: enums.DaypartLunch,
		15: enums.DaypartAfternoon, 17: enums.DaypartAfternoon,
		18: enums.DaypartDinner, 21: enums.DaypartDinner,
		22: enums.DaypartLateNight, 23: enums.DaypartLateNight,
	}
	for hour, dp := range want {
		assert.Equal(t, dp, DaypartFromHour(hour), "hour %d", hour)
	}
	assert.Equal(t, enums.DaypartDinner, DaypartFromHour(-1), "out of range hours default to dinner")
}

func TestDaypartFromName(t *testing.T) {
	cases := map[string]enums.Daypart{
		"Sunday Brunch":     enums.DaypartBrunch,
		"Breakfast Service": enums.DaypartBreakfast,
		"LUNCH":             enums.DaypartLunch,
		"Happy Hour":        enums.DaypartAfternoon,
		"Evening":           enums.DaypartDinner,
		"Late Night":        enums.DaypartLateNight,
		"Main Bar":          enums.DaypartLateNight,
	}
	for name, want := range cases {
		got, ok := DaypartFromName(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	_, ok := DaypartFromName("Main Dining Room")
	assert.False(t, ok)
}

func TestResolveDaypartPriority(t *testing.T) {
	chain := DefaultDaypartChain()
	lookups := pos.Lookups{
		ServicePeriods: map[string]string{"sp-brunch": "Weekend Brunch", "sp-odd": "Service A"},
		RevenueCenters: map[string]string{"rc-bar": "Upstairs Bar", "rc-main": "Main Dining"},
	}
	noon := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		order pos.Order
		want  enums.Daypart
	}{
		{"service period wins", pos.Order{ServicePeriodID: "sp-brunch", RevenueCenterID: "rc-bar", OpenedAt: noon}, enums.DaypartBrunch},
		{"unmatched period falls to revenue center", pos.Order{ServicePeriodID: "sp-odd", RevenueCenterID: "rc-bar", OpenedAt: noon}, enums.DaypartLateNight},
		{"literal name when lookup misses", pos.Order{RevenueCenterID: "rc-x", RevenueCenterName: "Lunch Counter", OpenedAt: noon}, enums.DaypartLunch},
		{"unmatched center falls to hour", pos.Order{RevenueCenterID: "rc-main", OpenedAt: noon}, enums.DaypartLunch},
		{"no open time defaults to dinner", pos.Order{}, enums.DaypartDinner},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveDaypart(chain, tc.order, lookups, time.UTC), tc.name)
	}
	assert.Equal(t, enums.DaypartDinner, ResolveDaypart(nil, pos.Order{}, lookups, nil), "empty chain defaults to dinner")
}

func TestOpenHourUsesLocationZone(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 02:00 UTC is 19:00 the previous evening in Los Angeles (PDT).
	order := pos.Order{OpenedAt: time.Date(2024, 6, 4, 2, 0, 0, 0, time.UTC)}
	got, _ := OpenHour.Resolve(order, pos.Lookups{}, la)
	assert.Equal(t, enums.DaypartDinner, got)
	got, _ = OpenHour.Resolve(order, pos.Lookups{}, nil)
	assert.Equal(t, enums.DaypartLateNight, got)
}

func TestIsOutdoor(t *testing.T) {
	assert.True(t, IsOutdoor("Outdoor Terrace"))
	assert.False(t, IsOutdoor("Main Dining Room"))
	assert.True(t, IsOutdoor("Patio Bar"))
	assert.True(t, IsOutdoor("ROOFTOP"))
}
