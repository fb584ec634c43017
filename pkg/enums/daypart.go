package enums

import "fmt"

// Daypart is the service-period bucket a sale is attributed to.
type Daypart string

const (
	DaypartBreakfast Daypart = "breakfast"
	DaypartBrunch    Daypart = "brunch"
	DaypartLunch     Daypart = "lunch"
	DaypartAfternoon Daypart = "afternoon"
	DaypartDinner    Daypart = "dinner"
	DaypartLateNight Daypart = "late_night"
)

var validDayparts = []Daypart{
	DaypartBreakfast,
	DaypartBrunch,
	DaypartLunch,
	DaypartAfternoon,
	DaypartDinner,
	DaypartLateNight,
}

// AllDayparts returns the dayparts in chronological order.
func AllDayparts() []Daypart {
	out := make([]Daypart, len(validDayparts))
	copy(out, validDayparts)
	return out
}

// String implements fmt.Stringer.
func (d Daypart) String() string {
	return string(d)
}

// IsValid reports whether the value is a known Daypart.
func (d Daypart) IsValid() bool {
	for _, candidate := range validDayparts {
		if candidate == d {
			return true
		}
	}
	return false
}

// Rank orders dayparts chronologically; unknown values sort last.
func (d Daypart) Rank() int {
	for i, candidate := range validDayparts {
		if candidate == d {
			return i
		}
	}
	return len(validDayparts)
}

// ParseDaypart converts raw input into a Daypart.
func ParseDaypart(value string) (Daypart, error) {
	for _, candidate := range validDayparts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid daypart %q", value)
}
