package aggregation

import (
	"strings"
	"time"

	"github.com/tablesight/tablesight-backend/internal/pos"
	"github.com/tablesight/tablesight-backend/pkg/enums"
)

// DaypartResolver is one step of the daypart fallback chain. ok=false passes
// the order to the next step.
type DaypartResolver interface {
	Name() string
	Resolve(order pos.Order, lookups pos.Lookups, tz *time.Location) (enums.Daypart, bool)
}

// ResolverFunc adapts a function to DaypartResolver.
type ResolverFunc struct {
	Label string
	Fn    func(order pos.Order, lookups pos.Lookups, tz *time.Location) (enums.Daypart, bool)
}

func (r ResolverFunc) Name() string { return r.Label }

func (r ResolverFunc) Resolve(order pos.Order, lookups pos.Lookups, tz *time.Location) (enums.Daypart, bool) {
	return r.Fn(order, lookups, tz)
}

type nameRule struct {
	daypart  enums.Daypart
	keywords []string
}

// nameRules maps service-period and area names to dayparts, first match wins.
var nameRules = []nameRule{
	{enums.DaypartBrunch, []string{"brunch"}},
	{enums.DaypartBreakfast, []string{"breakfast"}},
	{enums.DaypartLunch, []string{"lunch"}},
	{enums.DaypartAfternoon, []string{"afternoon", "happy hour"}},
	{enums.DaypartDinner, []string{"dinner", "evening"}},
	{enums.DaypartLateNight, []string{"late", "night", "bar"}},
}

// DaypartFromName maps a free-form name onto a daypart.
func DaypartFromName(name string) (enums.Daypart, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return "", false
	}
	for _, rule := range nameRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.daypart, true
			}
		}
	}
	return "", false
}

// DaypartFromHour buckets a local hour of day.
func DaypartFromHour(hour int) enums.Daypart {
	switch {
	case hour >= 6 && hour <= 10:
		return enums.DaypartBreakfast
	case hour >= 11 && hour <= 14:
		return enums.DaypartLunch
	case hour >= 15 && hour <= 17:
		return enums.DaypartAfternoon
	case hour >= 18 && hour <= 21:
		return enums.DaypartDinner
	case hour >= 22 || (hour >= 0 && hour <= 5):
		return enums.DaypartLateNight
	default:
		return enums.DaypartDinner
	}
}

var (
	ServicePeriodLookup = ResolverFunc{Label: "service_period", Fn: func(o pos.Order, l pos.Lookups, _ *time.Location) (enums.Daypart, bool) {
		name, ok := l.ServicePeriodName(o.ServicePeriodID)
		if !ok {
			return "", false
		}
		return DaypartFromName(name)
	}}

	RevenueCenterLookup = ResolverFunc{Label: "revenue_center_lookup", Fn: func(o pos.Order, l pos.Lookups, _ *time.Location) (enums.Daypart, bool) {
		name, ok := l.RevenueCenterName(o.RevenueCenterID)
		if !ok {
			return "", false
		}
		return DaypartFromName(name)
	}}

	RevenueCenterLiteral = ResolverFunc{Label: "revenue_center_name", Fn: func(o pos.Order, _ pos.Lookups, _ *time.Location) (enums.Daypart, bool) {
		return DaypartFromName(o.RevenueCenterName)
	}}

	// OpenHour never declines; orders without an open time land in dinner.
	OpenHour = ResolverFunc{Label: "open_hour", Fn: func(o pos.Order, _ pos.Lookups, tz *time.Location) (enums.Daypart, bool) {
		if o.OpenedAt.IsZero() {
			return enums.DaypartDinner, true
		}
		if tz == nil {
			tz = time.UTC
		}
		return DaypartFromHour(o.OpenedAt.In(tz).Hour()), true
	}}
)

// DefaultDaypartChain is the priority-ordered fallback chain.
func DefaultDaypartChain() []DaypartResolver {
	return []DaypartResolver{ServicePeriodLookup, RevenueCenterLookup, RevenueCenterLiteral, OpenHour}
}

// ResolveDaypart runs the chain and returns the first answer. An exhausted
// chain yields dinner.
func ResolveDaypart(chain []DaypartResolver, order pos.Order, lookups pos.Lookups, tz *time.Location) enums.Daypart {
	for _, r := range chain {
		if dp, ok := r.Resolve(order, lookups, tz); ok {
			return dp
		}
	}
	return enums.DaypartDinner
}
