package validators

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
)

// ParseDate parses a YYYY-MM-DD value into a UTC-midnight date. Empty input
// yields the zero time.
func ParseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	value, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a YYYY-MM-DD date").WithDetails(map[string]any{"field": field, "value": raw})
	}
	return value, nil
}

// DateRange validates a from/to pair. When required is false either bound may
// be empty and comes back zero.
func DateRange(fromRaw, toRaw string, required bool) (time.Time, time.Time, error) {
	from, err := ParseDate("from", fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := ParseDate("to", toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if required {
		missing := []string{}
		if from.IsZero() {
			missing = append(missing, "from")
		}
		if to.IsZero() {
			missing = append(missing, "to")
		}
		if len(missing) > 0 {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "date range is required").WithDetails(map[string]any{"missing": missing})
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to").WithDetails(map[string]any{"from": fromRaw, "to": toRaw})
	}
	return from, to, nil
}

// ParseQueryDateRange reads the from/to query parameters.
func ParseQueryDateRange(r *http.Request, required bool) (time.Time, time.Time, error) {
	q := r.URL.Query()
	return DateRange(q.Get("from"), q.Get("to"), required)
}

// ParseUUIDParam reads a chi URL parameter as a UUID.
func ParseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" must be a UUID").WithDetails(map[string]any{"field": name})
	}
	return id, nil
}
