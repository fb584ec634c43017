// Package ingest adapts POS vendor payloads into normalized pos records.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/tablesight/tablesight-backend/internal/pos"
	"github.com/tablesight/tablesight-backend/pkg/db/models"
	"github.com/tablesight/tablesight-backend/pkg/enums"
	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
)

// LookupTables are the POS configuration tables keyed by kind, then external id.
type LookupTables map[enums.LookupKind]map[string]string

// Source pulls orders and configuration for one POS provider.
type Source interface {
	Provider() enums.POSProvider
	// FetchOrders returns every order whose business date falls in [from, to].
	FetchOrders(ctx context.Context, loc models.Location, from, to time.Time) ([]pos.Order, error)
	FetchLookups(ctx context.Context, loc models.Location) (LookupTables, error)
}

// Registry resolves the Source for a location's provider.
type Registry struct {
	sources map[enums.POSProvider]Source
}

func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: map[enums.POSProvider]Source{}}
	for _, s := range sources {
		if s != nil {
			r.sources[s.Provider()] = s
		}
	}
	return r
}

// For returns the Source registered for provider.
func (r *Registry) For(provider enums.POSProvider) (Source, error) {
	if r != nil {
		if s, ok := r.sources[provider]; ok {
			return s, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no POS source configured for provider %q", provider))
}

// businessDates lists every calendar day in [from, to].
func businessDates(from, to time.Time) []time.Time {
	from = pos.BusinessDay(from, nil)
	to = pos.BusinessDay(to, nil)
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func inRange(date, from, to time.Time) bool {
	return !date.Before(pos.BusinessDay(from, nil)) && !date.After(pos.BusinessDay(to, nil))
}
