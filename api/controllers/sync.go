package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tablesight/tablesight-backend/api/responses"
	"github.com/tablesight/tablesight-backend/api/validators"
	"github.com/tablesight/tablesight-backend/internal/possync"
	"github.com/tablesight/tablesight-backend/pkg/db/models"
	pkgerrors "github.com/tablesight/tablesight-backend/pkg/errors"
	"github.com/tablesight/tablesight-backend/pkg/logger"
	"github.com/tablesight/tablesight-backend/pkg/pagination"
)

// SyncRunner rebuilds facts for a location and date range.
type SyncRunner interface {
	Sync(ctx context.Context, req possync.Request) (*possync.Result, error)
}

// WeatherRefresher reloads archive observations for a location.
type WeatherRefresher interface {
	Refresh(ctx context.Context, locationID uuid.UUID, from, to time.Time) (int, error)
}

// SyncRunLister pages through recorded sync runs.
type SyncRunLister interface {
	List(ctx context.Context, locationID uuid.UUID, params pagination.Params) (pagination.Page[models.SyncRun], error)
}

// DateRangeBody is the request body of the sync and refresh endpoints.
type DateRangeBody struct {
	From string `json:"from" validate:"required,date"`
	To   string `json:"to" validate:"required,date"`
}

type WeatherRefreshDTO struct {
	LocationID uuid.UUID `json:"locationId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Days       int       `json:"days"`
}

// TriggerSync runs a sync inline and returns its summary. A sync already
// running for the location answers 409.
func TriggerSync(svc SyncRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		locationID, from, to, err := rangeRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.Sync(ctx, possync.Request{
			LocationID: locationID,
			From:       from,
			To:         to,
			Trigger:    possync.TriggerAPI,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func RefreshWeather(svc WeatherRefresher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		locationID, from, to, err := rangeRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		days, err := svc.Refresh(ctx, locationID, from, to)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, WeatherRefreshDTO{
			LocationID: locationID,
			From:       from.Format(validators.DateLayout),
			To:         to.Format(validators.DateLayout),
			Days:       days,
		})
	}
}

type SyncRunDTO struct {
	ID             uuid.UUID  `json:"id"`
	Provider       string     `json:"provider"`
	Trigger        string     `json:"trigger"`
	From           string     `json:"from"`
	To             string     `json:"to"`
	Status         string     `json:"status"`
	OrdersFetched  int        `json:"ordersFetched"`
	DaysWritten    int        `json:"daysWritten"`
	NetSales       string     `json:"netSales"`
	VoidedAmount   string     `json:"voidedAmount"`
	RefundsAudited string     `json:"refundsAudited"`
	DeferredAmount string     `json:"deferredAmount"`
	Error          string     `json:"error,omitempty"`
	StartedAt      time.Time  `json:"startedAt"`
	FinishedAt     *time.Time `json:"finishedAt,omitempty"`
}

// SyncRuns lists a location's sync history, newest first, with cursor paging.
func SyncRuns(runs SyncRunLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		locationID, err := locationFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		q := r.URL.Query()
		params, err := pagination.ParseParams(q.Get("limit"), q.Get("cursor"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()))
			return
		}
		page, err := runs.List(ctx, locationID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sync runs"))
			return
		}
		out := pagination.Page[SyncRunDTO]{Items: make([]SyncRunDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
		for _, run := range page.Items {
			out.Items = append(out.Items, SyncRunDTO{
				ID:             run.ID,
				Provider:       string(run.Provider),
				Trigger:        run.Trigger,
				From:           run.RangeStart.Format(validators.DateLayout),
				To:             run.RangeEnd.Format(validators.DateLayout),
				Status:         string(run.Status),
				OrdersFetched:  run.OrdersFetched,
				DaysWritten:    run.DaysWritten,
				NetSales:       run.NetSales.StringFixed(2),
				VoidedAmount:   run.VoidedAmount.StringFixed(2),
				RefundsAudited: run.RefundsAudited.StringFixed(2),
				DeferredAmount: run.DeferredAmount.StringFixed(2),
				Error:          run.Error,
				StartedAt:      run.StartedAt,
				FinishedAt:     run.FinishedAt,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

func rangeRequest(r *http.Request) (uuid.UUID, time.Time, time.Time, error) {
	locationID, err := locationFromRequest(r)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, err
	}
	var body DateRangeBody
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, err
	}
	from, to, err := validators.DateRange(body.From, body.To, true)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, err
	}
	return locationID, from, to, nil
}
