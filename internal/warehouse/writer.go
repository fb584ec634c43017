// Package warehouse streams derived fact rows into BigQuery.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"go.uber.org/multierr"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tablesight/tablesight-backend/internal/facts"
	pkgbigquery "github.com/tablesight/tablesight-backend/pkg/bigquery"
)

const (
	defaultBatchSize      = 200
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaximumBackoff = 2 * time.Second
)

// Config controls the warehouse writer behavior.
type Config struct {
	DailyRevenueTable  string
	DaypartTable       string
	RevenueCenterTable string
	BatchSize          int
	RetryPolicy        RetryPolicy
}

// RetryPolicy controls how many times BigQuery inserts are retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

// BigQueryWriter inserts fact rows into BigQuery with retries and batching.
// Exports are serialized; a failed export drops its buffered rows.
type BigQueryWriter struct {
	mu sync.Mutex

	client             tableInserter
	dailyRevenueTable  string
	daypartTable       string
	revenueCenterTable string
	batchSize          int
	retry              RetryPolicy
	now                func() time.Time

	buffers map[string][]any
}

// New creates a new BigQueryWriter backed by a shared client.
func New(client *pkgbigquery.Client, cfg Config) (*BigQueryWriter, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	return newWriter(client, cfg)
}

func newWriter(client tableInserter, cfg Config) (*BigQueryWriter, error) {
	tables := map[string]*string{
		"daily revenue":  &cfg.DailyRevenueTable,
		"daypart":        &cfg.DaypartTable,
		"revenue center": &cfg.RevenueCenterTable,
	}
	for label, name := range tables {
		*name = strings.TrimSpace(*name)
		if *name == "" {
			return nil, fmt.Errorf("%s table is required", label)
		}
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	retry := cfg.RetryPolicy
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = defaultMaxAttempts
	}
	if retry.InitialBackoff <= 0 {
		retry.InitialBackoff = defaultInitialBackoff
	}
	if retry.MaximumBackoff <= 0 {
		retry.MaximumBackoff = defaultMaximumBackoff
	}
	if retry.MaximumBackoff < retry.InitialBackoff {
		retry.MaximumBackoff = retry.InitialBackoff
	}

	return &BigQueryWriter{
		client:             client,
		dailyRevenueTable:  cfg.DailyRevenueTable,
		daypartTable:       cfg.DaypartTable,
		revenueCenterTable: cfg.RevenueCenterTable,
		batchSize:          batchSize,
		retry:              retry,
		now:                time.Now,
		buffers:            map[string][]any{},
	}, nil
}

// Export streams one sync's fact rows and flushes every table. Rows are
// append-only; readers take the latest exported_at per (location, date).
func (w *BigQueryWriter) Export(ctx context.Context, rows facts.Rows) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	defer w.reset()

	batch := BatchFromFacts(rows, w.now().UTC())
	for i := range batch.Daily {
		if err := w.insert(ctx, w.dailyRevenueTable, &batch.Daily[i]); err != nil {
			return err
		}
	}
	for i := range batch.Dayparts {
		if err := w.insert(ctx, w.daypartTable, &batch.Dayparts[i]); err != nil {
			return err
		}
	}
	for i := range batch.RevenueCenters {
		if err := w.insert(ctx, w.revenueCenterTable, &batch.RevenueCenters[i]); err != nil {
			return err
		}
	}
	return w.flushAll(ctx)
}

// insert buffers a row and flushes its table when the batch size is reached.
func (w *BigQueryWriter) insert(ctx context.Context, table string, row any) error {
	w.buffers[table] = append(w.buffers[table], row)
	if len(w.buffers[table]) >= w.batchSize {
		return w.flushTable(ctx, table)
	}
	return nil
}

// Flush writes any buffered rows immediately. Every table is attempted; the
// errors are combined.
func (w *BigQueryWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushAll(ctx)
}

func (w *BigQueryWriter) flushAll(ctx context.Context) error {
	var err error
	for _, table := range []string{w.dailyRevenueTable, w.daypartTable, w.revenueCenterTable} {
		err = multierr.Append(err, w.flushTable(ctx, table))
	}
	return err
}

func (w *BigQueryWriter) reset() {
	for table := range w.buffers {
		w.buffers[table] = nil
	}
}

func (w *BigQueryWriter) flushTable(ctx context.Context, table string) error {
	rows := w.buffers[table]
	if len(rows) == 0 {
		return nil
	}
	if err := w.insertWithRetry(ctx, table, rows); err != nil {
		return err
	}
	w.buffers[table] = rows[:0]
	return nil
}

func (w *BigQueryWriter) insertWithRetry(ctx context.Context, table string, rows []any) error {
	attempts := 0
	backoff := w.retry.InitialBackoff

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := w.client.InsertRows(ctx, table, rows)
		if err == nil {
			return nil
		}

		attempts++
		if attempts >= w.retry.MaxAttempts || !isRetryableBigQueryError(err) {
			return fmt.Errorf("insert %s rows: %w", table, err)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff = min(backoff*2, w.retry.MaximumBackoff)
	}
}

func isRetryableBigQueryError(err error) bool {
	if err == nil {
		return false
	}

	var multi *cbigquery.MultiError
	if errors.As(err, &multi) {
		if multi == nil || len(*multi) == 0 {
			return false
		}
		for _, inner := range *multi {
			if !isRetryableBigQueryError(inner) {
				return false
			}
		}
		return true
	}

	var pme *cbigquery.PutMultiError
	if errors.As(err, &pme) {
		if pme == nil || len(*pme) == 0 {
			return false
		}
		for _, rowErr := range *pme {
			if !isRetryableBigQueryError(rowErr.Errors) {
				return false
			}
		}
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return isRetryableHTTPCode(apiErr.Code)
	}

	var statusErr interface{ GRPCStatus() *status.Status }
	if errors.As(err, &statusErr) {
		if st := statusErr.GRPCStatus(); st != nil {
			return isRetryableGRPCCode(st.Code())
		}
	}

	return false
}

func isRetryableHTTPCode(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func isRetryableGRPCCode(code codes.Code) bool {
	switch code {
	case codes.Aborted,
		codes.DeadlineExceeded,
		codes.Internal,
		codes.ResourceExhausted,
		codes.Unavailable:
		return true
	default:
		return false
	}
}
