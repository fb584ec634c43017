package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestSyncMetricsRecordsRunsAndRows(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSyncMetrics(reg)

	m.ObserveRun("toast", "succeeded", 2*time.Second)
	m.ObserveRun("toast", "succeeded", time.Second)
	m.AddOrders("toast", 42)
	m.AddOrders("toast", 0)
	m.AddFactRows("daypart_facts", 5)
	m.IncLockContended("square")
	m.IncUpstreamRetry("toast", "429")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "tablesight_sync_runs_total", "status", "succeeded"); err != nil || got != 2 {
		t.Fatalf("expected 2 succeeded runs, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "tablesight_sync_orders_fetched_total", "provider", "toast"); err != nil || got != 42 {
		t.Fatalf("expected 42 orders, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "tablesight_sync_fact_rows_written_total", "table", "daypart_facts"); err != nil || got != 5 {
		t.Fatalf("expected 5 rows, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "tablesight_sync_lock_contended_total", "provider", "square"); err != nil || got != 1 {
		t.Fatalf("expected 1 contention, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "tablesight_upstream_retries_total", "code", "429"); err != nil || got != 1 {
		t.Fatalf("expected 1 retry, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "tablesight_sync_duration_seconds", "provider", "toast"); err != nil || got != 3 {
		t.Fatalf("expected duration sum 3, got %f (%v)", got, err)
	}
}
