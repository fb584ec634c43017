package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics tracks POS sync runs and upstream API behaviour.
type SyncMetrics struct {
	duration      *prometheus.HistogramVec
	runs          *prometheus.CounterVec
	orders        *prometheus.CounterVec
	factRows      *prometheus.CounterVec
	lockContended *prometheus.CounterVec
	upstreamRetry *prometheus.CounterVec
}

// NewSyncMetrics registers the sync collectors on reg. A nil registerer yields
// a no-op recorder.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	m := &SyncMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of POS sync runs in seconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"provider", "status"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "POS sync runs by outcome.",
		}, []string{"provider", "status"}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_orders_fetched_total",
			Help:      "Orders fetched from POS providers.",
		}, []string{"provider"}),
		factRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_fact_rows_written_total",
			Help:      "Fact rows written by table.",
		}, []string{"table"}),
		lockContended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_lock_contended_total",
			Help:      "Sync requests rejected because another run held the location lock.",
		}, []string{"provider"}),
		upstreamRetry: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_retries_total",
			Help:      "Retried upstream API calls by service and status code.",
		}, []string{"service", "code"}),
	}
	reg.MustRegister(m.duration, m.runs, m.orders, m.factRows, m.lockContended, m.upstreamRetry)
	return m
}

// ObserveRun records the outcome and duration of one sync.
func (m *SyncMetrics) ObserveRun(provider, status string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	provider, status = normalizeLabel(provider), normalizeLabel(status)
	m.duration.WithLabelValues(provider, status).Observe(duration.Seconds())
	m.runs.WithLabelValues(provider, status).Inc()
}

// AddOrders counts fetched orders.
func (m *SyncMetrics) AddOrders(provider string, n int) {
	if m == nil || m.orders == nil || n <= 0 {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(provider)).Add(float64(n))
}

// AddFactRows counts rows inserted into a fact table.
func (m *SyncMetrics) AddFactRows(table string, n int) {
	if m == nil || m.factRows == nil || n <= 0 {
		return
	}
	m.factRows.WithLabelValues(normalizeLabel(table)).Add(float64(n))
}

// IncLockContended counts a rejected concurrent sync.
func (m *SyncMetrics) IncLockContended(provider string) {
	if m == nil || m.lockContended == nil {
		return
	}
	m.lockContended.WithLabelValues(normalizeLabel(provider)).Inc()
}

// IncUpstreamRetry counts one retried upstream request.
func (m *SyncMetrics) IncUpstreamRetry(service, code string) {
	if m == nil || m.upstreamRetry == nil {
		return
	}
	m.upstreamRetry.WithLabelValues(normalizeLabel(service), normalizeLabel(code)).Inc()
}
