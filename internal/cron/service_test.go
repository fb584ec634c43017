package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/tablesight/tablesight-backend/pkg/logger"
	"github.com/tablesight/tablesight-backend/pkg/metrics"
)

type fakeLock struct {
	acquired bool
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error { f.acquired = false; return nil }

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func TestServiceRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	logg := logger.Nop()
	registry := NewRegistry(&testJob{name: "nightly-pos-sync", err: errors.New("toast unavailable")}, &testJob{name: "weather-refresh"})
	service, err := NewService(ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     &fakeLock{},
		Interval: 0,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	ctx := context.Background()
	if err := service.runCycle(ctx); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if failure, ok := jobs[0].(*testJob); ok {
		if failure.runs != 1 {
			t.Fatalf("expected failing job to run once, ran %d", failure.runs)
		}
	} else {
		t.Fatalf("first job type mismatch")
	}
	if success, ok := jobs[1].(*testJob); ok {
		if success.runs != 1 {
			t.Fatalf("expected job after failure to run once, ran %d", success.runs)
		}
	} else {
		t.Fatalf("second job type mismatch")
	}
}

func TestServiceRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "nightly-pos-sync"}
	held := &fakeLock{acquired: true}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(job),
		Lock:     held,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected job to be skipped, ran %d", job.runs)
	}
	if !held.acquired {
		t.Fatalf("lock held by another instance must not be released")
	}
}

func TestServiceRecordsJobMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	cronMetrics := metrics.NewCronJobMetrics(reg)
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(&testJob{name: "ok"}, &testJob{name: "broken", err: errors.New("boom")}),
		Lock:     &fakeLock{},
		Metrics:  cronMetrics,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got := counterValue(mfs, "tablesight_cron_job_success_total", "ok"); got != 1 {
		t.Fatalf("expected one success for ok, got %v", got)
	}
	if got := counterValue(mfs, "tablesight_cron_job_failure_total", "broken"); got != 1 {
		t.Fatalf("expected one failure for broken, got %v", got)
	}
	if got := counterValue(mfs, "tablesight_cron_job_success_total", "broken"); got != 0 {
		t.Fatalf("expected no success for broken, got %v", got)
	}
}

func TestNewServiceRequiresLoggerAndLock(t *testing.T) {
	if _, err := NewService(ServiceParams{Lock: &fakeLock{}}); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := NewService(ServiceParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected error without lock")
	}
}

func counterValue(mfs []*dto.MetricFamily, name, job string) float64 {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "job" && label.GetValue() == job {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
