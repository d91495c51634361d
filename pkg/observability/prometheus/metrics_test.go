package prometheus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/fluxorio/threadpool/pkg/core/concurrency"
)

func TestPoolMetrics_Lifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPoolMetrics(reg, "lifecycle")

	pool := concurrency.New(3, concurrency.WithName("lifecycle"), concurrency.WithObserver(metrics))

	for i := 0; i < 5; i++ {
		if err := pool.Execute(func() {}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		err := pool.Submit(concurrency.JobFunc(func(context.Context) error { return errors.New("boom") }))
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	if err := pool.Execute(func() { panic("bad job") }); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"submitted", metrics.JobsSubmitted, 8},
		{"completed ok", metrics.JobsCompleted.WithLabelValues(StatusOK), 5},
		{"completed error", metrics.JobsCompleted.WithLabelValues(StatusError), 2},
		{"completed panic", metrics.JobsCompleted.WithLabelValues(StatusPanic), 1},
		{"queued", metrics.JobsQueued, 0},
		{"workers running", metrics.WorkersRunning, 0},
		{"shutdown exits", metrics.WorkerExits.WithLabelValues("shutdown"), 3},
		{"error exits", metrics.WorkerExits.WithLabelValues("error"), 0},
		{"shutdowns", metrics.Shutdowns, 1},
	}
	for _, tc := range checks {
		if got := testutil.ToFloat64(tc.c); got != tc.want {
			t.Errorf("%s = %v, want %v", tc.name, got, tc.want)
		}
	}

	if got := testutil.CollectAndCount(metrics.JobDuration); got != 1 {
		t.Errorf("CollectAndCount(JobDuration) = %d, want 1", got)
	}
}

func TestPoolMetrics_WorkersRunningWhileActive(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPoolMetrics(reg, "active")

	pool := concurrency.New(4, concurrency.WithObserver(metrics))
	defer pool.Close()

	deadline := time.Now().Add(2 * time.Second)
	for testutil.ToFloat64(metrics.WorkersRunning) != 4 {
		if time.Now().After(deadline) {
			t.Fatalf("WorkersRunning = %v, want 4", testutil.ToFloat64(metrics.WorkersRunning))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewPoolMetrics_TwoPoolsOneRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewPoolMetrics(reg, "a")
	b := NewPoolMetrics(reg, "b")

	a.JobSubmitted(concurrency.JobInfo{})
	a.JobSubmitted(concurrency.JobInfo{})
	b.JobSubmitted(concurrency.JobInfo{})

	if got := testutil.ToFloat64(a.JobsSubmitted); got != 2 {
		t.Errorf("a submitted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(b.JobsSubmitted); got != 1 {
		t.Errorf("b submitted = %v, want 1", got)
	}
}

func TestNewPoolMetrics_DuplicatePoolPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPoolMetrics(reg, "dup")

	defer func() {
		if r := recover(); r == nil {
			t.Error("NewPoolMetrics() with a duplicate pool name should panic")
		}
	}()
	NewPoolMetrics(reg, "dup")
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		result concurrency.JobResult
		want   string
	}{
		{concurrency.JobResult{}, StatusOK},
		{concurrency.JobResult{Err: errors.New("x")}, StatusError},
		{concurrency.JobResult{Err: errors.New("x"), Panicked: true}, StatusPanic},
	}
	for _, tt := range tests {
		if got := statusOf(tt.result); got != tt.want {
			t.Errorf("statusOf(%+v) = %q, want %q", tt.result, got, tt.want)
		}
	}
}
