// Package tracing exports pool activity as OpenTelemetry spans.
package tracing

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluxorio/threadpool/pkg/core/concurrency"
)

// InstrumentationName identifies the tracer used by Observer
const InstrumentationName = "github.com/fluxorio/threadpool/pkg/observability/tracing"

// Observer emits one "job.run" span per executed job and one
// "pool.shutdown" span covering sentinel dispatch and the joins.
type Observer struct {
	concurrency.NopObserver

	tracer trace.Tracer
	pool   string

	jobs sync.Map // job ID -> trace.Span

	mu       sync.Mutex
	shutdown trace.Span
	expected int
	joined   int
}

// NewObserver creates an observer for the named pool
func NewObserver(tp trace.TracerProvider, pool string) *Observer {
	return &Observer{
		tracer: tp.Tracer(InstrumentationName),
		pool:   pool,
	}
}

func (o *Observer) JobStarted(workerID int, job concurrency.JobInfo) {
	attrs := []attribute.KeyValue{
		attribute.String("pool.name", o.pool),
		attribute.Int("worker.id", workerID),
		attribute.String("job.id", job.ID),
		attribute.String("job.name", job.Name),
	}
	if !job.SubmittedAt.IsZero() {
		attrs = append(attrs, attribute.Int64("job.queue_wait_us", time.Since(job.SubmittedAt).Microseconds()))
	}

	_, span := o.tracer.Start(context.Background(), "job.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	o.jobs.Store(job.ID, span)
}

func (o *Observer) JobFinished(_ int, job concurrency.JobInfo, result concurrency.JobResult) {
	v, ok := o.jobs.LoadAndDelete(job.ID)
	if !ok {
		return
	}
	span := v.(trace.Span)

	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.Bool("job.panicked", result.Panicked))
	span.End()
}

func (o *Observer) ShutdownRequested(workers int) {
	_, span := o.tracer.Start(context.Background(), "pool.shutdown",
		trace.WithAttributes(
			attribute.String("pool.name", o.pool),
			attribute.Int("pool.workers", workers),
		),
	)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.shutdown = span
	o.expected = workers
	o.joined = 0
	if workers == 0 {
		o.endShutdown()
	}
}

func (o *Observer) WorkerTerminated(workerID int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.shutdown == nil || err == nil {
		return
	}
	o.shutdown.AddEvent("worker.failed", trace.WithAttributes(
		attribute.Int("worker.id", workerID),
		attribute.String("error", err.Error()),
	))
}

func (o *Observer) WorkerJoined(workerID int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.shutdown == nil {
		return
	}
	o.shutdown.AddEvent("worker.joined", trace.WithAttributes(attribute.Int("worker.id", workerID)))
	o.joined++
	if o.joined >= o.expected {
		o.endShutdown()
	}
}

// endShutdown must be called with mu held
func (o *Observer) endShutdown() {
	o.shutdown.End()
	o.shutdown = nil
}
