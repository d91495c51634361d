package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fluxorio/threadpool/pkg/core/concurrency"
)

var (
	// DefaultRegistry is the default Prometheus registry
	DefaultRegistry = prometheus.NewRegistry()

	// DefaultRegisterer is the default Prometheus registerer
	DefaultRegisterer = prometheus.WrapRegistererWith(prometheus.Labels{"service": "threadpool"}, DefaultRegistry)
)

// Job completion statuses
const (
	StatusOK    = "ok"
	StatusError = "error"
	StatusPanic = "panic"
)

// PoolMetrics records pool lifecycle events as Prometheus metrics.
// It implements concurrency.Observer; pass it with concurrency.WithObserver.
type PoolMetrics struct {
	concurrency.NopObserver

	JobsSubmitted  prometheus.Counter
	JobsCompleted  *prometheus.CounterVec // status: ok, error, panic
	JobDuration    prometheus.Histogram
	JobQueueWait   prometheus.Histogram
	JobsQueued     prometheus.Gauge
	WorkersRunning prometheus.Gauge
	WorkerExits    *prometheus.CounterVec // reason: shutdown, error
	Shutdowns      prometheus.Counter
}

// NewPoolMetrics registers the metrics of one pool, labelled with its name
func NewPoolMetrics(registerer prometheus.Registerer, pool string) *PoolMetrics {
	if registerer == nil {
		registerer = DefaultRegisterer
	}
	factory := promauto.With(prometheus.WrapRegistererWith(prometheus.Labels{"pool": pool}, registerer))

	return &PoolMetrics{
		JobsSubmitted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "threadpool_jobs_submitted_total",
				Help: "Total number of jobs accepted by Submit",
			},
		),
		JobsCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "threadpool_jobs_completed_total",
				Help: "Total number of jobs run to completion, by outcome",
			},
			[]string{"status"},
		),
		JobDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "threadpool_job_duration_seconds",
				Help:    "Job execution time in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		JobQueueWait: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "threadpool_job_queue_wait_seconds",
				Help:    "Time between submission and the start of execution",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 100us to ~26s
			},
		),
		JobsQueued: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "threadpool_jobs_queued",
				Help: "Jobs submitted but not yet picked up by a worker",
			},
		),
		WorkersRunning: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "threadpool_workers_running",
				Help: "Workers that have started and not yet terminated",
			},
		),
		WorkerExits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "threadpool_worker_exits_total",
				Help: "Worker terminations, by reason",
			},
			[]string{"reason"},
		),
		Shutdowns: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "threadpool_shutdowns_total",
				Help: "Number of shutdowns requested",
			},
		),
	}
}

func (m *PoolMetrics) WorkerStarted(int) {
	m.WorkersRunning.Inc()
}

func (m *PoolMetrics) JobSubmitted(concurrency.JobInfo) {
	m.JobsSubmitted.Inc()
	m.JobsQueued.Inc()
}

func (m *PoolMetrics) JobStarted(_ int, job concurrency.JobInfo) {
	m.JobsQueued.Dec()
	if !job.SubmittedAt.IsZero() {
		m.JobQueueWait.Observe(time.Since(job.SubmittedAt).Seconds())
	}
}

func (m *PoolMetrics) JobFinished(_ int, _ concurrency.JobInfo, result concurrency.JobResult) {
	m.JobsCompleted.WithLabelValues(statusOf(result)).Inc()
	m.JobDuration.Observe(result.Duration.Seconds())
}

func (m *PoolMetrics) ShutdownRequested(int) {
	m.Shutdowns.Inc()
}

func (m *PoolMetrics) WorkerTerminated(_ int, err error) {
	m.WorkersRunning.Dec()
	if err != nil {
		m.WorkerExits.WithLabelValues("error").Inc()
		return
	}
	m.WorkerExits.WithLabelValues("shutdown").Inc()
}

// statusOf converts a job result to a status label
func statusOf(result concurrency.JobResult) string {
	switch {
	case result.Panicked:
		return StatusPanic
	case result.Err != nil:
		return StatusError
	default:
		return StatusOK
	}
}
