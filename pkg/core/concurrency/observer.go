package concurrency

import (
	"time"
)

// JobResult is reported once a job returns (or panics)
type JobResult struct {
	Duration time.Duration
	Err      error // nil on success; *JobPanicError if the job panicked
	Panicked bool
}

// Observer receives pool and worker lifecycle events.
// Methods are called from submitter and worker goroutines concurrently
// and must not block.
type Observer interface {
	WorkerStarted(workerID int)
	JobSubmitted(job JobInfo)
	JobStarted(workerID int, job JobInfo)
	JobFinished(workerID int, job JobInfo, result JobResult)
	ShutdownRequested(workers int)
	WorkerTerminated(workerID int, err error)
	WorkerJoined(workerID int)
}

// NopObserver ignores every event. Embed it to implement only some methods.
type NopObserver struct{}

func (NopObserver) WorkerStarted(int) {}
func (NopObserver) JobSubmitted(JobInfo) {}
func (NopObserver) JobStarted(int, JobInfo) {}
func (NopObserver) JobFinished(int, JobInfo, JobResult) {}
func (NopObserver) ShutdownRequested(int) {}
func (NopObserver) WorkerTerminated(int, error) {}
func (NopObserver) WorkerJoined(int) {}

type multiObserver []Observer

// Observers fans events out to every non-nil observer, in order
func Observers(observers ...Observer) Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o == nil {
			continue
		}
		if m, ok := o.(multiObserver); ok {
			out = append(out, m...)
			continue
		}
		out = append(out, o)
	}
	switch len(out) {
	case 0:
		return NopObserver{}
	case 1:
		return out[0]
	}
	return out
}

func (m multiObserver) WorkerStarted(id int) {
	for _, o := range m {
		o.WorkerStarted(id)
	}
}

func (m multiObserver) JobSubmitted(job JobInfo) {
	for _, o := range m {
		o.JobSubmitted(job)
	}
}

func (m multiObserver) JobStarted(id int, job JobInfo) {
	for _, o := range m {
		o.JobStarted(id, job)
	}
}

func (m multiObserver) JobFinished(id int, job JobInfo, result JobResult) {
	for _, o := range m {
		o.JobFinished(id, job, result)
	}
}

func (m multiObserver) ShutdownRequested(workers int) {
	for _, o := range m {
		o.ShutdownRequested(workers)
	}
}

func (m multiObserver) WorkerTerminated(id int, err error) {
	for _, o := range m {
		o.WorkerTerminated(id, err)
	}
}

func (m multiObserver) WorkerJoined(id int) {
	for _, o := range m {
		o.WorkerJoined(id)
	}
}

// logObserver writes lifecycle lines through a Logger
type logObserver struct {
	logger Logger
}

// LogObserver returns an Observer that logs each lifecycle transition
func LogObserver(logger Logger) Observer {
	if logger == nil {
		logger = newDefaultLogger()
	}
	return &logObserver{logger: logger}
}

func (l *logObserver) WorkerStarted(id int) {
	l.logger.Debugf("worker %d started", id)
}

func (l *logObserver) JobSubmitted(job JobInfo) {
	l.logger.Debugf("job %s (%s) submitted", job.ID, job.Name)
}

func (l *logObserver) JobStarted(id int, job JobInfo) {
	l.logger.Debugf("worker %d got job %s (%s); executing", id, job.ID, job.Name)
}

func (l *logObserver) JobFinished(id int, job JobInfo, result JobResult) {
	if result.Err != nil {
		l.logger.Errorf("worker %d: job %s (%s) failed after %v: %v", id, job.ID, job.Name, result.Duration, result.Err)
		return
	}
	l.logger.Debugf("worker %d finished job %s in %v", id, job.ID, result.Duration)
}

func (l *logObserver) ShutdownRequested(workers int) {
	l.logger.Infof("sending shutdown to %d workers", workers)
}

func (l *logObserver) WorkerTerminated(id int, err error) {
	if err != nil {
		l.logger.Errorf("worker %d terminated abnormally: %v", id, err)
		return
	}
	l.logger.Debugf("worker %d was told to terminate", id)
}

func (l *logObserver) WorkerJoined(id int) {
	l.logger.Infof("worker %d shut down", id)
}
