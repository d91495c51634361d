package concurrency

import (
	"time"

	"github.com/google/uuid"
)

// MessageKind tags the variant carried by a Message
type MessageKind int

const (
	// MessageWork carries a job to run
	MessageWork MessageKind = iota
	// MessageShutdown tells exactly one worker to terminate
	MessageShutdown
)

func (k MessageKind) String() string {
	switch k {
	case MessageWork:
		return "work"
	case MessageShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// JobInfo describes a submitted job for observers
type JobInfo struct {
	ID          string
	Name        string
	SubmittedAt time.Time
}

// Message is what flows through the shared queue: either work or a shutdown sentinel
type Message struct {
	Kind MessageKind
	Job  Job
	Info JobInfo
}

// WorkMessage wraps a job for the queue and stamps it with a fresh ID
func WorkMessage(job Job) Message {
	return Message{
		Kind: MessageWork,
		Job:  job,
		Info: JobInfo{
			ID:          uuid.NewString(),
			Name:        job.Name(),
			SubmittedAt: time.Now(),
		},
	}
}

// ShutdownMessage returns a sentinel
func ShutdownMessage() Message {
	return Message{Kind: MessageShutdown}
}
