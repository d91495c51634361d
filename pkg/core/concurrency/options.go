package concurrency

import "context"

type options struct {
	name      string
	ctx       context.Context
	logger    Logger
	observers []Observer
}

// Option configures a Pool
type Option func(*options)

// WithName labels the pool in logs and metrics
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithContext sets the context handed to every job.
// The pool never cancels it; it only carries values.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithLogger replaces the default stderr logger
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver adds a lifecycle observer. Repeated calls compose.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}
