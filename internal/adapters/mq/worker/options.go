package worker

import (
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/logger"
)

// Option configures a Ticker or Sampler.
type Option func(*loop)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(l *loop) {
		if name != "" {
			l.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(log logger.Logger) Option {
	return func(l *loop) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithInterval sets the period between events.
func WithInterval(d time.Duration) Option {
	return func(l *loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *loop) {
		if now != nil {
			l.now = now
		}
	}
}
