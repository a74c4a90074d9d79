// Package worker runs the periodic event sources that feed a session's
// update queue: a deadline ticker that fires regardless of the tracker, and
// a sampler that polls the tracker.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/mq/queue"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/logger"
)

// Default worker configuration constants.
const (
	DefaultTickInterval   = 200 * time.Millisecond
	DefaultSampleInterval = 100 * time.Millisecond
)

// Event abstracts what workers publish.
type Event = model.Event

// Sink accepts events without blocking.
type Sink interface {
	Enqueue(ctx context.Context, e queue.Event) bool
}

// Worker is a periodic event source.
type Worker interface {
	// Run emits events until ctx is canceled or Shutdown is called.
	Run(ctx context.Context)

	// Shutdown stops the loop and waits for Run to return.
	Shutdown(ctx context.Context) error
}

// loop is the shared ticker/shutdown machinery.
type loop struct {
	name     string
	interval time.Duration
	now      func() time.Time
	logger   logger.Logger

	shutdown     chan struct{}
	done         chan struct{}
	shutdownOnce sync.Once
}

func newLoop(name string, interval time.Duration, opts []Option) *loop {
	l := &loop{
		name:     name,
		interval: interval,
		now:      time.Now,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named(l.name)
	}
	return l
}

// run calls fn on every tick until stopped.
func (l *loop) run(ctx context.Context, fn func(ctx context.Context, now time.Time)) {
	defer close(l.done)

	t := time.NewTicker(l.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.shutdown:
			return
		case <-t.C:
			fn(ctx, l.now())
		}
	}
}

// Shutdown stops the loop. It is safe to call more than once.
func (l *loop) Shutdown(ctx context.Context) error {
	l.shutdownOnce.Do(func() { close(l.shutdown) })

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		l.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (l *loop) Done() <-chan struct{} { return l.done }
