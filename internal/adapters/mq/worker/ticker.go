package worker

import (
	"context"
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/logger"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/metrics"
)

// Ticker publishes deadline-check events on a fixed period. It never looks
// at the tracker, so rounds time out even when no samples arrive.
type Ticker struct {
	*loop
	sink Sink
}

// NewTicker creates a ticker publishing to sink.
func NewTicker(sink Sink, opts ...Option) *Ticker {
	return &Ticker{
		loop: newLoop("ticker", DefaultTickInterval, opts),
		sink: sink,
	}
}

// Run implements Worker.
func (t *Ticker) Run(ctx context.Context) {
	t.run(ctx, func(ctx context.Context, now time.Time) {
		if !t.sink.Enqueue(ctx, model.Event{Kind: model.EventTick, At: now}) {
			t.logger.Debug(ctx, "tick dropped", logger.String("worker", t.name))
			return
		}
		metrics.RecordTick()
	})
}
