package worker

import (
	"context"
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/logger"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/metrics"
)

// Tracker estimates at most one pose per call. A sample with a nil Pose
// means no body was found.
type Tracker interface {
	Estimate(ctx context.Context) (model.Sample, error)
	Close() error
}

// Consumer takes samples one at a time.
type Consumer interface {
	// Busy reports whether the previous sample is still being processed.
	Busy() bool
	// OfferSample hands over a sample. It returns false if the consumer was
	// busy and dropped it.
	OfferSample(ctx context.Context, s model.Sample) bool
}

// Sampler polls a tracker on a fixed period. A poll is skipped while the
// consumer is still processing the previous sample.
type Sampler struct {
	*loop
	tracker  Tracker
	consumer Consumer
}

// NewSampler creates a sampler feeding consumer from tracker.
func NewSampler(tracker Tracker, consumer Consumer, opts ...Option) *Sampler {
	return &Sampler{
		loop:     newLoop("sampler", DefaultSampleInterval, opts),
		tracker:  tracker,
		consumer: consumer,
	}
}

// Run implements Worker.
func (s *Sampler) Run(ctx context.Context) {
	s.run(ctx, func(ctx context.Context, now time.Time) {
		if s.consumer.Busy() {
			metrics.RecordSampleSkipped()
			return
		}

		metrics.RecordTrackerPoll()
		sample, err := s.tracker.Estimate(ctx)
		if err != nil {
			metrics.RecordErrorByComponent("sampler", "estimate_error")
			s.logger.Debug(ctx, "tracker estimate failed", logger.Error(err))
			return
		}
		if sample.CapturedAt.IsZero() {
			sample.CapturedAt = now
		}
		if !s.consumer.OfferSample(ctx, sample) {
			metrics.RecordSampleSkipped()
		}
	})
}
