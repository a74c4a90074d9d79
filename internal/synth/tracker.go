package synth

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
)

// ErrTrackerClosed is returned by Estimate after Close.
var ErrTrackerClosed = errors.New("synth: tracker closed")

// Step holds one layout for a number of frames.
type Step struct {
	Layout string
	Frames int
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithPoseOptions applies pose options to every frame.
func WithPoseOptions(opts ...Option) TrackerOption {
	return func(t *Tracker) { t.poseOpts = append(t.poseOpts, opts...) }
}

// WithFrameJitter adds +/- px of noise to every frame using a seeded source.
func WithFrameJitter(px float64, seed int64) TrackerOption {
	return func(t *Tracker) {
		t.jitter = px
		t.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic noise
	}
}

// Tracker replays layouts as if a pose estimator produced them. It either
// walks a fixed script or asks a chooser which layout to show.
type Tracker struct {
	mu       sync.Mutex
	steps    []Step
	step     int
	frame    int
	choose   func() string
	poseOpts []Option
	jitter   float64
	rng      *rand.Rand
	frames   int
	closed   bool
}

// NewTracker replays steps in order and then holds the last one.
func NewTracker(steps []Step, opts ...TrackerOption) *Tracker {
	t := &Tracker{steps: append([]Step(nil), steps...)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Follow shows whatever layout choose returns on each frame. Returning
// Away (or an unknown name) yields a frame with no body.
func Follow(choose func() string, opts ...TrackerOption) *Tracker {
	t := &Tracker{choose: choose}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Estimate returns the next frame.
func (t *Tracker) Estimate(ctx context.Context) (model.Sample, error) {
	if err := ctx.Err(); err != nil {
		return model.Sample{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return model.Sample{}, ErrTrackerClosed
	}

	layout := t.next()
	opts := t.poseOpts
	if t.rng != nil && t.jitter > 0 {
		opts = append(append([]Option(nil), opts...), WithJitter(t.jitter, t.rng))
	}
	t.frames++

	s := model.Sample{Pose: Pose(layout, opts...)}
	if s.Pose != nil {
		s.Image = []byte(layout)
	}
	return s, nil
}

func (t *Tracker) next() string {
	if t.choose != nil {
		return t.choose()
	}
	if len(t.steps) == 0 {
		return Away
	}
	for t.step < len(t.steps)-1 && t.frame >= t.steps[t.step].Frames {
		t.step++
		t.frame = 0
	}
	t.frame++
	return t.steps[t.step].Layout
}

// Frames reports how many frames have been produced.
func (t *Tracker) Frames() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

// Close releases the tracker. Later calls to Estimate fail.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Closed reports whether Close was called.
func (t *Tracker) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
