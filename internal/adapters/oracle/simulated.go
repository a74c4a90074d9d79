package oracle

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/pose"
)

// Simulated judge defaults.
const (
	defaultMinLatency = 80 * time.Millisecond
	defaultMaxLatency = 150 * time.Millisecond
	defaultRandomSeed = 42
)

// SimOption configures a Simulated judge.
type SimOption func(*Simulated)

// WithLatencyRange sets the simulated latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) SimOption {
	return func(s *Simulated) {
		if minLatency >= 0 && maxLatency > minLatency {
			s.minLatency = minLatency
			s.maxLatency = maxLatency
		}
	}
}

// WithSeed makes the latency sequence reproducible.
func WithSeed(seed int64) SimOption {
	return func(s *Simulated) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // latency jitter only
	}
}

// Simulated stands in for a remote judge: it waits a random latency and then
// rates the pose with the challenge's own validator.
type Simulated struct {
	registry   *pose.Registry
	minLatency time.Duration
	maxLatency time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated creates a judge backed by registry.
func NewSimulated(registry *pose.Registry, opts ...SimOption) *Simulated {
	s := &Simulated{
		registry:   registry,
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // latency jitter only
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulated) latency() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minLatency + time.Duration(s.rng.Int63n(int64(s.maxLatency-s.minLatency)))
}

// Judge implements Judge.
func (s *Simulated) Judge(ctx context.Context, req Request) (int, error) {
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	case <-time.After(s.latency()):
	}

	c, ok := s.registry.Get(req.ChallengeID)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownChallenge, req.ChallengeID)
	}
	return c.Score(req.Pose), nil
}
