package playtest

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/round"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/synth"
)

// bot decides, once per round, whether to mirror the challenge or stand
// in a neutral stance.
type bot struct {
	name  string
	skill float64

	mu      sync.Mutex
	rng     *rand.Rand
	choices map[string]bool
}

func newBot(prefix string, index int, skill float64, seed int64) *bot {
	return &bot{
		name:    fmt.Sprintf("%s-%02d", prefix, index+1),
		skill:   skill,
		rng:     rand.New(rand.NewSource(seed + int64(index))), //nolint:gosec // synthetic play
		choices: make(map[string]bool),
	}
}

// layout returns the layout to show while r is the current round.
func (b *bot) layout(r *round.Snapshot) string {
	if r == nil {
		return synth.Away
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	mirror, ok := b.choices[r.RoundID]
	if !ok {
		mirror = b.rng.Float64() < b.skill
		b.choices[r.RoundID] = mirror
	}
	if mirror {
		return r.ChallengeID
	}
	return synth.Neutral
}
