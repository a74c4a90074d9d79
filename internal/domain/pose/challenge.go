// Package pose holds the challenge registry and the geometric validators
// that score a live pose against each target pose.
package pose

import (
	"fmt"
	"math/rand"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
)

// ValidateFunc scores a pose in [0,100]. It must be pure.
type ValidateFunc func(p *model.Pose) int

// Challenge is a named target pose with its validator.
type Challenge struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"display_name"`
	Description string       `json:"description"`
	Validate    ValidateFunc `json:"-"`
}

// Score runs the validator, treating a nil pose as no match.
func (c Challenge) Score(p *model.Pose) int {
	if p == nil || c.Validate == nil {
		return 0
	}
	return c.Validate(p)
}

// Registry is an immutable id -> challenge mapping. Build it once at startup.
type Registry struct {
	byID  map[string]Challenge
	order []string
}

// NewRegistry panics on empty or duplicate ids; both are configuration bugs.
func NewRegistry(challenges ...Challenge) *Registry {
	r := &Registry{byID: make(map[string]Challenge, len(challenges))}
	for _, c := range challenges {
		if c.ID == "" || c.Validate == nil {
			panic("pose: challenge requires an id and a validator")
		}
		if _, dup := r.byID[c.ID]; dup {
			panic(fmt.Sprintf("pose: duplicate challenge id %q", c.ID))
		}
		r.byID[c.ID] = c
		r.order = append(r.order, c.ID)
	}
	return r
}

// Get returns the challenge for id.
func (r *Registry) Get(id string) (Challenge, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// MustGet panics for unknown ids. Use only with ids fixed at startup.
func (r *Registry) MustGet(id string) Challenge {
	c, ok := r.byID[id]
	if !ok {
		panic(fmt.Sprintf("pose: %v: %q", ErrUnknownChallenge, id))
	}
	return c
}

// All returns every challenge in registration order.
func (r *Registry) All() []Challenge {
	out := make([]Challenge, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Select returns the challenges for ids, in the given order.
func (r *Registry) Select(ids []string) ([]Challenge, error) {
	out := make([]Challenge, 0, len(ids))
	for _, id := range ids {
		c, ok := r.byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownChallenge, id)
		}
		out = append(out, c)
	}
	return out, nil
}

// Sample picks n distinct challenges at random. n <= 0 or n beyond the
// registry size returns every challenge in shuffled order.
func (r *Registry) Sample(rng *rand.Rand, n int) []Challenge {
	all := r.All()
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if n <= 0 || n > len(all) {
		return all
	}
	return all[:n]
}
