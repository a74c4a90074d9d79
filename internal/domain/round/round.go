// Package round implements the timed lifecycle of one challenge attempt.
//
// A Round is not safe for concurrent use: the owning session controller
// feeds it samples, deadline checks and judgements from one goroutine.
// Time is always passed in so transitions are deterministic.
package round

import (
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/geometry"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/pose"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/quality"
)

// Defaults.
const (
	DefaultTimeLimit     = 20 * time.Second
	DefaultHoldDuration  = 2 * time.Second
	DefaultPassThreshold = 80
	maxPoints            = 10
)

// Phase is the state machine position.
type Phase int

// Phases in lifecycle order.
const (
	PhaseIdle Phase = iota
	PhaseArmed
	PhaseHolding
	PhaseJudging
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseArmed:
		return "armed"
	case PhaseHolding:
		return "holding"
	case PhaseJudging:
		return "judging"
	case PhaseResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Outcome is how a round ended. It only ever leaves Pending once.
type Outcome int

// Outcomes.
const (
	OutcomePending Outcome = iota
	OutcomePassed
	OutcomeTimedOut
	OutcomeMissed // judged below the pass threshold
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomePassed:
		return "passed"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeMissed:
		return "missed"
	default:
		return "unknown"
	}
}

// Strategy selects where accuracy comes from.
type Strategy int

// Strategies.
const (
	// StrategyContinuous scores every sample with the geometric validator and
	// passes after a continuous hold above the threshold.
	StrategyContinuous Strategy = iota
	// StrategyJudged waits for a plausible body held still, then asks an
	// external judge for one accuracy value.
	StrategyJudged
)

// ParseStrategy maps config strings to a Strategy.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "", "geometric", "continuous":
		return StrategyContinuous, true
	case "oracle", "judged":
		return StrategyJudged, true
	default:
		return StrategyContinuous, false
	}
}

// Config tunes a round.
type Config struct {
	TimeLimit     time.Duration
	HoldDuration  time.Duration
	PassThreshold int
	Strategy      Strategy
}

// DefaultConfig returns the standard timings.
func DefaultConfig() Config {
	return Config{
		TimeLimit:     DefaultTimeLimit,
		HoldDuration:  DefaultHoldDuration,
		PassThreshold: DefaultPassThreshold,
		Strategy:      StrategyContinuous,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.TimeLimit <= 0 {
		c.TimeLimit = d.TimeLimit
	}
	if c.HoldDuration <= 0 {
		c.HoldDuration = d.HoldDuration
	}
	if c.PassThreshold <= 0 || c.PassThreshold > 100 {
		c.PassThreshold = d.PassThreshold
	}
	return c
}

// Points converts an accuracy to 0..10 points.
func Points(accuracy int) int {
	return geometry.ClampAccuracy(accuracy) / maxPoints
}

// Transition describes what one input did to the round.
type Transition struct {
	Accuracy         int     // accuracy of this input; 0 when not scored
	Resolved         bool    // true only on the input that resolved the round
	Outcome          Outcome // outcome after the input
	Points           int     // set when Resolved
	RequestJudgement bool    // judged strategy: caller must dispatch the judge now
	Ignored          bool    // round already resolved or busy judging
}

// Result is the final record of a resolved round.
type Result struct {
	RoundID      string
	ChallengeID  string
	Outcome      Outcome
	BestAccuracy int
	Points       int
	ResolvedAt   time.Time
}

// Snapshot is a read-only view for presentation.
type Snapshot struct {
	RoundID      string        `json:"round_id"`
	ChallengeID  string        `json:"challenge_id"`
	Phase        string        `json:"phase"`
	Outcome      string        `json:"outcome"`
	Deadline     time.Time     `json:"deadline"`
	Remaining    time.Duration `json:"remaining"`
	Held         time.Duration `json:"held"`
	LastAccuracy int           `json:"last_accuracy"`
	BestAccuracy int           `json:"best_accuracy"`
	Points       int           `json:"points"`
}

// Round is the mutable runtime state of one challenge attempt.
type Round struct {
	id        string
	challenge pose.Challenge
	cfg       Config

	phase         Phase
	outcome       Outcome
	deadline      time.Time
	holdStartedAt time.Time
	holding       bool
	lastAccuracy  int
	bestAccuracy  int
	points        int
	resolvedAt    time.Time
}

// New creates an idle round.
func New(id string, challenge pose.Challenge, cfg Config) *Round {
	return &Round{id: id, challenge: challenge, cfg: cfg.normalized()}
}

// ID returns the round id.
func (r *Round) ID() string { return r.id }

// Challenge returns the challenge being attempted.
func (r *Round) Challenge() pose.Challenge { return r.challenge }

// Phase returns the current phase.
func (r *Round) Phase() Phase { return r.phase }

// Outcome returns the current outcome.
func (r *Round) Outcome() Outcome { return r.outcome }

// BestAccuracy returns the best accuracy seen so far.
func (r *Round) BestAccuracy() int { return r.bestAccuracy }

// Deadline returns the armed deadline.
func (r *Round) Deadline() time.Time { return r.deadline }

// Resolved reports whether the round has ended.
func (r *Round) Resolved() bool { return r.phase == PhaseResolved }

// Arm starts the clock. Arming twice keeps the first deadline.
func (r *Round) Arm(now time.Time) {
	if r.phase != PhaseIdle {
		return
	}
	r.deadline = now.Add(r.cfg.TimeLimit)
	r.phase = PhaseArmed
}

// Observe feeds one tracker sample.
func (r *Round) Observe(now time.Time, s model.Sample) Transition {
	switch r.phase {
	case PhaseIdle, PhaseResolved, PhaseJudging:
		return Transition{Ignored: true, Outcome: r.outcome}
	}
	if !now.Before(r.deadline) {
		return r.resolve(now, OutcomeTimedOut)
	}
	if r.cfg.Strategy == StrategyJudged {
		return r.observeStability(now, s)
	}
	return r.observeAccuracy(now, s)
}

func (r *Round) observeAccuracy(now time.Time, s model.Sample) Transition {
	acc := geometry.ClampAccuracy(r.challenge.Score(s.Pose))
	r.lastAccuracy = acc
	if acc > r.bestAccuracy {
		r.bestAccuracy = acc
	}

	if acc < r.cfg.PassThreshold {
		r.breakHold()
		return Transition{Accuracy: acc, Outcome: r.outcome}
	}
	if !r.holding {
		r.startHold(now)
		return Transition{Accuracy: acc, Outcome: r.outcome}
	}
	if now.Sub(r.holdStartedAt) >= r.cfg.HoldDuration {
		t := r.resolve(now, OutcomePassed)
		t.Accuracy = acc
		return t
	}
	return Transition{Accuracy: acc, Outcome: r.outcome}
}

func (r *Round) observeStability(now time.Time, s model.Sample) Transition {
	stable := s.Pose != nil
	if stable {
		if s.Plausible != nil {
			stable = *s.Plausible
		} else {
			stable = quality.Assess(s.Pose).Plausible
		}
	}

	if !stable {
		r.breakHold()
		return Transition{Outcome: r.outcome}
	}
	if !r.holding {
		r.startHold(now)
		return Transition{Outcome: r.outcome}
	}
	if now.Sub(r.holdStartedAt) >= r.cfg.HoldDuration {
		r.phase = PhaseJudging
		return Transition{Outcome: r.outcome, RequestJudgement: true}
	}
	return Transition{Outcome: r.outcome}
}

// Judge completes a judged round. A judge error counts as accuracy 0.
func (r *Round) Judge(now time.Time, accuracy int, err error) Transition {
	if r.phase != PhaseJudging {
		return Transition{Ignored: true, Outcome: r.outcome}
	}
	if err != nil {
		accuracy = 0
	}
	acc := geometry.ClampAccuracy(accuracy)
	r.lastAccuracy = acc
	if acc > r.bestAccuracy {
		r.bestAccuracy = acc
	}
	outcome := OutcomeMissed
	if acc >= r.cfg.PassThreshold {
		outcome = OutcomePassed
	}
	t := r.resolve(now, outcome)
	t.Accuracy = acc
	return t
}

// CheckDeadline resolves the round as timed out once the deadline passes.
func (r *Round) CheckDeadline(now time.Time) Transition {
	if r.phase == PhaseIdle || r.phase == PhaseResolved {
		return Transition{Ignored: true, Outcome: r.outcome}
	}
	if now.Before(r.deadline) {
		return Transition{Outcome: r.outcome}
	}
	return r.resolve(now, OutcomeTimedOut)
}

// Result returns the final record. ok is false until the round resolves.
func (r *Round) Result() (Result, bool) {
	if r.phase != PhaseResolved {
		return Result{}, false
	}
	return Result{
		RoundID:      r.id,
		ChallengeID:  r.challenge.ID,
		Outcome:      r.outcome,
		BestAccuracy: r.bestAccuracy,
		Points:       r.points,
		ResolvedAt:   r.resolvedAt,
	}, true
}

// Snapshot returns a copy of the round's state as of now.
func (r *Round) Snapshot(now time.Time) Snapshot {
	s := Snapshot{
		RoundID:      r.id,
		ChallengeID:  r.challenge.ID,
		Phase:        r.phase.String(),
		Outcome:      r.outcome.String(),
		Deadline:     r.deadline,
		LastAccuracy: r.lastAccuracy,
		BestAccuracy: r.bestAccuracy,
		Points:       r.points,
	}
	if r.phase == PhaseArmed || r.phase == PhaseHolding || r.phase == PhaseJudging {
		if rem := r.deadline.Sub(now); rem > 0 {
			s.Remaining = rem
		}
	}
	if r.holding {
		s.Held = now.Sub(r.holdStartedAt)
	}
	return s
}

func (r *Round) startHold(now time.Time) {
	r.holding = true
	r.holdStartedAt = now
	r.phase = PhaseHolding
}

func (r *Round) breakHold() {
	r.holding = false
	r.holdStartedAt = time.Time{}
	r.phase = PhaseArmed
}

func (r *Round) resolve(now time.Time, outcome Outcome) Transition {
	r.holding = false
	r.phase = PhaseResolved
	r.outcome = outcome
	r.points = Points(r.bestAccuracy)
	r.resolvedAt = now
	return Transition{Resolved: true, Outcome: outcome, Points: r.points}
}
