// Package session sequences the rounds of one game and folds their results
// into a summary.
//
// Like round, a Session is owned by one goroutine and is not safe for
// concurrent use.
package session

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/dedupe"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/pose"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/round"
)

// State of a session.
type State int

// States.
const (
	StatePending State = iota
	StateActive
	StateCompleted
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Summary is handed to the leaderboard when the last round resolves.
type Summary struct {
	SessionID            string    `json:"session_id"`
	PlayerName           string    `json:"player_name"`
	TotalScore           int       `json:"total_score"`
	PerRoundBestAccuracy []int     `json:"per_round_best_accuracy"`
	PassedCount          int       `json:"passed_count"`
	FailedCount          int       `json:"failed_count"`
	CompletedAt          time.Time `json:"completed_at"`
}

// MeanBestAccuracy is the rounded mean of the per-round best accuracies.
func (s Summary) MeanBestAccuracy() int {
	if len(s.PerRoundBestAccuracy) == 0 {
		return 0
	}
	sum := 0
	for _, a := range s.PerRoundBestAccuracy {
		sum += a
	}
	return int(math.Round(float64(sum) / float64(len(s.PerRoundBestAccuracy))))
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	ID         string          `json:"id"`
	PlayerName string          `json:"player_name"`
	State      string          `json:"state"`
	RoundIndex int             `json:"round_index"`
	RoundCount int             `json:"round_count"`
	Score      int             `json:"score"`
	Round      *round.Snapshot `json:"round,omitempty"`
	Results    []RoundResult   `json:"results"`
	Summary    *Summary        `json:"summary,omitempty"`
}

// RoundResult is the presentation form of a resolved round.
type RoundResult struct {
	RoundID      string `json:"round_id"`
	ChallengeID  string `json:"challenge_id"`
	Outcome      string `json:"outcome"`
	BestAccuracy int    `json:"best_accuracy"`
	Points       int    `json:"points"`
}

// Session is one player's run through an ordered list of challenges.
type Session struct {
	id         string
	playerName string
	rounds     []*round.Round
	current    int
	results    []round.Result
	latch      dedupe.Latch
	state      State
	summary    *Summary
	startedAt  time.Time
	endedAt    time.Time
}

// New validates the player name and builds one idle round per challenge.
// An empty id gets a random one.
func New(id, playerName string, challenges []pose.Challenge, cfg round.Config) (*Session, error) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		return nil, ErrInvalidPlayerName
	}
	if len(challenges) == 0 {
		return nil, ErrNoChallenges
	}
	if id == "" {
		id = uuid.NewString()
	}

	s := &Session{
		id:         id,
		playerName: name,
		rounds:     make([]*round.Round, len(challenges)),
		results:    make([]round.Result, 0, len(challenges)),
		latch:      dedupe.NewInMemoryLatch(dedupe.WithMaxSize(len(challenges))),
	}
	for i, c := range challenges {
		s.rounds[i] = round.New(fmt.Sprintf("%s-r%d", id, i+1), c, cfg)
	}
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// PlayerName returns the trimmed player name.
func (s *Session) PlayerName() string { return s.playerName }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Done reports whether the session has ended either way.
func (s *Session) Done() bool { return s.state == StateCompleted || s.state == StateAbandoned }

// EndedAt returns when the session completed or was abandoned.
func (s *Session) EndedAt() time.Time { return s.endedAt }

// Summary returns the final summary once completed.
func (s *Session) Summary() (Summary, bool) {
	if s.summary == nil {
		return Summary{}, false
	}
	return *s.summary, true
}

// Current returns the round being played, or nil when not active.
func (s *Session) Current() *round.Round {
	if s.state != StateActive {
		return nil
	}
	return s.rounds[s.current]
}

// Start arms the first round.
func (s *Session) Start(now time.Time) error {
	if s.state != StatePending {
		return ErrAlreadyStarted
	}
	s.state = StateActive
	s.startedAt = now
	s.rounds[0].Arm(now)
	return nil
}

// Observe feeds a tracker sample to the current round. summary is non-nil
// when this sample finished the session.
func (s *Session) Observe(ctx context.Context, now time.Time, sample model.Sample) (round.Transition, *Summary) {
	r := s.Current()
	if r == nil {
		return round.Transition{Ignored: true}, nil
	}
	return s.settle(ctx, now, r, r.Observe(now, sample))
}

// CheckDeadline runs the timeout check on the current round.
func (s *Session) CheckDeadline(ctx context.Context, now time.Time) (round.Transition, *Summary) {
	r := s.Current()
	if r == nil {
		return round.Transition{Ignored: true}, nil
	}
	return s.settle(ctx, now, r, r.CheckDeadline(now))
}

// Judge delivers an external judgement for roundID. Judgements for a round
// that is no longer current are ignored.
func (s *Session) Judge(ctx context.Context, now time.Time, roundID string, accuracy int, err error) (round.Transition, *Summary) {
	r := s.Current()
	if r == nil || r.ID() != roundID {
		return round.Transition{Ignored: true}, nil
	}
	return s.settle(ctx, now, r, r.Judge(now, accuracy, err))
}

func (s *Session) settle(ctx context.Context, now time.Time, r *round.Round, tr round.Transition) (round.Transition, *Summary) {
	if !tr.Resolved {
		return tr, nil
	}
	res, _ := r.Result()
	return tr, s.Record(ctx, now, res)
}

// Record applies a round resolution. Only the first resolution of a round
// counts; later ones are dropped. A resolution for a round that is not
// current is dropped without consuming the round, so that round can still
// be recorded once it is reached. Record advances to the next round, or
// completes the session and returns the summary after the last one.
func (s *Session) Record(ctx context.Context, now time.Time, res round.Result) *Summary {
	if s.state != StateActive {
		return nil
	}
	if s.latch.SeenAndRecord(ctx, res.RoundID) {
		return nil
	}
	if res.RoundID != s.rounds[s.current].ID() {
		s.latch.Unrecord(ctx, res.RoundID)
		return nil
	}

	s.results = append(s.results, res)
	s.current++
	if s.current < len(s.rounds) {
		s.rounds[s.current].Arm(now)
		return nil
	}

	s.current = len(s.rounds) - 1
	s.state = StateCompleted
	s.endedAt = now
	s.summary = s.summarize(now)
	return s.summary
}

func (s *Session) summarize(now time.Time) *Summary {
	sum := &Summary{
		SessionID:            s.id,
		PlayerName:           s.playerName,
		PerRoundBestAccuracy: make([]int, 0, len(s.results)),
		CompletedAt:          now,
	}
	for _, r := range s.results {
		sum.TotalScore += r.Points
		sum.PerRoundBestAccuracy = append(sum.PerRoundBestAccuracy, r.BestAccuracy)
		if r.Outcome == round.OutcomePassed {
			sum.PassedCount++
		} else {
			sum.FailedCount++
		}
	}
	return sum
}

// Abandon ends the session without a summary.
func (s *Session) Abandon(now time.Time) {
	if s.Done() {
		return
	}
	s.state = StateAbandoned
	s.endedAt = now
}

// Snapshot returns a copy of the session as of now.
func (s *Session) Snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		ID:         s.id,
		PlayerName: s.playerName,
		State:      s.state.String(),
		RoundIndex: s.current,
		RoundCount: len(s.rounds),
		Results:    make([]RoundResult, 0, len(s.results)),
	}
	for _, r := range s.results {
		snap.Score += r.Points
		snap.Results = append(snap.Results, RoundResult{
			RoundID:      r.RoundID,
			ChallengeID:  r.ChallengeID,
			Outcome:      r.Outcome.String(),
			BestAccuracy: r.BestAccuracy,
			Points:       r.Points,
		})
	}
	if r := s.Current(); r != nil {
		rs := r.Snapshot(now)
		snap.Round = &rs
	}
	if s.summary != nil {
		sum := *s.summary
		sum.PerRoundBestAccuracy = append([]int(nil), s.summary.PerRoundBestAccuracy...)
		snap.Summary = &sum
	}
	return snap
}
