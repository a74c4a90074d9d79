package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/pose"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/round"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/session"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/synth"
	. "github.com/smartystreets/goconvey/convey"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time { return t0.Add(d) }

func scripted(acc *int, ids ...string) []pose.Challenge {
	out := make([]pose.Challenge, 0, len(ids))
	for _, id := range ids {
		out = append(out, pose.Challenge{ID: id, Validate: func(*model.Pose) int { return *acc }})
	}
	return out
}

func body() model.Sample { return model.Sample{Pose: synth.Pose(synth.Neutral)} }

func TestNew(t *testing.T) {
	acc := 0
	challenges := scripted(&acc, "a")

	Convey("Given a blank player name", t, func() {
		_, err := session.New("", "   ", challenges, round.DefaultConfig())
		So(errors.Is(err, session.ErrInvalidPlayerName), ShouldBeTrue)
	})

	Convey("Given a padded player name", t, func() {
		s, err := session.New("", "  Ana ", challenges, round.DefaultConfig())
		So(err, ShouldBeNil)
		So(s.PlayerName(), ShouldEqual, "Ana")
		So(s.ID(), ShouldNotBeEmpty)
		So(s.State(), ShouldEqual, session.StatePending)
		So(s.Current(), ShouldBeNil)
	})

	Convey("Given no challenges", t, func() {
		_, err := session.New("s", "Ana", nil, round.DefaultConfig())
		So(errors.Is(err, session.ErrNoChallenges), ShouldBeTrue)
	})
}

func TestFullSession(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started three-round session", t, func() {
		acc := 0
		s, err := session.New("s1", "Ana", scripted(&acc, "a", "b", "c"), round.DefaultConfig())
		So(err, ShouldBeNil)
		So(s.Start(t0), ShouldBeNil)
		So(s.State(), ShouldEqual, session.StateActive)
		So(s.Current().Challenge().ID, ShouldEqual, "a")

		Convey("When the player passes, times out, then passes", func() {
			acc = 95
			s.Observe(ctx, at(0), body())
			_, sum := s.Observe(ctx, at(2*time.Second), body())
			So(sum, ShouldBeNil)
			So(s.Current().Challenge().ID, ShouldEqual, "b")
			So(s.Current().Deadline(), ShouldEqual, at(22*time.Second))

			acc = 60
			s.Observe(ctx, at(3*time.Second), body())
			tr, sum := s.CheckDeadline(ctx, at(22*time.Second))
			So(tr.Outcome, ShouldEqual, round.OutcomeTimedOut)
			So(sum, ShouldBeNil)

			acc = 100
			s.Observe(ctx, at(23*time.Second), body())
			_, sum = s.Observe(ctx, at(25*time.Second), body())

			Convey("Then the summary totals every round", func() {
				So(sum, ShouldNotBeNil)
				So(sum.PlayerName, ShouldEqual, "Ana")
				So(sum.TotalScore, ShouldEqual, 25)
				So(sum.PerRoundBestAccuracy, ShouldResemble, []int{95, 60, 100})
				So(sum.PassedCount, ShouldEqual, 2)
				So(sum.FailedCount, ShouldEqual, 1)
				So(sum.MeanBestAccuracy(), ShouldEqual, 85)
				So(sum.CompletedAt, ShouldEqual, at(25*time.Second))
				So(s.State(), ShouldEqual, session.StateCompleted)
				So(s.Current(), ShouldBeNil)
			})

			Convey("Then later events are ignored", func() {
				tr, again := s.CheckDeadline(ctx, at(time.Minute))
				So(tr.Ignored, ShouldBeTrue)
				So(again, ShouldBeNil)
				got, ok := s.Summary()
				So(ok, ShouldBeTrue)
				So(got.TotalScore, ShouldEqual, 25)
			})

			Convey("Then the snapshot lists every result", func() {
				snap := s.Snapshot(at(30 * time.Second))
				So(snap.State, ShouldEqual, "completed")
				So(snap.Score, ShouldEqual, 25)
				So(len(snap.Results), ShouldEqual, 3)
				So(snap.Results[1].Outcome, ShouldEqual, "timed_out")
				So(snap.Round, ShouldBeNil)
				So(snap.Summary, ShouldNotBeNil)
			})
		})

		Convey("When the same round resolution is delivered twice", func() {
			res := round.Result{RoundID: s.Current().ID(), ChallengeID: "a", Outcome: round.OutcomePassed, BestAccuracy: 90, Points: 9}
			first := s.Record(ctx, at(time.Second), res)
			res.Outcome = round.OutcomeTimedOut
			second := s.Record(ctx, at(time.Second), res)

			Convey("Then only the first advances the session", func() {
				So(first, ShouldBeNil)
				So(second, ShouldBeNil)
				snap := s.Snapshot(at(time.Second))
				So(snap.RoundIndex, ShouldEqual, 1)
				So(len(snap.Results), ShouldEqual, 1)
				So(snap.Results[0].Outcome, ShouldEqual, "passed")
			})
		})

		Convey("When a later round's resolution arrives early", func() {
			early := round.Result{RoundID: "s1-r2", ChallengeID: "b", Outcome: round.OutcomePassed, BestAccuracy: 88, Points: 8}
			So(s.Record(ctx, at(time.Second), early), ShouldBeNil)
			So(s.Snapshot(at(time.Second)).RoundIndex, ShouldEqual, 0)

			Convey("Then it still counts once that round is current", func() {
				first := round.Result{RoundID: "s1-r1", ChallengeID: "a", Outcome: round.OutcomePassed, BestAccuracy: 90, Points: 9}
				s.Record(ctx, at(2*time.Second), first)
				s.Record(ctx, at(3*time.Second), early)

				snap := s.Snapshot(at(3 * time.Second))
				So(snap.RoundIndex, ShouldEqual, 2)
				So(len(snap.Results), ShouldEqual, 2)
				So(snap.Results[1].Points, ShouldEqual, 8)

				Convey("And replaying an applied round changes nothing", func() {
					s.Record(ctx, at(4*time.Second), first)
					So(len(s.Snapshot(at(4*time.Second)).Results), ShouldEqual, 2)
					So(s.Current().Challenge().ID, ShouldEqual, "c")
				})
			})
		})

		Convey("When a judgement arrives for a stale round", func() {
			tr, _ := s.Judge(ctx, at(time.Second), "s1-r9", 100, nil)
			So(tr.Ignored, ShouldBeTrue)
			So(s.Current().Challenge().ID, ShouldEqual, "a")
		})

		Convey("When started twice", func() {
			So(errors.Is(s.Start(at(time.Second)), session.ErrAlreadyStarted), ShouldBeTrue)
		})

		Convey("When the player leaves mid-game", func() {
			s.Abandon(at(5 * time.Second))

			Convey("Then no summary is produced", func() {
				So(s.State(), ShouldEqual, session.StateAbandoned)
				So(s.Done(), ShouldBeTrue)
				_, ok := s.Summary()
				So(ok, ShouldBeFalse)
				tr, _ := s.Observe(ctx, at(6*time.Second), body())
				So(tr.Ignored, ShouldBeTrue)
				So(s.EndedAt(), ShouldEqual, at(5*time.Second))
			})
		})
	})
}

func TestJudgedSession(t *testing.T) {
	ctx := context.Background()
	cfg := round.DefaultConfig()
	cfg.Strategy = round.StrategyJudged
	plausible := true

	Convey("Given a one-round judged session", t, func() {
		acc := 0
		s, _ := session.New("s2", "Bo", scripted(&acc, "a"), cfg)
		_ = s.Start(t0)
		sample := model.Sample{Pose: synth.Pose(synth.Neutral), Plausible: &plausible}
		s.Observe(ctx, at(0), sample)
		tr, _ := s.Observe(ctx, at(2*time.Second), sample)
		So(tr.RequestJudgement, ShouldBeTrue)
		roundID := s.Current().ID()

		Convey("When the judge fails", func() {
			_, sum := s.Judge(ctx, at(3*time.Second), roundID, 0, errors.New("timeout"))

			Convey("Then the round counts as failed with zero points", func() {
				So(sum, ShouldNotBeNil)
				So(sum.TotalScore, ShouldEqual, 0)
				So(sum.FailedCount, ShouldEqual, 1)
			})
		})

		Convey("When the judge approves", func() {
			_, sum := s.Judge(ctx, at(3*time.Second), roundID, 92, nil)
			So(sum.TotalScore, ShouldEqual, 9)
			So(sum.PassedCount, ShouldEqual, 1)
		})
	})
}

func TestMeanBestAccuracy(t *testing.T) {
	Convey("Given per-round best accuracies", t, func() {
		So(session.Summary{}.MeanBestAccuracy(), ShouldEqual, 0)
		So(session.Summary{PerRoundBestAccuracy: []int{80, 81}}.MeanBestAccuracy(), ShouldEqual, 81)
		So(session.Summary{PerRoundBestAccuracy: []int{10, 20, 30}}.MeanBestAccuracy(), ShouldEqual, 20)
	})
}
