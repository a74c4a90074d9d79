package playtest

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/http/api"
	service "github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/app"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/pose"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/round"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/types"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func fastConfig() *Config {
	return &Config{
		Players:       3,
		Skill:         1,
		Challenges:    []string{pose.TPose, pose.HandsUp},
		RoundTime:     5 * time.Second,
		Hold:          60 * time.Millisecond,
		FrameInterval: 5 * time.Millisecond,
		Timeout:       time.Second,
		TopN:          10,
		Seed:          1,
	}
}

func TestRun_Local(t *testing.T) {
	Convey("Given skilled in-process players", t, func() {
		cfg := fastConfig()
		cfg.OutputFile = filepath.Join(t.TempDir(), "out", "report.json")

		Convey("When they play", func() {
			rep, err := Run(context.Background(), cfg)

			Convey("Then every player passes every round", func() {
				So(err, ShouldBeNil)
				So(rep.Stats.PlayersCompleted, ShouldEqual, 3)
				So(rep.Stats.PlayersFailed, ShouldEqual, 0)
				So(rep.Stats.SamplesSent, ShouldBeGreaterThan, 0)
				for _, r := range rep.Results {
					So(r.State, ShouldEqual, "completed")
					So(r.Score, ShouldEqual, 20)
					So(r.Accuracies, ShouldResemble, []int{100, 100})
				}
			})

			Convey("Then the leaderboard lists all of them", func() {
				So(len(rep.Leaderboard), ShouldEqual, 3)
				for i, e := range rep.Leaderboard {
					So(e.Rank, ShouldEqual, i+1)
					So(e.Score, ShouldEqual, 20)
				}
			})

			Convey("Then the report is saved", func() {
				_, statErr := os.Stat(cfg.OutputFile)
				So(statErr, ShouldBeNil)
			})
		})
	})

	Convey("Given players who never mirror the challenge", t, func() {
		cfg := fastConfig()
		cfg.Skill = 0
		cfg.Challenges = []string{pose.HandsUp}
		cfg.RoundTime = 200 * time.Millisecond

		Convey("Then their sessions complete without passing", func() {
			rep, err := Run(context.Background(), cfg)
			So(err, ShouldBeNil)
			So(rep.Stats.PlayersCompleted, ShouldEqual, 3)
			for _, r := range rep.Results {
				So(r.Passed, ShouldEqual, 0)
				So(r.Failed, ShouldEqual, 1)
			}
		})
	})

	Convey("Given an unknown scoring mode", t, func() {
		cfg := fastConfig()
		cfg.Mode = "vibes"

		Convey("Then the run fails before playing", func() {
			rep, err := Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
			So(rep, ShouldBeNil)
		})
	})
}

func TestRun_Remote(t *testing.T) {
	Convey("Given a server with fast rounds", t, func() {
		svc := service.New(service.WithRoundConfig(round.Config{
			TimeLimit:     5 * time.Second,
			HoldDuration:  60 * time.Millisecond,
			PassThreshold: round.DefaultPassThreshold,
		}))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc, 0).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When two skilled bots play over HTTP", func() {
			cfg := fastConfig()
			cfg.BaseURL = srv.URL
			cfg.Players = 2

			rep, err := Run(context.Background(), cfg)

			Convey("Then both complete and the leaderboard agrees", func() {
				So(err, ShouldBeNil)
				So(rep.Stats.PlayersCompleted, ShouldEqual, 2)
				for _, r := range rep.Results {
					So(r.Error, ShouldBeEmpty)
					So(r.SessionID, ShouldNotBeEmpty)
					So(r.Score, ShouldEqual, 20)
				}
				So(len(rep.Leaderboard), ShouldEqual, 2)
			})
		})

		Convey("When a bot asks for an unknown challenge", func() {
			cfg := fastConfig()
			cfg.BaseURL = srv.URL
			cfg.Players = 1
			cfg.Challenges = []string{"moonwalk"}

			rep, err := Run(context.Background(), cfg)

			Convey("Then the player is reported as failed", func() {
				So(err, ShouldBeNil)
				So(rep.Stats.PlayersFailed, ShouldEqual, 1)
				So(rep.Results[0].Error, ShouldContainSubstring, "400")
			})
		})
	})

	Convey("Given no server listening", t, func() {
		cfg := fastConfig()
		cfg.BaseURL = "http://127.0.0.1:1"

		Convey("Then the health check fails", func() {
			_, err := Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}

func TestRun_Validate(t *testing.T) {
	Convey("Given invalid play settings", t, func() {
		cases := map[string]func(*Config){
			"no players":    func(c *Config) { c.Players = 0 },
			"skill above 1": func(c *Config) { c.Skill = 1.5 },
			"no frame rate": func(c *Config) { c.FrameInterval = 0 },
			"no top":        func(c *Config) { c.TopN = 0 },
			"hold too long": func(c *Config) { c.Hold = c.RoundTime },
		}
		for name, mutate := range cases {
			name, mutate := name, mutate
			Convey("When there are "+name, func() {
				cfg := fastConfig()
				mutate(cfg)
				_, err := Run(context.Background(), cfg)
				So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
			})
		}
	})
}

func TestVerifyResults(t *testing.T) {
	Convey("Given a well ordered leaderboard", t, func() {
		board := []types.Entry{
			{Rank: 1, Name: "bot-01", Score: 30},
			{Rank: 2, Name: "bot-02", Score: 20},
		}

		Convey("Then matching results verify", func() {
			results := []PlayerResult{
				{Name: "BOT-01", State: "completed", Score: 30},
				{Name: "bot-02", State: "completed", Score: 10},
				{Name: "bot-03", State: "abandoned", Score: 50},
			}
			So(verifyResults(results, board, 10), ShouldBeNil)
		})

		Convey("Then a scoring player missing from a short board is reported", func() {
			results := []PlayerResult{{Name: "bot-09", State: "completed", Score: 5}}
			err := verifyResults(results, board, 10)
			So(errors.Is(err, ErrInconsistent), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "bot-09")
		})

		Convey("Then a player pushed off a full board is tolerated", func() {
			results := []PlayerResult{{Name: "bot-09", State: "completed", Score: 5}}
			So(verifyResults(results, board, 2), ShouldBeNil)
		})

		Convey("Then a lower listed score is reported", func() {
			results := []PlayerResult{{Name: "bot-02", State: "completed", Score: 25}}
			So(errors.Is(verifyResults(results, board, 10), ErrInconsistent), ShouldBeTrue)
		})
	})

	Convey("Given a misordered leaderboard", t, func() {
		board := []types.Entry{
			{Rank: 1, Name: "a", Score: 10},
			{Rank: 3, Name: "b", Score: 20},
		}

		Convey("Then it fails verification", func() {
			err := verifyResults(nil, board, 10)
			So(errors.Is(err, ErrInconsistent), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "rank 3")
		})
	})
}

func TestWriteReport(t *testing.T) {
	Convey("Given a finished run", t, func() {
		rep := &Report{
			Results: []PlayerResult{
				{Name: "bot-01", State: "completed", Score: 18, Passed: 2, Accuracies: []int{95, 88}},
				{Name: "bot-02", Error: "boom"},
			},
			Leaderboard: []types.Entry{{Rank: 1, Name: "bot-01", Score: 18, Accuracy: 91, Attempts: 1}},
		}

		Convey("When it is written", func() {
			var buf bytes.Buffer
			So(WriteReport(&buf, rep), ShouldBeNil)

			Convey("Then both tables are printed", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "PLAYER")
				So(out, ShouldContainSubstring, "95,88")
				So(out, ShouldContainSubstring, "error: boom")
				So(out, ShouldContainSubstring, "RANK")
			})
		})
	})
}
