package playtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/logger"
)

// ErrInvalidConfig is returned by Run for settings it cannot play with.
var ErrInvalidConfig = errors.New("invalid play config")

// Run plays every bot to the end, fetches the leaderboard and verifies it.
// The report is returned even when verification fails.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	rep := &Report{Stats: Stats{StartTime: time.Now(), PlayersStarted: cfg.Players}}
	prefix := "bot-" + uuid.NewString()[:6]

	mode := "local"
	if cfg.BaseURL != "" {
		mode = "remote"
	}
	logger.Get().Info(ctx, "starting play run",
		logger.String("mode", mode),
		logger.String("prefix", prefix),
		logger.Int("players", cfg.Players),
		logger.Float64("skill", cfg.Skill),
		logger.Any("challenges", cfg.Challenges),
		logger.Duration("frameInterval", cfg.FrameInterval))

	var err error
	if mode == "remote" {
		rep.Results, rep.Leaderboard, err = playRemote(ctx, cfg, &rep.Stats, prefix)
	} else {
		rep.Results, rep.Leaderboard, err = playLocal(ctx, cfg, &rep.Stats, prefix)
	}
	if err != nil {
		return nil, err
	}

	for _, r := range rep.Results {
		switch {
		case r.Error == "" && r.State == "completed":
			rep.Stats.PlayersCompleted++
		default:
			rep.Stats.PlayersFailed++
		}
		if cfg.Verbose {
			logger.Get().Info(ctx, "player finished",
				logger.String("player", r.Name),
				logger.String("session", r.SessionID),
				logger.String("state", r.State),
				logger.Int("score", r.Score))
		}
	}

	rep.Stats.EndTime = time.Now()
	rep.Stats.Duration = rep.Stats.EndTime.Sub(rep.Stats.StartTime)
	logFinalStats(ctx, rep.Stats)

	if cfg.OutputFile != "" {
		if err := saveReport(ctx, cfg.OutputFile, rep); err != nil {
			logger.Get().Warn(ctx, "failed to save report", logger.Error(err))
		}
	}

	if err := verifyResults(rep.Results, rep.Leaderboard, cfg.TopN); err != nil {
		return rep, err
	}
	logger.Get().Info(ctx, "leaderboard consistency verified", logger.Int("entries", len(rep.Leaderboard)))
	return rep, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Players < 1:
		return fmt.Errorf("%w: players must be at least 1", ErrInvalidConfig)
	case cfg.Skill < 0 || cfg.Skill > 1:
		return fmt.Errorf("%w: skill must be within 0..1", ErrInvalidConfig)
	case cfg.FrameInterval <= 0:
		return fmt.Errorf("%w: frame interval must be positive", ErrInvalidConfig)
	case cfg.TopN < 1:
		return fmt.Errorf("%w: top must be at least 1", ErrInvalidConfig)
	case cfg.BaseURL == "" && (cfg.RoundTime <= 0 || cfg.Hold <= 0 || cfg.Hold >= cfg.RoundTime):
		return fmt.Errorf("%w: hold must be positive and shorter than the round", ErrInvalidConfig)
	}
	return nil
}
