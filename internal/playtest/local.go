package playtest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	service "github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/app"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/leaderboard"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/round"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/session"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/types"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/synth"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/logger"
)

// playLocal runs every bot against an in-process service. Bots are wired
// as trackers, so the service pulls frames instead of receiving posts.
func playLocal(ctx context.Context, cfg *Config, stats *Stats, prefix string) ([]PlayerResult, []types.Entry, error) {
	roundCfg := round.DefaultConfig()
	roundCfg.TimeLimit = cfg.RoundTime
	roundCfg.HoldDuration = cfg.Hold
	if cfg.Mode != "" {
		strategy, ok := round.ParseStrategy(cfg.Mode)
		if !ok {
			return nil, nil, fmt.Errorf("unknown scoring mode %q", cfg.Mode)
		}
		roundCfg.Strategy = strategy
	}

	svc := service.New(
		service.WithLogger(logger.Named("playtest")),
		service.WithRoundConfig(roundCfg),
		service.WithMaxSessions(cfg.Players),
		service.WithSampleInterval(cfg.FrameInterval),
		service.WithStoreBackend(cfg.Store, cfg.StorePath),
		service.WithSeed(cfg.Seed),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	results := make([]PlayerResult, cfg.Players)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = playLocalBot(ctx, svc, cfg, newBot(prefix, i, cfg.Skill, cfg.Seed), stats)
		}(i)
	}
	wg.Wait()

	board, err := svc.TopN(ctx, leaderboard.WindowAll, cfg.TopN)
	if err != nil {
		return results, nil, fmt.Errorf("leaderboard: %w", err)
	}
	return results, board, nil
}

func playLocalBot(ctx context.Context, svc *service.Service, cfg *Config, b *bot, stats *Stats) PlayerResult {
	res := PlayerResult{Name: b.name}

	var current atomic.Pointer[service.Controller]
	var frames atomic.Int64
	tracker := synth.Follow(func() string {
		frames.Add(1)
		c := current.Load()
		if c == nil {
			return synth.Away
		}
		return b.layout(c.Snapshot().Round)
	})

	c, err := svc.StartSession(ctx, service.StartRequest{
		PlayerName: b.name,
		Challenges: cfg.Challenges,
		Tracker:    tracker,
	})
	if err != nil {
		res.Error = err.Error()
		return res
	}
	current.Store(c)
	res.SessionID = c.ID()

	select {
	case <-c.Done():
	case <-ctx.Done():
		c.Stop()
	}
	atomic.AddInt64(&stats.SamplesSent, frames.Load())

	fillResult(&res, c.Snapshot())
	return res
}

// fillResult copies the final state of a session into res.
func fillResult(res *PlayerResult, snap session.Snapshot) {
	res.State = snap.State
	res.Score = snap.Score
	if snap.Summary != nil {
		res.Passed = snap.Summary.PassedCount
		res.Failed = snap.Summary.FailedCount
		res.Accuracies = append([]int(nil), snap.Summary.PerRoundBestAccuracy...)
	}
}
