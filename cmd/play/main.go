package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/kvstore"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/playtest"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/logger"
)

func main() {
	var (
		baseURL    = flag.String("url", "", "Server to play against (default: play in-process)")
		players    = flag.Int("players", playtest.DefaultPlayers, "Number of concurrent players")
		skill      = flag.Float64("skill", playtest.DefaultSkill, "Chance a player mirrors each challenge, 0..1")
		challenges = flag.String("challenges", "", "Comma separated challenge ids")
		roundTime  = flag.Duration("round", playtest.DefaultRoundTime, "In-process round time limit")
		hold       = flag.Duration("hold", playtest.DefaultHold, "In-process hold duration")
		mode       = flag.String("mode", "geometric", "In-process scoring mode: geometric or oracle")
		store      = flag.String("store", kvstore.BackendMemory, "In-process store backend: memory, file or sqlite")
		storePath  = flag.String("store-path", "", "In-process store path")
		frame      = flag.Duration("frame", playtest.DefaultFrameInterval, "Delay between frames")
		timeout    = flag.Duration("timeout", playtest.DefaultTimeout, "HTTP request timeout")
		topN       = flag.Int("top", playtest.DefaultTopN, "Leaderboard entries to fetch")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "Seed for player choices")
		output     = flag.String("output", "", "Write a JSON report to this file")
		verbose    = flag.Bool("verbose", false, "Log every finished player")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		playtest.ShowHelp()
		return
	}

	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &playtest.Config{
		BaseURL:       strings.TrimRight(*baseURL, "/"),
		Players:       *players,
		Skill:         *skill,
		Challenges:    splitList(*challenges),
		RoundTime:     *roundTime,
		Hold:          *hold,
		Mode:          *mode,
		Store:         *store,
		StorePath:     *storePath,
		FrameInterval: *frame,
		Timeout:       *timeout,
		TopN:          *topN,
		Seed:          *seed,
		OutputFile:    *output,
		Verbose:       *verbose,
	}

	rep, err := playtest.Run(ctx, cfg)
	if rep != nil {
		_ = playtest.WriteReport(os.Stdout, rep)
	}
	if err != nil {
		logger.Get().Error(ctx, "play failed", logger.Error(err))
		if errors.Is(err, playtest.ErrInvalidConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
