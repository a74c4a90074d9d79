// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Durations are plain millisecond integers so env vars stay simple.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"strings"
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/round"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Round timing and pass rule.
	RoundTimeLimitMS        int `koanf:"round_time_limit_ms"`
	HoldDurationMS          int `koanf:"hold_duration_ms"`
	PassThreshold           int `koanf:"pass_threshold"`
	DeadlineCheckIntervalMS int `koanf:"deadline_check_interval_ms"`
	SampleIntervalMS        int `koanf:"sample_interval_ms"`

	// SessionQueueSize bounds each session's update queue.
	SessionQueueSize int `koanf:"session_queue_size"`

	// MaxSessions caps concurrently running sessions.
	MaxSessions int `koanf:"max_sessions"`

	// SessionRetentionMS is how long finished sessions stay readable.
	SessionRetentionMS int `koanf:"session_retention_ms"`

	// Challenges is a comma separated list of challenge ids sessions draw
	// from. Empty means every built-in challenge.
	Challenges string `koanf:"challenges"`

	// ChallengesPerSession is how many challenges a session draws.
	ChallengesPerSession int `koanf:"challenges_per_session"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// LeaderboardCapacity is how many entries survive a merge.
	LeaderboardCapacity int `koanf:"leaderboard_capacity"`

	// LeaderboardKey names the stored leaderboard blob.
	LeaderboardKey string `koanf:"leaderboard_key"`

	// StoreBackend selects persistence: memory, file or sqlite.
	StoreBackend string `koanf:"store_backend"`

	// StorePath is a directory for file and a database file for sqlite.
	StorePath string `koanf:"store_path"`

	// ScoringMode is geometric (continuous hold) or oracle (judged).
	ScoringMode string `koanf:"scoring_mode"`

	// OracleURL points at a remote judge. Empty uses the simulated judge.
	OracleURL       string `koanf:"oracle_url"`
	OracleTimeoutMS int    `koanf:"oracle_timeout_ms"`
	OracleRetries   int    `koanf:"oracle_retries"`

	// JudgeTimeoutMS bounds one judgement including retries.
	JudgeTimeoutMS int `koanf:"judge_timeout_ms"`

	// ScoringLatencyMinMS and ScoringLatencyMaxMS bound the simulated judge latency.
	ScoringLatencyMinMS int `koanf:"scoring_latency_min_ms"`
	ScoringLatencyMaxMS int `koanf:"scoring_latency_max_ms"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		RoundTimeLimitMS:        int(round.DefaultTimeLimit / time.Millisecond),
		HoldDurationMS:          int(round.DefaultHoldDuration / time.Millisecond),
		PassThreshold:           round.DefaultPassThreshold,
		DeadlineCheckIntervalMS: 200,
		SampleIntervalMS:        100,
		SessionQueueSize:        64,
		MaxSessions:             64,
		SessionRetentionMS:      600_000,
		ChallengesPerSession:    3,
		MaxLeaderboardLimit:     100,
		LeaderboardCapacity:     200,
		LeaderboardKey:          "leaderboard",
		StoreBackend:            "sqlite",
		StorePath:               "arena.db",
		ScoringMode:             "geometric",
		OracleTimeoutMS:         3000,
		OracleRetries:           2,
		JudgeTimeoutMS:          10_000,
		ScoringLatencyMinMS:     80,
		ScoringLatencyMaxMS:     150,
	}
}

// RoundConfig converts the round settings. ScoringMode must already be valid.
func (c *Config) RoundConfig() round.Config {
	strategy, _ := round.ParseStrategy(strings.ToLower(strings.TrimSpace(c.ScoringMode)))
	return round.Config{
		TimeLimit:     ms(c.RoundTimeLimitMS),
		HoldDuration:  ms(c.HoldDurationMS),
		PassThreshold: c.PassThreshold,
		Strategy:      strategy,
	}
}

// ChallengeIDs splits Challenges, dropping blanks.
func (c *Config) ChallengeIDs() []string {
	var ids []string
	for _, id := range strings.Split(c.Challenges, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// Durations.
func (c *Config) DeadlineCheckInterval() time.Duration { return ms(c.DeadlineCheckIntervalMS) }
func (c *Config) SampleInterval() time.Duration        { return ms(c.SampleIntervalMS) }
func (c *Config) SessionRetention() time.Duration      { return ms(c.SessionRetentionMS) }
func (c *Config) OracleTimeout() time.Duration         { return ms(c.OracleTimeoutMS) }
func (c *Config) JudgeTimeout() time.Duration          { return ms(c.JudgeTimeoutMS) }
func (c *Config) ScoringLatencyMin() time.Duration     { return ms(c.ScoringLatencyMinMS) }
func (c *Config) ScoringLatencyMax() time.Duration     { return ms(c.ScoringLatencyMaxMS) }
