package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/kvstore"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/round"
)

// Environment names.
const (
	EnvPrefix = "ARENA_"
	EnvFile   = "ARENA_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if ARENA_CONFIG is set
//  3. env (prefix ARENA_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// ARENA_SESSION_QUEUE_SIZE -> session_queue_size; underscores are kept
	// to match the flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	switch {
	case strings.TrimSpace(c.Addr) == "":
		return invalid("addr must not be empty")
	case c.RoundTimeLimitMS <= 0:
		return invalid("round_time_limit_ms must be positive")
	case c.HoldDurationMS <= 0 || c.HoldDurationMS >= c.RoundTimeLimitMS:
		return invalid("hold_duration_ms must be positive and shorter than the round")
	case c.PassThreshold < 1 || c.PassThreshold > 100:
		return invalid("pass_threshold must be within 1..100")
	case c.DeadlineCheckIntervalMS <= 0 || c.SampleIntervalMS <= 0:
		return invalid("deadline_check_interval_ms and sample_interval_ms must be positive")
	case c.MaxSessions <= 0 || c.SessionQueueSize <= 0:
		return invalid("max_sessions and session_queue_size must be positive")
	case c.ScoringLatencyMinMS < 0 || c.ScoringLatencyMaxMS < c.ScoringLatencyMinMS:
		return invalid("scoring latency range is empty")
	}

	if _, ok := round.ParseStrategy(strings.ToLower(strings.TrimSpace(c.ScoringMode))); !ok {
		return invalid("unknown scoring_mode %q", c.ScoringMode)
	}
	switch strings.ToLower(strings.TrimSpace(c.StoreBackend)) {
	case kvstore.BackendMemory:
	case kvstore.BackendFile, kvstore.BackendSQLite:
		if strings.TrimSpace(c.StorePath) == "" {
			return invalid("store_path is required for the %s backend", c.StoreBackend)
		}
	default:
		return invalid("unknown store_backend %q", c.StoreBackend)
	}
	return nil
}
