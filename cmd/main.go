package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/http/api"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/http/swagger"
	service "github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/app"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/config"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/logger"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Named("arena")

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// defaults -> optional file -> env
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop()

	go startMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, cfg),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("scoring_mode", cfg.ScoringMode),
			logger.String("store_backend", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		log.Error(ctx, "HTTP server failed", logger.Error(err))
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// newService maps configuration onto service options.
func newService(cfg *config.Config, log logger.Logger) *service.Service {
	return service.New(
		service.WithLogger(log),
		service.WithRoundConfig(cfg.RoundConfig()),
		service.WithChallenges(cfg.ChallengeIDs()),
		service.WithChallengesPerSession(cfg.ChallengesPerSession),
		service.WithQueueSize(cfg.SessionQueueSize),
		service.WithMaxSessions(cfg.MaxSessions),
		service.WithRetention(cfg.SessionRetention()),
		service.WithTickInterval(cfg.DeadlineCheckInterval()),
		service.WithSampleInterval(cfg.SampleInterval()),
		service.WithJudgeTimeout(cfg.JudgeTimeout()),
		service.WithStoreBackend(cfg.StoreBackend, cfg.StorePath),
		service.WithLeaderboard(cfg.LeaderboardKey, cfg.LeaderboardCapacity),
		service.WithOracle(cfg.OracleURL, cfg.OracleRetries, cfg.OracleTimeout()),
		service.WithScoringLatencyRange(cfg.ScoringLatencyMin(), cfg.ScoringLatencyMax()),
	)
}

// newMux registers the API docs and business API on a fresh mux.
func newMux(ctx context.Context, svc *service.Service, cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, cfg.MaxLeaderboardLimit).Register(ctx, mux)
	return mux
}

// startMetricsUpdater refreshes runtime and service gauges until ctx ends.
func startMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
			_ = svc.GetStats() // refreshes the active session gauge
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		metrics.RecordSystemGCPauseTime(float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond)
	}
}
