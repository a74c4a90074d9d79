// Package service runs game sessions and keeps the leaderboard. It
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/kvstore"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/mq/worker"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/oracle"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/leaderboard"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/pose"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/round"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/session"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/types"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/logger"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/metrics"
)

// Service defaults.
const (
	DefaultQueueSize            = 64
	DefaultMaxSessions          = 64
	DefaultRetention            = 10 * time.Minute
	DefaultChallengesPerSession = 3
)

// Service owns the running session controllers and the leaderboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry *pose.Registry
	store    kvstore.Store
	board    *Board
	judge    oracle.Judge
	sessions map[string]*Controller

	// Configuration
	roundCfg             round.Config
	challengeIDs         []string
	challengesPerSession int
	queueSize            int
	maxSessions          int
	retention            time.Duration
	tickInterval         time.Duration
	sampleInterval       time.Duration
	judgeTimeout         time.Duration
	storeBackend         string
	storePath            string
	leaderboardKey       string
	leaderboardCapacity  int
	oracleURL            string
	oracleRetries        int
	oracleTimeout        time.Duration
	scoringMinLatency    time.Duration
	scoringMaxLatency    time.Duration
	seed                 int64

	// State
	started bool
	baseCtx context.Context
	cancel  context.CancelFunc
	stopCh  chan struct{}
	pruneWG sync.WaitGroup
	rngMu   sync.Mutex
	rng     *rand.Rand
	now     func() time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRoundConfig sets round timings, threshold and scoring strategy.
func WithRoundConfig(cfg round.Config) Option {
	return func(s *Service) {
		s.roundCfg = cfg
	}
}

// WithChallenges restricts sessions to the given challenge ids. Unknown ids
// make Start fail.
func WithChallenges(ids []string) Option {
	return func(s *Service) {
		s.challengeIDs = append([]string(nil), ids...)
	}
}

// WithChallengesPerSession sets how many challenges a session draws when the
// caller does not pick them.
func WithChallengesPerSession(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.challengesPerSession = n
		}
	}
}

// WithQueueSize sets the capacity of each session's update queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxSessions caps concurrently running sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithRetention sets how long finished sessions stay readable.
func WithRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithTickInterval sets the deadline check period.
func WithTickInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}

// WithSampleInterval sets the tracker poll period for tracked sessions.
func WithSampleInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sampleInterval = d
		}
	}
}

// WithJudgeTimeout bounds a single judgement.
func WithJudgeTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.judgeTimeout = d
		}
	}
}

// WithStore injects an already opened store. The service closes it on Stop.
func WithStore(store kvstore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithStoreBackend selects the store Start opens when none is injected.
func WithStoreBackend(backend, path string) Option {
	return func(s *Service) {
		s.storeBackend = backend
		s.storePath = path
	}
}

// WithLeaderboard sets the store key and entry capacity of the leaderboard.
func WithLeaderboard(key string, capacity int) Option {
	return func(s *Service) {
		if key != "" {
			s.leaderboardKey = key
		}
		if capacity > 0 {
			s.leaderboardCapacity = capacity
		}
	}
}

// WithJudge injects the judge used by the judged strategy.
func WithJudge(j oracle.Judge) Option {
	return func(s *Service) {
		if j != nil {
			s.judge = j
		}
	}
}

// WithOracle configures a remote judge reached over HTTP.
func WithOracle(url string, retries int, attemptTimeout time.Duration) Option {
	return func(s *Service) {
		s.oracleURL = url
		if retries >= 0 {
			s.oracleRetries = retries
		}
		if attemptTimeout > 0 {
			s.oracleTimeout = attemptTimeout
		}
	}
}

// WithScoringLatencyRange sets the simulated judge latency range.
func WithScoringLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *Service) {
		if minLatency > 0 && maxLatency > minLatency {
			s.scoringMinLatency = minLatency
			s.scoringMaxLatency = maxLatency
		}
	}
}

// WithSeed seeds challenge sampling and the simulated judge.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:             make(map[string]*Controller),
		roundCfg:             round.DefaultConfig(),
		challengesPerSession: DefaultChallengesPerSession,
		queueSize:            DefaultQueueSize,
		maxSessions:          DefaultMaxSessions,
		retention:            DefaultRetention,
		tickInterval:         worker.DefaultTickInterval,
		sampleInterval:       worker.DefaultSampleInterval,
		judgeTimeout:         DefaultJudgeTimeout,
		storeBackend:         kvstore.BackendMemory,
		leaderboardKey:       DefaultLeaderboardKey,
		leaderboardCapacity:  leaderboard.DefaultCapacity,
		oracleRetries:        2,
		oracleTimeout:        3 * time.Second,
		scoringMinLatency:    80 * time.Millisecond,
		scoringMaxLatency:    150 * time.Millisecond,
		seed:                 time.Now().UnixNano(),
		stopCh:               make(chan struct{}),
		now:                  time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start validates the challenge set, opens the store and starts pruning
// finished sessions.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting arena service...")

	s.registry = pose.DefaultRegistry()
	if len(s.challengeIDs) > 0 {
		if _, err := s.registry.Select(s.challengeIDs); err != nil {
			return fmt.Errorf("configured challenges: %w", err)
		}
	}

	if s.store == nil {
		store, err := kvstore.Open(s.storeBackend, s.storePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
	}
	s.board = NewBoard(s.store,
		WithBoardKey(s.leaderboardKey),
		WithBoardCapacity(s.leaderboardCapacity),
		WithBoardClock(s.now),
		WithBoardLogger(s.logger.Named("leaderboard")),
	)

	if s.judge == nil && s.roundCfg.Strategy == round.StrategyJudged {
		if s.oracleURL != "" {
			s.judge = oracle.NewHTTPClient(s.oracleURL,
				oracle.WithRetries(s.oracleRetries),
				oracle.WithAttemptTimeout(s.oracleTimeout),
			)
			s.logger.Info(ctx, "using remote judge", logger.String("url", s.oracleURL))
		} else {
			s.judge = oracle.NewSimulated(s.registry,
				oracle.WithLatencyRange(s.scoringMinLatency, s.scoringMaxLatency),
				oracle.WithSeed(s.seed),
			)
			s.logger.Info(ctx, "using simulated judge")
		}
	}

	s.rng = rand.New(rand.NewSource(s.seed)) //nolint:gosec // challenge order only
	// Sessions outlive the request that created them.
	s.baseCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.stopCh = make(chan struct{})
	s.pruneWG.Add(1)
	go s.pruneLoop()

	s.started = true
	s.logger.Info(ctx, "arena service started",
		logger.String("store", s.storeBackend),
		logger.Int("maxSessions", s.maxSessions),
		logger.Int("queueSize", s.queueSize),
		logger.String("strategy", strategyName(s.roundCfg.Strategy)),
	)

	return nil
}

// Stop abandons running sessions, closes the store and stops pruning.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	controllers := make([]*Controller, 0, len(s.sessions))
	for _, c := range s.sessions {
		controllers = append(controllers, c)
	}
	s.mu.Unlock()

	s.logger.Info(context.Background(), "stopping arena service...")

	// Controllers must not hold s.mu while they finish.
	for _, c := range controllers {
		c.Stop()
	}

	close(s.stopCh)
	s.pruneWG.Wait()
	s.cancel()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "store close failed", logger.Error(err))
		}
	}

	metrics.UpdateActiveSessions(0)
	s.logger.Info(context.Background(), "arena service stopped")
}

// StartRequest describes a new session.
type StartRequest struct {
	PlayerName string
	// Challenges lists challenge ids in play order. Empty draws from the
	// configured set.
	Challenges []string
	// Tracker, when set, is polled for samples. Without one samples arrive
	// through SubmitSample.
	Tracker worker.Tracker
}

// StartSession creates and starts a session.
func (s *Service) StartSession(ctx context.Context, req StartRequest) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	if s.activeLocked() >= s.maxSessions {
		return nil, ErrTooManySessions
	}

	challenges, err := s.pickChallenges(req.Challenges)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(uuid.NewString(), req.PlayerName, challenges, s.roundCfg)
	if err != nil {
		return nil, err
	}

	c := NewController(sess, ControllerConfig{
		QueueSize:      s.queueSize,
		TickInterval:   s.tickInterval,
		SampleInterval: s.sampleInterval,
		JudgeTimeout:   s.judgeTimeout,
		Judge:          s.judge,
		Board:          s.board,
		Tracker:        req.Tracker,
		Clock:          s.now,
		Logger:         s.logger.Named("session"),
	})
	if err := c.Start(s.baseCtx); err != nil {
		return nil, err
	}
	s.sessions[sess.ID()] = c

	metrics.RecordSessionStarted()
	metrics.UpdateActiveSessions(s.activeLocked())
	s.logger.Debug(ctx, "session registered",
		logger.String("session", sess.ID()),
		logger.Int("rounds", len(challenges)),
	)
	return c, nil
}

// CreateSession starts a sample-driven session and returns its first
// snapshot.
func (s *Service) CreateSession(ctx context.Context, req types.StartSessionRequest) (session.Snapshot, error) {
	c, err := s.StartSession(ctx, StartRequest{PlayerName: req.PlayerName, Challenges: req.Challenges})
	if err != nil {
		return session.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

func (s *Service) pickChallenges(ids []string) ([]pose.Challenge, error) {
	if len(ids) > 0 {
		return s.registry.Select(ids)
	}

	pool := s.registry
	if len(s.challengeIDs) > 0 {
		selected, err := s.registry.Select(s.challengeIDs)
		if err != nil {
			return nil, err
		}
		pool = pose.NewRegistry(selected...)
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return pool.Sample(s.rng, s.challengesPerSession), nil
}

// SubmitSample hands a sample to a running session. It reports false when
// the session is busy with the previous sample or has ended.
func (s *Service) SubmitSample(ctx context.Context, id string, sample model.Sample) (bool, error) {
	c, err := s.controller(id)
	if err != nil {
		return false, err
	}
	return c.OfferSample(ctx, sample), nil
}

// Session returns the latest snapshot of a session.
func (s *Service) Session(id string) (session.Snapshot, error) {
	c, err := s.controller(id)
	if err != nil {
		return session.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// EndSession abandons a running session and returns its final snapshot.
// Ending a finished session just returns its snapshot.
func (s *Service) EndSession(ctx context.Context, id string) (session.Snapshot, error) {
	c, err := s.controller(id)
	if err != nil {
		return session.Snapshot{}, err
	}
	c.Stop()

	s.mu.RLock()
	active := s.activeLocked()
	s.mu.RUnlock()
	metrics.UpdateActiveSessions(active)

	s.logger.Debug(ctx, "session ended by request", logger.String("session", id))
	return c.Snapshot(), nil
}

func (s *Service) controller(id string) (*Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return c, nil
}

// Challenges lists the challenges sessions can draw from.
func (s *Service) Challenges() []types.Challenge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	registry := s.registry
	if registry == nil {
		registry = pose.DefaultRegistry()
	}
	all := registry.All()
	if len(s.challengeIDs) > 0 {
		if selected, err := registry.Select(s.challengeIDs); err == nil {
			all = selected
		}
	}

	out := make([]types.Challenge, len(all))
	for i, c := range all {
		out[i] = types.Challenge{
			ID:          c.ID,
			Name:        c.DisplayName,
			Description: c.Description,
		}
	}
	return out
}

// TopN returns the top n leaderboard entries inside window.
func (s *Service) TopN(ctx context.Context, window leaderboard.Window, n int) ([]types.Entry, error) {
	board, err := s.leaderboard()
	if err != nil {
		return nil, err
	}
	ranked, err := board.Top(ctx, window, n)
	if err != nil {
		return nil, err
	}

	// Convert to API format
	out := make([]types.Entry, len(ranked))
	for i, r := range ranked {
		out[i] = toEntry(r)
	}
	return out, nil
}

// Rank returns a player's standing inside window.
func (s *Service) Rank(ctx context.Context, name string, window leaderboard.Window) (types.Entry, error) {
	board, err := s.leaderboard()
	if err != nil {
		return types.Entry{}, err
	}
	r, err := board.Rank(ctx, name, window)
	if err != nil {
		return types.Entry{}, err
	}
	return toEntry(r), nil
}

func (s *Service) leaderboard() (*Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.board == nil {
		return nil, ErrNotStarted
	}
	return s.board, nil
}

func toEntry(r leaderboard.Ranked) types.Entry {
	return types.Entry{
		Rank:      r.Rank,
		Name:      r.Name,
		Score:     r.Score,
		Accuracy:  r.Accuracy,
		Timestamp: r.Timestamp,
		Attempts:  r.Attempts,
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"maxSessions": s.maxSessions,
		"queueSize":   s.queueSize,
		"strategy":    strategyName(s.roundCfg.Strategy),
		"store":       s.storeBackend,
	}

	if s.started {
		active := s.activeLocked()
		stats["activeSessions"] = active
		stats["trackedSessions"] = len(s.sessions)
		stats["leaderboardEntries"] = s.board.Count(context.Background())

		metrics.UpdateActiveSessions(active)
		metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	}

	return stats
}

func (s *Service) activeLocked() int {
	n := 0
	for _, c := range s.sessions {
		select {
		case <-c.Done():
		default:
			n++
		}
	}
	return n
}

func (s *Service) pruneLoop() {
	defer s.pruneWG.Done()

	interval := s.retention / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-t.C:
			s.prune()
		}
	}
}

// prune forgets sessions that ended more than the retention period ago.
func (s *Service) prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, c := range s.sessions {
		ended := c.EndedAt()
		if ended.IsZero() || now.Sub(ended) < s.retention {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	if removed > 0 {
		s.logger.Debug(context.Background(), "pruned finished sessions", logger.Int("count", removed))
	}
	metrics.UpdateActiveSessions(s.activeLocked())
	return removed
}

func strategyName(st round.Strategy) string {
	if st == round.StrategyJudged {
		return "oracle"
	}
	return "geometric"
}

