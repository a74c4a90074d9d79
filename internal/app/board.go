package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/kvstore"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/leaderboard"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/session"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/logger"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/metrics"
)

// Board defaults.
const (
	DefaultLeaderboardKey = "leaderboard"
	storeWriteRetries     = 2
	storeWriteBackoff     = 25 * time.Millisecond
)

// Board binds the leaderboard merge rules to a blob store. Writes are
// serialized so two sessions finishing together cannot lose an update.
type Board struct {
	mu       sync.Mutex
	store    kvstore.Store
	key      string
	capacity int
	now      func() time.Time
	logger   logger.Logger
}

// BoardOption configures a Board.
type BoardOption func(*Board)

// WithBoardKey sets the store key holding the serialized leaderboard.
func WithBoardKey(key string) BoardOption {
	return func(b *Board) {
		if key != "" {
			b.key = key
		}
	}
}

// WithBoardCapacity caps how many entries survive a merge.
func WithBoardCapacity(n int) BoardOption {
	return func(b *Board) {
		if n > 0 {
			b.capacity = n
		}
	}
}

// WithBoardClock overrides the time source.
func WithBoardClock(now func() time.Time) BoardOption {
	return func(b *Board) {
		if now != nil {
			b.now = now
		}
	}
}

// WithBoardLogger sets a custom logger.
func WithBoardLogger(l logger.Logger) BoardOption {
	return func(b *Board) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBoard creates a board persisted in store.
func NewBoard(store kvstore.Store, opts ...BoardOption) *Board {
	b := &Board{
		store:    store,
		key:      DefaultLeaderboardKey,
		capacity: leaderboard.DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logger.Get().Named("leaderboard")
	}
	return b
}

// load reads the stored collection. A missing key is empty. Corrupt content
// is logged and treated as empty; a store failure is returned.
func (b *Board) load(ctx context.Context) ([]leaderboard.Entry, error) {
	start := time.Now()
	blob, err := b.store.Get(ctx, b.key)
	metrics.RecordStoreLatency("get", float64(time.Since(start).Milliseconds()))
	if errors.Is(err, kvstore.ErrNotFound) {
		return []leaderboard.Entry{}, nil
	}
	if err != nil {
		metrics.RecordErrorByComponent("leaderboard", "load_error")
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}

	entries, err := leaderboard.Decode(blob)
	if err != nil {
		metrics.RecordLeaderboardCorrupt()
		b.logger.Warn(ctx, "stored leaderboard is corrupt, starting empty",
			logger.String("key", b.key),
			logger.Error(err),
		)
	}
	return entries, nil
}

// Submit merges a finished session and persists the result. If the store
// cannot be read the stored value is left untouched.
func (b *Board) Submit(ctx context.Context, sum session.Summary) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.load(ctx)
	if err != nil {
		return err
	}

	merged := leaderboard.Merge(entries, sum, b.now(), b.capacity)
	blob, err := leaderboard.Encode(merged)
	if err != nil {
		return fmt.Errorf("encode leaderboard: %w", err)
	}

	backoff := retry.WithMaxRetries(storeWriteRetries, retry.NewConstant(storeWriteBackoff))
	start := time.Now()
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := b.store.Set(ctx, b.key, blob); err != nil {
			if ctx.Err() != nil || errors.Is(err, kvstore.ErrInvalidKey) {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	metrics.RecordStoreLatency("set", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordErrorByComponent("leaderboard", "save_error")
		return fmt.Errorf("save leaderboard: %w", err)
	}

	metrics.RecordLeaderboardMerge(len(merged))
	b.logger.Debug(ctx, "leaderboard updated",
		logger.String("player", sum.PlayerName),
		logger.Int("score", sum.TotalScore),
		logger.Int("entries", len(merged)),
	)
	return nil
}

// Top returns at most limit ranked entries inside window. A limit <= 0
// returns every entry.
func (b *Board) Top(ctx context.Context, window leaderboard.Window, limit int) ([]leaderboard.Ranked, error) {
	view, err := b.view(ctx, window)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(view) > limit {
		view = view[:limit]
	}
	return view, nil
}

// Rank returns name's standing inside window.
func (b *Board) Rank(ctx context.Context, name string, window leaderboard.Window) (leaderboard.Ranked, error) {
	view, err := b.view(ctx, window)
	if err != nil {
		return leaderboard.Ranked{}, err
	}
	r, ok := leaderboard.Find(view, name)
	if !ok {
		return leaderboard.Ranked{}, fmt.Errorf("%w: %q", ErrPlayerNotRanked, name)
	}
	return r, nil
}

// Count returns the number of stored entries, or 0 if the store is unreadable.
func (b *Board) Count(ctx context.Context) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.load(ctx)
	if err != nil {
		return 0
	}
	return len(entries)
}

func (b *Board) view(ctx context.Context, window leaderboard.Window) ([]leaderboard.Ranked, error) {
	b.mu.Lock()
	entries, err := b.load(ctx)
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return leaderboard.View(entries, window, b.now()), nil
}
