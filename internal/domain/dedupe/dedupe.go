// Package dedupe provides the single-resolution latch used by sessions: the
// first resolution recorded for a round id wins and later ones are rejected.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultMaxSize bounds the latch when no option is given.
const DefaultMaxSize = 1024

// Latch records round ids whose resolution has already been applied.
type Latch interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord releases id so a later resolution can be recorded again.
	// Used when applying a recorded resolution failed.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type node struct {
	id         string
	prev, next *node
}

// inMemoryLatch keeps ids in insertion order and evicts the oldest when full.
// maxSize <= 0 keeps every id.
type inMemoryLatch struct {
	mu      sync.Mutex
	seen    map[string]*node
	oldest  *node
	newest  *node
	maxSize int
	size    atomic.Int64
}

// NewInMemoryLatch creates a latch with the given options.
func NewInMemoryLatch(opts ...Option) Latch {
	l := &inMemoryLatch{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(l)
	}
	l.seen = make(map[string]*node)
	return l
}

func (l *inMemoryLatch) SeenAndRecord(_ context.Context, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.seen[id]; exists {
		return true
	}
	if l.maxSize > 0 && len(l.seen) >= l.maxSize {
		l.unlink(l.oldest)
	}

	n := &node{id: id, prev: l.newest}
	if l.newest != nil {
		l.newest.next = n
	}
	l.newest = n
	if l.oldest == nil {
		l.oldest = n
	}
	l.seen[id] = n
	l.size.Add(1)
	return false
}

func (l *inMemoryLatch) Unrecord(_ context.Context, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n, exists := l.seen[id]; exists {
		l.unlink(n)
	}
}

// unlink removes n from the list and the map. Caller holds l.mu.
func (l *inMemoryLatch) unlink(n *node) {
	if n == nil {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.oldest = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.newest = n.prev
	}
	delete(l.seen, n.id)
	l.size.Add(-1)
}

func (l *inMemoryLatch) Size() int64 {
	return l.size.Load()
}
