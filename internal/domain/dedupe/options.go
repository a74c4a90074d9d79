package dedupe

// Option configures an in-memory latch.
type Option func(*inMemoryLatch)

// WithMaxSize sets how many ids are remembered before the oldest is evicted.
// maxSize <= 0 disables eviction.
func WithMaxSize(maxSize int) Option {
	return func(l *inMemoryLatch) {
		l.maxSize = maxSize
	}
}
