package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value      T
	capturedAt time.Time
	ttl        time.Duration
}

func (e entry[T]) expired(now time.Time) bool {
	return now.Sub(e.capturedAt) > e.ttl
}

// Cache is a process-wide TTL cache. It is a pass-through cache: reads
// never renew the capture timestamp. Guarded by a mutex because reads,
// evictions and writes run on genuinely parallel goroutines.
type Cache[T any] struct {
	mu         sync.Mutex
	entries    map[string]entry[T]
	defaultTTL time.Duration
	now        func() time.Time
}

// Option configures a Cache
type Option[T any] func(*Cache[T])

// WithClock replaces the time source, for tests
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Cache[T]) {
		c.now = now
	}
}

// New creates a Cache with the given default TTL
func New[T any](defaultTTL time.Duration, opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{
		entries:    make(map[string]entry[T]),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores a value captured now. An explicit ttl overrides the default.
func (c *Cache[T]) Set(key string, value T, ttl ...time.Duration) {
	d := c.defaultTTL
	if len(ttl) > 0 {
		d = ttl[0]
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[T]{
		value:      value,
		capturedAt: c.now(),
		ttl:        d,
	}
}

// Get returns the live value for the key. An expired entry is evicted and
// reported as absent. The capture timestamp is never touched.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		var zero T
		return zero, false
	}

	return e.value, true
}

// GetStale returns the value regardless of expiry, flagging staleness.
// An absent key yields the zero value with isStale == true. The entry is
// never evicted here; stale-while-revalidate callers serve it as-is while
// a background refresh replaces it.
func (c *Cache[T]) GetStale(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, true
	}

	return e.value, e.expired(c.now())
}

// Delete removes the entry for the key
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[T])
}

// Stats describes the current cache content for observability
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// GetStats returns the current size and key set
func (c *Cache[T]) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return Stats{Size: len(c.entries), Keys: keys}
}
