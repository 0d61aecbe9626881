// Package cache is the process-wide response cache for upstream payloads.
//
// Entries live for a fixed TTL chosen at construction. A janitor goroutine
// sweeps expired entries every CheckPeriod; reads never return an expired
// entry even if the sweep has not run yet.
package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/samber/mo"
)

const (
	DefaultTTL         = time.Hour
	DefaultCheckPeriod = 10 * time.Minute
)

type Options struct {
	// Name labels the cache's metrics.
	Name string
	TTL  time.Duration
	// CheckPeriod is the sweep interval. 0 means DefaultCheckPeriod; a
	// negative value disables the janitor.
	CheckPeriod time.Duration
	// MaxEntries bounds the cache with LRU eviction. 0 means unbounded.
	MaxEntries int
	// Now overrides the clock used for expiry. Defaults to time.Now.
	Now func() time.Time
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is safe for concurrent use. Create it with New and release the
// janitor with Close.
type Cache[V any] struct {
	name        string
	ttl         time.Duration
	checkPeriod time.Duration
	now         func() time.Time

	// mu serializes writers against the sweep so a fresh Set is never
	// removed by a sweep that peeked the old entry.
	mu    sync.Mutex
	items *expirable.LRU[string, entry[V]]

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func New[V any](opts Options) *Cache[V] {
	if opts.Name == "" {
		opts.Name = "default"
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.CheckPeriod == 0 {
		opts.CheckPeriod = DefaultCheckPeriod
	}
	if opts.MaxEntries < 0 {
		opts.MaxEntries = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Cache[V]{
		name:        opts.Name,
		ttl:         opts.TTL,
		checkPeriod: max(opts.CheckPeriod, 0),
		now:         opts.Now,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	// ttl 0 disables the LRU's own expiry goroutine; expiry runs on c.now.
	c.items = expirable.NewLRU[string, entry[V]](opts.MaxEntries, c.onEvict, 0)

	if opts.CheckPeriod > 0 {
		go c.janitor(opts.CheckPeriod)
	} else {
		close(c.done)
	}
	return c
}

// Get returns the cached value for key, or None when absent or expired.
func (c *Cache[V]) Get(key string) mo.Option[V] {
	e, ok := c.items.Get(key)
	if !ok || c.expired(e) {
		cacheMisses.WithLabelValues(c.name).Inc()
		return mo.None[V]()
	}
	cacheHits.WithLabelValues(c.name).Inc()
	return mo.Some(e.value)
}

// Set stores value under key for the cache's TTL, replacing any previous entry.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Add(key, entry[V]{value: value, expiresAt: c.now().Add(c.ttl)})
}

// Len counts stored entries, including expired ones not yet swept.
func (c *Cache[V]) Len() int {
	return c.items.Len()
}

func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// CheckPeriod is the janitor's sweep interval, 0 when sweeping is disabled.
func (c *Cache[V]) CheckPeriod() time.Duration {
	return c.checkPeriod
}

// Sweep removes every expired entry and reports how many were dropped.
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.items.Keys() {
		e, ok := c.items.Peek(key)
		if ok && c.expired(e) {
			c.items.Remove(key)
			removed++
		}
	}
	return removed
}

// Closed reports whether Close has been called.
func (c *Cache[V]) Closed() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}

// Close stops the janitor and waits for it to exit. Safe to call twice.
func (c *Cache[V]) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
	})
	<-c.done
}

func (c *Cache[V]) expired(e entry[V]) bool {
	return !c.now().Before(e.expiresAt)
}

func (c *Cache[V]) onEvict(string, entry[V]) {
	cacheEvictions.WithLabelValues(c.name).Inc()
}

func (c *Cache[V]) janitor(period time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.stop:
			return
		}
	}
}
