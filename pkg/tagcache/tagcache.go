// Package tagcache is a read-through cache with tag-based invalidation.
// Entries are keyed by an opaque query signature and tagged with the
// identifiers of the entities the cached result depends on. A mutation
// reports the tags it touched; every entry whose tag set intersects goes
// stale and is refetched lazily on its next access.
//
// Concurrent callers for the same signature share a single in-flight
// fetch: late arrivals attach to the pending result instead of issuing
// another one.
package tagcache

import (
	"context"
	"sync"
	"time"
)

// FetchFunc loads a value from the boundary and reports the tags the
// result depends on.
type FetchFunc[V any] func(ctx context.Context) (V, []string, error)

// Observer receives cache traffic notifications. Implementations must be
// safe for concurrent use.
type Observer interface {
	Hit(signature string)
	Miss(signature string)
	Fetch(signature string)
}

// Option configures a Cache.
type Option[V any] func(*Cache[V])

// WithClock injects the time source used for entry ages.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) { c.now = now }
}

// WithMaxAge treats entries older than d as stale on access. Zero keeps
// entries fresh until invalidated.
func WithMaxAge[V any](d time.Duration) Option[V] {
	return func(c *Cache[V]) { c.maxAge = d }
}

// WithObserver wires traffic counters.
func WithObserver[V any](o Observer) Option[V] {
	return func(c *Cache[V]) { c.observer = o }
}

type entry[V any] struct {
	value       V
	err         error
	tags        map[string]struct{}
	fetchedAt   time.Time
	stale       bool
	loading     bool
	invalidated bool
	done        chan struct{}
}

// Cache maps query signatures to tagged results.
type Cache[V any] struct {
	mu       sync.Mutex
	entries  map[string]*entry[V]
	now      func() time.Time
	maxAge   time.Duration
	observer Observer
}

// New constructs an empty cache.
func New[V any](opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		entries: make(map[string]*entry[V]),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for signature, or runs fetch exactly once
// across all concurrent callers and caches its result. Fetch errors are
// returned to every attached caller and are never cached.
func (c *Cache[V]) Get(ctx context.Context, signature string, fetch FetchFunc[V]) (V, error) {
	c.mu.Lock()
	if e, ok := c.entries[signature]; ok {
		if e.loading {
			done := e.done
			c.mu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
				var zero V
				return zero, ctx.Err()
			}
			c.mu.Lock()
			defer c.mu.Unlock()
			if e.err != nil {
				var zero V
				return zero, e.err
			}
			// The shared fetch resolved; hand its result to this caller
			// even if a mutation already marked it stale again.
			return e.value, nil
		}
		if c.isFresh(e) {
			value := e.value
			c.mu.Unlock()
			c.observe(func(o Observer) { o.Hit(signature) })
			return value, nil
		}
	}

	// This caller becomes the fetcher for the signature.
	e := &entry[V]{loading: true, done: make(chan struct{})}
	c.entries[signature] = e
	c.mu.Unlock()

	c.observe(func(o Observer) { o.Miss(signature) })
	c.observe(func(o Observer) { o.Fetch(signature) })

	value, tags, err := fetch(ctx)

	c.mu.Lock()
	e.loading = false
	if err != nil {
		e.err = err
		if c.entries[signature] == e {
			delete(c.entries, signature)
		}
		close(e.done)
		c.mu.Unlock()
		var zero V
		return zero, err
	}
	e.value = value
	e.tags = make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		e.tags[tag] = struct{}{}
	}
	e.fetchedAt = c.now()
	// An invalidation that raced the fetch lands the result already
	// stale, forcing the next access to refetch.
	e.stale = e.invalidated
	close(e.done)
	c.mu.Unlock()
	return value, nil
}

// Invalidate marks every entry whose tag set intersects the touched tags
// as stale. Stale entries stay resident and are refetched on next access.
// Returns the number of entries affected.
func (c *Cache[V]) Invalidate(tags ...string) int {
	if len(tags) == 0 {
		return 0
	}
	touched := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		touched[tag] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	affected := 0
	for _, e := range c.entries {
		if e.loading {
			// Tags are unknown until the fetch lands; be conservative.
			e.invalidated = true
			affected++
			continue
		}
		if intersects(e.tags, touched) {
			e.stale = true
			affected++
		}
	}
	return affected
}

// Len reports the number of resident entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) isFresh(e *entry[V]) bool {
	if e.stale {
		return false
	}
	if c.maxAge > 0 && c.now().Sub(e.fetchedAt) > c.maxAge {
		return false
	}
	return true
}

func (c *Cache[V]) observe(fn func(Observer)) {
	if c.observer != nil {
		fn(c.observer)
	}
}

func intersects(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for key := range a {
		if _, ok := b[key]; ok {
			return true
		}
	}
	return false
}
