package app

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// cacheEntry is immutable once stored; refreshes replace it wholesale.
type cacheEntry[V any] struct {
	value    V
	storedAt time.Time
}

// inflightCall is the shared handle for the single outstanding load of a
// key. Every caller that observed the same miss waits on done and reads the
// same value. On failure that value is already the stale/fallback substitute,
// so all coalesced callers agree.
type inflightCall[V any] struct {
	done  chan struct{}
	value V
}

// KeyedCache is a TTL cache that guarantees at most one concurrent loader
// invocation per key, gates loads on a shared token bucket, and degrades to
// stale or static data instead of blocking callers on the limiter. When no
// token is available it schedules an idempotent deferred refresh for the key
// and returns immediately with the best data it has.
type KeyedCache[K comparable, V any] struct {
	name     string
	ttl      time.Duration
	limiter  *TokenBucket
	fallback func(K) V

	mu        sync.Mutex
	entries   map[K]cacheEntry[V]
	inflight  map[K]*inflightCall[V]
	scheduled map[K]struct{}

	now      func() time.Time
	schedule func(time.Duration, func())
}

func NewKeyedCache[K comparable, V any](name string, ttl time.Duration, limiter *TokenBucket, fallback func(K) V) *KeyedCache[K, V] {
	return &KeyedCache[K, V]{
		name:      name,
		ttl:       ttl,
		limiter:   limiter,
		fallback:  fallback,
		entries:   make(map[K]cacheEntry[V]),
		inflight:  make(map[K]*inflightCall[V]),
		scheduled: make(map[K]struct{}),
		now:       time.Now,
		schedule:  func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// Get returns the freshest value available for key without ever blocking on
// the rate limiter. Fresh entry: returned directly. Miss with a load already
// in flight: waits for and shares that result. Miss with a token available:
// invokes load once on behalf of all concurrent callers. Miss without a
// token: returns stale/fallback data immediately and leaves a deferred
// refresh behind.
func (c *KeyedCache[K, V]) Get(ctx context.Context, key K, load func(context.Context) (V, error)) V {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Sub(e.storedAt) < c.ttl {
		c.mu.Unlock()
		return e.value
	}

	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-call.done
		return call.value
	}

	if !c.limiter.TryConsume() {
		stale, hasStale := c.entries[key]
		c.scheduleRefreshLocked(key, load)
		c.mu.Unlock()
		if hasStale {
			return stale.value
		}
		return c.fallback(key)
	}

	call := &inflightCall[V]{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	return c.runLoad(ctx, key, call, load)
}

// runLoad executes the loader as the key's single in-flight call, stores the
// result on success, and substitutes stale/fallback data on failure.
func (c *KeyedCache[K, V]) runLoad(ctx context.Context, key K, call *inflightCall[V], load func(context.Context) (V, error)) V {
	// The in-flight registration must be cleared however the load ends;
	// leaving it behind would wedge the key permanently.
	defer func() {
		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
		close(call.done)
	}()

	value, err := load(ctx)

	c.mu.Lock()
	if err != nil {
		if stale, ok := c.entries[key]; ok {
			value = stale.value
		} else {
			value = c.fallback(key)
		}
	} else {
		c.entries[key] = cacheEntry[V]{value: value, storedAt: c.now()}
	}
	c.mu.Unlock()

	if err != nil {
		slog.Warn("Cache load failed, serving stale/fallback data",
			"cache", c.name, "error", err)
	}

	call.value = value
	return value
}

// scheduleRefreshLocked arranges a background refresh for key once the
// bucket is expected to have a token. At most one refresh is ever pending
// per key. Callers must hold c.mu.
func (c *KeyedCache[K, V]) scheduleRefreshLocked(key K, load func(context.Context) (V, error)) {
	if _, pending := c.scheduled[key]; pending {
		return
	}
	c.scheduled[key] = struct{}{}

	wait := c.limiter.UntilNextToken()
	if wait <= 0 {
		wait = time.Millisecond
	}
	slog.Debug("Scheduling deferred cache refresh", "cache", c.name, "wait", wait)
	c.schedule(wait, func() { c.backgroundRefresh(key, load) })
}

// backgroundRefresh runs when a deferred refresh fires. If a foreground load
// has appeared in the meantime there is nothing to do; if the bucket is
// still empty it reschedules itself; otherwise it performs the load,
// swallowing errors so the stale entry is preserved.
func (c *KeyedCache[K, V]) backgroundRefresh(key K, load func(context.Context) (V, error)) {
	c.mu.Lock()
	delete(c.scheduled, key)

	if _, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		return
	}
	if !c.limiter.TryConsume() {
		c.scheduleRefreshLocked(key, load)
		c.mu.Unlock()
		return
	}

	call := &inflightCall[V]{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	c.runLoad(ctx, key, call, load)
}

// Len reports the number of stored entries.
func (c *KeyedCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
