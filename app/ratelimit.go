package app

import (
	"math"
	"sync"
	"time"
)

// TokenBucket is a mutex-serialized token bucket shared by all callers of a
// metered upstream. Refill and debit happen inside one critical section so
// concurrent callers cannot double-spend the elapsed-time refill.
type TokenBucket struct {
	mu          sync.Mutex
	tokens      float64
	capacity    float64
	refillPerMs float64
	lastRefill  time.Time
	now         func() time.Time
}

// NewTokenBucket returns a bucket that starts full. refillPerMinute is the
// sustained admission rate.
func NewTokenBucket(capacity, refillPerMinute float64) *TokenBucket {
	b := &TokenBucket{
		capacity:    capacity,
		tokens:      capacity,
		refillPerMs: refillPerMinute / float64(time.Minute/time.Millisecond),
		now:         time.Now,
	}
	b.lastRefill = b.now()
	return b
}

// refillLocked credits tokens for the time elapsed since the last refill,
// capped at capacity. Callers must hold b.mu.
func (b *TokenBucket) refillLocked() {
	now := b.now()
	elapsedMs := float64(now.Sub(b.lastRefill)) / float64(time.Millisecond)
	if elapsedMs <= 0 {
		return
	}
	b.tokens = math.Min(b.capacity, b.tokens+elapsedMs*b.refillPerMs)
	b.lastRefill = now
}

// TryConsume debits one token if at least one is available after refill.
func (b *TokenBucket) TryConsume() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// neverRefills is the advisory wait reported for a bucket whose rate is zero.
const neverRefills = time.Duration(math.MaxInt64)

// UntilNextToken reports how long until one full token will have
// accumulated. Advisory only: no token is reserved for the caller.
func (b *TokenBucket) UntilNextToken() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	if b.tokens >= 1 {
		return 0
	}
	if b.refillPerMs <= 0 {
		return neverRefills
	}
	ms := math.Ceil((1 - b.tokens) / b.refillPerMs)
	return time.Duration(ms) * time.Millisecond
}

// Tokens reports the current token count after refill.
func (b *TokenBucket) Tokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	return b.tokens
}
