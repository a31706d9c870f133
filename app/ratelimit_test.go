package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestBucket(capacity, refillPerMinute float64) (*TokenBucket, *time.Time) {
	b := NewTokenBucket(capacity, refillPerMinute)
	clock := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return clock }
	b.lastRefill = clock
	return b, &clock
}

func TestTokenBucketStartsFull(t *testing.T) {
	b, _ := newTestBucket(3, 60)

	assert.True(t, b.TryConsume())
	assert.True(t, b.TryConsume())
	assert.True(t, b.TryConsume())
	assert.False(t, b.TryConsume(), "fourth consume should fail with no time elapsed")
}

func TestTokenBucketRefillsOverTime(t *testing.T) {
	// 60 tokens/minute = one per second
	b, clock := newTestBucket(1, 60)

	assert.True(t, b.TryConsume())
	assert.False(t, b.TryConsume())

	*clock = clock.Add(500 * time.Millisecond)
	assert.False(t, b.TryConsume(), "half a token is not enough")

	*clock = clock.Add(500 * time.Millisecond)
	assert.True(t, b.TryConsume())
}

func TestTokenBucketCapsAtCapacity(t *testing.T) {
	b, clock := newTestBucket(2, 60)

	*clock = clock.Add(time.Hour)
	assert.True(t, b.TryConsume())
	assert.True(t, b.TryConsume())
	assert.False(t, b.TryConsume(), "idle time must not accumulate beyond capacity")
}

func TestTokenBucketUntilNextToken(t *testing.T) {
	b, clock := newTestBucket(1, 60)

	assert.Equal(t, time.Duration(0), b.UntilNextToken(), "full bucket needs no wait")

	assert.True(t, b.TryConsume())
	wait := b.UntilNextToken()
	assert.Equal(t, time.Second, wait)

	*clock = clock.Add(wait)
	assert.True(t, b.TryConsume(), "waiting the advised duration should yield a token")
}

func TestTokenBucketZeroRateNeverRefills(t *testing.T) {
	b, clock := newTestBucket(1, 0)

	assert.True(t, b.TryConsume(), "the bucket still starts full")

	*clock = clock.Add(time.Hour)
	assert.False(t, b.TryConsume())
	assert.Equal(t, neverRefills, b.UntilNextToken(), "a zero rate reports a finite, defined wait")
}

func TestTokenBucketConcurrentConsumesNeverOverspend(t *testing.T) {
	b := NewTokenBucket(10, 0.0001)

	results := make(chan bool, 100)
	for i := 0; i < 100; i++ {
		go func() { results <- b.TryConsume() }()
	}

	granted := 0
	for i := 0; i < 100; i++ {
		if <-results {
			granted++
		}
	}
	assert.Equal(t, 10, granted)
}
