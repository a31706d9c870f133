package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestInsightCache(cutoverHour, capacity int) (*InsightCache, *testClock) {
	clock := newTestClock()
	c := NewInsightCache(time.UTC, cutoverHour, capacity, FallbackInsight)
	c.now = clock.Now
	return c, clock
}

func TestInsightPeriodKeyRollsAtCutover(t *testing.T) {
	c, clock := newTestInsightCache(6, 10)

	// Base clock is 12:00 UTC on 2026-01-15.
	assert.Equal(t, "2026-01-15", c.PeriodKey())

	// 05:59 the next morning still belongs to the 15th.
	clock.Advance(17*time.Hour + 59*time.Minute)
	assert.Equal(t, "2026-01-15", c.PeriodKey())

	clock.Advance(time.Minute)
	assert.Equal(t, "2026-01-16", c.PeriodKey())
}

func TestInsightCacheStablePerPeriod(t *testing.T) {
	c, clock := newTestInsightCache(6, 10)

	var computes atomic.Int32
	compute := func(context.Context) (Insight, error) {
		n := computes.Add(1)
		return Insight{ID: "i", Text: string(rune('a' + n))}, nil
	}

	first := c.GetOrCompute(context.Background(), "u1", compute)
	clock.Advance(4 * time.Hour)
	second := c.GetOrCompute(context.Background(), "u1", compute)

	assert.Equal(t, first, second, "same user, same period, same insight")
	assert.Equal(t, int32(1), computes.Load())

	// Crossing the cutover starts a new period and a new computation.
	clock.Advance(15 * time.Hour)
	third := c.GetOrCompute(context.Background(), "u1", compute)
	assert.NotEqual(t, first.Text, third.Text)
	assert.Equal(t, int32(2), computes.Load())
}

func TestInsightCacheCoalescesPerUser(t *testing.T) {
	c, _ := newTestInsightCache(6, 10)

	var computes atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	compute := func(context.Context) (Insight, error) {
		computes.Add(1)
		close(started)
		<-release
		return Insight{ID: "i1", Text: "shared"}, nil
	}

	var wg sync.WaitGroup
	results := make([]Insight, 6)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = c.GetOrCompute(context.Background(), "u1", compute)
	}()
	<-started

	for i := 1; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.GetOrCompute(context.Background(), "u1", compute)
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), computes.Load())
	for _, r := range results {
		assert.Equal(t, "shared", r.Text)
	}
}

func TestInsightCacheIndependentUsers(t *testing.T) {
	c, _ := newTestInsightCache(6, 10)

	var computes atomic.Int32
	compute := func(context.Context) (Insight, error) {
		computes.Add(1)
		return Insight{ID: "i", Text: "t"}, nil
	}

	c.GetOrCompute(context.Background(), "u1", compute)
	c.GetOrCompute(context.Background(), "u2", compute)
	assert.Equal(t, int32(2), computes.Load(), "users compute independently")
}

func TestInsightCacheFailureCachesFallbackForPeriod(t *testing.T) {
	c, _ := newTestInsightCache(6, 10)

	var computes atomic.Int32
	failing := func(context.Context) (Insight, error) {
		computes.Add(1)
		return Insight{}, errors.New("provider down")
	}

	first := c.GetOrCompute(context.Background(), "u1", failing)
	assert.NotEmpty(t, first.Text, "fallback insight is still a real insight")

	second := c.GetOrCompute(context.Background(), "u1", failing)
	assert.Equal(t, first, second, "fallback stays stable for the period")
	assert.Equal(t, int32(1), computes.Load(), "failure is not retried within the period")
}

func TestInsightCacheEvictsAtCapacity(t *testing.T) {
	c, clock := newTestInsightCache(6, 2)

	compute := func(context.Context) (Insight, error) {
		return Insight{ID: "i", Text: "t"}, nil
	}

	c.GetOrCompute(context.Background(), "u1", compute)
	clock.Advance(time.Second)
	c.GetOrCompute(context.Background(), "u2", compute)
	clock.Advance(time.Second)
	c.GetOrCompute(context.Background(), "u3", compute)

	assert.Equal(t, 2, c.Len())
}

func TestFallbackInsightDeterministic(t *testing.T) {
	a := FallbackInsight("u1", "2026-01-15")
	b := FallbackInsight("u1", "2026-01-15")
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a.Text)
}
