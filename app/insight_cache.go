package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Insight is one generated daily insight.
type Insight struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// insightRecord binds an insight to the period it was computed for. It is
// valid only while its period key matches the currently computed one.
type insightRecord struct {
	periodKey string
	item      Insight
	storedAt  time.Time
}

// InsightCache hands out one insight per user per period. The period rolls
// at a configured local hour rather than at midnight, so an insight
// generated late in the evening is not replaced minutes later at 00:01.
// Concurrent requests for the same user in an uncomputed period share a
// single computation.
type InsightCache struct {
	loc         *time.Location
	cutoverHour int
	capacity    int

	mu      sync.Mutex
	entries map[string]insightRecord

	group    singleflight.Group
	now      func() time.Time
	fallback func(userID, periodKey string) Insight
}

func NewInsightCache(loc *time.Location, cutoverHour, capacity int, fallback func(userID, periodKey string) Insight) *InsightCache {
	return &InsightCache{
		loc:         loc,
		cutoverHour: cutoverHour,
		capacity:    capacity,
		entries:     make(map[string]insightRecord),
		now:         time.Now,
		fallback:    fallback,
	}
}

// PeriodKey computes the current period identifier. Before the cutover hour
// the period is still the previous calendar day.
func (c *InsightCache) PeriodKey() string {
	t := c.now().In(c.loc)
	if t.Hour() < c.cutoverHour {
		t = t.AddDate(0, 0, -1)
	}
	return t.Format("2006-01-02")
}

// GetOrCompute returns the user's insight for the current period, invoking
// compute at most once per user per period across concurrent callers. On
// compute failure it reuses a stale same-period record when one exists,
// otherwise it caches and returns a local fallback so the period stays
// stable.
func (c *InsightCache) GetOrCompute(ctx context.Context, userID string, compute func(context.Context) (Insight, error)) Insight {
	period := c.PeriodKey()

	c.mu.Lock()
	if rec, ok := c.entries[userID]; ok && rec.periodKey == period {
		c.mu.Unlock()
		return rec.item
	}
	c.mu.Unlock()

	// singleflight clears the in-flight slot when the call settles, success
	// or failure, so a failed computation cannot wedge the user.
	v, _, _ := c.group.Do(userID+"\x00"+period, func() (interface{}, error) {
		return c.computeForPeriod(ctx, userID, period, compute), nil
	})
	return v.(Insight)
}

func (c *InsightCache) computeForPeriod(ctx context.Context, userID, period string, compute func(context.Context) (Insight, error)) Insight {
	// A previous winner for the same flight key may have stored it already.
	c.mu.Lock()
	if rec, ok := c.entries[userID]; ok && rec.periodKey == period {
		c.mu.Unlock()
		return rec.item
	}
	c.mu.Unlock()

	item, err := compute(ctx)
	if err != nil {
		slog.Warn("Insight computation failed, using local fallback",
			"user_id", userID, "period", period, "error", err)
		item = c.fallback(userID, period)
	}
	c.store(userID, period, item)
	return item
}

func (c *InsightCache) store(userID, period string, item Insight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[userID]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[userID] = insightRecord{periodKey: period, item: item, storedAt: c.now()}
}

// evictOldestLocked drops the record with the oldest store time. Callers
// must hold c.mu.
func (c *InsightCache) evictOldestLocked() {
	var victim string
	var oldest time.Time
	first := true
	for userID, rec := range c.entries {
		if first || rec.storedAt.Before(oldest) {
			victim = userID
			oldest = rec.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, victim)
	}
}

// Len reports the number of stored records.
func (c *InsightCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
