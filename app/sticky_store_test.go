package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStickyStore(capacity int, minRefresh time.Duration) (*StickyStore[string], *testClock) {
	clock := newTestClock()
	s := NewStickyStore[string](capacity, minRefresh)
	s.now = clock.Now
	return s, clock
}

func TestStickyStoreReadIsPure(t *testing.T) {
	s, _ := newTestStickyStore(10, time.Minute)

	_, ok := s.Read("u1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len(), "reads must not create entries")

	s.Write("u1", "hello")
	e, ok := s.Read("u1")
	require.True(t, ok)
	assert.Equal(t, "hello", e.Value)
}

func TestStickyStoreRefreshThrottle(t *testing.T) {
	s, clock := newTestStickyStore(10, time.Minute)

	// First refresh for an unknown user is always allowed.
	wait, ok := s.TryRefresh("u1")
	assert.True(t, ok)
	assert.Equal(t, time.Duration(0), wait)

	s.Write("u1", "v1")
	written, _ := s.Read("u1")

	clock.Advance(20 * time.Second)
	wait, ok = s.TryRefresh("u1")
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, wait)

	// A denied refresh leaves the record untouched.
	after, _ := s.Read("u1")
	assert.Equal(t, written.UpdatedAt, after.UpdatedAt)
	assert.Equal(t, "v1", after.Value)

	clock.Advance(40 * time.Second)
	_, ok = s.TryRefresh("u1")
	assert.True(t, ok)
}

func TestStickyStoreSeedDoesNotBurnRefreshBudget(t *testing.T) {
	s, _ := newTestStickyStore(10, time.Minute)

	e := s.Seed("u1", "starter")
	assert.Equal(t, "starter", e.Value)
	assert.True(t, e.LastRefreshAt.IsZero())

	// Seeding must not delay the user's first real refresh.
	_, ok := s.TryRefresh("u1")
	assert.True(t, ok)

	// Seeding again is a no-op.
	e = s.Seed("u1", "other")
	assert.Equal(t, "starter", e.Value)
}

func TestStickyStoreEvictsOldestWrite(t *testing.T) {
	s, clock := newTestStickyStore(3, time.Minute)

	for i := 1; i <= 3; i++ {
		s.Write(fmt.Sprintf("u%d", i), "v")
		clock.Advance(time.Second)
	}

	// Rewriting u1 makes u2 the oldest write.
	s.Write("u1", "v2")
	clock.Advance(time.Second)

	s.Write("u4", "v")
	assert.Equal(t, 3, s.Len())

	_, ok := s.Read("u2")
	assert.False(t, ok, "the oldest write should have been evicted")
	_, ok = s.Read("u1")
	assert.True(t, ok)
	_, ok = s.Read("u4")
	assert.True(t, ok)
}
