package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecentSetTracksMembership(t *testing.T) {
	s := NewRecentSet(3)

	assert.False(t, s.Contains("a"))
	s.Add("a")
	assert.True(t, s.Contains("a"))
	assert.Equal(t, 1, s.Len())
}

func TestRecentSetEvictsOldestAtCapacity(t *testing.T) {
	s := NewRecentSet(3)

	s.Add("a")
	s.Add("b")
	s.Add("c")
	s.Add("d")

	assert.Equal(t, 3, s.Len())
	assert.False(t, s.Contains("a"), "the oldest member falls out of the window")
	assert.True(t, s.Contains("b"))
	assert.True(t, s.Contains("d"))
}

func TestRecentSetDuplicateAddIsNoop(t *testing.T) {
	s := NewRecentSet(2)

	s.Add("a")
	s.Add("a")
	s.Add("b")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("a"), "re-adding must not shorten a member's life")
}
