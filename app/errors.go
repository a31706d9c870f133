package app

import (
	"errors"
	"fmt"
	"time"
)

// ErrUpstreamUnavailable marks an upstream call that failed after all retry
// attempts. Read paths convert it into stale or fallback data at the fetch
// boundary; it never surfaces as an HTTP error.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// TooSoonError is returned when a user-initiated refresh is throttled. It is
// a distinguishable, non-fatal signal: the caller still receives the user's
// current value alongside it.
type TooSoonError struct {
	RetryAfter time.Duration
}

func (e *TooSoonError) Error() string {
	return fmt.Sprintf("refresh throttled, retry in %s", e.RetryAfter)
}
