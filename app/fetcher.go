package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// minRetryAfter floors any Retry-After hint so a hostile or buggy upstream
// cannot make us hammer it in a tight loop.
const minRetryAfter = 400 * time.Millisecond

// Fetcher performs a single logical upstream request with bounded retries on
// 429 and 5xx responses. Any other status is returned to the caller as-is;
// client errors other than rate limiting are never retried.
type Fetcher struct {
	Client      *http.Client
	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

func NewFetcher(timeout time.Duration, maxAttempts int, backoffBase, backoffMax time.Duration) *Fetcher {
	return &Fetcher{
		Client:      &http.Client{Timeout: timeout},
		MaxAttempts: maxAttempts,
		BackoffBase: backoffBase,
		BackoffMax:  backoffMax,
	}
}

// Do sends the request, retrying transient upstream failures with jittered
// exponential backoff. A Retry-After hint on the response overrides the
// computed delay. The request must have a nil body or a GetBody so it can be
// replayed. Exhausting all attempts yields ErrUpstreamUnavailable.
func (f *Fetcher) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.BackoffBase
	bo.MaxInterval = f.BackoffMax
	bo.MaxElapsedTime = 0
	bo.Reset()

	lastStatus := 0
	for attempt := 0; attempt < f.MaxAttempts; attempt++ {
		attemptReq := req
		if attempt > 0 {
			var err error
			attemptReq, err = replayableClone(req)
			if err != nil {
				return nil, fmt.Errorf("cloning request for retry: %w", err)
			}
		}

		resp, err := f.Client.Do(attemptReq)
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		delay := bo.NextBackOff()
		if delay > f.BackoffMax {
			delay = f.BackoffMax
		}
		if err != nil {
			lastStatus = 0
			slog.Warn("Upstream request failed",
				"method", req.Method, "url", req.URL.String(),
				"attempt", attempt+1, "error", err)
		} else {
			lastStatus = resp.StatusCode
			if hint, ok := retryAfterHint(resp); ok {
				delay = hint
			}
			// Drain so the connection can be reused.
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			slog.Warn("Upstream returned retryable status",
				"method", req.Method, "url", req.URL.String(),
				"status", resp.StatusCode, "attempt", attempt+1)
		}

		if attempt == f.MaxAttempts-1 {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: %s %s after %d attempts (last status %d)",
		ErrUpstreamUnavailable, req.Method, req.URL, f.MaxAttempts, lastStatus)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// retryAfterHint parses a Retry-After header, accepting both the
// delta-seconds and the HTTP-date forms, clamped to minRetryAfter.
func retryAfterHint(resp *http.Response) (time.Duration, bool) {
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return 0, false
	}
	var d time.Duration
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if secs < 0 {
			return 0, false
		}
		d = time.Duration(secs * float64(time.Second))
	} else if at, err := http.ParseTime(raw); err == nil {
		d = time.Until(at)
	} else {
		return 0, false
	}
	if d < minRetryAfter {
		d = minRetryAfter
	}
	return d, true
}

func replayableClone(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body is not replayable")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}
