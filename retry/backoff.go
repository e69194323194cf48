// Package retry holds the pure timing policy shared by the request executor
// and the job poller: backoff schedules, retry eligibility, Retry-After
// parsing, and adaptive poll cadence. Nothing here performs I/O or sleeps,
// so callers decide how a wait is expressed without changing its duration.
package retry

import (
	"math"
	"strconv"
	"time"
)

// Policy describes a bounded-retry exponential backoff schedule.
type Policy struct {
	MaxRetries   int           // retries after the first attempt; total attempts = MaxRetries+1
	InitialDelay time.Duration // delay before the first retry
	MaxDelay     time.Duration // ceiling for computed delays
	Multiplier   float64       // growth factor per retry
}

// DefaultPolicy returns the schedule used by the client:
// 0.5s, 1s, 2s, ... capped at 30s, two retries.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Delay returns the wait before the retry that follows attempt n (0-indexed).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}

// RetryableStatus reports whether an HTTP status is transient: server errors
// and rate limiting are retried, everything below 500 (including 4xx) is not.
func RetryableStatus(status int) bool {
	return status >= 500 || status == 429
}

// ParseRetryAfter parses a Retry-After header value as float seconds.
// HTTP-date forms, negatives, and garbage report false.
func ParseRetryAfter(header string) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(header, 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}
