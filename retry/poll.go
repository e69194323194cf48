package retry

import "time"

const (
	// adaptiveThreshold is the server ETA above which polling slows down.
	adaptiveThreshold = 60.0
	// adaptiveCeiling caps the adaptive interval.
	adaptiveCeiling = 30 * time.Second
)

// NextPollInterval returns the wait before the next job status poll.
// When the server estimates more than a minute of work remaining, the
// interval stretches to a third of the estimate, capped at 30s; otherwise
// the caller-supplied base interval is used.
func NextPollInterval(base time.Duration, etaSeconds float64) time.Duration {
	if etaSeconds > adaptiveThreshold {
		d := time.Duration(etaSeconds / 3 * float64(time.Second))
		if d > adaptiveCeiling {
			d = adaptiveCeiling
		}
		return d
	}
	return base
}
