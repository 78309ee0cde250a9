package backoff

import (
	"math"
	"time"
)

// Exponential returns the delay before retry number attempt: base^attempt
// seconds. attempt is the count after the current failure was recorded,
// so the first failure (attempt=1) waits base seconds. Deterministic and
// monotonically non-decreasing; no jitter, no cap.
func Exponential(base, attempt int) time.Duration {
	if base < 1 {
		base = 1
	}
	if attempt < 0 {
		attempt = 0
	}
	secs := math.Pow(float64(base), float64(attempt))
	return time.Duration(secs * float64(time.Second))
}
