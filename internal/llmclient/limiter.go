package llmclient

import (
	"time"

	"golang.org/x/time/rate"
)

// newLimiter converts a requests-per-minute budget into a token bucket.
// Zero or less means unlimited.
func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}
