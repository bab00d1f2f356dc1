package generate

import (
	"errors"
	"math/rand/v2"
	"time"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed): 2s, 4s, 8s, ...
// capped at 60s, plus up to 50% jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * 2 * time.Second
	if base > 60*time.Second || base <= 0 {
		base = 60 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// DefaultMaxRetries is the number of attempts per generation call.
const DefaultMaxRetries = 5
