package pipeline

import "time"

// RetryPolicy caps how often a stage is re-attempted and how long to wait
// between attempts. A stage runs MaxRetries+1 times in total; the delay
// before retry n is BaseDelay doubled n-1 times.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryPolicy matches the shipped configuration: four attempts with
// 2s, 4s, 8s waits in between.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: 2 * time.Second}
}

// Backoff returns the wait before retry attempt n (1-based).
func (rp RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return rp.BaseDelay << (attempt - 1)
}
