package ratelimit

import (
	"time"
)

// Config interface for rate limiting configuration
type Config interface {
	GetDisableRateLimit() bool
}

// Result contains the outcome of a rate limit check
type Result struct {
	ShouldBlock   bool
	RemainingTime time.Duration
	Reason        string
}

// CheckMatchRunRateLimit checks if a full match recomputation should be rate
// limited. Used by both the manual run endpoint (handlers) and the periodic
// refresher (workers).
func CheckMatchRunRateLimit(cfg Config, lastManualRun *time.Time, isForced bool) Result {
	// Never rate limit if rate limiting is disabled
	if cfg.GetDisableRateLimit() {
		return Result{
			ShouldBlock: false,
			Reason:      "rate_limiting_disabled",
		}
	}

	// Never rate limit forced runs
	if isForced {
		return Result{
			ShouldBlock: false,
			Reason:      "forced_run",
		}
	}

	// Never rate limit if no previous run exists
	if lastManualRun == nil {
		return Result{
			ShouldBlock: false,
			Reason:      "no_previous_run",
		}
	}

	// Consistent 5-minute rate limit for manual and automatic runs
	rateLimit := 5 * time.Minute
	timeSinceLastRun := time.Since(*lastManualRun)

	if timeSinceLastRun < rateLimit {
		remainingTime := rateLimit - timeSinceLastRun
		return Result{
			ShouldBlock:   true,
			RemainingTime: remainingTime,
			Reason:        "rate_limit_active",
		}
	}

	return Result{
		ShouldBlock: false,
		Reason:      "rate_limit_passed",
	}
}

// GetRateLimitDuration returns the rate limit duration for match runs
func GetRateLimitDuration() time.Duration {
	return 5 * time.Minute
}