package ratelimit

import (
	"testing"
	"time"
)

// TestConfig implements the Config interface for testing
type TestConfig struct {
	DisableRateLimit bool
}

func (c *TestConfig) GetDisableRateLimit() bool {
	return c.DisableRateLimit
}

func TestCheckMatchRunRateLimit_Disabled(t *testing.T) {
	cfg := &TestConfig{DisableRateLimit: true}

	// Even with a recent run, should not block when disabled
	recentRun := time.Now().Add(-1 * time.Minute)
	result := CheckMatchRunRateLimit(cfg, &recentRun, false)

	if result.ShouldBlock {
		t.Error("Rate limiting should be disabled")
	}
	if result.Reason != "rate_limiting_disabled" {
		t.Errorf("Expected reason 'rate_limiting_disabled', got '%s'", result.Reason)
	}
}

func TestCheckMatchRunRateLimit_Enabled(t *testing.T) {
	cfg := &TestConfig{DisableRateLimit: false}
	now := time.Now()

	t.Run("RecentRun", func(t *testing.T) {
		// Within 5-minute rate limit
		recentRun := now.Add(-2 * time.Minute)
		result := CheckMatchRunRateLimit(cfg, &recentRun, false)

		if !result.ShouldBlock {
			t.Error("Recent run should be blocked")
		}
		if result.Reason != "rate_limit_active" {
			t.Errorf("Expected reason 'rate_limit_active', got '%s'", result.Reason)
		}
		if result.RemainingTime <= 0 {
			t.Error("Should have remaining time")
		}
	})

	t.Run("OldRun", func(t *testing.T) {
		// Outside 5-minute rate limit
		oldRun := now.Add(-6 * time.Minute)
		result := CheckMatchRunRateLimit(cfg, &oldRun, false)

		if result.ShouldBlock {
			t.Error("Old run should not be blocked")
		}
		if result.Reason != "rate_limit_passed" {
			t.Errorf("Expected reason 'rate_limit_passed', got '%s'", result.Reason)
		}
	})

	t.Run("NoPreviousRun", func(t *testing.T) {
		result := CheckMatchRunRateLimit(cfg, nil, false)

		if result.ShouldBlock {
			t.Error("First run should not be blocked")
		}
		if result.Reason != "no_previous_run" {
			t.Errorf("Expected reason 'no_previous_run', got '%s'", result.Reason)
		}
	})

	t.Run("ForcedRun", func(t *testing.T) {
		// Forced run should bypass rate limiting
		recentRun := now.Add(-1 * time.Minute)
		result := CheckMatchRunRateLimit(cfg, &recentRun, true)

		if result.ShouldBlock {
			t.Error("Forced run should not be blocked")
		}
		if result.Reason != "forced_run" {
			t.Errorf("Expected reason 'forced_run', got '%s'", result.Reason)
		}
	})
}

func TestGetRateLimitDuration(t *testing.T) {
	duration := GetRateLimitDuration()
	expected := 5 * time.Minute

	if duration != expected {
		t.Errorf("Expected rate limit duration %v, got %v", expected, duration)
	}
}

func TestRateLimitRemainingTime(t *testing.T) {
	cfg := &TestConfig{DisableRateLimit: false}

	now := time.Now()
	runTime := now.Add(-3 * time.Minute)

	result := CheckMatchRunRateLimit(cfg, &runTime, false)

	if !result.ShouldBlock {
		t.Error("Should be blocked within rate limit")
	}

	expectedRemaining := 2 * time.Minute
	tolerance := 5 * time.Second

	if result.RemainingTime < expectedRemaining-tolerance || result.RemainingTime > expectedRemaining+tolerance {
		t.Errorf("Expected remaining time around %v, got %v", expectedRemaining, result.RemainingTime)
	}
}
