package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain error", errors.New("connection reset"), true},
		{"canceled", context.Canceled, false},
		{"wrapped canceled", fmt.Errorf("send: %w", context.Canceled), false},
		{"deadline", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryIf(tt.err); got != tt.want {
				t.Errorf("DefaultRetryIf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryConfig_WithDefaults(t *testing.T) {
	cfg := RetryConfig{}.withDefaults()

	if cfg.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.InitialBackoff != 100*time.Millisecond || cfg.MaxBackoff != 10*time.Second {
		t.Errorf("unexpected backoff bounds %v..%v", cfg.InitialBackoff, cfg.MaxBackoff)
	}
	if cfg.BackoffFactor != 2.0 {
		t.Errorf("expected factor 2, got %v", cfg.BackoffFactor)
	}
	if cfg.RetryIf == nil || cfg.RetryIf(context.Canceled) {
		t.Error("expected DefaultRetryIf to be installed")
	}
}

func TestRetryConfig_WithDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 7, InitialBackoff: time.Millisecond}.withDefaults()

	if cfg.MaxAttempts != 7 || cfg.InitialBackoff != time.Millisecond {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

func TestRetryConfig_Backoff(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     1 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0, // No jitter for predictable testing
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 100 * time.Millisecond}, // 100 * 2^0
		{2, 200 * time.Millisecond}, // 100 * 2^1
		{3, 400 * time.Millisecond}, // 100 * 2^2
		{4, 800 * time.Millisecond}, // 100 * 2^3
		{5, 1 * time.Second},        // Capped at max
		{6, 1 * time.Second},        // Still capped
	}

	for _, tt := range tests {
		got := cfg.Backoff(tt.attempt)
		if got != tt.expected {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.expected, got)
		}
	}
}

func TestRetryConfig_BackoffJitterStaysInBounds(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.5,
	}

	for i := 0; i < 100; i++ {
		got := cfg.Backoff(2)
		if got < 100*time.Millisecond || got > 300*time.Millisecond {
			t.Fatalf("jittered backoff %v outside 100ms..300ms", got)
		}
	}
}
