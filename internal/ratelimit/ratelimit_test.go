package ratelimit

import (
	"testing"
	"time"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{
			name:     "burst allows initial requests",
			rps:      1,
			burst:    3,
			calls:    3,
			wantPass: 3,
		},
		{
			name:     "exceeding burst blocks",
			rps:      1,
			burst:    2,
			calls:    5,
			wantPass: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for range tt.calls {
				if rl.Allow("user-1") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_KeysIndependent(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	if !rl.Allow("user-1") {
		t.Fatal("first request for user-1 should pass")
	}
	if rl.Allow("user-1") {
		t.Fatal("second request for user-1 should be limited")
	}
	if !rl.Allow("user-2") {
		t.Fatal("user-2 should have its own bucket")
	}
}

func TestKeyedRateLimiter_Refill(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newLimiter(1, 1, time.Hour, func() time.Time { return now })

	if !rl.Allow("k") || rl.Allow("k") {
		t.Fatal("expected one request then a rejection")
	}

	now = now.Add(time.Second)
	if !rl.Allow("k") {
		t.Error("bucket should refill after one second")
	}
}

func TestKeyedRateLimiter_SweepEvictsIdle(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newLimiter(1, 1, 10*time.Minute, func() time.Time { return now })

	rl.Allow("idle")
	now = now.Add(5 * time.Minute)
	rl.Allow("active")

	now = now.Add(6 * time.Minute)
	rl.sweep()

	if got := rl.Len(); got != 1 {
		t.Fatalf("Len() = %d after sweep, want 1", got)
	}
	if !rl.Allow("idle") {
		t.Error("evicted key should start with a full bucket")
	}
}

func TestKeyedRateLimiter_StopIdempotent(t *testing.T) {
	rl := New(1, 1)
	rl.Stop()
	rl.Stop()
}
