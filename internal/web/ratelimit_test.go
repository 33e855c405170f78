package web

import (
	"testing"
	"time"
)

func TestIPRateLimiter_PerIPBudget(t *testing.T) {
	rl := newIPRateLimiter(2)
	defer rl.Stop()

	if !rl.allow("10.0.0.1") || !rl.allow("10.0.0.1") {
		t.Fatal("first two requests should pass")
	}
	if rl.allow("10.0.0.1") {
		t.Error("third request within the minute should be limited")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("another IP should have its own budget")
	}
}

func TestIPRateLimiter_EvictsIdleVisitors(t *testing.T) {
	rl := newIPRateLimiter(10)
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.allow("10.0.0.1")
	now = now.Add(visitorTTL / 2)
	rl.allow("10.0.0.2")

	now = now.Add(visitorTTL/2 + time.Second)
	rl.evictIdle()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["10.0.0.1"]; ok {
		t.Error("idle visitor should be evicted")
	}
	if _, ok := rl.visitors["10.0.0.2"]; !ok {
		t.Error("recent visitor should be kept")
	}
}

func TestIPRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := newIPRateLimiter(1)
	rl.Stop()
	rl.Stop()
}
