package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiterAllowsWithinWindow(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("Support:1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("Support:1") {
		t.Fatal("request over the limit should be rejected")
	}
}

func TestLimiterIsolatesPrincipals(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	if !l.Allow("Support:1") {
		t.Fatal("first principal should be allowed")
	}
	if !l.Allow("Support:2") {
		t.Fatal("second principal has its own bucket")
	}
	if l.Allow("Support:1") {
		t.Fatal("first principal is out of quota")
	}
}

func TestLimiterPassesEmptyKey(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	// unauthenticated routes never consume quota
	for i := 0; i < 5; i++ {
		if !l.Allow("") {
			t.Fatal("empty key must always pass")
		}
	}
}

func TestLoginThrottleFailsOpenWithoutRedis(t *testing.T) {
	throttle := NewLoginThrottle(nil, 3, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		throttle.RecordFailure(ctx, "client", "ana@example.com")
	}
	if !throttle.Allow(ctx, "client", "ana@example.com") {
		t.Fatal("throttle without redis must never lock anyone out")
	}
	throttle.Reset(ctx, "client", "ana@example.com")
}
