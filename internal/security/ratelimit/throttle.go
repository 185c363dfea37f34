package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/helpdesk/internal/infrastructure/redis"
	"github.com/yourorg/helpdesk/internal/reliability/circuitbreaker"
)

// LoginThrottle counts failed login attempts per email in Redis and
// blocks further attempts once the limit is reached within the window.
// Redis being down must never lock users out: calls go through a
// circuit breaker and fail open.
type LoginThrottle struct {
	redis       *redis.Client
	breaker     *circuitbreaker.CircuitBreaker
	maxFailures int64
	window      time.Duration
	logger      *slog.Logger
}

// NewLoginThrottle creates a login throttle. A nil redis client
// disables throttling entirely.
func NewLoginThrottle(redisClient *redis.Client, maxFailures int64, window time.Duration, logger *slog.Logger) *LoginThrottle {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginThrottle{
		redis:       redisClient,
		breaker:     circuitbreaker.New(5, 2, 30*time.Second),
		maxFailures: maxFailures,
		window:      window,
		logger:      logger,
	}
}

func throttleKey(kind, email string) string {
	return fmt.Sprintf("login_failures:%s:%s", kind, email)
}

// Allow reports whether a login attempt for the email may proceed.
func (t *LoginThrottle) Allow(ctx context.Context, kind, email string) bool {
	if t.redis == nil || !t.breaker.AllowRequest() {
		return true
	}

	count, err := t.redis.GetInt(ctx, throttleKey(kind, email))
	if err != nil {
		t.breaker.RecordFailure()
		t.logger.Warn("login throttle lookup failed, failing open",
			slog.String("error", err.Error()),
		)
		return true
	}

	t.breaker.RecordSuccess()
	return count < t.maxFailures
}

// RecordFailure bumps the failure counter for the email. The counter
// expires after the configured window.
func (t *LoginThrottle) RecordFailure(ctx context.Context, kind, email string) {
	if t.redis == nil || !t.breaker.AllowRequest() {
		return
	}

	if err := t.redis.IncrWithTTL(ctx, throttleKey(kind, email), t.window); err != nil {
		t.breaker.RecordFailure()
		t.logger.Warn("failed to record login failure",
			slog.String("error", err.Error()),
		)
		return
	}
	t.breaker.RecordSuccess()
}

// Reset clears the failure counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, kind, email string) {
	if t.redis == nil || !t.breaker.AllowRequest() {
		return
	}
	if err := t.redis.Delete(ctx, throttleKey(kind, email)); err != nil {
		t.breaker.RecordFailure()
		return
	}
	t.breaker.RecordSuccess()
}
