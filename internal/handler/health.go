package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/helpdesk/internal/infrastructure/redis"
	"github.com/yourorg/helpdesk/pkg/database"
)

// HealthHandler serves liveness and readiness endpoints
type HealthHandler struct {
	db     *database.ConnectionPool
	redis  *redis.Client
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler. The redis client may
// be nil when login throttling is disabled.
func NewHealthHandler(db *database.ConnectionPool, redisClient *redis.Client, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, redis: redisClient, logger: logger}
}

// Live handles GET /healthz
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Ready handles GET /readyz: the database must answer; redis is
// optional and only degrades the login throttle when down.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		h.logger.Warn("readiness check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("database not ready"))
		return
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			h.logger.Warn("redis unreachable, login throttle degraded", slog.String("error", err.Error()))
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}
