package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourorg/helpdesk/internal/security/audit"
	"github.com/yourorg/helpdesk/internal/security/auth"
	"github.com/yourorg/helpdesk/internal/security/ratelimit"
)

type ClaimsContextKey struct{}

// publicPath reports whether a request skips bearer authentication:
// health endpoints, metrics, and the registration/login endpoints.
func publicPath(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/metrics",
		"/api/admins/register", "/api/admins/login",
		"/api/clients/register", "/api/clients/login":
		return true
	}
	return false
}

// JWTMiddleware validates the bearer token on protected routes and
// stores its claims in the request context. Expired and invalid tokens
// are both reported as unauthenticated, with distinct messages.
func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				// WebSocket clients cannot set headers; accept ?token= there
				if strings.HasPrefix(r.URL.Path, "/ws/") {
					if t := r.URL.Query().Get("token"); t != "" {
						authHeader = "Bearer " + t
					}
				}
			}
			if authHeader == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.Validate(tokenString)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					http.Error(w, `{"error":"token expired"}`, http.StatusUnauthorized)
					return
				}
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaimsFromContext returns the validated claims for the request, or
// nil on unauthenticated routes.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

// RateLimitMiddleware applies the sliding-window limiter per
// authenticated principal. Public endpoints are left alone; login
// throttling is handled separately in the auth handlers.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			key := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				key = claims.Role + ":" + claims.Subject
			}

			if !limiter.Allow(key) {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records ticket mutations and login attempts after the
// handler has run.
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := ""
			role := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				subject = claims.Subject
				role = claims.Role
			}

			if r.Header.Get("Upgrade") == "websocket" {
				// the upgrade handshake needs the raw connection
				next.ServeHTTP(w, r)
				return
			}

			ww := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/api/tickets":
				auditLog.LogTicketAction(r.Context(), subject, role, "create", "", auditStatus(ww.status))
			case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/status"):
				auditLog.LogTicketAction(r.Context(), subject, role, "update_status", r.URL.Path, auditStatus(ww.status))
			case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/login"):
				auditLog.LogLogin(r.Context(), r.URL.Path, auditStatus(ww.status))
			}
		})
	}
}

func auditStatus(code int) string {
	if code >= 200 && code < 300 {
		return "ok"
	}
	return "denied"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
