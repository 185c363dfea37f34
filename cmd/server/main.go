package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourorg/helpdesk/internal/featureflags"
	"github.com/yourorg/helpdesk/internal/handler"
	"github.com/yourorg/helpdesk/internal/infrastructure/logger"
	"github.com/yourorg/helpdesk/internal/infrastructure/redis"
	"github.com/yourorg/helpdesk/internal/observability/metrics"
	"github.com/yourorg/helpdesk/internal/observability/tracing"
	"github.com/yourorg/helpdesk/internal/reliability/retry"
	"github.com/yourorg/helpdesk/internal/repository"
	"github.com/yourorg/helpdesk/internal/security"
	"github.com/yourorg/helpdesk/internal/security/audit"
	"github.com/yourorg/helpdesk/internal/security/auth"
	"github.com/yourorg/helpdesk/internal/security/crypto"
	"github.com/yourorg/helpdesk/internal/security/middleware"
	"github.com/yourorg/helpdesk/internal/security/ratelimit"
	"github.com/yourorg/helpdesk/internal/service"
	"github.com/yourorg/helpdesk/internal/worker"
	"github.com/yourorg/helpdesk/pkg/cache"
	"github.com/yourorg/helpdesk/pkg/config"
	"github.com/yourorg/helpdesk/pkg/database"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting helpdesk server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op when no OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "helpdesk", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Redis is optional: without it the login throttle disables itself
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, login throttle disabled", slog.String("error", err.Error()))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// 5. Connect to Postgres with retries, then make sure the schema exists
	db, err := retry.Do(ctx, retry.DefaultConfig(), log, "connect database",
		func(ctx context.Context) (*database.ConnectionPool, error) {
			return database.NewConnectionPool(ctx, &database.Config{
				Host:     cfg.DatabaseHost,
				Port:     cfg.DatabasePort,
				User:     cfg.DatabaseUser,
				Password: cfg.DatabasePassword,
				Database: cfg.DatabaseName,
				SSLMode:  cfg.DatabaseSSLMode,
			}, log)
		})
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Error("failed to ensure schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Security components
	cipher, err := crypto.New(cfg.Secret)
	if err != nil {
		log.Error("failed to initialize cipher", slog.String("error", err.Error()))
		os.Exit(1)
	}
	tokenManager := auth.NewTokenManager(cfg.Secret, cfg.Issuer, cfg.Audience)
	authz := security.NewAuthorizationService(log)
	auditLogger := audit.NewLogger(log)
	rateLimiter := ratelimit.NewLimiter(100, time.Minute) // per-principal
	var throttle *ratelimit.LoginThrottle
	if featureflags.EnabledDefault(featureflags.LoginThrottle, true) {
		throttle = ratelimit.NewLoginThrottle(redisClient, int64(cfg.LoginMaxFailures), cfg.LoginWindow, log)
	}

	// 7. Repositories
	adminRepo := repository.NewPostgresAdminRepository(db.GetDB(), log)
	clientRepo := repository.NewPostgresClientRepository(db.GetDB(), log)
	ticketRepo := repository.NewPostgresTicketRepository(db.GetDB(), log)

	// 8. Event feed and services
	eventsHandler := handler.NewEventsHandler(log, cfg.CORSAllowedOrigins)
	var ticketEvents service.TicketEvents
	if featureflags.EnabledDefault(featureflags.TicketEvents, true) {
		ticketEvents = eventsHandler
	}

	adminService := service.NewAdminService(adminRepo, cipher, tokenManager, cache.New(), log)
	clientService := service.NewClientService(clientRepo, cipher, tokenManager, log)
	ticketService := service.NewTicketService(ticketRepo, authz, ticketEvents, log)

	// 9. Handlers
	adminHandler := handler.NewAdminHandler(adminService, throttle, log)
	clientHandler := handler.NewClientHandler(clientService, throttle, log)
	ticketHandler := handler.NewTicketHandler(ticketService, log)
	healthHandler := handler.NewHealthHandler(db, redisClient, log)

	// 10. Routes
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admins/register", adminHandler.Register)
	mux.HandleFunc("POST /api/admins/login", adminHandler.Login)
	mux.HandleFunc("GET /api/admins/{id}", adminHandler.GetByID)
	mux.HandleFunc("POST /api/clients/register", clientHandler.Register)
	mux.HandleFunc("POST /api/clients/login", clientHandler.Login)
	mux.HandleFunc("GET /api/tickets", ticketHandler.List)
	mux.HandleFunc("POST /api/tickets", ticketHandler.Create)
	mux.HandleFunc("GET /api/tickets/{id}", ticketHandler.Get)
	mux.HandleFunc("PUT /api/tickets/{id}/status", ticketHandler.UpdateStatus)
	mux.Handle("GET /ws/tickets", eventsHandler)
	mux.HandleFunc("GET /healthz", healthHandler.Live)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	// CORS honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> JWT -> audit -> rate limit ->
	// content type -> metrics -> CORS -> mux. Audit and rate limiting
	// read the claims JWT validation stores in the context.
	rootHandler := withRequestID(
		middleware.JWTMiddleware(tokenManager, log)(
			middleware.AuditMiddleware(auditLogger)(
				middleware.RateLimitMiddleware(rateLimiter, log)(
					middleware.ValidateJSONContentType(log)(
						metrics.HTTPMetricsMiddleware(handlerWithCORS),
					),
				),
			),
		),
		log,
	)
	instrumented := otelhttp.NewHandler(rootHandler, "helpdesk")

	// 11. Background ticket stats worker
	if featureflags.EnabledDefault(featureflags.StatsWorker, true) {
		statsWorker := worker.NewStatsWorker(ticketRepo, log, cfg.StatsInterval)
		go statsWorker.Start(ctx)
	}

	// 12. HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      instrumented,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Bool("login_throttle", throttle != nil && redisClient != nil),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // stop the stats worker
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
