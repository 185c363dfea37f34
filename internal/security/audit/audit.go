package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger emits structured audit records for security-relevant actions:
// logins, registrations, ticket mutations, denied access.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, subject, role, action, resource, resourceID, status string) {
	requestID := ""
	if reqID := ctx.Value("request_id"); reqID != nil {
		requestID = reqID.(string)
	}

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("subject", subject),
		slog.String("role", role),
		slog.String("status", status),
		slog.String("request_id", requestID),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogLogin(ctx context.Context, path, status string) {
	al.LogAction(ctx, "", "", "login", path, "", status)
}

func (al *Logger) LogRegistration(ctx context.Context, kind, status string) {
	al.LogAction(ctx, "", "", "register", kind, "", status)
}

func (al *Logger) LogTicketAction(ctx context.Context, subject, role, action, ticketID, status string) {
	al.LogAction(ctx, subject, role, action, "ticket", ticketID, status)
}

func (al *Logger) LogDenied(ctx context.Context, subject, role, reason string) {
	al.LogAction(ctx, subject, role, "access_denied", "api", "", reason)
}
