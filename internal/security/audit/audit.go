package audit

import (
	"context"
	"log/slog"
	"time"
)

// RequestIDContextKey is the context key under which the request ID
// middleware stores the ID, so audit entries can correlate with access logs.
type RequestIDContextKey struct{}

// Logger records security-relevant events (registrations, logins, record
// deletions, rejected tokens) as structured log entries.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, donorID, action, resource, resourceID, status, details string) {
	requestID := ""
	if reqID, ok := ctx.Value(RequestIDContextKey{}).(string); ok {
		requestID = reqID
	}

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("donor_id", donorID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestID),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogRegistration(ctx context.Context, donorID, status, details string) {
	al.LogAction(ctx, donorID, "register", "donor", donorID, status, details)
}

func (al *Logger) LogLogin(ctx context.Context, donorID, status, details string) {
	al.LogAction(ctx, donorID, "login", "donor", donorID, status, details)
}

func (al *Logger) LogDeletion(ctx context.Context, donorID, resource, resourceID, status string) {
	al.LogAction(ctx, donorID, "delete", resource, resourceID, status, "")
}

func (al *Logger) LogDenied(ctx context.Context, reason string) {
	al.LogAction(ctx, "", "access_denied", "api", "", "denied", reason)
}
