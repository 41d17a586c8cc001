package logger

import (
	"context"
	"log/slog"
	"time"
)

// AdmissionEvent represents one admission decision for the audit log
type AdmissionEvent struct {
	DecisionID string
	Allowed    bool
	Dimension  string // Dimension that rejected the attempt, empty when allowed
	IPAddress  string
	CookieID   string
	Username   string
	Reason     string
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
	env    string
}

// NewAuditLogger creates a new audit logger. Outside development, keys are
// written as fingerprints instead of raw values.
func NewAuditLogger(logger *slog.Logger, env string) *AuditLogger {
	return &AuditLogger{
		logger: logger,
		env:    env,
	}
}

// LogAdmission logs an admission decision
func (al *AuditLogger) LogAdmission(ctx context.Context, event AdmissionEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "login_admission"),
		slog.String("decision_id", event.DecisionID),
		slog.Bool("allowed", event.Allowed),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		MaskedKeyAttr("ip_address", event.IPAddress, al.env),
		MaskedKeyAttr("username", event.Username, al.env),
	}

	if event.CookieID != "" {
		attrs = append(attrs, MaskedKeyAttr("cookie_id", event.CookieID, al.env))
	}
	if event.Dimension != "" {
		attrs = append(attrs, slog.String("dimension", event.Dimension))
	}
	if event.Reason != "" {
		attrs = append(attrs, slog.String("reason", event.Reason))
	}

	if event.Allowed {
		al.logger.LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(ctx, slog.LevelWarn, "audit", attrs...)
	}
}
