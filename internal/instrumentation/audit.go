package instrumentation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// HostMutation captures all information about a host-side mutation (task
// creation, comment posting, conversation assignment) for audit logging.
//
// # Privacy Considerations
//
// The UserEmail field contains PII. When logging, consider:
//   - Using UserDomain() to get only the domain for metrics/general logs
//   - Only logging the full email in audit-specific log streams
//   - Ensuring audit logs have appropriate access controls
type HostMutation struct {
	// Operation type (create_task, post_comment, add_assignees)
	Operation string

	// Acting user identity
	UserEmail string

	// ConversationID is the host conversation the mutation targets.
	ConversationID string

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// UserDomain returns the domain portion of the user's email for
// lower-cardinality logging.
func (hm *HostMutation) UserDomain() string {
	return ExtractUserDomain(hm.UserEmail)
}

// Status returns "success" or "error" based on the Success field.
func (hm *HostMutation) Status() string {
	if hm.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging using
// cardinality-controlled values. For full audit logging, use LogAuditAttrs.
func (hm *HostMutation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("operation", hm.Operation),
		slog.String("user_domain", hm.UserDomain()),
		slog.Duration("duration", hm.Duration),
		slog.Bool("success", hm.Success),
	}

	if hm.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", hm.TraceID))
	}
	if hm.Error != "" {
		attrs = append(attrs, slog.String("error", hm.Error))
	}

	return attrs
}

// LogAuditAttrs returns slog attributes for full audit logging.
//
// # Security Warning
//
// This method includes PII (full email). Ensure audit logs are stored
// securely with appropriate access controls and are not exposed to general
// monitoring dashboards.
func (hm *HostMutation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("operation", hm.Operation),
		slog.String("user", hm.UserEmail),
		slog.String("conversation", hm.ConversationID),
		slog.Duration("duration", hm.Duration),
		slog.Bool("success", hm.Success),
	}

	if hm.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", hm.TraceID))
	}
	if hm.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", hm.SpanID))
	}
	if hm.Error != "" {
		attrs = append(attrs, slog.String("error", hm.Error))
	}

	return attrs
}

// NewHostMutation creates a new HostMutation with timing started.
// Call Complete() when the operation finishes.
func NewHostMutation(operation, conversationID string) *HostMutation {
	return &HostMutation{
		Operation:      operation,
		ConversationID: conversationID,
		StartTime:      time.Now(),
	}
}

// WithUser sets the acting user's email.
func (hm *HostMutation) WithUser(email string) *HostMutation {
	hm.UserEmail = email
	return hm
}

// WithSpanContext extracts trace context from the current span.
func (hm *HostMutation) WithSpanContext(ctx context.Context) *HostMutation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		hm.TraceID = span.SpanContext().TraceID().String()
		hm.SpanID = span.SpanContext().SpanID().String()
	}
	return hm
}

// Complete marks the mutation as completed and calculates duration.
func (hm *HostMutation) Complete(success bool, err error) *HostMutation {
	hm.Duration = time.Since(hm.StartTime)
	hm.Success = success
	if err != nil {
		hm.Error = err.Error()
	}
	return hm
}

// AuditLogger provides structured audit logging for host mutations.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger and
// configuration. By default, PII is not included in logs.
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogMutation writes one audit entry for a completed host mutation.
func (a *AuditLogger) LogMutation(ctx context.Context, mutation *HostMutation) {
	if a == nil || !a.enabled || a.logger == nil {
		return
	}

	attrs := mutation.LogAttrs()
	if a.includePII {
		attrs = mutation.LogAuditAttrs()
	}

	a.logger.LogAttrs(ctx, slog.LevelInfo, "host mutation", attrs...)
}

// ExtractUserDomain extracts the domain part from an email address. Using the
// domain instead of the full address keeps metric label cardinality bounded.
//
// Example:
//
//	ExtractUserDomain("jane@example.com")  // "example.com"
//	ExtractUserDomain("invalid")           // "unknown"
//	ExtractUserDomain("")                  // "unknown"
func ExtractUserDomain(email string) string {
	if email == "" {
		return "unknown"
	}

	parts := strings.Split(email, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}

	return "unknown"
}
