// Package logging provides structured logging utilities for threadlens.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (conversation IDs and user emails are hashed)
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "summary.parse")
//	logger.Info("parsed summary",
//	    logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("conversation selected",
//	    logging.Conversation(conversationID))
//
// # Security Considerations
//
// Conversation IDs and user emails are hashed to prevent data leakage while still
// allowing log correlation. API tokens are never logged directly; use SanitizeToken.
package logging
