// Package logging provides structured logging utilities for the tarefista client.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (email anonymization, token masking)
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for packages that should not depend on slog
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "tasks.list")
//	logger.Info("fetched tasks", logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("login", logging.UserHash(email))
//
// # Security Considerations
//
// User emails are hashed so log entries can be correlated without exposing
// PII, and bearer tokens are never logged directly.
package logging
