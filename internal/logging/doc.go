// Package logging provides structured logging utilities for gh-notifications-cleanup.
//
// All diagnostics go through the standard library's slog package and are written
// to standard error, keeping standard output free for user-facing results (and for
// the MCP protocol when the server runs over stdio).
//
// # Usage Patterns
//
// Build the process logger once from configuration:
//
//	logger := logging.New(os.Stderr, logging.Options{Format: "text", Debug: false})
//	slog.SetDefault(logger)
//
// Attach consistent attributes to per-item warnings:
//
//	logger.Warn("failed to load issue",
//	    logging.NotificationID(id),
//	    logging.Err(err))
//
// # Security Considerations
//
// Access tokens are never logged directly; use SanitizeToken when a token needs
// to be mentioned in debug output.
package logging
