// Package logging provides a structured logging system for analytics-mcp with
// unified log handling and credential-safe output helpers.
//
// This package implements a logging system built on Go's standard slog package,
// providing consistent logging behavior with structured output and level filtering.
//
// # Architecture
//
// The logging system is built around these core concepts:
//
// ## Log Levels
//   - **Debug**: Detailed information for debugging and development
//   - **Info**: General informational messages about application operation
//   - **Warn**: Warning messages that indicate potential issues
//   - **Error**: Error messages for failures and exceptional conditions
//
// ## Structured Logging
// All log entries include:
//   - Timestamp with nanosecond precision
//   - Log level (Debug, Info, Warn, Error)
//   - Subsystem identifier for categorization
//   - Message content with optional formatting
//   - Optional error information
//
// # Usage Examples
//
// ## Initialization
//
//	import "analytics-mcp/pkg/logging"
//
//	// Initialize with Info level logging to stderr
//	logging.Init(logging.LevelInfo, os.Stderr, false)
//
//	// Log messages
//	logging.Info("Bootstrap", "Server starting up")
//	logging.Debug("Config", "Loaded configuration from %s", configPath)
//	logging.Warn("Auth", "Session has no refresh token")
//	logging.Error("Analytics", err, "Failed to run report")
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **Bootstrap**: Application initialization and startup
//   - **Config**: Configuration loading and validation
//   - **Auth**: Token extraction, session storage, and OAuth flows
//   - **Analytics**: Google Analytics API client operations
//   - **Tools**: MCP tool registration and execution
//   - **Server**: HTTP transport and lifecycle management
//
// # Credential Safety
//
// Tokens and session identifiers must never land in logs verbatim. Use the
// masking helpers whenever a credential or session ID appears in a message:
//
//	logging.Debug("Auth", "stored token %s for session %s",
//	    logging.MaskToken(token), logging.TruncateSessionID(sessionID))
//
// # Thread Safety
//
// The logging system is fully thread-safe:
//   - Safe concurrent logging from multiple goroutines
//   - Protected access to shared logging state
//   - No data races in configuration
package logging
