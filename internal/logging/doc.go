// Package logging provides structured logging for the PrintBridge service.
//
// This package wraps zap logger with convenience functions for the logging
// patterns used throughout the service and client. It provides both general
// logging functions and specialized functions for print-domain events.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (command invocations, payload dumps)
//   - Info: Normal operations (requests, print jobs, lifecycle changes)
//   - Warn: Non-fatal issues (registration failures, slow subscribers)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Printer found",
//	    zap.String("printer", "HP_LaserJet"),
//	    zap.String("status", "enabled"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
//	logging.LogHTTPRequest(remoteAddr, "POST", "/printer/print/file")
//	logging.LogHTTPResponse("POST", "/printer/print/file", 200, elapsed)
//	logging.LogPrintJob(jobID, "HP_LaserJet", "submitted", "report.pdf")
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is given, PRINTBRIDGE_LOG_LEVEL is consulted; when that is
// also unset, logging is silent. CLI commands use the silent default so
// their rendered output stays clean.
//
// # Output
//
// All log output goes to stderr. The service's stdout is reserved for the
// port discovery handshake, so nothing else may write there.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
