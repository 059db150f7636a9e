// Package logging provides structured logging for the monitor.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting poll loop", "period", "10s")
//	logger.Error("device unreachable", "error", err)
//
// Domain packages do not import this package directly; they accept a
// minimal Logger interface so tests can run without log wiring.
//
// Never log secrets: broker passwords and InfluxDB tokens stay out of
// log fields.
package logging
