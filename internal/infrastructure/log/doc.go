// Package log provides structured logging configuration.
//
// This package configures and initializes the logging system using Zap.
//
// Features:
//   - Structured logging with JSON output at info level when APP_MODE=prod
//   - Console-friendly output at debug level otherwise
//   - Performance optimized logging
//
// The level follows APP_MODE only; the LOG_LEVEL setting is not read here.
//
// The logger is initialized at application startup and made available
// throughout the application via the logutil package helpers.
package log
