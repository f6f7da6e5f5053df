// Package logging provides a simple leveled logging interface for clip-viewer.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or forced
// to debug with DEBUG=true. Component loggers add a "[name]" tag after the level
// and double as printf-style diagnostic sinks.
package logging
