// Package handlers provides the HTTP handlers for the clip viewer.
//
// It includes handlers for:
//   - The widget page and its JSON API
//   - Media file serving with byte-range support
//   - Timestamp parsing diagnostics
//   - Media directory listing and statistics
//   - Health checks and version information
package handlers
