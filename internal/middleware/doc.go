// Package middleware provides the HTTP middleware chain for clip-viewer.
//
// It includes:
//   - Request logging in W3C Extended Log Format, with health checks, static
//     assets and byte-range follow-ups optionally filtered out
//   - gzip compression for the HTML page and JSON API
//   - Prometheus request metrics with media names collapsed out of the path label
package middleware
