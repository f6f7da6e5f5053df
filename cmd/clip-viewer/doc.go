// Package main provides the entry point for the Clip Viewer server.
//
// Clip Viewer renders a video widget for a named clip in MEDIA_DIR and,
// when a timestamp is given, seeks to it exactly once after the media has
// loaded. Playback happens either in the browser (ENGINE=none) or in an mpv
// process driven over its JSON IPC socket (ENGINE=mpv).
//
// # Application Lifecycle
//
//  1. Configuration Loading: defaults, then the TOML config file, then
//     environment variables
//  2. Metrics Initialization: Prometheus collectors and build info
//  3. Engine Startup: the browser engine, or mpv (optionally launched) over IPC
//  4. HTTP Server Setup: routes, middleware, metrics server and collector
//  5. Graceful Shutdown: SIGINT/SIGTERM stop the servers, the player and the
//     engine in order
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 8080):
//     - The widget page (/?name=clip.mp4&t=00:01:30)
//     - The player API (/api/player, /api/player/signal)
//     - Media files under BASE_PATH with byte-range support
//     - Frame extraction (/api/frame, /api/frames) and frames under FRAME_PATH
//     - Health, readiness and version endpoints
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Health check endpoint (/health)
//
// # Environment Variables
//
//   - MEDIA_DIR: Directory media files are served from
//   - BASE_PATH: URL path media locators are built under
//     (default: /content_understanding/videos)
//   - PORT: Main HTTP server port (default: 8080)
//   - METRICS_PORT: Metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable metrics server (default: true)
//   - STATS_INTERVAL: Media directory statistics interval (default: 1m)
//   - ENGINE: none or mpv (default: none)
//   - PUBLIC_URL: Origin mpv fetches locators from
//   - MPV_SOCKET, MPV_LAUNCH, MPV_PATH: mpv IPC settings
//   - FRAMES_ENABLED, FRAME_DIR, FRAME_PATH: Frame extraction routes and cache
//   - FFMPEG_PATH, FRAME_MAX_SIZE, FRAME_QUALITY, FRAME_TIMEOUT: Frame capture
//   - CONFIG_FILE: Path to a TOML config file
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//
// # Related Packages
//
//   - [clip-viewer/internal/player]: The widget and its rendering
//   - [clip-viewer/internal/seek]: Exactly-once seek synchronization
//   - [clip-viewer/internal/mpv]: mpv IPC engine
//   - [clip-viewer/internal/media]: Frame extraction with FFmpeg
//   - [clip-viewer/internal/handlers]: HTTP request handlers
//   - [clip-viewer/internal/middleware]: HTTP middleware (logging, compression, metrics)
//   - [clip-viewer/internal/startup]: Configuration and startup logging
package main
