// Package startup handles configuration loading and the startup and shutdown
// log output.
//
// # Configuration
//
// [LoadConfig] layers three sources, later ones winning:
//
//  1. built-in defaults ([DefaultConfig])
//  2. a TOML file: CONFIG_FILE if set, otherwise clip-viewer/config.toml in
//     the XDG config directories
//  3. environment variables
//
// Supported variables (TOML keys in parentheses):
//
//   - MEDIA_DIR (media_dir): directory media files are served from (default: /media)
//   - BASE_PATH (base_path): URL path locators are built under (default: /content_understanding/videos)
//   - PORT (port): HTTP server port (default: 8080)
//   - METRICS_PORT (metrics_port): Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED (metrics_enabled): enable the metrics server (default: true)
//   - STATS_INTERVAL (stats_interval): media directory stats refresh (default: 1m)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES (log_static_files): log static asset requests (default: false)
//   - LOG_HEALTH_CHECKS (log_health_checks): log health check requests (default: true)
//   - ENGINE (engine): "none" or "mpv" (default: none)
//   - PUBLIC_URL (public_url): origin mpv fetches locators from (default: http://localhost:PORT)
//   - MPV_SOCKET (mpv.socket): mpv IPC socket (default: $XDG_RUNTIME_DIR/clip-viewer/mpv.sock)
//   - MPV_LAUNCH (mpv.launch): start mpv instead of connecting to a running one
//   - MPV_PATH (mpv.path): mpv binary (default: mpv)
//   - FRAMES_ENABLED (frames.enabled): frame extraction routes (default: true)
//   - FRAME_DIR (frames.dir): frame cache (default: $XDG_CACHE_HOME/clip-viewer/frames)
//   - FRAME_PATH (frames.path): route frames are served under (default: /video_thumbnails)
//   - FFMPEG_PATH (frames.ffmpeg): ffmpeg binary (default: ffmpeg)
//   - FRAME_MAX_SIZE, FRAME_QUALITY, FRAME_TIMEOUT: scaling bound (1280), JPEG quality (90), per-frame timeout (30s)
//
// Example config.toml:
//
//	media_dir = "/srv/clips"
//	engine = "mpv"
//
//	[mpv]
//	launch = true
//
// # Build Information
//
// Version, Commit and BuildTime are set with -ldflags:
//
//	go build -ldflags "-X clip-viewer/internal/startup.Version=1.2.0"
//
// # Logging
//
// The Log* helpers print the sectioned banner output used during startup and
// shutdown. Route listings from [LogHTTPRoutes] only appear at debug level.
package startup
