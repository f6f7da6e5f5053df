package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"clip-viewer/internal/logging"
	"clip-viewer/internal/player"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "clip-viewer"

// Engine names accepted by ENGINE.
const (
	EngineNone = "none"
	EngineMPV  = "mpv"
)

// MPVConfig configures the mpv engine.
type MPVConfig struct {
	Socket string `koanf:"socket"`
	Launch bool   `koanf:"launch"`
	Path   string `koanf:"path"`
}

// FramesConfig configures frame extraction.
type FramesConfig struct {
	Enabled bool          `koanf:"enabled"`
	Dir     string        `koanf:"dir"`
	Path    string        `koanf:"path"`
	FFmpeg  string        `koanf:"ffmpeg"`
	MaxSize int           `koanf:"max_size"`
	Quality int           `koanf:"quality"`
	Timeout time.Duration `koanf:"timeout"`
}

// Config holds all application configuration
type Config struct {
	MediaDir        string        `koanf:"media_dir"`
	BasePath        string        `koanf:"base_path"`
	Port            string        `koanf:"port"`
	MetricsPort     string        `koanf:"metrics_port"`
	MetricsEnabled  bool          `koanf:"metrics_enabled"`
	LogStaticFiles  bool          `koanf:"log_static_files"`
	LogHealthChecks bool          `koanf:"log_health_checks"`
	StatsInterval   time.Duration `koanf:"stats_interval"`
	Engine          string        `koanf:"engine"`
	PublicURL       string        `koanf:"public_url"`
	MPV             MPVConfig     `koanf:"mpv"`
	Frames          FramesConfig  `koanf:"frames"`

	// ConfigFile is the TOML file that was loaded, if any.
	ConfigFile string `koanf:"-"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		MediaDir:        "/media",
		BasePath:        player.DefaultBasePath,
		Port:            "8080",
		MetricsPort:     "9090",
		MetricsEnabled:  true,
		LogStaticFiles:  false,
		LogHealthChecks: true,
		StatsInterval:   time.Minute,
		Engine:          EngineNone,
		MPV: MPVConfig{
			Socket: filepath.Join(xdg.RuntimeDir, appName, "mpv.sock"),
			Path:   "mpv",
		},
		Frames: FramesConfig{
			Enabled: true,
			Dir:     filepath.Join(xdg.CacheHome, appName, "frames"),
			Path:    "/video_thumbnails",
			FFmpeg:  "ffmpeg",
			MaxSize: 1280,
			Quality: 90,
			Timeout: 30 * time.Second,
		},
	}
}

// LoadConfig prints the banner, resolves configuration from the optional
// TOML file and the environment, and prepares the media directory.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	cfg, err := ResolveConfig()
	if err != nil {
		return nil, err
	}
	cfg.log()

	// The page still renders without media; requests just 404.
	if err := ensureDirectory(cfg.MediaDir); err != nil {
		logging.Warn("  Media directory issue: %v", err)
	}

	return cfg, nil
}

// log prints the effective configuration under the names it is set with.
func (c *Config) log() {
	section("CONFIGURATION")
	source := c.ConfigFile
	if source == "" {
		source = "(environment only)"
	}
	field("CONFIG_FILE", "%s", source)
	field("MEDIA_DIR", "%s", c.MediaDir)
	field("BASE_PATH", "%s", c.BasePath)
	field("PORT", "%s", c.Port)
	field("METRICS", "%s", metricsSummary(c))
	field("LOG_LEVEL", "%s", logging.GetLevel())
	field("ACCESS LOG", "static=%v health=%v", c.LogStaticFiles, c.LogHealthChecks)
	field("ENGINE", "%s", c.Engine)
	if c.Engine == EngineMPV {
		field("MPV_SOCKET", "%s", c.MPV.Socket)
		field("MPV_LAUNCH", "%v (%s)", c.MPV.Launch, c.MPV.Path)
		field("PUBLIC_URL", "%s", c.PublicURL)
	}
	if c.Frames.Enabled {
		field("FRAMES", "%s -> %s (%s, max %dpx)", c.Frames.Path, c.Frames.Dir, c.Frames.FFmpeg, c.Frames.MaxSize)
	} else {
		field("FRAMES", "disabled")
	}
}

func metricsSummary(c *Config) string {
	if !c.MetricsEnabled {
		return "disabled"
	}
	return fmt.Sprintf(":%s, stats every %v", c.MetricsPort, c.StatsInterval)
}

// ResolveConfig layers defaults, the TOML file and environment variables, in
// that order, and validates the result.
func ResolveConfig() (*Config, error) {
	cfg := DefaultConfig()

	path := findConfigFile()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}

	applyEnv(&cfg)

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns CONFIG_FILE when set, otherwise the first
// clip-viewer/config.toml found in the XDG config directories.
func findConfigFile() string {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return path
	}
	path, err := xdg.SearchConfigFile(filepath.Join(appName, "config.toml"))
	if err != nil {
		return ""
	}
	return path
}

func loadFile(path string, cfg *Config) error {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.MediaDir = getEnv("MEDIA_DIR", cfg.MediaDir)
	cfg.BasePath = getEnv("BASE_PATH", cfg.BasePath)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.MetricsPort = getEnv("METRICS_PORT", cfg.MetricsPort)
	cfg.MetricsEnabled = getEnvBool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.LogStaticFiles = getEnvBool("LOG_STATIC_FILES", cfg.LogStaticFiles)
	cfg.LogHealthChecks = getEnvBool("LOG_HEALTH_CHECKS", cfg.LogHealthChecks)
	cfg.StatsInterval = getEnvDuration("STATS_INTERVAL", cfg.StatsInterval)
	cfg.Engine = getEnv("ENGINE", cfg.Engine)
	cfg.PublicURL = getEnv("PUBLIC_URL", cfg.PublicURL)
	cfg.MPV.Socket = getEnv("MPV_SOCKET", cfg.MPV.Socket)
	cfg.MPV.Launch = getEnvBool("MPV_LAUNCH", cfg.MPV.Launch)
	cfg.MPV.Path = getEnv("MPV_PATH", cfg.MPV.Path)
	cfg.Frames.Enabled = getEnvBool("FRAMES_ENABLED", cfg.Frames.Enabled)
	cfg.Frames.Dir = getEnv("FRAME_DIR", cfg.Frames.Dir)
	cfg.Frames.Path = getEnv("FRAME_PATH", cfg.Frames.Path)
	cfg.Frames.FFmpeg = getEnv("FFMPEG_PATH", cfg.Frames.FFmpeg)
	cfg.Frames.MaxSize = getEnvInt("FRAME_MAX_SIZE", cfg.Frames.MaxSize)
	cfg.Frames.Quality = getEnvInt("FRAME_QUALITY", cfg.Frames.Quality)
	cfg.Frames.Timeout = getEnvDuration("FRAME_TIMEOUT", cfg.Frames.Timeout)
}

func (c *Config) normalize() error {
	mediaDir, err := filepath.Abs(c.MediaDir)
	if err != nil {
		return fmt.Errorf("failed to resolve media directory path: %w", err)
	}
	c.MediaDir = mediaDir

	c.BasePath = "/" + strings.Trim(c.BasePath, "/")
	if c.BasePath == "/" {
		return fmt.Errorf("BASE_PATH must not be the root path")
	}

	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	switch c.Engine {
	case "":
		c.Engine = EngineNone
	case EngineNone, EngineMPV:
	default:
		return fmt.Errorf("unknown ENGINE %q (want %q or %q)", c.Engine, EngineNone, EngineMPV)
	}

	if c.PublicURL == "" {
		c.PublicURL = "http://localhost:" + c.Port
	}
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")

	if c.StatsInterval <= 0 {
		c.StatsInterval = time.Minute
	}
	return c.Frames.normalize(c.BasePath)
}

func (f *FramesConfig) normalize(basePath string) error {
	if !f.Enabled {
		return nil
	}
	dir, err := filepath.Abs(f.Dir)
	if err != nil {
		return fmt.Errorf("failed to resolve frame directory path: %w", err)
	}
	f.Dir = dir

	f.Path = "/" + strings.Trim(f.Path, "/")
	switch {
	case f.Path == "/":
		return fmt.Errorf("FRAME_PATH must not be the root path")
	case f.Path == basePath || strings.HasPrefix(f.Path, basePath+"/") || strings.HasPrefix(basePath, f.Path+"/"):
		return fmt.Errorf("FRAME_PATH %s overlaps BASE_PATH %s", f.Path, basePath)
	case f.Path == "/api" || strings.HasPrefix(f.Path, "/api/"):
		return fmt.Errorf("FRAME_PATH must not be under /api")
	}

	if f.MaxSize < 0 {
		f.MaxSize = 0
	}
	if f.Quality < 1 || f.Quality > 100 {
		return fmt.Errorf("FRAME_QUALITY must be between 1 and 100, got %d", f.Quality)
	}
	if f.Timeout <= 0 {
		f.Timeout = 30 * time.Second
	}
	return nil
}

// ensureDirectory checks that the media directory is usable. It never
// creates it; MEDIA_DIR is usually a mount.
func ensureDirectory(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("%s does not exist", path)
	case err != nil:
		return fmt.Errorf("checking %s: %w", path, err)
	case !info.IsDir():
		return fmt.Errorf("%s is not a directory", path)
	}
	if logging.IsDebugEnabled() {
		if entries, err := os.ReadDir(path); err == nil {
			logging.Debug("  %s holds %d top-level entries", path, len(entries))
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
