package startup

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"clip-viewer/internal/logging"

	"github.com/gorilla/mux"
)

const rule = "------------------------------------------------------------"

// section opens a titled block in the startup log.
func section(title string, args ...interface{}) {
	logging.Info("")
	logging.Info(rule)
	logging.Info(title, args...)
	logging.Info(rule)
}

// field logs an aligned "label: value" line inside a section.
func field(label string, format string, args ...interface{}) {
	logging.Info("  %-16s %s", label+":", fmt.Sprintf(format, args...))
}

func printBanner() {
	fmt.Println(`
` + rule + `
   ___ _ _        __   ___
  / __| (_)_ __   \ \ / (_)_____ __ _____ _ _
 | (__| | | '_ \   \ V /| / -_) V  V / -_) '_|
  \___|_|_| .__/    \_/ |_\___|\_/\_/\___|_|
          |_|
` + rule)
	field("Build", "%s", GetBuildInfo())
	field("Built at", "%s", BuildTime)
	field("Started", "%s", time.Now().Format(time.RFC1123))
}

func logSystemInfo() {
	section("SYSTEM")
	field("CPUs", "%d", runtime.NumCPU())
	field("GOMAXPROCS", "%d", runtime.GOMAXPROCS(0))
	if !logging.IsDebugEnabled() {
		return
	}
	if wd, err := os.Getwd(); err == nil {
		logging.Debug("  Working dir:     %s", wd)
	}
	if host, err := os.Hostname(); err == nil {
		logging.Debug("  Hostname:        %s", host)
	}
}

// LogEngineInit reports which media engine will drive playback.
func LogEngineInit(cfg *Config) {
	section("MEDIA ENGINE (%s)", cfg.Engine)
	if cfg.Engine != EngineMPV {
		logging.Info("  Playback happens in the browser; load signals arrive over HTTP")
		return
	}
	if cfg.MPV.Launch {
		field("Launching", "%s", cfg.MPV.Path)
	}
	field("IPC socket", "%s", cfg.MPV.Socket)
	field("Public URL", "%s", cfg.PublicURL)
}

func LogEngineReady(name string) {
	logging.Info("  [OK] %s engine ready", name)
}

// RouteInfo is one registered route. Methods is "*" for routes that accept
// any method.
type RouteInfo struct {
	Methods []string
	Path    string
	Name    string
}

// Area buckets routes for the startup log.
func (r RouteInfo) Area() string {
	switch {
	case r.Path == "/":
		return "page"
	case strings.HasPrefix(r.Path, "/api/"):
		return "api"
	case strings.Contains(r.Path, "{"):
		return "media"
	default:
		return "probes"
	}
}

// GetRoutes walks router in registration order.
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return err
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		routes = append(routes, RouteInfo{Methods: methods, Path: path, Name: route.GetName()})
		return nil
	})
	return routes, err
}

var routeAreas = []string{"page", "api", "media", "probes"}

// LogHTTPRoutes summarises the router. The full table is only printed at
// debug level.
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	section("HTTP ROUTES")

	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("error walking routes: %v", err)
	}

	byArea := make(map[string][]RouteInfo)
	for _, r := range routes {
		byArea[r.Area()] = append(byArea[r.Area()], r)
	}
	for _, area := range routeAreas {
		if n := len(byArea[area]); n > 0 {
			field(area, "%d route(s)", n)
		}
		if logging.IsDebugEnabled() {
			for _, r := range byArea[area] {
				logging.Debug("    %-12s %s", strings.Join(r.Methods, ","), r.Path)
			}
		}
	}

	field("Media access log", "%s", onOff(logStaticFiles, "LOG_STATIC_FILES"))
	field("Probe access log", "%s", onOff(logHealthChecks, "LOG_HEALTH_CHECKS"))
}

func onOff(on bool, env string) string {
	if on {
		return "on"
	}
	return "off (" + env + "=true to enable)"
}

// ServerConfig is what LogServerStarted prints.
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	BasePath        string
	StartupDuration time.Duration
}

func LogServerStarted(config ServerConfig) {
	section("READY in %v", config.StartupDuration.Round(time.Millisecond))
	field("Player", "http://localhost:%s/?name={name}&t={hh:mm:ss}", config.Port)
	field("Media", "http://localhost:%s%s/{name}", config.Port, config.BasePath)
	field("API", "http://localhost:%s/api/player", config.Port)
	if config.MetricsEnabled {
		field("Metrics", "http://localhost:%s/metrics", config.MetricsPort)
	} else {
		field("Metrics", "disabled")
	}
	logging.Info("")
	logging.Info("  Listening on 0.0.0.0:%s, Ctrl+C to stop", config.Port)
}

func LogShutdownInitiated(signal string) {
	section("SHUTDOWN (%s)", signal)
}

func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs and exits with status 1.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}
