package main

import (
	"context"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"clip-viewer/internal/engine"
	"clip-viewer/internal/filesystem"
	"clip-viewer/internal/handlers"
	"clip-viewer/internal/logging"
	"clip-viewer/internal/media"
	"clip-viewer/internal/memory"
	"clip-viewer/internal/metrics"
	"clip-viewer/internal/middleware"
	"clip-viewer/internal/mpv"
	"clip-viewer/internal/player"
	"clip-viewer/internal/startup"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// mediaEngine is the engine the player drives together with its lifecycle
// hooks.
type mediaEngine struct {
	engine  engine.Engine
	signals handlers.Dispatcher
	ready   func() bool
	close   func()
}

func main() {
	startTime := time.Now()

	// Size the Go heap to the container before anything else allocates
	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize metrics
	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion, config.Engine)
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"media":  config.MediaDir,
		"frames": config.Frames.Dir,
	}))

	// Connect the media engine
	startup.LogEngineInit(config)
	eng, err := connectEngine(context.Background(), config)
	if err != nil {
		startup.LogFatal("Failed to start media engine: %v", err)
	}

	// Initialize the widget
	p := player.New(eng.engine, player.Config{
		BasePath: config.BasePath,
		Observer: metrics.NewSeekObserver(),
	})

	// Initialize handlers
	opts := []handlers.Option{handlers.WithReady(eng.ready)}
	if eng.signals != nil {
		opts = append(opts, handlers.WithBrowserSignals(eng.signals))
	}
	if config.Frames.Enabled {
		opts = append(opts, handlers.WithFrames(newFrameExtractor(config)))
	}
	h := handlers.New(p, config, opts...)

	// Setup router
	router := setupRouter(h, config.BasePath)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	handler := buildHandler(router, config)

	// Start metrics server and collector
	var metricsSrv *http.Server
	var collector *metrics.Collector
	if config.MetricsEnabled {
		metricsSrv = startMetricsServer(config.MetricsPort)
		collector = metrics.NewCollector(h, config.StatsInterval)
		collector.Start()
	}

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Start graceful shutdown handler
	done := make(chan struct{})
	go func() {
		defer close(done)
		waitForSignal()
		shutdown(shutdownSteps(srv, metricsSrv, collector, p, eng))
	}()

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		BasePath:        config.BasePath,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

// connectEngine starts the engine selected by ENGINE.
func connectEngine(ctx context.Context, config *startup.Config) (*mediaEngine, error) {
	if config.Engine != startup.EngineMPV {
		rec := engine.NewRecorder()
		startup.LogEngineReady("browser")
		return &mediaEngine{
			engine:  rec,
			signals: rec,
			ready:   func() bool { return true },
			close:   func() {},
		}, nil
	}

	var cmd *exec.Cmd
	if config.MPV.Launch {
		var err error
		cmd, err = mpv.Launch(ctx, mpv.LaunchConfig{Path: config.MPV.Path, SocketPath: config.MPV.Socket})
		if err != nil {
			return nil, err
		}
	}

	client, err := mpv.Dial(ctx, config.MPV.Socket, mpv.WithBaseURL(config.PublicURL))
	if err != nil {
		stopProcess(cmd)
		return nil, err
	}
	startup.LogEngineReady("mpv")

	go func() {
		<-client.Done()
		logging.Warn("mpv connection closed")
	}()

	return &mediaEngine{
		engine: client,
		ready: func() bool {
			select {
			case <-client.Done():
				return false
			default:
				return true
			}
		},
		close: func() {
			if err := client.Close(); err != nil {
				logging.Debug("mpv close: %v", err)
			}
			stopProcess(cmd)
		},
	}, nil
}

// newFrameExtractor returns an extractor even without FFmpeg so the frame
// routes answer 503 rather than 404.
func newFrameExtractor(config *startup.Config) *media.Extractor {
	return media.NewExtractor(media.Config{
		MediaDir:  config.MediaDir,
		OutputDir: config.Frames.Dir,
		URLPath:   config.Frames.Path,
		FFmpeg:    config.Frames.FFmpeg,
		MaxSize:   config.Frames.MaxSize,
		Quality:   config.Frames.Quality,
		Timeout:   config.Frames.Timeout,
		Retry:     filesystem.DefaultRetryConfig(),
	})
}

func stopProcess(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		logging.Debug("Signalling mpv: %v", err)
	}
	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()
	select {
	case <-waitErr:
	case <-time.After(5 * time.Second):
		logging.Warn("mpv did not exit, killing it")
		_ = cmd.Process.Kill()
		<-waitErr
	}
}

func setupRouter(h *handlers.Handlers, basePath string) *mux.Router {
	r := mux.NewRouter()

	// Health and version
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/player", h.GetPlayer).Methods("GET")
	api.HandleFunc("/player", h.PutPlayer).Methods("PUT")
	api.HandleFunc("/player", h.DeletePlayer).Methods("DELETE")
	if h.AcceptsBrowserSignals() {
		api.HandleFunc("/player/signal", h.ReportSignal).Methods("POST")
	}
	api.HandleFunc("/timestamp", h.ParseTimestamp).Methods("GET")
	api.HandleFunc("/media", h.ListMedia).Methods("GET")
	api.HandleFunc("/stats", h.MediaStats).Methods("GET")
	api.HandleFunc("/version", h.GetVersion).Methods("GET")
	if h.ServesFrames() {
		api.HandleFunc("/frame", h.GetFrame).Methods("GET")
		api.HandleFunc("/frames", h.GetFrames).Methods("GET")
		r.HandleFunc(h.FramePath()+"/{file:.+}", h.ServeFrame).Methods("GET", "HEAD")
	}

	// Media files
	r.HandleFunc(basePath+"/{name:.+}", h.ServeMedia).Methods("GET", "HEAD")

	// Widget page
	r.HandleFunc("/", h.Page).Methods("GET")

	return r
}

func startMetricsServer(port string) *http.Server {
	m := http.NewServeMux()
	m.Handle("/metrics", promhttp.Handler())
	m.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           m,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("Metrics server error: %v", err)
		}
	}()
	return srv
}

// buildHandler wraps the router in the middleware chain, innermost first.
// Compression is outermost, so logged and measured sizes are uncompressed.
func buildHandler(router http.Handler, config *startup.Config) http.Handler {
	logCfg := middleware.DefaultLoggingConfig()
	logCfg.LogStaticFiles = config.LogStaticFiles
	logCfg.LogHealthChecks = config.LogHealthChecks

	chain := []func(http.Handler) http.Handler{
		middleware.Metrics(middleware.DefaultMetricsConfig(config.BasePath)),
		middleware.Logger(logCfg),
		middleware.Compression(middleware.DefaultCompressionConfig()),
	}
	h := router
	for _, mw := range chain {
		h = mw(h)
	}
	return h
}

func waitForSignal() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	signal.Stop(sigChan)
	startup.LogShutdownInitiated(sig.String())
}

// shutdownStep is one component to stop. Steps run in order so the player
// is closed only after HTTP handlers have drained.
type shutdownStep struct {
	name string
	done string
	stop func(context.Context) error
}

func shutdownSteps(srv, metricsSrv *http.Server, collector *metrics.Collector, p *player.Player, eng *mediaEngine) []shutdownStep {
	steps := []shutdownStep{{"Shutting down HTTP server", "HTTP server stopped", srv.Shutdown}}
	if collector != nil {
		steps = append(steps, shutdownStep{"Stopping metrics collector", "Metrics collector stopped",
			func(context.Context) error { collector.Stop(); return nil }})
	}
	if metricsSrv != nil {
		steps = append(steps, shutdownStep{"Shutting down metrics server", "Metrics server stopped", metricsSrv.Shutdown})
	}
	return append(steps,
		shutdownStep{"Closing player", "Player closed", func(context.Context) error { p.Close(); return nil }},
		shutdownStep{"Stopping media engine", "Media engine stopped", func(context.Context) error { eng.close(); return nil }},
	)
}

// shutdown runs steps under one shared 30s deadline. A failed step is logged
// and the rest still run.
func shutdown(steps []shutdownStep) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, step := range steps {
		startup.LogShutdownStep(step.name)
		if err := step.stop(ctx); err != nil {
			logging.Warn("%s: %v", step.name, err)
			continue
		}
		startup.LogShutdownStepComplete(step.done)
	}
	startup.LogShutdownComplete()
}
