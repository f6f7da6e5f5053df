package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clip-viewer/internal/handlers"
	"clip-viewer/internal/player"
	"clip-viewer/internal/startup"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	config := &startup.Config{
		MediaDir: t.TempDir(),
		BasePath: "/content_understanding/videos",
		Engine:   startup.EngineNone,
		Frames: startup.FramesConfig{
			Enabled: true,
			Dir:     t.TempDir(),
			Path:    "/video_thumbnails",
			FFmpeg:  "clip-viewer-no-such-ffmpeg",
		},
	}
	eng, err := connectEngine(context.Background(), config)
	if err != nil {
		t.Fatalf("connectEngine: %v", err)
	}
	t.Cleanup(eng.close)

	p := player.New(eng.engine, player.Config{BasePath: config.BasePath})
	t.Cleanup(p.Close)

	h := handlers.New(p, config,
		handlers.WithReady(eng.ready),
		handlers.WithBrowserSignals(eng.signals),
		handlers.WithFrames(newFrameExtractor(config)))
	return setupRouter(h, config.BasePath)
}

func TestConnectEngine_Browser(t *testing.T) {
	eng, err := connectEngine(context.Background(), &startup.Config{Engine: startup.EngineNone})
	if err != nil {
		t.Fatalf("connectEngine: %v", err)
	}
	if eng.signals == nil {
		t.Error("Browser engine must accept page signals")
	}
	if !eng.ready() {
		t.Error("Browser engine is always ready")
	}
}

func TestSetupRouter(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodHead, "/livez", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/version", http.StatusOK},
		{http.MethodGet, "/api/version", http.StatusOK},
		{http.MethodGet, "/api/player", http.StatusOK},
		{http.MethodGet, "/api/timestamp?t=00:01:30", http.StatusOK},
		{http.MethodGet, "/api/media", http.StatusOK},
		{http.MethodGet, "/api/stats", http.StatusOK},
		{http.MethodGet, "/api/frame?name=clip.mp4&t=00:00:05", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/frames?name=clip.mp4&t=00:00:05", http.StatusServiceUnavailable},
		{http.MethodGet, "/video_thumbnails/clip_00-00-05-000.jpg", http.StatusNotFound},
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/content_understanding/videos/missing.mp4", http.StatusNotFound},
		{http.MethodPost, "/api/player", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, http.NoBody))

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestStopProcessNil(t *testing.T) {
	// Must not panic without a launched process.
	stopProcess(nil)
}

func TestShutdown_RunsEveryStepInOrder(t *testing.T) {
	var ran []string
	step := func(name string, err error) shutdownStep {
		return shutdownStep{name: name, done: name + " done", stop: func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				t.Errorf("%s: expected a deadline", name)
			}
			ran = append(ran, name)
			return err
		}}
	}

	shutdown([]shutdownStep{
		step("http", nil),
		step("metrics", errors.New("already closed")),
		step("player", nil),
	})

	if got := strings.Join(ran, ","); got != "http,metrics,player" {
		t.Errorf("ran %q, want every step in order", got)
	}
}

func TestShutdownSteps_OptionalComponents(t *testing.T) {
	eng, err := connectEngine(context.Background(), &startup.Config{Engine: startup.EngineNone})
	if err != nil {
		t.Fatalf("connectEngine: %v", err)
	}
	p := player.New(eng.engine, player.Config{})
	t.Cleanup(p.Close)

	steps := shutdownSteps(&http.Server{}, nil, nil, p, eng)
	if len(steps) != 3 {
		t.Fatalf("got %d steps, want http, player and engine", len(steps))
	}
	if steps[0].name != "Shutting down HTTP server" || steps[2].name != "Stopping media engine" {
		t.Errorf("unexpected order: %q ... %q", steps[0].name, steps[2].name)
	}
}

func TestBuildHandler_CompressesPage(t *testing.T) {
	config := &startup.Config{BasePath: "/content_understanding/videos"}
	page := strings.Repeat("<p>clip</p>", 200)
	h := buildHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}), config)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Error("expected the page to be gzipped")
	}
}
