package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clip-viewer/internal/engine"
	"clip-viewer/internal/player"
	"clip-viewer/internal/startup"

	"github.com/gorilla/mux"
)

const testBasePath = "/content_understanding/videos"

type testEnv struct {
	h        *Handlers
	player   *player.Player
	engine   *engine.Recorder
	mediaDir string
	router   *mux.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mediaDir := t.TempDir()
	eng := engine.NewRecorder()
	p := player.New(eng, player.Config{BasePath: testBasePath})
	t.Cleanup(p.Close)

	cfg := &startup.Config{MediaDir: mediaDir, BasePath: testBasePath, Engine: startup.EngineNone}
	h := New(p, cfg, WithBrowserSignals(eng))

	r := mux.NewRouter()
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/api/player", h.GetPlayer).Methods("GET")
	r.HandleFunc("/api/player", h.PutPlayer).Methods("PUT")
	r.HandleFunc("/api/player", h.DeletePlayer).Methods("DELETE")
	r.HandleFunc("/api/player/signal", h.ReportSignal).Methods("POST")
	r.HandleFunc("/api/timestamp", h.ParseTimestamp).Methods("GET")
	r.HandleFunc("/api/media", h.ListMedia).Methods("GET")
	r.HandleFunc("/api/stats", h.MediaStats).Methods("GET")
	r.HandleFunc(testBasePath+"/{name:.+}", h.ServeMedia).Methods("GET", "HEAD")
	r.HandleFunc("/", h.Page).Methods("GET")

	return &testEnv{h: h, player: p, engine: eng, mediaDir: mediaDir, router: r}
}

func (e *testEnv) writeFile(t *testing.T, name, content string) {
	t.Helper()
	path := filepath.Join(e.mediaDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func (e *testEnv) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}
