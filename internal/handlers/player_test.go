package handlers

import (
	"encoding/json"
	"html"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"clip-viewer/internal/engine"
)

func TestPutPlayer(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/api/player", `{"resourceName":"clip.mp4","timestamp":"00:01:30"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%s)", w.Code, w.Body.String())
	}
	var view map[string]interface{}
	decode(t, w, &view)

	if view["locator"] != testBasePath+"/clip.mp4" {
		t.Errorf("Unexpected locator %v", view["locator"])
	}
	if view["state"] != "attached" {
		t.Errorf("Expected state attached, got %v", view["state"])
	}
	if view["seekRequested"] != true || view["offset"] != float64(90) {
		t.Errorf("Expected a seek to 90, got %v/%v", view["seekRequested"], view["offset"])
	}
	if view["width"] != "100%" || view["height"] != "400px" {
		t.Errorf("Expected default dimensions, got %v x %v", view["width"], view["height"])
	}
	if env.engine.Source() != testBasePath+"/clip.mp4" {
		t.Errorf("Engine source not set, got %q", env.engine.Source())
	}

	env.engine.Fire(engine.EventDataLoaded)

	positions := env.engine.Positions()
	if len(positions) != 1 || positions[0] != 90 {
		t.Errorf("Expected one seek to 90, got %v", positions)
	}
}

func TestPutPlayer_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"Malformed body", `{"resourceName":`, http.StatusBadRequest},
		{"Missing resource name", `{"timestamp":"00:00:10"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPut, "/api/player", tt.body)
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
			var resp map[string]string
			decode(t, w, &resp)
			if resp["error"] == "" {
				t.Error("Expected an error message")
			}
		})
	}

	if len(env.engine.Sources()) != 0 {
		t.Errorf("Rejected requests must not touch the engine, got %v", env.engine.Sources())
	}
}

func TestPutPlayer_AfterClose(t *testing.T) {
	env := newTestEnv(t)
	env.player.Close()

	w := env.do(t, http.MethodPut, "/api/player", `{"resourceName":"clip.mp4"}`)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestGetPlayer_ReportsFailure(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPut, "/api/player", `{"resourceName":"missing.mp4"}`)
	env.engine.Fire(engine.EventLoadError)

	w := env.do(t, http.MethodGet, "/api/player", "")

	var view map[string]interface{}
	decode(t, w, &view)
	if view["state"] != "failed" {
		t.Errorf("Expected state failed, got %v", view["state"])
	}
	if view["error"] != "Could not load video: missing.mp4" {
		t.Errorf("Unexpected error %v", view["error"])
	}
}

func TestDeletePlayer(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPut, "/api/player", `{"resourceName":"clip.mp4","timestamp":"00:00:05"}`)

	w := env.do(t, http.MethodDelete, "/api/player", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	env.engine.Fire(engine.EventDataLoaded)
	if len(env.engine.Positions()) != 0 {
		t.Errorf("Released session must not seek, got %v", env.engine.Positions())
	}

	var view map[string]interface{}
	decode(t, env.do(t, http.MethodGet, "/api/player", ""), &view)
	if view["configured"] != false || view["state"] != "idle" {
		t.Errorf("Expected an idle unconfigured player, got %v", view)
	}
}

func TestPage(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/?name=clip.mp4&t=00:01:30", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Unexpected Content-Type %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{
		"<title>clip.mp4 - Clip Viewer</title>",
		`src="` + testBasePath + `/clip.mp4"`,
		`data-seek-offset="90"`,
		"Seeking to 00:01:30",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Page missing %q", want)
		}
	}
}

func TestPage_WithoutQueryKeepsCurrentView(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(t, http.MethodGet, "/", ""); !strings.Contains(w.Body.String(), "No video selected") {
		t.Errorf("Expected the unconfigured surface, got %q", w.Body.String())
	}

	env.do(t, http.MethodPut, "/api/player", `{"resourceName":"missing.mp4"}`)
	env.engine.Fire(engine.EventLoadError)

	body := env.do(t, http.MethodGet, "/", "").Body.String()
	if !strings.Contains(body, "Could not load video: missing.mp4") {
		t.Error("Expected the diagnostic surface")
	}
	if strings.Contains(body, "<video") {
		t.Error("Diagnostic surface must not contain a playback surface")
	}
}

func TestParseTimestamp(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		query         string
		seconds       float64
		seekRequested bool
		formatted     string
		warns         bool
	}{
		{"00:01:30", 90, true, "00:01:30.000", false},
		{"01:02:03.5", 3723.5, true, "01:02:03.500", false},
		{"00:00:00", 0, false, "00:00:00.000", false},
		{"", 0, false, "00:00:00.000", false},
		{"garbage", 0, true, "00:00:00.000", true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/timestamp?t="+tt.query, "")

			var resp TimestampResponse
			decode(t, w, &resp)
			if resp.Timestamp != tt.query {
				t.Errorf("Expected timestamp %q echoed, got %q", tt.query, resp.Timestamp)
			}
			if resp.Seconds != tt.seconds {
				t.Errorf("Expected %v seconds, got %v", tt.seconds, resp.Seconds)
			}
			if resp.SeekRequested != tt.seekRequested {
				t.Errorf("Expected seekRequested %v, got %v", tt.seekRequested, resp.SeekRequested)
			}
			if resp.Formatted != tt.formatted {
				t.Errorf("Expected formatted %q, got %q", tt.formatted, resp.Formatted)
			}
			if (len(resp.Warnings) > 0) != tt.warns {
				t.Errorf("Unexpected warnings %v", resp.Warnings)
			}
		})
	}
}

func TestReportSignal(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPut, "/api/player", `{"resourceName":"clip.mp4","timestamp":"00:00:42"}`)

	w := env.do(t, http.MethodPost, "/api/player/signal",
		`{"event":"loadeddata","locator":"`+testBasePath+`/clip.mp4"}`)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d (%s)", w.Code, w.Body.String())
	}
	if p := env.engine.Positions(); len(p) != 1 || p[0] != 42 {
		t.Errorf("Expected one seek to 42, got %v", p)
	}
	if got := env.player.View().State.String(); got != "sought" {
		t.Errorf("Expected state sought, got %s", got)
	}
}

func TestReportSignal_LocatorFromRenderedPage(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPut, "/api/player", `{"resourceName":"my clip & co.mp4","timestamp":"00:00:42"}`)

	page := env.do(t, http.MethodGet, "/", "")
	m := regexp.MustCompile(`data-locator="([^"]*)"`).FindStringSubmatch(page.Body.String())
	if m == nil {
		t.Fatalf("Page has no data-locator attribute: %s", page.Body.String())
	}
	locator := html.UnescapeString(m[1])
	if want := testBasePath + "/my clip & co.mp4"; locator != want {
		t.Fatalf("Expected page locator %q, got %q", want, locator)
	}

	body, _ := json.Marshal(map[string]string{"event": "loadeddata", "locator": locator})
	w := env.do(t, http.MethodPost, "/api/player/signal", string(body))

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d (%s)", w.Code, w.Body.String())
	}
	if got := env.player.View().State.String(); got != "sought" {
		t.Errorf("Expected state sought, got %s", got)
	}
}

func TestReportSignal_Error(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPut, "/api/player", `{"resourceName":"missing.mp4"}`)

	w := env.do(t, http.MethodPost, "/api/player/signal",
		`{"event":"error","locator":"`+testBasePath+`/missing.mp4"}`)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", w.Code)
	}
	if !env.player.View().Failed() {
		t.Error("Expected the player to show the diagnostic")
	}
}

func TestReportSignal_StaleLocatorIgnored(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPut, "/api/player", `{"resourceName":"clip.mp4","timestamp":"00:00:42"}`)

	env.do(t, http.MethodPost, "/api/player/signal", `{"event":"error","locator":"`+testBasePath+`/old.mp4"}`)

	if env.player.View().Failed() {
		t.Error("A signal for a replaced locator must not fail the session")
	}
}

func TestReportSignal_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{`{"event":"play","locator":"x"}`, `{"event":"loadeddata"}`, `not json`} {
		w := env.do(t, http.MethodPost, "/api/player/signal", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", body, w.Code)
		}
	}
}

func TestReportSignal_Disabled(t *testing.T) {
	env := newTestEnv(t)
	env.h.signals = nil

	w := env.do(t, http.MethodPost, "/api/player/signal", `{"event":"loadeddata","locator":"x"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
