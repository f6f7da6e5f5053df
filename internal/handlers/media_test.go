package handlers

import (
	"net/http"
	"testing"
)

func TestServeMedia(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile(t, "clip.mp4", "0123456789")
	env.writeFile(t, "talks/intro.webm", "webm-data")
	env.writeFile(t, "clip.vtt", "WEBVTT\n")
	env.writeFile(t, "notes.txt", "secret")

	tests := []struct {
		name        string
		path        string
		status      int
		contentType string
		body        string
	}{
		{"Video", testBasePath + "/clip.mp4", http.StatusOK, "video/mp4", "0123456789"},
		{"Nested video", testBasePath + "/talks/intro.webm", http.StatusOK, "video/webm", "webm-data"},
		{"Caption track", testBasePath + "/clip.vtt", http.StatusOK, "text/vtt", "WEBVTT\n"},
		{"Missing file", testBasePath + "/missing.mp4", http.StatusNotFound, "", ""},
		{"Unsupported type", testBasePath + "/notes.txt", http.StatusForbidden, "", ""},
		{"Directory", testBasePath + "/talks", http.StatusForbidden, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tt.path, "")

			if w.Code != tt.status {
				t.Fatalf("Expected status %d, got %d (%s)", tt.status, w.Code, w.Body.String())
			}
			if tt.contentType != "" && w.Header().Get("Content-Type") != tt.contentType {
				t.Errorf("Expected Content-Type %q, got %q", tt.contentType, w.Header().Get("Content-Type"))
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("Expected body %q, got %q", tt.body, w.Body.String())
			}
		})
	}
}

func TestServeMedia_Range(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile(t, "clip.mp4", "0123456789")

	w := env.do(t, http.MethodGet, testBasePath+"/clip.mp4", "", "Range", "bytes=2-5")

	if w.Code != http.StatusPartialContent {
		t.Fatalf("Expected status 206, got %d", w.Code)
	}
	if w.Body.String() != "2345" {
		t.Errorf("Expected body 2345, got %q", w.Body.String())
	}
	if cr := w.Header().Get("Content-Range"); cr != "bytes 2-5/10" {
		t.Errorf("Expected Content-Range bytes 2-5/10, got %q", cr)
	}
}

func TestServeMedia_Head(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile(t, "clip.mp4", "0123456789")

	w := env.do(t, http.MethodHead, testBasePath+"/clip.mp4", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Length") != "10" {
		t.Errorf("Expected Content-Length 10, got %q", w.Header().Get("Content-Length"))
	}
	if w.Body.Len() != 0 {
		t.Errorf("Expected empty body, got %q", w.Body.String())
	}
}

func TestResolveMediaPath(t *testing.T) {
	h := &Handlers{mediaDir: "/srv/media"}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"Plain name", "clip.mp4", "/srv/media/clip.mp4", false},
		{"Nested name", "a/b/clip.mp4", "/srv/media/a/b/clip.mp4", false},
		{"Inner dot-dot", "a/../clip.mp4", "/srv/media/clip.mp4", false},
		{"Escape", "../etc/passwd", "", true},
		{"Deep escape", "a/../../etc/passwd", "", true},
		{"Media dir itself", ".", "", true},
		{"Empty", "", "", true},
		{"NUL byte", "clip\x00.mp4", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.resolveMediaPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveMediaPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveMediaPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
