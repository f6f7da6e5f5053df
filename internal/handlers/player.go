package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"clip-viewer/internal/engine"
	"clip-viewer/internal/player"
	"clip-viewer/internal/timestamp"
)

const maxOptionsBody = 64 << 10

// Page renders the widget as a standalone HTML page. The query parameters
// name, t, width and height configure the widget before rendering.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if name := q.Get("name"); name != "" {
		opts := player.Options{
			ResourceName: name,
			Timestamp:    q.Get("t"),
			Width:        q.Get("width"),
			Height:       q.Get("height"),
		}
		if err := h.player.Configure(opts); err != nil {
			log.Warn("Page: configure %q failed: %v", name, err)
			http.Error(w, "Player unavailable", configureStatus(err))
			return
		}
	}

	var buf bytes.Buffer
	if err := player.RenderPage(&buf, h.player.View()); err != nil {
		log.Error("Page: render failed: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug("Page: write failed: %v", err)
	}
}

// GetPlayer returns the current widget view.
func (h *Handlers) GetPlayer(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, h.player.View())
}

// PutPlayer configures the widget from a JSON Options body and returns the
// resulting view.
func (h *Handlers) PutPlayer(w http.ResponseWriter, r *http.Request) {
	var opts player.Options
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxOptionsBody)).Decode(&opts); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.player.Configure(opts); err != nil {
		writeJSONError(w, err.Error(), configureStatus(err))
		return
	}

	view := h.player.View()
	log.Info("Player configured: %s (timestamp %s)", view.Locator, view.Timestamp)
	writeJSONCode(w, http.StatusOK, view)
}

// DeletePlayer releases the current session. The widget stays usable.
func (h *Handlers) DeletePlayer(w http.ResponseWriter, _ *http.Request) {
	h.player.Reset()
	log.Info("Player reset")
	writeJSONStatus(w, "reset")
}

// TimestampResponse is the result of parsing a timestamp.
type TimestampResponse struct {
	Timestamp     string   `json:"timestamp"`
	SeekRequested bool     `json:"seekRequested"`
	Seconds       float64  `json:"seconds"`
	Formatted     string   `json:"formatted"`
	Warnings      []string `json:"warnings,omitempty"`
}

// ParseTimestamp parses ?t= the way the widget does and reports any
// diagnostics the parser produced.
func (h *Handlers) ParseTimestamp(w http.ResponseWriter, r *http.Request) {
	ts := r.URL.Query().Get("t")

	var warnings []string
	seconds := timestamp.Parse(ts, func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, TimestampResponse{
		Timestamp:     ts,
		SeekRequested: timestamp.SeekRequested(ts),
		Seconds:       seconds,
		Formatted:     timestamp.Format(seconds),
		Warnings:      warnings,
	})
}

func configureStatus(err error) int {
	switch {
	case errors.Is(err, player.ErrResourceRequired):
		return http.StatusBadRequest
	case errors.Is(err, player.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// SignalRequest is a load signal reported by the page.
type SignalRequest struct {
	Event   engine.Event `json:"event"`
	Locator string       `json:"locator"`
	Error   string       `json:"error,omitempty"`
}

// ReportSignal forwards a load signal from the browser to the engine
// listeners. Signals for a locator other than the current one are ignored by
// the synchronizer.
func (h *Handlers) ReportSignal(w http.ResponseWriter, r *http.Request) {
	if h.signals == nil {
		writeJSONError(w, "Browser signals are disabled", http.StatusNotFound)
		return
	}

	var req SignalRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxOptionsBody)).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Locator == "" {
		writeJSONError(w, "locator is required", http.StatusBadRequest)
		return
	}

	sig := engine.Signal{Event: req.Event, Locator: req.Locator}
	switch req.Event {
	case engine.EventDataLoaded:
	case engine.EventLoadError:
		cause := req.Error
		if cause == "" {
			cause = "media element error"
		}
		sig.Err = errors.New(cause)
	default:
		writeJSONError(w, fmt.Sprintf("Unknown event %q", req.Event), http.StatusBadRequest)
		return
	}

	log.Debug("Browser signal %s", sig)
	h.signals.Dispatch(sig)
	w.WriteHeader(http.StatusNoContent)
}
