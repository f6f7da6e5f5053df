package player

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"clip-viewer/internal/seek"
)

var surfaceTemplate = template.Must(template.New("surface").Parse(`
{{- define "error" -}}
<div class="error-container">
  <p class="error-text">{{.Error}}</p>
  <p class="error-detail">Expected video path: {{.Locator}}</p>
</div>
{{- end -}}

{{- define "video" -}}
<div class="video-container" data-state="{{.State}}">
  <p class="video-title">Video: {{.ResourceName}}
    {{- if .SeekRequested}}<span class="timestamp-info"> - Seeking to {{.Timestamp}}</span>{{end -}}
  </p>
  <video id="player" src="{{.Locator}}" data-locator="{{.Locator}}" controls width="{{.Width}}" height="{{.Height}}" preload="metadata"
    {{- if .SeekRequested}} data-seek-offset="{{.Offset}}"{{end}}>
    Your browser does not support the video tag.
  </video>
</div>
{{- end -}}

{{- define "empty" -}}
<div class="video-container empty"><p class="video-title">No video selected</p></div>
{{- end -}}

{{- if not .Configured}}{{template "empty" .}}
{{- else if .Failed}}{{template "error" .}}
{{- else}}{{template "video" .}}{{end -}}
`))

var pageTemplate = template.Must(template.Must(surfaceTemplate.Clone()).New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{if .Configured}}{{.ResourceName}} - {{end}}Clip Viewer</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; margin: 2rem; }
        .video-title { font-size: 1rem; font-weight: 600; }
        .timestamp-info { color: #64748b; font-weight: 400; }
        .error-container { border: 1px solid #dc2626; border-radius: 6px; padding: 1rem; }
        .error-text { color: #dc2626; }
        .error-detail { font-size: 0.8rem; }
    </style>
</head>
<body>
<div id="surface">{{template "surface" .}}</div>
{{- if and .Configured (not .Failed)}}
<template id="load-error">{{template "error" .Diagnostic}}</template>
<script>
(function () {
    var video = document.getElementById("player");
    if (!video) { return; }
    var sought = false;
    function report(event) {
        if (!window.fetch) { return; }
        fetch("/api/player/signal", {
            method: "POST",
            headers: {"Content-Type": "application/json"},
            body: JSON.stringify({event: event, locator: video.dataset.locator})
        }).catch(function () {});
    }
    function onLoaded() {
        var offset = parseFloat(video.dataset.seekOffset);
        if (!sought && !isNaN(offset)) { sought = true; video.currentTime = offset; }
        report("loadeddata");
    }
    function onError() {
        video.removeEventListener("loadeddata", onLoaded);
        video.removeEventListener("error", onError);
        var surface = document.getElementById("surface");
        surface.innerHTML = document.getElementById("load-error").innerHTML;
        report("error");
    }
    video.addEventListener("loadeddata", onLoaded);
    video.addEventListener("error", onError);
})();
</script>
{{- end}}
</body>
</html>
`))

// Diagnostic returns the view as it would look after a load failure. The page
// pre-renders it so the browser can swap it in on a load error.
func (v View) Diagnostic() View {
	if v.Error == "" {
		v.Error = fmt.Sprintf("Could not load video: %s", v.ResourceName)
	}
	v.State = seek.Failed
	return v
}

// Render writes the HTML surface: the diagnostic message when the Error State
// is set, the playback surface otherwise.
func (p *Player) Render(w io.Writer) error {
	return RenderView(w, p.View())
}

// RenderView writes the HTML surface for v.
func RenderView(w io.Writer, v View) error {
	return surfaceTemplate.ExecuteTemplate(w, "surface", v)
}

// RenderPage writes a complete HTML document around the surface for v.
func RenderPage(w io.Writer, v View) error {
	return pageTemplate.ExecuteTemplate(w, "page", v)
}

// RenderText writes the surface as plain text, one line per field.
func (p *Player) RenderText(w io.Writer) error {
	return RenderTextView(w, p.View())
}

// RenderTextView writes the plain text surface for v.
func RenderTextView(w io.Writer, v View) error {
	var b strings.Builder
	switch {
	case !v.Configured:
		b.WriteString("No video selected\n")
	case v.Failed():
		fmt.Fprintf(&b, "%s\n", v.Error)
		fmt.Fprintf(&b, "Expected video path: %s\n", v.Locator)
	default:
		fmt.Fprintf(&b, "Video: %s", v.ResourceName)
		if v.SeekRequested {
			fmt.Fprintf(&b, " - Seeking to %s", v.Timestamp)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "Source: %s\n", v.Locator)
		fmt.Fprintf(&b, "State: %s\n", v.State)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
