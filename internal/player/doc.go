// Package player implements the clip viewer widget.
//
// A Player takes caller Options (resource name, optional timestamp and size
// hints), derives the Resource Locator under a fixed base path and drives a
// seek.Synchronizer so the engine is positioned at the requested offset once
// the media has loaded. A load failure switches the widget to a diagnostic
// surface naming the resource and the locator that was tried.
//
// Surfaces are rendered with html/template (Render, RenderPage) or as plain
// text (RenderText) for terminal use. Subscribe exposes state changes and
// failures as buffered channels.
package player
