package player

import (
	"errors"

	"clip-viewer/internal/timestamp"
)

const (
	// DefaultBasePath is the fixed path media locators are built under.
	DefaultBasePath = "/content_understanding/videos"
	// DefaultWidth is the playback surface width hint.
	DefaultWidth = "100%"
	// DefaultHeight is the playback surface height hint.
	DefaultHeight = "400px"
)

var (
	// ErrResourceRequired is returned by Configure when ResourceName is empty.
	ErrResourceRequired = errors.New("resource name is required")
	// ErrClosed is returned by Configure after Close.
	ErrClosed = errors.New("player closed")
)

// Options are the caller-facing inputs of the widget.
type Options struct {
	ResourceName string `json:"resourceName"`
	Timestamp    string `json:"timestamp,omitempty"`
	Width        string `json:"width,omitempty"`
	Height       string `json:"height,omitempty"`
}

// DefaultOptions returns options for name with every optional input at its
// default.
func DefaultOptions(name string) Options {
	return Options{
		ResourceName: name,
		Timestamp:    timestamp.Sentinel,
		Width:        DefaultWidth,
		Height:       DefaultHeight,
	}
}

// withDefaults fills unset optional inputs.
func (o Options) withDefaults() Options {
	if o.Timestamp == "" {
		o.Timestamp = timestamp.Sentinel
	}
	if o.Width == "" {
		o.Width = DefaultWidth
	}
	if o.Height == "" {
		o.Height = DefaultHeight
	}
	return o
}

// BuildLocator joins basePath and name. The name is not escaped or
// validated; callers are trusted to pass a plain file name.
func BuildLocator(basePath, name string) string {
	return basePath + "/" + name
}
