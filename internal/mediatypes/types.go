package mediatypes

import (
	"path/filepath"
	"strings"
)

// FileType classifies a file in the media directory.
type FileType string

const (
	FileTypeVideo FileType = "video"
	// FileTypeCaption is a timed-text track served next to a video.
	FileTypeCaption FileType = "caption"
	FileTypeOther   FileType = "other"
)

// Format describes one servable extension.
type Format struct {
	Type FileType
	MIME string
	// Playable is set for containers a <video> element usually decodes
	// without transcoding.
	Playable bool
}

// Formats is keyed by lowercase extension, dot included.
var Formats = map[string]Format{
	".mp4":  {FileTypeVideo, "video/mp4", true},
	".m4v":  {FileTypeVideo, "video/x-m4v", true},
	".webm": {FileTypeVideo, "video/webm", true},
	".ogv":  {FileTypeVideo, "video/ogg", true},
	".mov":  {FileTypeVideo, "video/quicktime", true},
	".mkv":  {FileTypeVideo, "video/x-matroska", false},
	".avi":  {FileTypeVideo, "video/x-msvideo", false},
	".wmv":  {FileTypeVideo, "video/x-ms-wmv", false},
	".flv":  {FileTypeVideo, "video/x-flv", false},
	".mpeg": {FileTypeVideo, "video/mpeg", false},
	".mpg":  {FileTypeVideo, "video/mpeg", false},
	".3gp":  {FileTypeVideo, "video/3gpp", false},
	".ts":   {FileTypeVideo, "video/mp2t", false},

	".vtt": {FileTypeCaption, "text/vtt", false},
	".srt": {FileTypeCaption, "application/x-subrip", false},
}

// Ext returns the lowercase extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Lookup returns the Format for a file name or bare extension.
func Lookup(name string) (Format, bool) {
	f, ok := Formats[Ext(name)]
	return f, ok
}

func GetFileType(name string) FileType {
	if f, ok := Lookup(name); ok {
		return f.Type
	}
	return FileTypeOther
}

// GetMimeType falls back to application/octet-stream.
func GetMimeType(name string) string {
	if f, ok := Lookup(name); ok {
		return f.MIME
	}
	return "application/octet-stream"
}

// IsServable reports whether name may be served from the media directory.
func IsServable(name string) bool {
	_, ok := Lookup(name)
	return ok
}

func IsBrowserPlayable(name string) bool {
	f, _ := Lookup(name)
	return f.Playable
}
