package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"clip-viewer/internal/filesystem"
	"clip-viewer/internal/logging"
	"clip-viewer/internal/mediatypes"
	"clip-viewer/internal/timestamp"
)

var log = logging.Component("media")

// DefaultTimestamp is used when an extraction names no timestamp.
const DefaultTimestamp = "00:00:01"

var (
	// ErrUnavailable is returned by every extraction when FFmpeg was not found.
	ErrUnavailable = errors.New("frame extraction unavailable: ffmpeg not found")
	// ErrInvalidName is returned for names that escape the media directory or
	// are not videos.
	ErrInvalidName = errors.New("invalid video name")
	// ErrNotFound is returned when the video does not exist.
	ErrNotFound = errors.New("video not found")
)

// Runner runs a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Config configures an Extractor.
type Config struct {
	// MediaDir holds the videos frames are taken from.
	MediaDir string
	// OutputDir receives the extracted JPEGs.
	OutputDir string
	// URLPath is the route OutputDir is served under.
	URLPath string
	// FFmpeg is the binary name or path.
	FFmpeg string
	// MaxSize bounds the longer side of a frame. Zero keeps the video size.
	MaxSize int
	Quality int
	Timeout time.Duration
	Retry   filesystem.RetryConfig
	// Runner replaces exec for tests. When set the FFmpeg lookup is skipped.
	Runner Runner
}

// DefaultConfig returns the settings used when nothing else is configured.
func DefaultConfig() Config {
	return Config{
		URLPath: "/video_thumbnails",
		FFmpeg:  "ffmpeg",
		Quality: 90,
		Timeout: 30 * time.Second,
		Retry:   filesystem.DefaultRetryConfig(),
	}
}

// Frame describes one extracted still.
type Frame struct {
	Name      string  `json:"name"`
	Timestamp string  `json:"timestamp"`
	Offset    float64 `json:"offset"`
	// Path is the URL the JPEG is served at.
	Path   string `json:"path"`
	Cached bool   `json:"cached"`

	file string
}

// File returns the frame's location on disk.
func (f Frame) File() string {
	return f.file
}

// Extractor pulls frames out of videos with FFmpeg and caches them.
type Extractor struct {
	cfg     Config
	ffmpeg  string
	enabled bool
	run     Runner
	mu      sync.Mutex
}

// NewExtractor creates an Extractor. A missing FFmpeg is logged and disables
// extraction instead of failing.
func NewExtractor(cfg Config) *Extractor {
	def := DefaultConfig()
	if cfg.URLPath == "" {
		cfg.URLPath = def.URLPath
	}
	cfg.URLPath = "/" + strings.Trim(cfg.URLPath, "/")
	if cfg.FFmpeg == "" {
		cfg.FFmpeg = def.FFmpeg
	}
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = def.Quality
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	e := &Extractor{cfg: cfg, run: cfg.Runner, enabled: true}
	if e.run == nil {
		path, err := exec.LookPath(cfg.FFmpeg)
		if err != nil {
			log.Warn("FFmpeg not found (%s), frame extraction disabled", cfg.FFmpeg)
			e.enabled = false
			return e
		}
		e.ffmpeg = path
		e.run = runCommand
	} else {
		e.ffmpeg = cfg.FFmpeg
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Warn("Failed to create frame directory %s: %v", cfg.OutputDir, err)
	}
	log.Debug("Frame extraction enabled: ffmpeg=%s dir=%s", e.ffmpeg, cfg.OutputDir)
	return e
}

// Available reports whether FFmpeg was found.
func (e *Extractor) Available() bool {
	return e.enabled
}

// Dir returns the directory frames are written to.
func (e *Extractor) Dir() string {
	return e.cfg.OutputDir
}

// URLPath returns the route frames are served under.
func (e *Extractor) URLPath() string {
	return e.cfg.URLPath
}

// Extract returns the frame of name at ts, running FFmpeg unless a frame at
// least as new as the video is already cached. An empty ts means
// DefaultTimestamp.
func (e *Extractor) Extract(ctx context.Context, name, ts string) (Frame, error) {
	if !e.enabled {
		return Frame{}, ErrUnavailable
	}
	video, info, err := e.source(name)
	if err != nil {
		return Frame{}, err
	}
	return e.extract(ctx, name, video, info, ts)
}

// ExtractMany extracts one frame per timestamp and returns them keyed by the
// timestamp as given. Timestamps that fail are logged and left out. The error
// is set when the video itself is unusable or ctx ends.
func (e *Extractor) ExtractMany(ctx context.Context, name string, timestamps []string) (map[string]Frame, error) {
	if !e.enabled {
		return nil, ErrUnavailable
	}
	video, info, err := e.source(name)
	if err != nil {
		return nil, err
	}

	frames := make(map[string]Frame, len(timestamps))
	for _, ts := range timestamps {
		if ctx.Err() != nil {
			return frames, ctx.Err()
		}
		if _, done := frames[ts]; done {
			continue
		}
		f, err := e.extract(ctx, name, video, info, ts)
		if err != nil {
			log.Warn("Frame %s at %q skipped: %v", name, ts, err)
			continue
		}
		frames[ts] = f
	}
	return frames, nil
}

// ResolveFile maps a path under URLPath to a JPEG inside the frame directory.
func (e *Extractor) ResolveFile(rel string) (string, error) {
	if !strings.EqualFold(path.Ext(rel), ".jpg") {
		return "", ErrInvalidName
	}
	return within(e.cfg.OutputDir, rel)
}

func (e *Extractor) source(name string) (string, os.FileInfo, error) {
	if mediatypes.GetFileType(name) != mediatypes.FileTypeVideo {
		return "", nil, ErrInvalidName
	}
	video, err := within(e.cfg.MediaDir, name)
	if err != nil {
		return "", nil, err
	}
	info, err := filesystem.StatWithRetry(video, e.cfg.Retry)
	if err != nil || info.IsDir() {
		if err == nil || os.IsNotExist(err) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("checking %s: %w", name, err)
	}
	return video, info, nil
}

func (e *Extractor) extract(ctx context.Context, name, video string, info os.FileInfo, ts string) (Frame, error) {
	if ts == "" {
		ts = DefaultTimestamp
	}
	offset := timestamp.Parse(ts, log.Debug)
	rel := frameName(name, offset)

	f := Frame{
		Name:      name,
		Timestamp: ts,
		Offset:    offset,
		Path:      (&url.URL{Path: e.cfg.URLPath + "/" + rel}).EscapedPath(),
		file:      filepath.Join(e.cfg.OutputDir, filepath.FromSlash(rel)),
	}

	if fresh(f.file, info) {
		f.Cached = true
		return f, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Another request may have produced it while we waited.
	if fresh(f.file, info) {
		f.Cached = true
		return f, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	start := time.Now()
	out, err := e.run(ctx, e.ffmpeg,
		"-nostdin", "-v", "error",
		"-ss", fmt.Sprintf("%.3f", offset),
		"-i", video,
		"-frames:v", "1",
		"-f", "image2pipe", "-vcodec", "png", "-")
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Frame{}, fmt.Errorf("ffmpeg timed out after %v: %w", e.cfg.Timeout, err)
		}
		return Frame{}, err
	}

	img, err := decodeFrame(out)
	if err != nil {
		// FFmpeg exits cleanly with no output when ts is past the end.
		return Frame{}, fmt.Errorf("no frame at %s: %w", timestamp.Format(offset), err)
	}
	img = fitFrame(img, e.cfg.MaxSize)

	var buf bytes.Buffer
	if err := encodeJPEG(&buf, img, e.cfg.Quality); err != nil {
		return Frame{}, err
	}
	if err := writeAtomic(f.file, buf.Bytes()); err != nil {
		return Frame{}, err
	}

	log.Debug("Extracted frame %s at %s in %v (%d bytes)", name, timestamp.Format(offset), time.Since(start), buf.Len())
	return f, nil
}

// frameName is {dir}/{base}_{HH-MM-SS-mmm}.jpg for a video at {dir}/{base}.{ext}.
func frameName(name string, offset float64) string {
	name = path.Clean("/" + filepath.ToSlash(name))[1:]
	dir, file := path.Split(name)
	base := strings.TrimSuffix(file, path.Ext(file))
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(timestamp.Format(offset))
	return dir + base + "_" + stamp + ".jpg"
}

// fresh reports whether the cached frame at file is at least as new as the
// video.
func fresh(file string, video os.FileInfo) bool {
	info, err := os.Stat(file)
	if err != nil || info.Size() == 0 {
		return false
	}
	return !info.ModTime().Before(video.ModTime())
}

// within joins rel onto dir and rejects results outside dir.
func within(dir, rel string) (string, error) {
	if rel == "" || strings.ContainsRune(rel, 0) {
		return "", ErrInvalidName
	}
	full := filepath.Join(dir, filepath.FromSlash(rel))
	r, err := filepath.Rel(dir, full)
	if err != nil || r == "." || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", ErrInvalidName
	}
	return full, nil
}

func writeAtomic(file string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("creating frame directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(file), ".frame-*")
	if err != nil {
		return fmt.Errorf("creating frame file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing frame: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	if err := os.Rename(tmp.Name(), file); err != nil {
		return fmt.Errorf("saving frame: %w", err)
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("ffmpeg failed: %w", err)
		}
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, msg)
	}
	return stdout.Bytes(), nil
}
