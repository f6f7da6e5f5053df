package mpv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// LaunchConfig configures an mpv process started by Launch.
type LaunchConfig struct {
	// Path is the mpv binary. Defaults to "mpv".
	Path       string
	SocketPath string
	Title      string
	Fullscreen bool
	// ExtraArgs are appended after the generated flags.
	ExtraArgs []string
}

// Args returns the command line Launch uses for cfg.
func (cfg LaunchConfig) Args() []string {
	title := cfg.Title
	if title == "" {
		title = "Clip Viewer"
	}
	args := []string{
		"--idle=yes",
		"--force-window=yes",
		"--input-ipc-server=" + cfg.SocketPath,
		"--title=" + title,
	}
	if cfg.Fullscreen {
		args = append(args, "--fs")
	}
	return append(args, cfg.ExtraArgs...)
}

// Launch starts mpv in idle mode listening on cfg.SocketPath and returns
// without waiting for it to exit. The socket directory is created and a stale
// socket file removed first. The process is killed when ctx is cancelled.
func Launch(ctx context.Context, cfg LaunchConfig) (*exec.Cmd, error) {
	if cfg.SocketPath == "" {
		return nil, fmt.Errorf("mpv: socket path is required")
	}
	path := cfg.Path
	if path == "" {
		path = "mpv"
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SocketPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating socket directory: %w", err)
	}
	if _, err := os.Stat(cfg.SocketPath); err == nil {
		if err := os.Remove(cfg.SocketPath); err != nil {
			return nil, fmt.Errorf("removing stale socket %s: %w", cfg.SocketPath, err)
		}
	}

	cmd := exec.CommandContext(ctx, path, cfg.Args()...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	log.Info("Starting %s (socket %s)", path, cfg.SocketPath)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting mpv: %w", err)
	}
	return cmd, nil
}
