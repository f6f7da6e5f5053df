package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"clip-viewer/internal/mpv"
	"clip-viewer/internal/player"
	"clip-viewer/internal/seek"
	"clip-viewer/internal/startup"

	"golang.org/x/term"
)

const (
	// Upper bound on waiting for mpv to load the clip
	defaultLoadTimeout = 30 * time.Second
	// Width used when stdout is not a terminal
	defaultWidth = 80
)

var errInterrupted = errors.New("interrupted")

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 || os.Args[1] == "-h" || os.Args[1] == "--help" {
		printUsage()
		os.Exit(2)
	}

	opts := player.DefaultOptions(os.Args[1])
	if len(os.Args) == 3 {
		opts.Timestamp = os.Args[2]
	}

	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	config, err := startup.ResolveConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if _, set := os.LookupEnv("MPV_LAUNCH"); !set {
		config.MPV.Launch = true
	}

	if err := run(ctx, config, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Clip Viewer mpv player")
	fmt.Println("")
	fmt.Println("Usage: clipplay <name> [HH:MM:SS[.mmm]]")
	fmt.Println("")
	fmt.Println("Plays <name> from the clip-viewer server in mpv, seeking to the")
	fmt.Println("timestamp once the clip has loaded.")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Println("  PUBLIC_URL  - Server origin clips are fetched from (default: http://localhost:8080)")
	fmt.Println("  BASE_PATH   - Path clips are served under (default: /content_understanding/videos)")
	fmt.Println("  MPV_SOCKET  - mpv IPC socket")
	fmt.Println("  MPV_LAUNCH  - Start mpv instead of connecting to a running one (default: true)")
	fmt.Println("  MPV_PATH    - mpv binary (default: mpv)")
}

func run(ctx context.Context, config *startup.Config, opts player.Options) error {
	var cmd *exec.Cmd
	if config.MPV.Launch {
		var err error
		cmd, err = mpv.Launch(ctx, mpv.LaunchConfig{
			Path:       config.MPV.Path,
			SocketPath: config.MPV.Socket,
			Title:      opts.ResourceName,
		})
		if err != nil {
			return err
		}
	}

	client, err := mpv.Dial(ctx, config.MPV.Socket, mpv.WithBaseURL(config.PublicURL))
	if err != nil {
		return err
	}
	defer client.Close()

	p := player.New(client, player.Config{BasePath: config.BasePath})
	defer p.Close()

	sub := p.Subscribe()
	if err := p.Configure(opts); err != nil {
		return err
	}

	loadCtx, cancel := context.WithTimeout(ctx, defaultLoadTimeout)
	defer cancel()
	outcome := waitForLoad(loadCtx, sub, client.Done())

	var b strings.Builder
	if err := p.RenderText(&b); err != nil {
		return err
	}
	writeWrapped(os.Stdout, b.String(), terminalWidth())

	switch {
	case outcome == seek.Failed:
		return fmt.Errorf("could not load %s", opts.ResourceName)
	case outcome != seek.Sought:
		if ctx.Err() != nil {
			return errInterrupted
		}
		return fmt.Errorf("gave up waiting for %s to load", opts.ResourceName)
	}

	// A launched mpv belongs to us; keep it playing until the window closes.
	if cmd != nil {
		select {
		case <-client.Done():
		case <-ctx.Done():
		}
	}
	return nil
}

// waitForLoad blocks until the session settles and returns its final state:
// Sought, Failed, or the last state seen when ctx or done ended the wait.
func waitForLoad(ctx context.Context, sub *player.Subscription, done <-chan struct{}) seek.State {
	last := seek.Idle
	for {
		select {
		case t := <-sub.StateChanged:
			last = t.To
			if last == seek.Sought || last == seek.Failed {
				return last
			}
		case <-sub.Failed:
			return seek.Failed
		case <-sub.Done:
			return last
		case <-done:
			return last
		case <-ctx.Done():
			return last
		}
	}
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

// writeWrapped writes text with lines longer than width broken at spaces.
// Words longer than width are left intact.
func writeWrapped(w io.Writer, text string, width int) {
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		newline := strings.HasSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\n")

		col := 0
		for i, word := range strings.Split(line, " ") {
			switch {
			case i == 0:
			case col+1+len(word) > width:
				fmt.Fprint(w, "\n")
				col = 0
			default:
				fmt.Fprint(w, " ")
				col++
			}
			fmt.Fprint(w, word)
			col += len(word)
		}
		if newline {
			fmt.Fprint(w, "\n")
		}
	}
}
