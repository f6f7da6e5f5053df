package mpv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"clip-viewer/internal/engine"
	"clip-viewer/internal/logging"
)

var log = logging.Component("mpv")

// ErrNotConnected is returned once the IPC connection has been lost.
var ErrNotConnected = errors.New("mpv: not connected")

const (
	defaultDialAttempts = 20
	defaultDialInterval = 200 * time.Millisecond
	writeTimeout        = 2 * time.Second
)

// Event is a message read from the IPC socket: either an asynchronous event
// or the reply to a command.
type Event struct {
	Event     string          `json:"event,omitempty"`
	Name      string          `json:"name,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	FileError string          `json:"file_error,omitempty"`
	Error     string          `json:"error,omitempty"`
	RequestID int64           `json:"request_id,omitempty"`
}

type request struct {
	Command   []interface{} `json:"command"`
	RequestID int64         `json:"request_id"`
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL resolves locators against base before handing them to mpv.
// Locators are server paths, so mpv needs the origin to fetch them.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithDialRetry overrides how often Dial attempts to connect.
func WithDialRetry(attempts int, interval time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.interval = interval
	}
}

// Client is an engine.Engine backed by an mpv process.
type Client struct {
	engine.Listeners

	baseURL  string
	attempts int
	interval time.Duration

	conn    net.Conn
	writeMu sync.Mutex

	mu        sync.Mutex
	nextReq   int64
	locator   string
	pending   int
	loadReqs  map[int64]string
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to the mpv IPC socket at socketPath, retrying while mpv is
// still starting up. Paths containing a colon and no slash are treated as TCP
// addresses.
func Dial(ctx context.Context, socketPath string, opts ...Option) (*Client, error) {
	c := &Client{
		attempts: defaultDialAttempts,
		interval: defaultDialInterval,
		loadReqs: make(map[int64]string),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.attempts < 1 {
		c.attempts = 1
	}

	conn, err := dialWithRetry(ctx, socketPath, c.attempts, c.interval)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	log.Info("Connected to %s", socketPath)

	go c.readLoop()
	return c, nil
}

func dialWithRetry(ctx context.Context, socketPath string, attempts int, interval time.Duration) (net.Conn, error) {
	network := "unix"
	if strings.Contains(socketPath, ":") && !strings.Contains(socketPath, "/") {
		network = "tcp"
	}

	var d net.Dialer
	var lastErr error
	for i := 0; i < attempts; i++ {
		conn, err := d.DialContext(ctx, network, socketPath)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		log.Debug("Dial attempt %d/%d failed: %v", i+1, attempts, err)

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connecting to mpv at %s: %w", socketPath, ctx.Err())
		case <-time.After(interval):
		}
	}
	return nil, fmt.Errorf("connecting to mpv at %s: %w", socketPath, lastErr)
}

// SetSource loads locator, replacing whatever mpv is playing.
func (c *Client) SetSource(locator string) error {
	c.mu.Lock()
	if err := c.usableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.nextReq++
	id := c.nextReq
	c.locator = locator
	c.pending++
	c.loadReqs[id] = locator
	c.mu.Unlock()

	err := c.write(request{Command: []interface{}{"loadfile", c.resolve(locator), "replace"}, RequestID: id})
	if err != nil {
		c.mu.Lock()
		if _, ok := c.loadReqs[id]; ok {
			delete(c.loadReqs, id)
			c.pending--
		}
		c.mu.Unlock()
	}
	return err
}

// SetPosition seeks to seconds from the start of the current file.
func (c *Client) SetPosition(seconds float64) error {
	c.mu.Lock()
	if err := c.usableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.nextReq++
	id := c.nextReq
	c.mu.Unlock()

	return c.write(request{Command: []interface{}{"set_property", "time-pos", seconds}, RequestID: id})
}

// Done is closed when the reader goroutine exits, either because Close was
// called or because mpv went away.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close shuts the connection down and waits for the reader to exit.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		err = c.conn.Close()
	})
	<-c.done
	return err
}

func (c *Client) usableLocked() error {
	if c.closed {
		return engine.ErrClosed
	}
	select {
	case <-c.done:
		return ErrNotConnected
	default:
	}
	return nil
}

func (c *Client) resolve(locator string) string {
	if c.baseURL == "" || strings.Contains(locator, "://") {
		return locator
	}
	if !strings.HasPrefix(locator, "/") {
		locator = "/" + locator
	}
	return c.baseURL + (&url.URL{Path: locator}).EscapedPath()
}

func (c *Client) write(req request) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding mpv command: %w", err)
	}
	payload = append(payload, '\n')

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	if _, err := c.conn.Write(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	log.Debug("-> %s", strings.TrimSpace(string(payload)))
	return nil
}

func (c *Client) readLoop() {
	defer close(c.done)

	decoder := json.NewDecoder(c.conn)
	for {
		var ev Event
		if err := decoder.Decode(&ev); err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				log.Warn("Connection lost: %v", err)
			}
			return
		}
		if sig, ok := c.translate(ev); ok {
			c.Dispatch(sig)
		}
	}
}

// translate maps an IPC message to an engine signal, updating the stale-event
// bookkeeping on the way.
func (c *Client) translate(ev Event) (engine.Signal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.Event == "" {
		return c.replyLocked(ev)
	}

	switch ev.Event {
	case "start-file":
		if c.pending > 0 {
			c.pending--
		}
		return engine.Signal{}, false

	case "file-loaded":
		if c.pending > 0 {
			log.Debug("Dropping file-loaded for replaced file")
			return engine.Signal{}, false
		}
		return engine.Signal{Event: engine.EventDataLoaded, Locator: c.locator}, true

	case "end-file":
		if ev.Reason != "error" {
			return engine.Signal{}, false
		}
		if c.pending > 0 {
			log.Debug("Dropping end-file for replaced file")
			return engine.Signal{}, false
		}
		cause := ev.FileError
		if cause == "" {
			cause = "unknown error"
		}
		return engine.Signal{
			Event:   engine.EventLoadError,
			Locator: c.locator,
			Err:     fmt.Errorf("mpv: %s", cause),
		}, true
	}
	return engine.Signal{}, false
}

func (c *Client) replyLocked(ev Event) (engine.Signal, bool) {
	locator, isLoad := c.loadReqs[ev.RequestID]
	delete(c.loadReqs, ev.RequestID)

	if ev.Error == "" || ev.Error == "success" {
		return engine.Signal{}, false
	}
	log.Warn("Command %d failed: %s", ev.RequestID, ev.Error)

	// A rejected loadfile never produces start-file.
	if !isLoad {
		return engine.Signal{}, false
	}
	if c.pending > 0 {
		c.pending--
	}
	if locator != c.locator || c.pending > 0 {
		return engine.Signal{}, false
	}
	return engine.Signal{
		Event:   engine.EventLoadError,
		Locator: locator,
		Err:     fmt.Errorf("mpv: loadfile: %s", ev.Error),
	}, true
}

var _ engine.Engine = (*Client)(nil)
