package metrics

import (
	"sync"
	"time"

	"clip-viewer/internal/logging"
)

// StatsProvider reports media directory statistics.
type StatsProvider interface {
	GetStats() Stats
}

// Stats is a snapshot of MEDIA_DIR. Caption sidecars count as other files.
type Stats struct {
	VideoFiles int   `json:"videoFiles"`
	OtherFiles int   `json:"otherFiles"`
	VideoBytes int64 `json:"videoBytes"`
}

// Collector refreshes the media gauges from a StatsProvider, once at Start
// and then every interval until Stop.
type Collector struct {
	provider StatsProvider
	interval time.Duration

	stop     chan struct{}
	exited   chan struct{}
	stopOnce sync.Once
}

func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		provider: provider,
		interval: interval,
		stop:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
}

func (c *Collector) Start() {
	go c.run()
}

// Stop ends the loop and waits for an in-progress scan to finish. It must
// only be called after Start.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.exited
}

func (c *Collector) run() {
	defer close(c.exited)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.collect()
		select {
		case <-ticker.C:
		case <-c.stop:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.provider == nil {
		return
	}
	s := c.provider.GetStats()

	MediaFilesTotal.WithLabelValues("video").Set(float64(s.VideoFiles))
	MediaFilesTotal.WithLabelValues("other").Set(float64(s.OtherFiles))
	MediaBytesTotal.Set(float64(s.VideoBytes))

	logging.Debug("Media stats: %d videos (%d bytes), %d other files", s.VideoFiles, s.VideoBytes, s.OtherFiles)
}
