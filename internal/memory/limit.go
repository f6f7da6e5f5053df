package memory

import (
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"clip-viewer/internal/logging"
)

var log = logging.Component("memory")

// DefaultRatio is the share of the container limit given to the Go heap.
const DefaultRatio = 0.9

// CgroupMemoryMax is the cgroup v2 memory limit file.
const CgroupMemoryMax = "/sys/fs/cgroup/memory.max"

// Sources a limit can come from.
const (
	SourceNone       = "none"
	SourceGOMEMLIMIT = "GOMEMLIMIT"
	SourceEnv        = "MEMORY_LIMIT"
	SourceCgroup     = "cgroup"
)

// Result describes the memory limit in effect after configuration.
type Result struct {
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// Configured reports whether a Go memory limit is in effect.
func (r Result) Configured() bool {
	return r.GoMemLimit > 0
}

// Env is what Configure reads from and writes to.
type Env struct {
	Getenv     func(string) string
	CgroupFile string
	// SetLimit behaves like debug.SetMemoryLimit.
	SetLimit func(int64) int64
}

// ConfigureFromEnv configures GOMEMLIMIT from the process environment and the
// cgroup filesystem.
func ConfigureFromEnv() Result {
	return Configure(Env{
		Getenv:     os.Getenv,
		CgroupFile: CgroupMemoryMax,
		SetLimit:   debug.SetMemoryLimit,
	})
}

// Configure sets the Go memory limit from env.
func Configure(env Env) Result {
	if v := env.Getenv("GOMEMLIMIT"); v != "" {
		limit := env.SetLimit(-1)
		log.Info("GOMEMLIMIT set via environment: %s", v)
		return Result{Source: SourceGOMEMLIMIT, GoMemLimit: limit}
	}

	containerLimit, source := containerLimit(env)
	if containerLimit <= 0 {
		log.Debug("No container memory limit found, GOMEMLIMIT not configured")
		return Result{Source: SourceNone}
	}

	ratio := parseRatio(env.Getenv("MEMORY_RATIO"))
	goLimit := int64(float64(containerLimit) * ratio)
	env.SetLimit(goLimit)

	log.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s from %s)",
		FormatBytes(goLimit), ratio*100, FormatBytes(containerLimit), source)

	return Result{
		Source:         source,
		ContainerLimit: containerLimit,
		GoMemLimit:     goLimit,
		Ratio:          ratio,
	}
}

func containerLimit(env Env) (int64, string) {
	if v := env.Getenv("MEMORY_LIMIT"); v != "" {
		limit, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || limit <= 0 {
			log.Warn("Ignoring invalid MEMORY_LIMIT %q", v)
			return 0, SourceNone
		}
		return limit, SourceEnv
	}

	if env.CgroupFile == "" {
		return 0, SourceNone
	}
	data, err := os.ReadFile(env.CgroupFile)
	if err != nil {
		return 0, SourceNone
	}
	// "max" means unlimited.
	limit, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || limit <= 0 {
		return 0, SourceNone
	}
	return limit, SourceCgroup
}

func parseRatio(v string) float64 {
	if v == "" {
		return DefaultRatio
	}
	ratio, err := strconv.ParseFloat(v, 64)
	if err != nil || ratio <= 0 || ratio > 1 {
		log.Warn("MEMORY_RATIO %q must be in (0, 1], using %.2f", v, DefaultRatio)
		return DefaultRatio
	}
	return ratio
}

// FormatBytes renders b with a binary unit suffix.
func FormatBytes(b int64) string {
	units := []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	value := float64(b)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	if i == 0 {
		return strconv.FormatInt(b, 10) + " B"
	}
	return strconv.FormatFloat(value, 'f', 1, 64) + " " + units[i]
}
