package timestamp

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel is the default timestamp meaning "no seek requested".
const Sentinel = "00:00:00"

// Sink receives parse diagnostics. logging.Debug satisfies it.
type Sink func(format string, args ...interface{})

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// SeekRequested reports whether ts asks for a seek. The empty string and the
// Sentinel both mean the caller did not ask.
func SeekRequested(ts string) bool {
	return ts != "" && ts != Sentinel
}

// Parse converts an HH:MM:SS[.mmm] timestamp into an offset in seconds.
// It never panics and never returns a negative or non-finite value.
func Parse(ts string, sink Sink) (offset float64) {
	defer func() {
		if r := recover(); r != nil {
			report(sink, "Error parsing timestamp %q: %v", ts, r)
			offset = 0
		}
	}()

	parts := strings.SplitN(ts, ":", 3)
	if len(parts) < 3 {
		if ts != "" {
			report(sink, "Timestamp %q has %d segment(s), want 3; using offset 0", ts, len(parts))
		}
		return 0
	}

	hours := segment(parts[0], intPrefix, "hours", ts, sink)
	minutes := segment(parts[1], intPrefix, "minutes", ts, sink)
	seconds := segment(parts[2], floatPrefix, "seconds", ts, sink)

	offset = hours*3600 + minutes*60 + seconds
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		report(sink, "Timestamp %q produced a non-finite offset; using 0", ts)
		return 0
	}
	if offset < 0 {
		report(sink, "Timestamp %q produced negative offset %v; clamping to 0", ts, offset)
		return 0
	}
	return offset
}

// segment parses the numeric prefix of s. A segment without one, or whose
// value is not finite, contributes 0.
func segment(s string, prefix *regexp.Regexp, name, ts string, sink Sink) float64 {
	m := prefix.FindString(strings.TrimLeft(s, " \t\n\r\f\v"))
	if m == "" {
		report(sink, "Timestamp %q: %s segment %q is not numeric; treating as 0", ts, name, s)
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) {
		report(sink, "Timestamp %q: %s segment %q out of range; treating as 0", ts, name, s)
		return 0
	}
	return v
}

func report(sink Sink, format string, args ...interface{}) {
	if sink != nil {
		sink(format, args...)
	}
}

// Format renders an offset as HH:MM:SS.mmm.
func Format(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	hours := ms / 3_600_000
	minutes := (ms % 3_600_000) / 60_000
	secs := (ms % 60_000) / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, ms%1000)
}
