// Package timestamp converts human-readable playback timestamps into offsets.
//
// Timestamps use the form HH:MM:SS or HH:MM:SS.mmm. Parsing is best effort and
// never fails: malformed segments contribute 0 and strings with fewer than three
// colon-delimited segments yield 0.
//
//	timestamp.Parse("01:02:03.500", nil) // 3723.5
//	timestamp.Parse("00:aa:10", nil)     // 10
//	timestamp.Parse("120", nil)          // 0
//
// The reserved value "00:00:00" (Sentinel) means "no seek requested" and is
// distinct from an explicit request to start at zero. Use SeekRequested to tell
// the two apart.
//
// Diagnostics are reported through an injected Sink rather than a global logger,
// so logging.Debug can be passed directly while tests pass a recorder or nil.
package timestamp
