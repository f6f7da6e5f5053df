// Package seek binds a playback offset to a media engine session.
//
// A Synchronizer owns at most one Playback Session at a time. Each session
// moves through a small state machine:
//
//	Idle ──Bind──▶ Attached ──loadeddata──▶ Sought
//	                  │                        │
//	                  └──────── error ─────────┴──▶ Failed
//
// Bind always detaches the previous session's listeners before attaching the
// new ones, and every listener checks the session it was attached for, so a
// signal from a superseded session can never move the engine's playback
// position. Release detaches without attaching anything new; it is the only
// cancellation primitive.
//
// On the first data-loaded signal of a session the timestamp is parsed and, if
// a seek was requested (see timestamp.SeekRequested), written to the engine
// exactly once. A load error sets the session to Failed, detaches its
// listeners and reports a Failure. There is no load timeout: a session whose
// engine never signals stays Attached until it is replaced or released.
package seek
