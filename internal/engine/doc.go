// Package engine defines the media playback primitive the player widget drives.
//
// An Engine exposes a settable source locator, a settable playback position and
// two lifecycle signals: EventDataLoaded once the source has enough data for a
// seek to be valid, and EventLoadError when the source cannot be loaded.
//
// # Dispatch contract
//
// Implementations must:
//   - invoke listeners outside any lock they hold, so a listener may call back
//     into the engine (RemoveListener, SetPosition);
//   - never invoke listeners from inside SetSource or SetPosition;
//   - make RemoveListener non-blocking; once it returns, the removed listener is
//     not invoked for signals dispatched afterwards.
//
// Recorder is an in-memory Engine for tests and for running the widget without
// a real player. The mpv package provides an Engine backed by mpv's JSON IPC.
package engine
