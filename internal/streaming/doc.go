// Package streaming bounds how long a media response may stall.
//
// The server runs without an http.Server WriteTimeout because a video may
// legitimately take hours to stream. Instead, [Writer] pushes the connection's
// write deadline forward before every write, so a client that stops reading
// is cut off after WriteTimeout while a slow but steady one is not.
//
//	sw := streaming.NewWriter(w, streaming.DefaultConfig())
//	defer sw.Close()
//	http.ServeContent(sw, r, name, modTime, file)
//
// Deadlines are set through http.ResponseController, so every middleware
// wrapper between the handler and the connection must implement Unwrap.
// Writers that support neither deadlines nor Unwrap (httptest.ResponseRecorder)
// are written to without a deadline.
package streaming
