// Package mpv drives an external mpv process over its JSON IPC socket and
// exposes it as an engine.Engine.
//
// Start mpv with --input-ipc-server (or use Launch) and connect with Dial:
//
//	cmd, err := mpv.Launch(ctx, mpv.LaunchConfig{SocketPath: sock})
//	client, err := mpv.Dial(ctx, sock, mpv.WithBaseURL("http://localhost:8080"))
//	defer client.Close()
//
// Commands are written without waiting for mpv's reply, so SetSource and
// SetPosition are safe to call from listeners. Replies carrying an error are
// logged by the reader goroutine.
//
// mpv events map onto engine signals as follows:
//
//	file-loaded                 -> engine.EventDataLoaded
//	end-file (reason "error")   -> engine.EventLoadError
//
// Events for a file that was replaced by SetSource are dropped until mpv
// reports start-file for the new one.
package mpv
