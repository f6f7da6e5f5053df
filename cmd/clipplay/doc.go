// Command clipplay plays a clip in mpv and seeks to a timestamp once the clip
// has loaded.
//
// Usage:
//
//	clipplay <name> [HH:MM:SS[.mmm]]
//
// The clip is fetched from a running clip-viewer server at PUBLIC_URL under
// BASE_PATH. By default mpv is launched with an IPC socket at MPV_SOCKET; set
// MPV_LAUNCH=false to drive an mpv that is already running.
//
// Once the clip has loaded, or failed to, the widget surface is printed as
// text. A launched mpv keeps playing until its window is closed or the command
// is interrupted.
//
// Configuration is read the same way as the server: CONFIG_FILE or the XDG
// config file, then environment variables.
package main
