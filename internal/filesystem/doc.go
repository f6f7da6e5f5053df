/*
Package filesystem wraps the os calls used to serve media with retry logic for
NFS stale file handle errors.

MEDIA_DIR is commonly an NFS mount. When the server side changes underneath an
open handle, stat and open fail with ESTALE (errno 116) even though a second
attempt succeeds. StatWithRetry, OpenWithRetry and ReadDirWithRetry retry only
that error, with capped exponential backoff:

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

Defaults are 3 retries starting at 50ms and capped at 500ms. Every other error
is returned on the first attempt.

Metrics are labelled with a volume name resolved from the path by a
VolumeResolver. main registers the media directory at startup:

	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
	    "media": cfg.MediaDir,
	}))
	filesystem.SetObserver(metrics.NewFilesystemObserver())
*/
package filesystem
