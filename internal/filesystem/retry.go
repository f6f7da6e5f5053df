package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"clip-viewer/internal/logging"
)

var log = logging.Component("filesystem")

// RetryConfig bounds how long a read keeps retrying a stale NFS handle.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// VolumeResolver overrides the package-level resolver when set.
	VolumeResolver *VolumeResolver
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

func (c *RetryConfig) resolveVolume(path string) string {
	if c.VolumeResolver != nil {
		return c.VolumeResolver.Resolve(path)
	}
	return defaultResolver.Resolve(path)
}

// nextBackoff doubles d up to the configured ceiling.
func (c *RetryConfig) nextBackoff(d time.Duration) time.Duration {
	return min(2*d, c.MaxBackoff)
}

// isStaleHandle reports whether err wraps ESTALE. A server-side rename or
// re-export invalidates handles that a fresh lookup will replace.
func isStaleHandle(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && errno == syscall.ESTALE
}

// withRetry runs fn and, while it fails with ESTALE, retries up to
// MaxRetries times. Other errors return at once.
func withRetry[T any](op, path string, config RetryConfig, fn func() (T, error)) (T, error) {
	start := time.Now()
	volume := config.resolveVolume(path)
	obs := observe()
	if obs == nil {
		obs = nopObserver{}
	}

	finish := func(v T, err error) (T, error) {
		elapsed := time.Since(start).Seconds()
		obs.ObserveRetryDuration(op, volume, elapsed)
		obs.ObserveOperation(volume, op, elapsed, err)
		return v, err
	}

	var zero T
	wait := config.InitialBackoff
	for attempt := 0; ; attempt++ {
		v, err := fn()
		switch {
		case err == nil:
			if attempt > 0 {
				log.Info("%s of %s recovered after %d retries", op, path, attempt)
				obs.ObserveRetrySuccess(op, volume)
			}
			return finish(v, nil)
		case !isStaleHandle(err):
			return finish(zero, err)
		}

		obs.ObserveStaleError(op, volume)
		if attempt == config.MaxRetries {
			log.Warn("%s of %s still stale after %d retries: %v", op, path, attempt, err)
			obs.ObserveRetryFailure(op, volume)
			return finish(zero, err)
		}

		obs.ObserveRetryAttempt(op, volume)
		log.Debug("%s of %s hit a stale handle, retry %d/%d in %v", op, path, attempt+1, config.MaxRetries, wait)
		time.Sleep(wait)
		wait = config.nextBackoff(wait)
	}
}

func StatWithRetry(path string, config RetryConfig) (os.FileInfo, error) {
	return withRetry("stat", path, config, func() (os.FileInfo, error) { return os.Stat(path) })
}

func OpenWithRetry(path string, config RetryConfig) (*os.File, error) {
	return withRetry("open", path, config, func() (*os.File, error) { return os.Open(path) })
}

func ReadDirWithRetry(path string, config RetryConfig) ([]os.DirEntry, error) {
	return withRetry("readdir", path, config, func() ([]os.DirEntry, error) { return os.ReadDir(path) })
}
