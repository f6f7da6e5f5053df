// Package media extracts still frames from videos in the media directory.
//
// An Extractor runs FFmpeg to grab the frame at a timestamp, scales it with
// imaging and caches the JPEG on disk as {base}_{HH-MM-SS-mmm}.jpg, mirroring
// the video's directory under the frame directory. When FFmpeg cannot be
// found the Extractor stays usable but every extraction fails with
// ErrUnavailable.
package media
