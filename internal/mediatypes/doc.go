// Package mediatypes classifies files in the media directory by extension.
//
// Lookups accept either a file name or a bare extension and are
// case-insensitive:
//
//	mediatypes.GetFileType("Intro.MP4")  // FileTypeVideo
//	mediatypes.GetMimeType("clip.webm")  // "video/webm"
//	mediatypes.IsServable("notes.txt")   // false
//
// Only videos and caption tracks are served; everything else in MEDIA_DIR is
// refused by the media handler.
package mediatypes
