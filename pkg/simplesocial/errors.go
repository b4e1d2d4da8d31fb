package simplesocial

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrNoPlatforms indicates no platform adapters are configured.
	ErrNoPlatforms = errors.New("no platforms configured")

	// ErrEmptyBundle indicates an assembled bundle has no text and no media.
	ErrEmptyBundle = errors.New("bundle has no content")

	// ErrAmbiguousText indicates more than one non-alt .txt file matched a
	// basename. The original files must be renamed before the bundle can be
	// published.
	ErrAmbiguousText = errors.New("multiple main text files match basename")

	// ErrAmbiguousVideo indicates more than one video file matched a
	// basename. A bundle carries at most one video.
	ErrAmbiguousVideo = errors.New("multiple video files match basename")

	// ErrMixedMedia indicates a bundle has both images and a video.
	ErrMixedMedia = errors.New("bundle has both images and video")

	// ErrAlreadyPosted indicates a basename is already present in the
	// publish record.
	ErrAlreadyPosted = errors.New("basename already posted")
)

// BundleError represents an error while scanning or assembling a bundle.
type BundleError struct {
	Basename string
	Op       string
	Err      error
}

func (e *BundleError) Error() string {
	return fmt.Sprintf("bundle operation %s failed for %q: %v", e.Op, e.Basename, e.Err)
}

func (e *BundleError) Unwrap() error {
	return e.Err
}

// PlatformError represents an error from a platform adapter.
type PlatformError struct {
	Platform string
	Op       string
	Err      error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform operation %s failed on %s: %v", e.Op, e.Platform, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// RecordError represents an error from a publish-record backend. A RecordError
// returned by a commit means the on-disk state may have drifted from what was
// actually published and must be surfaced loudly.
type RecordError struct {
	Backend string
	Op      string
	Err     error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record operation %s failed on backend %s: %v", e.Op, e.Backend, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
