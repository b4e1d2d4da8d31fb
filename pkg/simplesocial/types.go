package simplesocial

// MediaKind classifies a content file by its extension.
type MediaKind string

// Media kind constants (typed).
const (
	MediaKindText  MediaKind = "text"
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
	MediaKindOther MediaKind = "other"
)

// imageExtensions and videoExtensions are the fixed extension sets used to
// classify files into a PostBundle. Extensions are compared lowercased,
// including the leading dot.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {},
	".mov": {},
}

// PostBundle is the assembled in-memory representation of one logical post:
// every file in the content directory sharing one basename, classified into
// text and media.
type PostBundle struct {
	// Basename is the normalized identifier shared by all of the bundle's files.
	Basename string `json:"basename"`

	// MainText is the primary caption, if a non-alt .txt file was present.
	MainText string `json:"main_text,omitempty"`

	// AltText is the accessibility description, from a "-alt" .txt file.
	AltText string `json:"alt_text,omitempty"`

	// Images holds image file paths sorted ascending by filename, so carousel
	// order is deterministic.
	Images []string `json:"images,omitempty"`

	// Video holds a single video file path. A bundle carries images or a
	// video, never both.
	Video string `json:"video,omitempty"`
}

// HasMedia reports whether the bundle carries any image or video.
func (b *PostBundle) HasMedia() bool {
	return len(b.Images) > 0 || b.Video != ""
}

// IsPublishable reports whether the bundle has any content at all. A bundle
// with no text, no images and no video cannot be posted anywhere.
func (b *PostBundle) IsPublishable() bool {
	return b.MainText != "" || b.HasMedia()
}

// Limits describes platform-facing content constraints. Each platform adapter
// validates a bundle against its own Limits before attempting an upload.
type Limits struct {
	// TextLimit is the maximum main-text length in characters. Zero means
	// no limit.
	TextLimit int

	// AltTextLimit is the maximum alt-text length in characters. Zero means
	// the common default of 1000.
	AltTextLimit int

	// MaxImages is the maximum number of images per post. Zero means no limit.
	MaxImages int

	// MaxImageSizeMB and MaxVideoSizeMB cap media file sizes. Zero means
	// no cap.
	MaxImageSizeMB float64
	MaxVideoSizeMB float64
}

// PlatformResult records the outcome of a single adapter call during fan-out.
type PlatformResult struct {
	Platform string `json:"platform"`
	OK       bool   `json:"ok"`
	Err      string `json:"error,omitempty"`
}

// PublishResult describes one coordinator invocation.
type PublishResult struct {
	// RunID correlates log lines and results for one invocation.
	RunID string `json:"run_id"`

	// Basename is the selected bundle, empty when nothing was available.
	Basename string `json:"basename,omitempty"`

	// Platforms holds one entry per configured adapter, in invocation order.
	Platforms []PlatformResult `json:"platforms,omitempty"`

	// Committed is true only when every adapter succeeded and the publish
	// record was updated.
	Committed bool `json:"committed"`
}

// AllSucceeded reports whether every attempted adapter call returned success.
func (r *PublishResult) AllSucceeded() bool {
	if len(r.Platforms) == 0 {
		return false
	}
	for _, pr := range r.Platforms {
		if !pr.OK {
			return false
		}
	}
	return true
}
