package simplesocial

import (
	"fmt"
	"os"
)

const defaultAltTextLimit = 1000

// ValidateBundle checks a bundle against platform limits. Platform adapters
// call this from their own Validate with their own Limits; the coordinator
// itself never enforces limits.
func ValidateBundle(bundle *PostBundle, limits Limits) error {
	if !bundle.IsPublishable() {
		return ErrEmptyBundle
	}

	if len(bundle.Images) > 0 && bundle.Video != "" {
		return ErrMixedMedia
	}

	if limits.TextLimit > 0 && len([]rune(bundle.MainText)) > limits.TextLimit {
		return fmt.Errorf("main text exceeds %d characters (%d)", limits.TextLimit, len([]rune(bundle.MainText)))
	}

	altLimit := limits.AltTextLimit
	if altLimit == 0 {
		altLimit = defaultAltTextLimit
	}
	if len([]rune(bundle.AltText)) > altLimit {
		return fmt.Errorf("alt text exceeds %d characters (%d)", altLimit, len([]rune(bundle.AltText)))
	}

	if limits.MaxImages > 0 && len(bundle.Images) > limits.MaxImages {
		return fmt.Errorf("too many images: %d (max %d)", len(bundle.Images), limits.MaxImages)
	}

	for _, image := range bundle.Images {
		if err := validateMediaFile(image, limits.MaxImageSizeMB); err != nil {
			return err
		}
	}

	if bundle.Video != "" {
		if err := validateMediaFile(bundle.Video, limits.MaxVideoSizeMB); err != nil {
			return err
		}
	}

	return nil
}

// validateMediaFile checks that a media file exists, is a regular readable
// file, and is within the size cap. maxMB of zero disables the size check.
func validateMediaFile(path string, maxMB float64) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("media file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("media file %s is not a regular file", path)
	}

	if maxMB > 0 {
		maxBytes := int64(maxMB * 1024 * 1024)
		if info.Size() > maxBytes {
			return fmt.Errorf("media file %s is %.2fMB, exceeds %.0fMB limit",
				path, float64(info.Size())/1024/1024, maxMB)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("media file %s is not readable: %w", path, err)
	}
	return f.Close()
}
