package simplesocial

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Assemble collects every file in contentDir whose name starts with basename
// and classifies it into a PostBundle. Images are sorted ascending by
// filename for deterministic carousel ordering.
//
// The prefix match mirrors scanning: a basename of "sunset" collects
// "sunset.txt", "sunset-1.jpg" and "sunset-alt.txt". If more than one non-alt
// .txt file matches, assembly fails with ErrAmbiguousText instead of letting
// the last file win; the source files must be renamed. More than one video
// fails the same way with ErrAmbiguousVideo. A bundle that ends up with both
// images and a video, or with no content at all, is likewise rejected.
func Assemble(basename, contentDir string) (*PostBundle, error) {
	entries, err := os.ReadDir(contentDir)
	if err != nil {
		return nil, &BundleError{Basename: basename, Op: "assemble", Err: err}
	}

	bundle := &PostBundle{Basename: basename}
	mainTexts := 0
	videos := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasPrefix(name, basename) {
			continue
		}

		path := filepath.Join(contentDir, name)
		switch classify(name) {
		case MediaKindText:
			text, err := os.ReadFile(path)
			if err != nil {
				return nil, &BundleError{Basename: basename, Op: "assemble", Err: fmt.Errorf("read %s: %w", name, err)}
			}
			if strings.HasSuffix(stem(name), altSuffix) {
				bundle.AltText = strings.TrimSpace(string(text))
			} else {
				mainTexts++
				bundle.MainText = strings.TrimSpace(string(text))
			}
		case MediaKindImage:
			bundle.Images = append(bundle.Images, path)
		case MediaKindVideo:
			videos++
			bundle.Video = path
		case MediaKindOther:
			// Unknown extensions group into the bundle but carry no content.
		}
	}

	if mainTexts > 1 {
		return nil, &BundleError{Basename: basename, Op: "assemble", Err: ErrAmbiguousText}
	}
	if videos > 1 {
		return nil, &BundleError{Basename: basename, Op: "assemble", Err: ErrAmbiguousVideo}
	}
	if len(bundle.Images) > 0 && bundle.Video != "" {
		return nil, &BundleError{Basename: basename, Op: "assemble", Err: ErrMixedMedia}
	}
	if !bundle.IsPublishable() {
		return nil, &BundleError{Basename: basename, Op: "assemble", Err: ErrEmptyBundle}
	}

	sort.Strings(bundle.Images)

	return bundle, nil
}
