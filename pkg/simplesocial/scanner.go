package simplesocial

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Scanner reads a content directory and partitions bundles into posted and
// available, using a PublishRecord for history. Scanning is read-only.
type Scanner struct {
	contentDir string
	record     PublishRecord
}

// NewScanner creates a Scanner over contentDir consulting the given record.
func NewScanner(contentDir string, record PublishRecord) *Scanner {
	return &Scanner{contentDir: contentDir, record: record}
}

// ListAvailableBasenames returns the set of unique basenames present in the
// content directory minus the basenames already in the publish record.
// Hidden files and subdirectories are ignored; an empty directory yields an
// empty set.
func (s *Scanner) ListAvailableBasenames(ctx context.Context) (map[string]struct{}, error) {
	entries, err := os.ReadDir(s.contentDir)
	if err != nil {
		return nil, fmt.Errorf("read content directory %s: %w", s.contentDir, err)
	}

	candidates := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		candidates[NormalizeBasename(entry.Name())] = struct{}{}
	}

	posted, err := s.record.PostedBasenames(ctx)
	if err != nil {
		return nil, fmt.Errorf("load publish record: %w", err)
	}

	for name := range posted {
		delete(candidates, name)
	}

	return candidates, nil
}

// BundleFiles returns the names of all visible files in the content directory
// whose filename starts with basename, in lexicographic order. The prefix
// match is intentionally wider than normalization so "sunset" picks up
// "sunset-1.jpg" and "sunset-alt.txt".
func (s *Scanner) BundleFiles(basename string) ([]string, error) {
	entries, err := os.ReadDir(s.contentDir)
	if err != nil {
		return nil, fmt.Errorf("read content directory %s: %w", s.contentDir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if strings.HasPrefix(entry.Name(), basename) {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
