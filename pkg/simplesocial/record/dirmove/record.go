// Package dirmove tracks publish history by moving a published bundle's files
// into a reserved "posted" subdirectory of the content directory. History is
// recovered by re-normalizing the filenames found there, so the record
// survives restarts with no extra bookkeeping files.
package dirmove

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

// PostedDirName is the reserved subdirectory holding published bundles.
const PostedDirName = "posted"

// Record is a directory-move implementation of simplesocial.PublishRecord.
type Record struct {
	contentDir string
	postedDir  string
}

// New creates a directory-move record rooted at contentDir, creating the
// posted subdirectory if needed.
func New(contentDir string) (*Record, error) {
	if contentDir == "" {
		return nil, fmt.Errorf("content directory is required")
	}

	postedDir := filepath.Join(contentDir, PostedDirName)
	if err := os.MkdirAll(postedDir, 0755); err != nil {
		return nil, fmt.Errorf("create posted directory: %w", err)
	}

	return &Record{contentDir: contentDir, postedDir: postedDir}, nil
}

// PostedDir returns the absolute path of the posted subdirectory.
func (r *Record) PostedDir() string {
	return r.postedDir
}

// PostedBasenames re-derives the published set from the filenames in the
// posted subdirectory.
func (r *Record) PostedBasenames(ctx context.Context) (map[string]struct{}, error) {
	entries, err := os.ReadDir(r.postedDir)
	if err != nil {
		return nil, &simplesocial.RecordError{Backend: "dirmove", Op: "list", Err: err}
	}

	posted := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		posted[simplesocial.NormalizeBasename(entry.Name())] = struct{}{}
	}
	return posted, nil
}

// MarkPosted moves every file whose name starts with basename into the posted
// subdirectory. A partially failed move surfaces as an error; already-moved
// files stay in the posted directory, which keeps re-scan idempotent.
func (r *Record) MarkPosted(ctx context.Context, basename string) error {
	entries, err := os.ReadDir(r.contentDir)
	if err != nil {
		return &simplesocial.RecordError{Backend: "dirmove", Op: "mark", Err: err}
	}

	moved := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasPrefix(name, basename) {
			continue
		}
		if err := os.Rename(filepath.Join(r.contentDir, name), filepath.Join(r.postedDir, name)); err != nil {
			return &simplesocial.RecordError{Backend: "dirmove", Op: "mark", Err: fmt.Errorf("move %s: %w", name, err)}
		}
		moved++
	}

	if moved == 0 {
		return &simplesocial.RecordError{Backend: "dirmove", Op: "mark",
			Err: fmt.Errorf("no files matched basename %q", basename)}
	}
	return nil
}
