// Package logfile tracks publish history in a flat append-only text file, one
// basename per line. The file lives inside the content directory under a
// dotted name so the scanner's hidden-file rule keeps it out of the candidate
// set.
package logfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

// DefaultFileName is the reserved log file name inside the content directory.
const DefaultFileName = ".posted"

// Record is an append-only-log implementation of simplesocial.PublishRecord.
type Record struct {
	path string
}

// New creates a log-file record stored at contentDir/.posted.
func New(contentDir string) (*Record, error) {
	if contentDir == "" {
		return nil, fmt.Errorf("content directory is required")
	}
	return &Record{path: filepath.Join(contentDir, DefaultFileName)}, nil
}

// NewAtPath creates a log-file record at an explicit path.
func NewAtPath(path string) (*Record, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path is required")
	}
	return &Record{path: path}, nil
}

// PostedBasenames reads the whole log. A missing file means nothing has been
// posted yet. Blank lines are tolerated so a half-written trailing line from
// a crashed run cannot poison the set.
func (r *Record) PostedBasenames(ctx context.Context) (map[string]struct{}, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, &simplesocial.RecordError{Backend: "logfile", Op: "list", Err: err}
	}
	defer f.Close()

	posted := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		posted[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, &simplesocial.RecordError{Backend: "logfile", Op: "list", Err: err}
	}
	return posted, nil
}

// MarkPosted appends the basename as one line, fsyncing before close so the
// entry survives a crash immediately after commit.
func (r *Record) MarkPosted(ctx context.Context, basename string) error {
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &simplesocial.RecordError{Backend: "logfile", Op: "mark", Err: err}
	}

	if _, err := fmt.Fprintln(f, basename); err != nil {
		f.Close()
		return &simplesocial.RecordError{Backend: "logfile", Op: "mark", Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &simplesocial.RecordError{Backend: "logfile", Op: "mark", Err: err}
	}
	if err := f.Close(); err != nil {
		return &simplesocial.RecordError{Backend: "logfile", Op: "mark", Err: err}
	}
	return nil
}
