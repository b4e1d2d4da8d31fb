// Package memory provides an in-memory publish record for tests and dry runs.
package memory

import (
	"context"
	"sync"
)

// Record is an in-memory implementation of simplesocial.PublishRecord.
type Record struct {
	mu     sync.RWMutex
	posted map[string]struct{}
}

// New creates a new in-memory record.
func New() *Record {
	return &Record{posted: make(map[string]struct{})}
}

func (r *Record) PostedBasenames(ctx context.Context) (map[string]struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Copy to avoid external modification.
	out := make(map[string]struct{}, len(r.posted))
	for name := range r.posted {
		out[name] = struct{}{}
	}
	return out, nil
}

func (r *Record) MarkPosted(ctx context.Context, basename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.posted[basename] = struct{}{}
	return nil
}
