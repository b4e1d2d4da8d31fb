package simplesocial

import (
	"context"
)

// Platform is the publishing collaborator for one social network. The
// coordinator only depends on this interface; new platforms are added without
// touching the coordinator.
type Platform interface {
	// Name returns the platform identifier used in configuration and logs.
	Name() string

	// Validate checks the bundle against platform-specific limits without
	// side effects. Post implementations call it themselves; the coordinator
	// does not.
	Validate(ctx context.Context, bundle *PostBundle) error

	// Post publishes the bundle. It is called exactly once per coordinator
	// fan-out and must return an error rather than panic.
	Post(ctx context.Context, bundle *PostBundle) error
}

// PublishRecord is the persisted set of basenames already published. All
// implementations must be idempotent under re-scan: once MarkPosted(name)
// returns nil, PostedBasenames must include name on every later call, across
// process restarts.
type PublishRecord interface {
	// PostedBasenames returns every basename recorded as published.
	PostedBasenames(ctx context.Context) (map[string]struct{}, error)

	// MarkPosted records a basename as published. It is called only after
	// every platform adapter succeeded.
	MarkPosted(ctx context.Context, basename string) error
}

// Archiver receives a bundle's files after a fully successful fan-out and
// before the record commit, e.g. to copy them to object storage. It runs
// before the commit because the default record backend relocates the source
// files. Archive failures are logged by the coordinator but never fail the
// run.
type Archiver interface {
	// ArchiveBundle stores the given files under the bundle's basename.
	ArchiveBundle(ctx context.Context, basename string, files []string) error
}

// Picker chooses an index in [0, n) from n available candidates. Injectable so
// tests can pin the selection; n is always >= 1.
type Picker func(n int) int
