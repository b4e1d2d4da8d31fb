package simplesocial

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	contentDir string
	record     PublishRecord
	platforms  []Platform
	archiver   Archiver
	picker     Picker
	logger     *slog.Logger

	scanner *Scanner
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithContentDir sets the directory holding staged content files.
func WithContentDir(dir string) Option {
	return func(s *service) {
		s.contentDir = dir
	}
}

// WithRecord sets the publish record backend.
func WithRecord(record PublishRecord) Option {
	return func(s *service) {
		s.record = record
	}
}

// WithPlatform adds a platform adapter. Adapters are invoked in the order
// they were added.
func WithPlatform(p Platform) Option {
	return func(s *service) {
		s.platforms = append(s.platforms, p)
	}
}

// WithArchiver sets an optional post-publish archiver.
func WithArchiver(a Archiver) Option {
	return func(s *service) {
		s.archiver = a
	}
}

// WithPicker sets the random selection source. Candidates are sorted before
// picking, so a deterministic picker makes selection deterministic.
func WithPicker(p Picker) Option {
	return func(s *service) {
		s.picker = p
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.contentDir == "" {
		return nil, fmt.Errorf("content directory is required")
	}
	if s.record == nil {
		return nil, fmt.Errorf("publish record is required")
	}
	if s.picker == nil {
		s.picker = rand.IntN
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.scanner = NewScanner(s.contentDir, s.record)

	if len(s.platforms) == 0 {
		s.logger.Warn("no platforms configured, publishes will fail")
	}

	return s, nil
}

func (s *service) ListAvailable(ctx context.Context) ([]string, error) {
	available, err := s.scanner.ListAvailableBasenames(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(available))
	for name := range available {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *service) AssembleBundle(ctx context.Context, basename string) (*PostBundle, error) {
	posted, err := s.record.PostedBasenames(ctx)
	if err != nil {
		return nil, fmt.Errorf("load publish record: %w", err)
	}
	if _, ok := posted[basename]; ok {
		return nil, &BundleError{Basename: basename, Op: "assemble", Err: ErrAlreadyPosted}
	}
	return Assemble(basename, s.contentDir)
}

func (s *service) PublishRandom(ctx context.Context) (*PublishResult, error) {
	result := &PublishResult{RunID: uuid.New().String()}
	logger := s.logger.With("run_id", result.RunID)

	if len(s.platforms) == 0 {
		return result, ErrNoPlatforms
	}

	names, err := s.ListAvailable(ctx)
	if err != nil {
		return result, fmt.Errorf("select: %w", err)
	}
	if len(names) == 0 {
		logger.Info("no new content available to post")
		return result, nil
	}

	selected := names[s.picker(len(names))]
	result.Basename = selected
	logger.Info("selected bundle", "basename", selected, "available", len(names))

	bundle, err := Assemble(selected, s.contentDir)
	if err != nil {
		// A broken bundle is skipped for this run, not fatal: it stays
		// available until the source files are fixed.
		logger.Error("assembly failed, bundle skipped", "basename", selected, "err", err)
		return result, nil
	}

	logger.Info("assembled bundle",
		"basename", bundle.Basename,
		"has_main_text", bundle.MainText != "",
		"has_alt_text", bundle.AltText != "",
		"images", len(bundle.Images),
		"has_video", bundle.Video != "")

	// Fan-out: every adapter is attempted exactly once, failures do not
	// short-circuit the loop.
	for _, platform := range s.platforms {
		err := s.post(ctx, platform, bundle)
		pr := PlatformResult{Platform: platform.Name(), OK: err == nil}
		if err != nil {
			pr.Err = err.Error()
			logger.Error("post failed", "platform", platform.Name(), "err", err)
		} else {
			logger.Info("posted", "platform", platform.Name())
		}
		result.Platforms = append(result.Platforms, pr)
	}

	if !result.AllSucceeded() {
		logger.Warn("publish incomplete, bundle remains available", "basename", selected)
		return result, nil
	}

	if s.archiver != nil {
		if err := s.archive(ctx, selected); err != nil {
			logger.Error("archive failed", "basename", selected, "err", err)
		}
	}

	if err := s.record.MarkPosted(ctx, selected); err != nil {
		// Every adapter succeeded but the record did not advance: the next
		// run would re-publish this bundle. Surface as a hard failure.
		logger.Error("commit failed after successful publish", "basename", selected, "err", err)
		return result, fmt.Errorf("commit %s: %w", selected, err)
	}

	result.Committed = true
	logger.Info("successfully posted content", "basename", selected)
	return result, nil
}

// post invokes one adapter, converting a panic into an error so a misbehaving
// adapter cannot abort the fan-out.
func (s *service) post(ctx context.Context, platform Platform, bundle *PostBundle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PlatformError{Platform: platform.Name(), Op: "post", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := platform.Post(ctx, bundle); err != nil {
		return &PlatformError{Platform: platform.Name(), Op: "post", Err: err}
	}
	return nil
}

func (s *service) archive(ctx context.Context, basename string) error {
	names, err := s.scanner.BundleFiles(basename)
	if err != nil {
		return err
	}
	files := make([]string, 0, len(names))
	for _, name := range names {
		files = append(files, filepath.Join(s.contentDir, name))
	}
	return s.archiver.ArchiveBundle(ctx, basename, files)
}
