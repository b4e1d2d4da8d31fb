package simplesocial

import (
	"context"
)

// Service coordinates content selection and multi-platform publishing.
type Service interface {
	// ListAvailable returns unposted basenames in lexicographic order.
	ListAvailable(ctx context.Context) ([]string, error)

	// AssembleBundle builds the PostBundle for one basename. Asking for a
	// basename already in the publish record fails with ErrAlreadyPosted.
	AssembleBundle(ctx context.Context, basename string) (*PostBundle, error)

	// PublishRandom selects one available bundle at random, fans it out to
	// every configured platform, and commits the basename to the publish
	// record only if every platform succeeded.
	//
	// A run with nothing to publish, a skipped bundle, or adapter failures
	// returns a result with Committed false and a nil error. A non-nil error
	// means the run itself broke: the directory could not be scanned, no
	// platforms are configured, or the commit failed after all adapters
	// succeeded. The last case leaves the record out of sync with what was
	// published and should page, not silently retry.
	PublishRandom(ctx context.Context) (*PublishResult, error)
}
