package treasury

import "context"

// Store persists treasury records keyed by purpose. Implementations must make
// Save atomic per record; cross-record consistency is the service's job.
type Store interface {
	Get(ctx context.Context, purpose Purpose) (Treasury, error)
	Save(ctx context.Context, t Treasury) error
	List(ctx context.Context) ([]Treasury, error)
}
