package resumes

import "context"

// Repo persists resume aggregates. Get and GetByShareID return soft-deleted
// resumes too; filtering is the service's job. Update is a compare-and-swap on
// Revision and never writes the view counter.
type Repo interface {
	Create(ctx context.Context, r Resume) error
	Get(ctx context.Context, id string) (Resume, error)
	GetByShareID(ctx context.Context, shareID string) (Resume, error)
	ListByOwner(ctx context.Context, ownerID string, deleted bool, limit, offset int) ([]Resume, error)
	// Update stores next if the persisted revision equals expected; otherwise ErrConflict.
	Update(ctx context.Context, next Resume, expected int64) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}
