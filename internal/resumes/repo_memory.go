package resumes

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Resume
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Resume)}
}

func (r *MemoryRepo) Create(ctx context.Context, res Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[res.ID]; ok {
		return ErrConflict
	}
	r.data[res.ID] = res.Clone()
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.data[id]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return res.Clone(), nil
}

func (r *MemoryRepo) GetByShareID(ctx context.Context, shareID string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	if shareID == "" {
		return Resume{}, ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, res := range r.data {
		if res.Share.ShareID == shareID {
			return res.Clone(), nil
		}
	}
	return Resume{}, ErrNotFound
}

// ListByOwner returns the owner's resumes, most recently updated first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, deleted bool, limit, offset int) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	out := make([]Resume, 0)
	for _, res := range r.data {
		if res.OwnerID == ownerID && res.Deleted() == deleted {
			out = append(out, res.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if offset >= len(out) {
		return []Resume{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

func (r *MemoryRepo) Update(ctx context.Context, next Resume, expected int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[next.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Revision != expected {
		return ErrConflict
	}
	stored := next.Clone()
	stored.Share.Views = cur.Share.Views
	r.data[next.ID] = stored
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MemoryRepo) IncrementViews(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	res.Share.Views++
	r.data[id] = res
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
