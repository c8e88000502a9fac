package resumes

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/shared/apperr"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/cache"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

const (
	maxWriteAttempts = 3
	lockStripes      = 64

	defaultListLimit = 20
	maxListLimit     = 100
	maxTitleLength   = 200
	maxCommentLength = 500

	defaultTitle  = "Untitled Resume"
	deleteConfirm = "DELETE"

	defaultCacheTTL = 5 * time.Minute
)

// Service owns the resume aggregate: ownership, soft delete, versioning, sharing
// and personal field encryption. Writes to one resume are serialized by a striped
// lock and a revision compare-and-swap in the repository.
type Service struct {
	Repo     Repo
	Codec    FieldCodec
	Cache    cache.Store
	Objects  object.Store
	CacheTTL time.Duration
	Now      func() time.Time
	NewID    func() string

	locks [lockStripes]sync.Mutex
}

// NewService constructs a Service. codec, store and objects may be nil.
func NewService(repo Repo, codec FieldCodec, store cache.Store, objects object.Store) *Service {
	return &Service{
		Repo:     repo,
		Codec:    codec,
		Cache:    store,
		Objects:  objects,
		CacheTTL: defaultCacheTTL,
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.locks[h.Sum32()%lockStripes]
}

func requireUser(requester auth.Identity) error {
	if strings.TrimSpace(requester.ID) == "" || requester.Guest {
		return ErrIdentityRequired
	}
	return nil
}

func canRead(requester auth.Identity, res Resume) bool {
	return res.OwnerID == requester.ID || requester.IsAdmin()
}

func invalid(err error) error {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return &apperr.Error{Kind: apperr.KindValidation, Message: "resume failed validation", Details: verr.Fields, Err: verr}
	}
	return apperr.Wrap(apperr.KindValidation, err.Error(), err)
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return defaultTitle, nil
	}
	if len([]rune(title)) > maxTitleLength {
		return "", apperr.Validation("title must be at most 200 characters")
	}
	return title, nil
}

func validateContent(c *model.Content, cust *model.Customization) error {
	if c != nil {
		if err := c.Validate(); err != nil {
			return invalid(err)
		}
	}
	if cust != nil {
		if err := cust.Validate(); err != nil {
			return invalid(err)
		}
	}
	return nil
}

// Create stores a new private resume owned by requester.
func (s *Service) Create(ctx context.Context, requester auth.Identity, in CreateInput) (Resume, error) {
	if err := requireUser(requester); err != nil {
		return Resume{}, err
	}
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return Resume{}, err
	}
	if err := validateContent(&in.Content, in.Customization); err != nil {
		return Resume{}, err
	}
	cust := model.DefaultCustomization()
	if in.Customization != nil {
		cust = *in.Customization
	}

	content := in.Content.Clone()
	content.Personal, err = sealPersonal(s.Codec, model.Personal{}, content.Personal)
	if err != nil {
		return Resume{}, apperr.Wrap(apperr.KindDependency, "encrypt personal fields", err)
	}

	now := s.now()
	res := Resume{
		ID:            s.newID(),
		OwnerID:       requester.ID,
		Title:         title,
		Content:       content,
		Customization: cust,
		Revision:      1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, res); err != nil {
		return Resume{}, err
	}
	telemetry.Info("resume.created", map[string]any{"resume_id": res.ID, "user_id": requester.ID})
	return decrypted(s.Codec, res), nil
}

// Get returns the decrypted resume. Admins may read any resume.
func (s *Service) Get(ctx context.Context, requester auth.Identity, id string) (Resume, error) {
	res, err := s.readable(ctx, requester, id)
	if err != nil {
		return Resume{}, err
	}
	return decrypted(s.Codec, res), nil
}

func (s *Service) readable(ctx context.Context, requester auth.Identity, id string) (Resume, error) {
	if err := requireUser(requester); err != nil {
		return Resume{}, err
	}
	res, err := s.load(ctx, id)
	if err != nil {
		return Resume{}, err
	}
	if res.Deleted() {
		return Resume{}, ErrNotFound
	}
	if !canRead(requester, res) {
		return Resume{}, ErrForbidden
	}
	return res, nil
}

// List returns the requester's live resumes, most recently updated first.
func (s *Service) List(ctx context.Context, requester auth.Identity, limit, offset int) ([]Resume, error) {
	return s.list(ctx, requester, false, limit, offset)
}

// ListDeleted returns the requester's resumes in the trash.
func (s *Service) ListDeleted(ctx context.Context, requester auth.Identity, limit, offset int) ([]Resume, error) {
	return s.list(ctx, requester, true, limit, offset)
}

func (s *Service) list(ctx context.Context, requester auth.Identity, deleted bool, limit, offset int) ([]Resume, error) {
	if err := requireUser(requester); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	items, err := s.Repo.ListByOwner(ctx, requester.ID, deleted, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]Resume, 0, len(items))
	for _, res := range items {
		out = append(out, decrypted(s.Codec, res))
	}
	return out, nil
}

// Update applies a partial update. Personal fields are re-encrypted only when
// their plaintext changed.
func (s *Service) Update(ctx context.Context, requester auth.Identity, id string, in UpdateInput) (Resume, error) {
	var title string
	if in.Title != nil {
		t, err := normalizeTitle(*in.Title)
		if err != nil {
			return Resume{}, err
		}
		title = t
	}
	if err := validateContent(in.Content, in.Customization); err != nil {
		return Resume{}, err
	}

	var replaced string
	res, err := s.mutate(ctx, requester, id, false, func(r *Resume) error {
		if in.Title != nil {
			r.Title = title
		}
		if in.Content != nil {
			replaced = r.Content.Personal.Photo
			content := in.Content.Clone()
			sealed, err := sealPersonal(s.Codec, r.Content.Personal, content.Personal)
			if err != nil {
				return apperr.Wrap(apperr.KindDependency, "encrypt personal fields", err)
			}
			content.Personal = sealed
			r.Content = content
		}
		if in.Customization != nil {
			r.Customization = *in.Customization
		}
		return nil
	})
	if err != nil {
		return Resume{}, err
	}
	if key, ok := storeKey(replaced); ok && !referenced(res, key) {
		s.deleteObject(ctx, id, key)
	}
	return decrypted(s.Codec, res), nil
}

// SoftDelete moves the resume to the trash.
func (s *Service) SoftDelete(ctx context.Context, requester auth.Identity, id string) error {
	_, err := s.mutate(ctx, requester, id, false, func(r *Resume) error {
		now := s.now()
		r.DeletedAt = &now
		return nil
	})
	return err
}

// Restore takes a resume out of the trash.
func (s *Service) Restore(ctx context.Context, requester auth.Identity, id string) (Resume, error) {
	res, err := s.mutate(ctx, requester, id, true, func(r *Resume) error {
		if !r.Deleted() {
			return ErrNotInTrash
		}
		r.DeletedAt = nil
		return nil
	})
	if err != nil {
		return Resume{}, err
	}
	return decrypted(s.Codec, res), nil
}

// PermanentDelete erases a resume. confirm must equal the resume title or DELETE.
func (s *Service) PermanentDelete(ctx context.Context, requester auth.Identity, id, confirm string) error {
	if err := requireUser(requester); err != nil {
		return err
	}
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	res, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if res.OwnerID != requester.ID {
		return ErrForbidden
	}
	confirm = strings.TrimSpace(confirm)
	if confirm == "" || (confirm != deleteConfirm && confirm != res.Title) {
		return ErrConfirmationRequired
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, res)
	s.removePhotos(ctx, res)
	telemetry.Info("resume.erased", map[string]any{"resume_id": id, "user_id": requester.ID})
	return nil
}

// Duplicate copies content and customization into a new private resume without history.
func (s *Service) Duplicate(ctx context.Context, requester auth.Identity, id string) (Resume, error) {
	src, err := s.readable(ctx, requester, id)
	if err != nil {
		return Resume{}, err
	}
	if src.OwnerID != requester.ID {
		return Resume{}, ErrForbidden
	}
	title := src.Title + " (Copy)"
	if len([]rune(title)) > maxTitleLength {
		title = string([]rune(title)[:maxTitleLength])
	}
	now := s.now()
	res := Resume{
		ID:            s.newID(),
		OwnerID:       requester.ID,
		Title:         title,
		Content:       src.Content.Clone(),
		Customization: src.Customization,
		Revision:      1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	copied, err := s.copyPhoto(ctx, requester.ID, res.Content.Personal.Photo)
	if err != nil {
		return Resume{}, err
	}
	res.Content.Personal.Photo = copied
	if err := s.Repo.Create(ctx, res); err != nil {
		if key, ok := storeKey(copied); ok && copied != src.Content.Personal.Photo {
			s.deleteObject(ctx, res.ID, key)
		}
		return Resume{}, err
	}
	return decrypted(s.Codec, res), nil
}

// mutate loads, checks and rewrites one resume under its stripe lock. fn runs on a
// fresh copy each attempt and is retried when another writer won the CAS.
func (s *Service) mutate(ctx context.Context, requester auth.Identity, id string, includeDeleted bool, fn func(*Resume) error) (Resume, error) {
	if err := requireUser(requester); err != nil {
		return Resume{}, err
	}
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	for attempt := 1; ; attempt++ {
		cur, err := s.Repo.Get(ctx, id)
		if err != nil {
			return Resume{}, err
		}
		if cur.Deleted() && !includeDeleted {
			return Resume{}, ErrNotFound
		}
		if cur.OwnerID != requester.ID {
			return Resume{}, ErrForbidden
		}

		next := cur.Clone()
		if err := fn(&next); err != nil {
			return Resume{}, err
		}
		next.Revision = cur.Revision + 1
		next.UpdatedAt = s.now()

		err = s.Repo.Update(ctx, next, cur.Revision)
		if err == nil {
			s.invalidate(ctx, cur)
			return next, nil
		}
		if !errors.Is(err, ErrConflict) {
			return Resume{}, err
		}
		metrics.IncWriteConflict()
		telemetry.Warn("resume.write_conflict", map[string]any{
			"resume_id": id,
			"attempt":   attempt,
			"revision":  cur.Revision,
		})
		if attempt >= maxWriteAttempts {
			return Resume{}, ErrConflict
		}
	}
}

func (s *Service) removePhotos(ctx context.Context, res Resume) {
	keys := map[string]struct{}{}
	if key, ok := storeKey(res.Content.Personal.Photo); ok {
		keys[key] = struct{}{}
	}
	for _, snap := range res.Versions {
		if key, ok := storeKey(snap.Content.Personal.Photo); ok {
			keys[key] = struct{}{}
		}
	}
	for key := range keys {
		s.deleteObject(ctx, res.ID, key)
	}
}

func (s *Service) deleteObject(ctx context.Context, resumeID, key string) {
	if s.Objects == nil {
		return
	}
	if err := s.Objects.Delete(ctx, key); err != nil {
		telemetry.Warn("resume.photo_delete_failed", map[string]any{
			"resume_id": resumeID,
			"error":     err,
		})
	}
}
