package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/apperr"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/cache"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

const defaultTTL = 72 * time.Hour

var (
	ErrNotFound      = apperr.NotFound("draft not found")
	ErrGuestRequired = apperr.Forbidden("drafts belong to guest sessions")
)

// Draft is unsaved guest work kept only in the cache.
type Draft struct {
	Content       model.Content       `json:"content"`
	Customization model.Customization `json:"customization"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// Sealer encrypts whole draft payloads at rest in the cache.
type Sealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
}

// Creator is the part of the resume service a claim needs.
type Creator interface {
	Create(ctx context.Context, requester auth.Identity, in resumes.CreateInput) (resumes.Resume, error)
}

type Service struct {
	Cache   cache.Store
	Sealer  Sealer
	Resumes Creator
	TTL     time.Duration
	Now     func() time.Time
}

func NewService(store cache.Store, sealer Sealer, creator Creator, ttl time.Duration) *Service {
	return &Service{Cache: store, Sealer: sealer, Resumes: creator, TTL: ttl}
}

func draftKey(ownerID string) string { return "draft:" + ownerID }

func (s *Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return defaultTTL
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Save replaces the guest's draft and restarts its TTL.
func (s *Service) Save(ctx context.Context, requester auth.Identity, content model.Content, cust *model.Customization) (Draft, error) {
	if !requester.Guest || requester.ID == "" {
		return Draft{}, ErrGuestRequired
	}
	if err := validate(content, cust); err != nil {
		return Draft{}, err
	}
	d := Draft{Content: content.Clone(), Customization: model.DefaultCustomization(), UpdatedAt: s.now()}
	if cust != nil {
		d.Customization = *cust
	}
	if err := s.put(ctx, requester.ID, d); err != nil {
		return Draft{}, err
	}
	telemetry.Info("draft.saved", map[string]any{"user_id": requester.ID})
	return d, nil
}

// Load returns the guest's current draft.
func (s *Service) Load(ctx context.Context, requester auth.Identity) (Draft, error) {
	if !requester.Guest || requester.ID == "" {
		return Draft{}, ErrGuestRequired
	}
	return s.get(ctx, requester.ID)
}

// Claim turns a guest draft into a resume owned by requester and discards the draft.
func (s *Service) Claim(ctx context.Context, requester auth.Identity, guestID, title string) (resumes.Resume, error) {
	guestID = strings.TrimSpace(guestID)
	if guestID == "" {
		return resumes.Resume{}, apperr.Validation("guestId is required")
	}
	if s.Resumes == nil {
		return resumes.Resume{}, apperr.New(apperr.KindDependency, "resume service unavailable")
	}
	owner := auth.GuestIdentity(guestID).ID
	d, err := s.get(ctx, owner)
	if err != nil {
		return resumes.Resume{}, err
	}
	res, err := s.Resumes.Create(ctx, requester, resumes.CreateInput{
		Title:         title,
		Content:       d.Content,
		Customization: &d.Customization,
	})
	if err != nil {
		return resumes.Resume{}, err
	}
	if err := s.Cache.Delete(ctx, draftKey(owner)); err != nil {
		telemetry.Warn("draft.delete_failed", map[string]any{"user_id": owner, "error": err})
	}
	telemetry.Info("draft.claimed", map[string]any{"user_id": requester.ID, "resume_id": res.ID})
	return res, nil
}

func (s *Service) put(ctx context.Context, ownerID string, d Draft) error {
	if s.Cache == nil {
		return apperr.New(apperr.KindDependency, "draft storage unavailable")
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return apperr.Wrap(apperr.KindDependency, "encode draft", err)
	}
	if s.Sealer != nil {
		token, err := s.Sealer.Encrypt(string(raw))
		if err != nil {
			return apperr.Wrap(apperr.KindDependency, "seal draft", err)
		}
		raw = []byte(token)
	}
	if err := s.Cache.Set(ctx, draftKey(ownerID), raw, s.ttl()); err != nil {
		return apperr.Wrap(apperr.KindDependency, "store draft", err)
	}
	return nil
}

func (s *Service) get(ctx context.Context, ownerID string) (Draft, error) {
	if s.Cache == nil {
		return Draft{}, ErrNotFound
	}
	raw, ok, err := s.Cache.Get(ctx, draftKey(ownerID))
	if err != nil || !ok {
		return Draft{}, ErrNotFound
	}
	if s.Sealer != nil {
		plain, err := s.Sealer.Decrypt(string(raw))
		if err != nil {
			telemetry.Warn("draft.decrypt_failed", map[string]any{"user_id": ownerID, "error": err})
			return Draft{}, ErrNotFound
		}
		raw = []byte(plain)
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return Draft{}, ErrNotFound
	}
	return d, nil
}

func validate(c model.Content, cust *model.Customization) error {
	err := c.Validate()
	if err == nil && cust != nil {
		err = cust.Validate()
	}
	if err == nil {
		return nil
	}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return &apperr.Error{Kind: apperr.KindValidation, Message: "draft failed validation", Details: verr.Fields, Err: verr}
	}
	return apperr.Wrap(apperr.KindValidation, err.Error(), err)
}
