package resumes

import (
	"context"

	"github.com/google/uuid"

	"resume-builder/internal/shared/apperr"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/sharing"
)

const maxSharePasswordLength = 128

// UpdateShareSettings applies a partial share update. The share id is generated on
// the first update and never changes. Publishing requires consent, recorded either
// earlier or in the same request; withdrawing consent unpublishes.
func (s *Service) UpdateShareSettings(ctx context.Context, requester auth.Identity, id string, upd ShareUpdate) (Resume, error) {
	if upd.Password != nil && len(*upd.Password) > maxSharePasswordLength {
		return Resume{}, apperr.Validation("password must be at most 128 characters")
	}
	now := s.now()
	if upd.ExpiresAt != nil && !upd.ExpiresAt.After(now) {
		return Resume{}, apperr.Validation("expiresAt must be in the future")
	}

	res, err := s.mutate(ctx, requester, id, false, func(r *Resume) error {
		sh := &r.Share
		if sh.ShareID == "" {
			sh.ShareID = uuid.NewString()
		}
		if upd.Consent != nil {
			switch {
			case *upd.Consent && !sh.ConsentGiven:
				sh.ConsentGiven = true
				at := now
				sh.ConsentAt = &at
			case !*upd.Consent:
				sh.ConsentGiven = false
				sh.ConsentAt = nil
				sh.Public = false
			}
		}
		if upd.Public != nil {
			if *upd.Public && !sh.ConsentGiven {
				return ErrConsentRequired
			}
			sh.Public = *upd.Public
		}
		if upd.Password != nil {
			sh.Password = *upd.Password
		}
		if upd.ClearExpiry {
			sh.ExpiresAt = nil
		} else if upd.ExpiresAt != nil {
			at := upd.ExpiresAt.UTC()
			sh.ExpiresAt = &at
		}
		if upd.AllowDownload != nil {
			sh.AllowDownload = *upd.AllowDownload
		}
		return nil
	})
	if err != nil {
		return Resume{}, err
	}
	telemetry.Info("resume.share_updated", map[string]any{
		"resume_id": id,
		"share_id":  res.Share.ShareID,
		"public":    res.Share.Public,
	})
	return decrypted(s.Codec, res), nil
}

// GetShared resolves a public link through the sharing policy. A successful view
// (not a download) increments the view counter.
func (s *Service) GetShared(ctx context.Context, shareID, password string, wantsDownload bool) (Resume, error) {
	if shareID == "" {
		return Resume{}, ErrNotFound
	}
	res, err := s.loadByShareID(ctx, shareID)
	if err != nil {
		return Resume{}, err
	}
	if res.Deleted() {
		return Resume{}, ErrNotFound
	}

	decision := sharing.Authorize(res.Share, password, wantsDownload, s.now())
	if !decision.Allowed {
		metrics.IncShare(string(decision.Reason))
		return Resume{}, decision.Err()
	}
	metrics.IncShare("allowed")

	if !wantsDownload {
		if err := s.Repo.IncrementViews(ctx, res.ID); err != nil {
			telemetry.Warn("resume.view_count_failed", map[string]any{"resume_id": res.ID, "error": err})
		} else {
			res.Share.Views++
		}
	}
	return decrypted(s.Codec, res), nil
}
