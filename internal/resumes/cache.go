package resumes

import (
	"context"
	"time"

	"resume-builder/internal/shared/cache"
	"resume-builder/internal/shared/telemetry"
)

// Cached entries hold the stored (encrypted) form, never a decrypted view.
func docKey(id string) string        { return "resume:" + id + ":doc" }
func resumePattern(id string) string { return "resume:" + id + ":*" }
func shareKey(shareID string) string { return "share:" + shareID }

func (s *Service) load(ctx context.Context, id string) (Resume, error) {
	if s.Cache != nil {
		var res Resume
		if ok, _ := cache.GetJSON(ctx, s.Cache, docKey(id), &res); ok {
			return res, nil
		}
	}
	res, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Resume{}, err
	}
	s.remember(ctx, res)
	return res, nil
}

func (s *Service) loadByShareID(ctx context.Context, shareID string) (Resume, error) {
	if s.Cache != nil {
		raw, ok, _ := s.Cache.Get(ctx, shareKey(shareID))
		if ok {
			res, err := s.load(ctx, string(raw))
			if err == nil && res.Share.ShareID == shareID {
				return res, nil
			}
		}
	}
	res, err := s.Repo.GetByShareID(ctx, shareID)
	if err != nil {
		return Resume{}, err
	}
	s.remember(ctx, res)
	if s.Cache != nil {
		_ = s.Cache.Set(ctx, shareKey(shareID), []byte(res.ID), s.ttl())
	}
	return res, nil
}

func (s *Service) remember(ctx context.Context, res Resume) {
	if s.Cache == nil {
		return
	}
	if err := cache.SetJSON(ctx, s.Cache, docKey(res.ID), res, s.ttl()); err != nil {
		telemetry.Warn("resume.cache_set_failed", map[string]any{"resume_id": res.ID, "error": err})
	}
}

func (s *Service) invalidate(ctx context.Context, res Resume) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.DeleteByPattern(ctx, resumePattern(res.ID)); err != nil {
		telemetry.Warn("resume.cache_invalidate_failed", map[string]any{"resume_id": res.ID, "error": err})
	}
	if res.Share.ShareID != "" {
		_ = s.Cache.Delete(ctx, shareKey(res.Share.ShareID))
	}
}

func (s *Service) ttl() time.Duration {
	if s.CacheTTL > 0 {
		return s.CacheTTL
	}
	return defaultCacheTTL
}
