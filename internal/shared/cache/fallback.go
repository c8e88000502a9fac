package cache

import (
	"context"
	"time"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// FallbackStore reads and writes the durable tier first and falls back to memory
// when it is missing or failing. It never returns an error; failures are logged
// and behave like misses.
type FallbackStore struct {
	durable Store
	local   *MemoryStore
}

var _ Store = (*FallbackStore)(nil)

// NewFallbackStore wraps durable (may be nil) with local.
func NewFallbackStore(durable Store, local *MemoryStore) *FallbackStore {
	return &FallbackStore{durable: durable, local: local}
}

func (s *FallbackStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.durable != nil {
		raw, ok, err := s.durable.Get(ctx, key)
		if err == nil {
			metrics.IncCache("durable", hitOrMiss(ok))
			return raw, ok, nil
		}
		s.degraded("get", key, err)
	}
	raw, ok, err := s.local.Get(ctx, key)
	if err != nil {
		metrics.IncCache("memory", "error")
		return nil, false, nil
	}
	metrics.IncCache("memory", hitOrMiss(ok))
	return raw, ok, nil
}

func (s *FallbackStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.durable != nil {
		err := s.durable.Set(ctx, key, value, ttl)
		if err == nil {
			return nil
		}
		s.degraded("set", key, err)
	}
	_ = s.local.Set(ctx, key, value, ttl)
	return nil
}

// Delete removes keys from both tiers so an entry written during an outage cannot
// outlive an invalidation.
func (s *FallbackStore) Delete(ctx context.Context, keys ...string) error {
	if s.durable != nil {
		if err := s.durable.Delete(ctx, keys...); err != nil {
			s.degraded("delete", "", err)
		}
	}
	_ = s.local.Delete(ctx, keys...)
	return nil
}

func (s *FallbackStore) DeleteByPattern(ctx context.Context, pattern string) error {
	if s.durable != nil {
		if err := s.durable.DeleteByPattern(ctx, pattern); err != nil {
			s.degraded("delete_pattern", pattern, err)
		}
	}
	_ = s.local.DeleteByPattern(ctx, pattern)
	return nil
}

func (s *FallbackStore) Close() error {
	var err error
	if s.durable != nil {
		err = s.durable.Close()
	}
	_ = s.local.Close()
	return err
}

func (s *FallbackStore) degraded(op, key string, err error) {
	metrics.IncCache("durable", "error")
	telemetry.Warn("cache.degraded", map[string]any{
		"op":    op,
		"key":   key,
		"error": err,
	})
}

func hitOrMiss(ok bool) string {
	if ok {
		return "hit"
	}
	return "miss"
}
