package cache

import (
	"context"
	"path"
	"sync"
	"time"
)

const defaultCapacity = 2048

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a bounded in-process cache. Expired entries are dropped on read
// and by a periodic sweep; when full, the entry closest to expiry is evicted.
type MemoryStore struct {
	mu       sync.Mutex
	items    map[string]memoryEntry
	capacity int
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore starts a store with one sweep goroutine. sweep <= 0 disables sweeping.
func NewMemoryStore(capacity int, sweep time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	s := &MemoryStore{
		items:    make(map[string]memoryEntry),
		capacity: capacity,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if sweep > 0 {
		go s.sweepLoop(sweep)
	} else {
		close(s.done)
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.items, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[key]; !exists && len(s.items) >= s.capacity {
		s.evictLocked()
	}
	s.items[key] = memoryEntry{value: append([]byte(nil), value...), expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.items, k)
	}
	return nil
}

func (s *MemoryStore) DeleteByPattern(ctx context.Context, pattern string) error {
	if _, err := path.Match(pattern, ""); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.items {
		if ok, _ := path.Match(pattern, k); ok {
			delete(s.items, k)
		}
	}
	return nil
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Close stops the sweep goroutine.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	return nil
}

func (s *MemoryStore) sweepLoop(every time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.items {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(s.items, k)
		}
	}
}

func (s *MemoryStore) evictLocked() {
	now := s.now()
	var victim string
	var victimAt time.Time
	for k, e := range s.items {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(s.items, k)
			return
		}
		if victim == "" || (!e.expiresAt.IsZero() && (victimAt.IsZero() || e.expiresAt.Before(victimAt))) {
			victim, victimAt = k, e.expiresAt
		}
	}
	delete(s.items, victim)
}
