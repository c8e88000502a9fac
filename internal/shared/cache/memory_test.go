package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestMemory(capacity int) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(capacity, 0)
	s.now = clock.Now
	return s, clock
}

func TestMemoryStoreExpiresOnRead(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestMemory(10)

	require.NoError(t, s.Set(ctx, "a", []byte("1"), time.Minute))
	v, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	clock.Advance(time.Minute)
	_, ok, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStoreBoundedEviction(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestMemory(2)

	require.NoError(t, s.Set(ctx, "soon", []byte("x"), time.Second))
	require.NoError(t, s.Set(ctx, "later", []byte("y"), time.Hour))
	require.NoError(t, s.Set(ctx, "new", []byte("z"), time.Hour))

	assert.Equal(t, 2, s.Len())
	_, ok, _ := s.Get(ctx, "soon")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "later")
	assert.True(t, ok)
	_, ok, _ = s.Get(ctx, "new")
	assert.True(t, ok)
}

func TestMemoryStoreDeleteByPattern(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestMemory(10)
	for _, k := range []string{"resume:u1:list", "resume:u1:r1", "resume:u2:r9"} {
		require.NoError(t, s.Set(ctx, k, []byte("v"), time.Hour))
	}

	require.NoError(t, s.DeleteByPattern(ctx, "resume:u1:*"))
	assert.Equal(t, 1, s.Len())
	_, ok, _ := s.Get(ctx, "resume:u2:r9")
	assert.True(t, ok)

	assert.Error(t, s.DeleteByPattern(ctx, "[bad"))
}

func TestMemoryStoreSweepAndClose(t *testing.T) {
	s := NewMemoryStore(10, 10*time.Millisecond)
	require.NoError(t, s.Set(context.Background(), "k", []byte("v"), time.Millisecond))

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestMemory(10)
	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf, 0))
	buf[0] = 'X'

	v, ok, _ := s.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "abc", string(v))
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestMemory(10)
	type payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, SetJSON(ctx, s, "p", payload{Name: "Jane"}, time.Minute))

	var got payload
	ok, err := GetJSON(ctx, s, "p", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Jane", got.Name)

	require.NoError(t, s.Set(ctx, "broken", []byte("{"), time.Minute))
	ok, err = GetJSON(ctx, s, "broken", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}
