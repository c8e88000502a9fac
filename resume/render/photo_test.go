package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/shared/apperr"
)

type mapOpener map[string][]byte

func (m mapOpener) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m[key]
	if !ok {
		return nil, errors.New("missing")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestNormalizePhotoReencodesJPEG(t *testing.T) {
	photo, err := NormalizePhoto(pngBytes(t, 12, 8))
	require.NoError(t, err)
	assert.Equal(t, 12, photo.Width)
	assert.Equal(t, 8, photo.Height)

	_, err = jpeg.Decode(bytes.NewReader(photo.Data))
	require.NoError(t, err)

	_, err = NormalizePhoto([]byte("not an image"))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestResolveDataURI(t *testing.T) {
	f := NewPhotoFetcher(nil, time.Second, 0)
	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 4, 4))

	photo, err := f.Resolve(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 4, photo.Width)

	_, err = f.Resolve(context.Background(), "data:image/png;base64,@@@")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestResolveHTTP(t *testing.T) {
	img := pngBytes(t, 6, 6)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(img)
	}))
	defer srv.Close()

	f := NewPhotoFetcher(nil, time.Second, 0)
	photo, err := f.Resolve(context.Background(), srv.URL+"/me.png")
	require.NoError(t, err)
	assert.Equal(t, 6, photo.Height)

	_, err = f.Resolve(context.Background(), srv.URL+"/missing.png")
	assert.True(t, errors.Is(err, apperr.ErrDependency))
	assert.Equal(t, int32(2), hits.Load())
}

func TestResolveHTTPTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := NewPhotoFetcher(nil, 50*time.Millisecond, 0)
	start := time.Now()
	_, err := f.Resolve(context.Background(), srv.URL+"/slow.png")
	assert.True(t, errors.Is(err, apperr.ErrDependency))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestResolveSizeLimit(t *testing.T) {
	f := NewPhotoFetcher(mapOpener{"u/big.png": pngBytes(t, 64, 64)}, time.Second, 16)
	_, err := f.Resolve(context.Background(), StorePrefix+"u/big.png")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestResolveStoreReference(t *testing.T) {
	f := NewPhotoFetcher(mapOpener{"u/me.png": pngBytes(t, 5, 5)}, time.Second, 0)
	photo, err := f.Resolve(context.Background(), StorePrefix+"u/me.png")
	require.NoError(t, err)
	assert.Equal(t, 5, photo.Width)

	_, err = f.Resolve(context.Background(), StorePrefix+"u/none.png")
	assert.True(t, errors.Is(err, apperr.ErrDependency))

	_, err = NewPhotoFetcher(nil, time.Second, 0).Resolve(context.Background(), StorePrefix+"u/me.png")
	assert.True(t, errors.Is(err, apperr.ErrDependency))
}

func TestResolveRejectsUnknownScheme(t *testing.T) {
	_, err := NewPhotoFetcher(nil, time.Second, 0).Resolve(context.Background(), "ftp://example.com/me.png")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
