package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"resume-builder/internal/shared/apperr"
)

// StorePrefix marks a photo reference that points into the object store.
const StorePrefix = "store:"

const (
	defaultPhotoTimeout  = 5 * time.Second
	defaultPhotoMaxBytes = 2 << 20
)

// Photo is a decoded image re-encoded as JPEG.
type Photo struct {
	Data   []byte
	Width  int
	Height int
}

// PhotoResolver turns a photo reference into image bytes.
type PhotoResolver interface {
	Resolve(ctx context.Context, ref string) (*Photo, error)
}

// Opener reads objects by storage key.
type Opener interface {
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// PhotoFetcher resolves http(s) URLs, data: URIs and store references. Concurrent
// requests for the same remote reference share one fetch.
type PhotoFetcher struct {
	Client   *http.Client
	Store    Opener
	Timeout  time.Duration
	MaxBytes int64

	group singleflight.Group
}

// NewPhotoFetcher returns a fetcher with the given per-fetch timeout.
func NewPhotoFetcher(store Opener, timeout time.Duration, maxBytes int64) *PhotoFetcher {
	if timeout <= 0 {
		timeout = defaultPhotoTimeout
	}
	if maxBytes <= 0 {
		maxBytes = defaultPhotoMaxBytes
	}
	return &PhotoFetcher{
		Client:   &http.Client{Timeout: timeout},
		Store:    store,
		Timeout:  timeout,
		MaxBytes: maxBytes,
	}
}

// Resolve loads and normalizes the photo. Errors are DependencyError or ValidationError.
func (f *PhotoFetcher) Resolve(ctx context.Context, ref string) (*Photo, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return nil, apperr.Validation("photo reference is empty")
	case strings.HasPrefix(ref, "data:"):
		raw, err := decodeDataURI(ref)
		if err != nil {
			return nil, err
		}
		return NormalizePhoto(raw)
	}

	v, err, _ := f.group.Do(ref, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout())
		defer cancel()
		raw, err := f.fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		return NormalizePhoto(raw)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Photo), nil
}

func (f *PhotoFetcher) timeout() time.Duration {
	if f.Timeout <= 0 {
		return defaultPhotoTimeout
	}
	return f.Timeout
}

func (f *PhotoFetcher) maxBytes() int64 {
	if f.MaxBytes <= 0 {
		return defaultPhotoMaxBytes
	}
	return f.MaxBytes
}

func (f *PhotoFetcher) fetch(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, StorePrefix) {
		if f.Store == nil {
			return nil, apperr.New(apperr.KindDependency, "photo store is not configured")
		}
		rc, err := f.Store.Open(ctx, strings.TrimPrefix(ref, StorePrefix))
		if err != nil {
			return nil, apperr.Wrap(apperr.KindDependency, "open stored photo", err)
		}
		defer rc.Close()
		return f.readLimited(rc)
	}

	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperr.Validation("photo reference must be an http(s) URL, data URI or store key")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "build photo request", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "fetch photo", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.KindDependency, fmt.Sprintf("fetch photo: status %d", resp.StatusCode))
	}
	return f.readLimited(resp.Body)
}

func (f *PhotoFetcher) readLimited(r io.Reader) ([]byte, error) {
	limit := f.maxBytes()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "read photo", err)
	}
	if int64(len(data)) > limit {
		return nil, apperr.Validation("photo exceeds size limit")
	}
	return data, nil
}

func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, apperr.Validation("malformed data URI")
	}
	if !strings.HasSuffix(meta, ";base64") {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, apperr.Validation("malformed data URI")
		}
		return []byte(unescaped), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, apperr.Validation("malformed data URI payload")
		}
	}
	return data, nil
}

// NormalizePhoto decodes JPEG, PNG or GIF bytes and re-encodes them as JPEG on a
// white background.
func NormalizePhoto(raw []byte) (*Photo, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, apperr.Validation("photo is not a supported image")
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, apperr.Validation("photo has no pixels")
	}
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 85}); err != nil {
		return nil, apperr.Wrap(apperr.KindRender, "encode photo", err)
	}
	return &Photo{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}
