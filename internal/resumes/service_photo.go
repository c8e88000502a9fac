package resumes

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"io"
	"path"
	"strings"

	"resume-builder/internal/shared/apperr"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/resume/render"
)

// MaxPhotoBytes caps uploaded photos.
const MaxPhotoBytes = 2 << 20

func storeKey(ref string) (string, bool) {
	if !strings.HasPrefix(ref, render.StorePrefix) {
		return "", false
	}
	key := strings.TrimPrefix(ref, render.StorePrefix)
	return key, key != ""
}

// UploadPhoto stores a JPEG or PNG in the object store and points the resume's
// photo reference at it. The previous uploaded photo is kept while any snapshot
// still references it.
func (s *Service) UploadPhoto(ctx context.Context, requester auth.Identity, id, fileName string, r io.Reader) (Resume, error) {
	if err := requireUser(requester); err != nil {
		return Resume{}, err
	}
	if s.Objects == nil {
		return Resume{}, apperr.New(apperr.KindDependency, "photo storage is not configured")
	}
	if _, err := s.readable(ctx, requester, id); err != nil {
		return Resume{}, err
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxPhotoBytes+1))
	if err != nil {
		return Resume{}, apperr.Wrap(apperr.KindValidation, "unable to read photo", err)
	}
	if len(data) > MaxPhotoBytes {
		return Resume{}, apperr.Validation("photo must be at most 2 MiB")
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || (format != "jpeg" && format != "png") {
		return Resume{}, apperr.Validation("photo must be a JPEG or PNG image")
	}
	if strings.TrimSpace(fileName) == "" {
		fileName = "photo." + format
	}

	obj, err := s.Objects.Save(ctx, requester.ID, fileName, bytes.NewReader(data))
	if err != nil {
		return Resume{}, apperr.Wrap(apperr.KindDependency, "store photo", err)
	}

	var replaced string
	res, err := s.mutate(ctx, requester, id, false, func(r *Resume) error {
		replaced = r.Content.Personal.Photo
		r.Content.Personal.Photo = render.StorePrefix + obj.Key
		return nil
	})
	if err != nil {
		s.deleteObject(ctx, id, obj.Key)
		return Resume{}, err
	}
	if key, ok := storeKey(replaced); ok && !referenced(res, key) {
		s.deleteObject(ctx, id, key)
	}
	return decrypted(s.Codec, res), nil
}

// copyPhoto gives a duplicated resume its own copy of an uploaded photo so erasing
// either resume leaves the other intact. Other references are returned unchanged.
func (s *Service) copyPhoto(ctx context.Context, ownerID, ref string) (string, error) {
	key, ok := storeKey(ref)
	if !ok || s.Objects == nil {
		return ref, nil
	}
	rc, err := s.Objects.Open(ctx, key)
	if errors.Is(err, object.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Wrap(apperr.KindDependency, "open photo", err)
	}
	defer rc.Close()
	obj, err := s.Objects.Save(ctx, ownerID, "photo"+path.Ext(key), rc)
	if err != nil {
		return "", apperr.Wrap(apperr.KindDependency, "copy photo", err)
	}
	return render.StorePrefix + obj.Key, nil
}

func referenced(res Resume, key string) bool {
	ref := render.StorePrefix + key
	if res.Content.Personal.Photo == ref {
		return true
	}
	for _, snap := range res.Versions {
		if snap.Content.Personal.Photo == ref {
			return true
		}
	}
	return false
}
