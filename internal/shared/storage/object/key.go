package object

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const maxNameLength = 80

// ErrInvalidName is returned for file names that cannot become part of a key.
var ErrInvalidName = errors.New("invalid file name")

// OwnerPrefix namespaces an owner's objects without exposing the owner id.
func OwnerPrefix(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(sum[:])
}

// CleanName reduces an uploaded file name to a short key-safe base name,
// keeping its extension.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "..") {
		return "", ErrInvalidName
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('_')
		}
	}
	clean := strings.Trim(b.String(), "._")
	if clean == "" {
		return "", ErrInvalidName
	}
	if len(clean) > maxNameLength {
		ext := path.Ext(clean)
		if len(ext) > 10 {
			ext = ""
		}
		clean = clean[:maxNameLength-len(ext)] + ext
	}
	return clean, nil
}

// NewKey returns a fresh "<owner prefix>/<id>_<name>" key for an upload.
func NewKey(ownerID, fileName string) (string, error) {
	clean, err := CleanName(fileName)
	if err != nil {
		return "", err
	}
	return OwnerPrefix(ownerID) + "/" + uuid.NewString() + "_" + clean, nil
}
