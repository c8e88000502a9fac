package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"resume-builder/internal/shared/apperr"
)

const (
	keySalt       = "resume-builder.field-encryption.v1"
	keyIterations = 100_000
	keyLen        = 32
	nonceSize     = 12
	tagSize       = 16
	separator     = ":"
)

// ErrDecryption is returned for malformed or tampered tokens.
var ErrDecryption = apperr.ErrDecryption

// Codec encrypts short personal fields with AES-256-GCM.
// Tokens have the form hex(nonce):hex(ciphertext):hex(tag).
type Codec struct {
	aead cipher.AEAD
}

// NewCodec derives the cipher key from secret once.
func NewCodec(secret string) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("field encryption secret is required")
	}
	key := pbkdf2.Key([]byte(secret), []byte(keySalt), keyIterations, keyLen, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// Encrypt returns a token for plaintext. Empty input is returned unchanged.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return plaintext, nil
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return strings.Join([]string{
		hex.EncodeToString(nonce),
		hex.EncodeToString(ct),
		hex.EncodeToString(tag),
	}, separator), nil
}

// Decrypt reverses Encrypt. Empty input is returned unchanged.
func (c *Codec) Decrypt(token string) (string, error) {
	if token == "" {
		return token, nil
	}

	parts := strings.Split(token, separator)
	if len(parts) != 3 {
		return "", apperr.Wrap(apperr.KindDecryption, "decrypt field", errors.New("token must have three parts"))
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceSize {
		return "", apperr.Wrap(apperr.KindDecryption, "decrypt field", errors.New("invalid nonce"))
	}
	ct, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", apperr.Wrap(apperr.KindDecryption, "decrypt field", errors.New("invalid ciphertext"))
	}
	tag, err := hex.DecodeString(parts[2])
	if err != nil || len(tag) != tagSize {
		return "", apperr.Wrap(apperr.KindDecryption, "decrypt field", errors.New("invalid tag"))
	}

	sealed := make([]byte, 0, len(ct)+len(tag))
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", apperr.Wrap(apperr.KindDecryption, "decrypt field", err)
	}
	return string(plain), nil
}

// IsToken reports whether s has the shape of an encrypted token.
func IsToken(s string) bool {
	parts := strings.Split(s, separator)
	if len(parts) != 3 {
		return false
	}
	if len(parts[0]) != nonceSize*2 || len(parts[2]) != tagSize*2 {
		return false
	}
	for _, p := range parts {
		if _, err := hex.DecodeString(p); err != nil {
			return false
		}
	}
	return true
}
