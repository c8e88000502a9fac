package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	m, err := NewTokenManager("secret", time.Hour)
	require.NoError(t, err)

	tok, err := m.SignJWT("user-1", RoleAdmin, "a@b.c")
	require.NoError(t, err)

	id, err := m.VerifyJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "user-1", Role: RoleAdmin}, id)
	assert.True(t, id.IsAdmin())
}

func TestVerifyRejectsTampering(t *testing.T) {
	m, _ := NewTokenManager("secret", time.Hour)
	other, _ := NewTokenManager("other", time.Hour)

	tok, err := other.SignJWT("user-1", RoleUser, "")
	require.NoError(t, err)
	_, err = m.VerifyJWT(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.VerifyJWT("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	m, _ := NewTokenManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err := m.SignJWT("user-1", RoleUser, "")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.VerifyJWT(tok)
	assert.True(t, errors.Is(err, ErrTokenExpired))
}

func TestVerifyRejectsGuestSubjectsAndOtherAlgs(t *testing.T) {
	m, _ := NewTokenManager("secret", time.Hour)
	tok, err := m.SignJWT(GuestPrefix+"abc", RoleUser, "")
	require.NoError(t, err)
	_, err = m.VerifyJWT(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.VerifyJWT(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUnknownRoleDowngradesToUser(t *testing.T) {
	m, _ := NewTokenManager("secret", time.Hour)
	tok, err := m.SignJWT("user-1", Role("superuser"), "")
	require.NoError(t, err)
	id, err := m.VerifyJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, id.Role)
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager("  ", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestGuestIdentity(t *testing.T) {
	id := GuestIdentity("abc")
	assert.Equal(t, "guest:abc", id.ID)
	assert.True(t, id.Guest)
}
