package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/server/respond"
)

const (
	identityKey = "identity"
	userIDKey   = "userId"
	isGuestKey  = "isGuest"
)

// GuestHeader carries the anonymous draft owner id.
const GuestHeader = "X-Guest-Id"

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	VerifyJWT(token string) (auth.Identity, error)
}

// Auth resolves the caller from a bearer token or guest header. Requests without
// either continue anonymously; a malformed or invalid token is rejected.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			if token == "" || verifier == nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			id, err := verifier.VerifyJWT(token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			setIdentity(c, id)
			c.Next()
			return
		}

		if guestID := strings.TrimSpace(c.GetHeader(GuestHeader)); guestID != "" {
			if len(guestID) > 128 {
				respond.Error(c, http.StatusBadRequest, "validation_error", "guest id is too long", nil)
				return
			}
			setIdentity(c, auth.GuestIdentity(guestID))
		}
		c.Next()
	}
}

// RequireUser rejects anonymous and guest callers.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFromContext(c)
		if !ok || id.Guest {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "sign in required", nil)
			return
		}
		c.Next()
	}
}

// RequireIdentity rejects anonymous callers but admits guests.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFromContext(c); !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}
		c.Next()
	}
}

func setIdentity(c *gin.Context, id auth.Identity) {
	c.Set(identityKey, id)
	c.Set(userIDKey, id.ID)
	c.Set(isGuestKey, id.Guest)
}

// IdentityFromContext fetches the identity set by the auth middleware.
func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	if c == nil {
		return auth.Identity{}, false
	}
	val, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := val.(auth.Identity)
	return id, ok
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
