package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/auth"
)

func newTokens(t *testing.T) *auth.TokenManager {
	t.Helper()
	m, err := auth.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	return m
}

func identityRouter(t *testing.T, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(newTokens(t)))
	handlers := append(extra, func(c *gin.Context) {
		id, ok := IdentityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id.ID, "guest": id.Guest, "ok": ok})
	})
	router.GET("/whoami", handlers...)
	return router
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(newTokens(t)))
	router.OPTIONS("/api/v1/resumes/current", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/resumes/current", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthBearerToken(t *testing.T) {
	tokens := newTokens(t)
	tok, err := tokens.SignJWT("user-1", auth.RoleUser, "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	router := identityRouter(t, RequireUser())

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	assertContains(t, resp.Body.String(), `"id":"user-1"`)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", resp.Code)
	}
}

func TestRequireUserRejectsGuestsAndAnonymous(t *testing.T) {
	router := identityRouter(t, RequireUser())

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(GuestHeader, "g1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for guest, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous, got %d", resp.Code)
	}
}

func TestRequireIdentityAdmitsGuests(t *testing.T) {
	router := identityRouter(t, RequireIdentity())

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(GuestHeader, "g1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	assertContains(t, resp.Body.String(), `"id":"guest:g1"`)
	assertContains(t, resp.Body.String(), `"guest":true`)
}

func TestAuthAnonymousPassesThrough(t *testing.T) {
	router := identityRouter(t)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	assertContains(t, resp.Body.String(), `"ok":false`)
}

func assertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q to contain %q", haystack, needle)
	}
}
