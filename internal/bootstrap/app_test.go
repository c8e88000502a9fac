package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
)

func devConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:     "dev",
		Storage: config.StorageConfig{Driver: "memory"},
		Cache: config.CacheConfig{
			MemoryCapacity: 64,
			ResumeTTL:      time.Minute,
			DraftTTL:       time.Hour,
		},
		Objects:  config.ObjectConfig{Type: "local", LocalDir: t.TempDir()},
		Security: config.SecurityConfig{TokenTTL: time.Hour},
		Export:   config.ExportConfig{Timeout: 5 * time.Second, PhotoTimeout: time.Second},
		Limits:   config.LimitConfig{DefaultRate: 100, DefaultBurst: 100, ExportRate: 100, ExportBurst: 100},
	}
}

func TestBuildServesResumeLifecycle(t *testing.T) {
	ctx := context.Background()
	app, err := Build(ctx, devConfig(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close(ctx)

	tok, err := app.Tokens.SignJWT("user-1", auth.RoleUser, "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", strings.NewReader(`{"title":"Boot","content":{"personal":{"fullName":"Jane Doe"}}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		ResumeID string `json:"resumeId"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/resumes/"+created.ResumeID+"/export/docx", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp = httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected export 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Header().Get("Content-Disposition"), "Jane_Doe_Boot.docx") {
		t.Fatalf("unexpected disposition %q", resp.Header().Get("Content-Disposition"))
	}

	resp = httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", resp.Code)
	}
}

func TestBuildFallsBackToMemoryInDev(t *testing.T) {
	cfg := devConfig(t)
	cfg.Storage = config.StorageConfig{Driver: "postgres"}
	app, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("expected dev fallback, got %v", err)
	}
	defer app.Close(context.Background())
	if app.DB != nil {
		t.Fatalf("expected no database without DATABASE_URL")
	}
}

func TestBuildRequiresSecretsInProduction(t *testing.T) {
	cfg := devConfig(t)
	cfg.Env = "production"
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatal("expected missing secrets to fail in production")
	}
}
