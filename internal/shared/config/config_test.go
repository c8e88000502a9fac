package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("MONGO_URL", "mongodb://localhost:27017/resumes")
	t.Setenv("OBJECT_STORE", "S3")

	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected production env, got %q", cfg.Env)
	}
	if cfg.Storage.Driver != "mongo" {
		t.Fatalf("expected mongo driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Objects.Type != "s3" {
		t.Fatalf("expected s3 store, got %q", cfg.Objects.Type)
	}
	if cfg.Export.Timeout != 20*time.Second {
		t.Fatalf("expected default export timeout, got %s", cfg.Export.Timeout)
	}
	if cfg.Cache.DraftTTL != 72*time.Hour {
		t.Fatalf("expected default draft ttl, got %s", cfg.Cache.DraftTTL)
	}
	if cfg.IsDevLike() {
		t.Fatalf("production must not be dev-like")
	}
}

func TestLoadFromYAMLFileWithEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("port: \"9090\"\nstorage:\n  driver: postgres\n  database_url: postgres://x\nexport:\n  timeout: 3s\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("EXPORT_TIMEOUT", "7s")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Fatalf("expected postgres, got %q", cfg.Storage.Driver)
	}
	if cfg.Export.Timeout != 7*time.Second {
		t.Fatalf("expected env overlay 7s, got %s", cfg.Export.Timeout)
	}
}

func TestNormalizeDriverDefaultsToMemory(t *testing.T) {
	if got := normalizeDriver(StorageConfig{}); got != "memory" {
		t.Fatalf("expected memory, got %q", got)
	}
	if got := normalizeDriver(StorageConfig{Driver: "PG", MongoURL: "mongodb://x"}); got != "postgres" {
		t.Fatalf("explicit driver should win, got %q", got)
	}
}

func TestCORSOrigins(t *testing.T) {
	cfg := Config{CORSAllowOrigin: " http://a.test , ,http://b.test"}
	got := cfg.CORSOrigins()
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", got)
	}
}
