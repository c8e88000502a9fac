package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds application configuration.
type Config struct {
	Port            string `yaml:"port" env:"PORT" env-default:"8080"`
	Env             string `yaml:"env" env:"ENV" env-default:"dev"`
	CORSAllowOrigin string `yaml:"cors_allow_origins" env:"CORS_ALLOW_ORIGINS" env-default:"http://localhost:5173"`

	Storage  StorageConfig  `yaml:"storage"`
	Cache    CacheConfig    `yaml:"cache"`
	Objects  ObjectConfig   `yaml:"objects"`
	Security SecurityConfig `yaml:"security"`
	Export   ExportConfig   `yaml:"export"`
	Limits   LimitConfig    `yaml:"limits"`
}

// StorageConfig selects the resume repository backend.
type StorageConfig struct {
	Driver      string     `yaml:"driver" env:"STORAGE_DRIVER" env-default:""`
	DatabaseURL string     `yaml:"database_url" env:"DATABASE_URL"`
	MongoURL    string     `yaml:"mongo_url" env:"MONGO_URL"`
	Pool        PoolConfig `yaml:"pool"`
}

// PoolConfig overrides the Postgres pool profile. Zero values keep the profile default.
type PoolConfig struct {
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME"`
	PingTimeout     time.Duration `yaml:"ping_timeout" env:"DB_PING_TIMEOUT"`
}

// CacheConfig configures the two-tier cache.
type CacheConfig struct {
	RedisURL       string        `yaml:"redis_url" env:"REDIS_URL"`
	Prefix         string        `yaml:"prefix" env:"CACHE_PREFIX" env-default:"rb:"`
	MemoryCapacity int           `yaml:"memory_capacity" env:"CACHE_MEMORY_CAPACITY" env-default:"2048"`
	SweepInterval  time.Duration `yaml:"sweep_interval" env:"CACHE_SWEEP_INTERVAL" env-default:"1m"`
	ResumeTTL      time.Duration `yaml:"resume_ttl" env:"CACHE_RESUME_TTL" env-default:"5m"`
	DraftTTL       time.Duration `yaml:"draft_ttl" env:"CACHE_DRAFT_TTL" env-default:"72h"`
}

// ObjectConfig configures photo storage.
type ObjectConfig struct {
	Type        string `yaml:"type" env:"OBJECT_STORE" env-default:"local"`
	LocalDir    string `yaml:"local_dir" env:"LOCAL_STORE_DIR" env-default:"./data"`
	AWSRegion   string `yaml:"aws_region" env:"AWS_REGION"`
	S3Bucket    string `yaml:"s3_bucket" env:"S3_BUCKET"`
	S3Prefix    string `yaml:"s3_prefix" env:"S3_PREFIX"`
	SSEKMSKeyID string `yaml:"sse_kms_key_id" env:"SSE_KMS_KEY_ID"`
}

// SecurityConfig holds secrets.
type SecurityConfig struct {
	FieldEncryptionSecret string        `yaml:"field_encryption_secret" env:"FIELD_ENCRYPTION_SECRET"`
	JWTSecret             string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL              time.Duration `yaml:"token_ttl" env:"JWT_TTL" env-default:"24h"`
}

// ExportConfig bounds the export pipeline.
type ExportConfig struct {
	Timeout       time.Duration `yaml:"timeout" env:"EXPORT_TIMEOUT" env-default:"20s"`
	PhotoTimeout  time.Duration `yaml:"photo_timeout" env:"EXPORT_PHOTO_TIMEOUT" env-default:"5s"`
	PhotoMaxBytes int64         `yaml:"photo_max_bytes" env:"EXPORT_PHOTO_MAX_BYTES" env-default:"2097152"`
	VerifyOutput  bool          `yaml:"verify_output" env:"EXPORT_VERIFY_OUTPUT" env-default:"false"`
}

// LimitConfig configures per-principal rate limits (requests/second and burst).
type LimitConfig struct {
	DefaultRate  float64 `yaml:"default_rate" env:"RATE_LIMIT_DEFAULT_RATE" env-default:"10"`
	DefaultBurst int     `yaml:"default_burst" env:"RATE_LIMIT_DEFAULT_BURST" env-default:"30"`
	ExportRate   float64 `yaml:"export_rate" env:"RATE_LIMIT_EXPORT_RATE" env-default:"1"`
	ExportBurst  int     `yaml:"export_burst" env:"RATE_LIMIT_EXPORT_BURST" env-default:"5"`
}

// Load reads configuration from CONFIG_PATH (yaml or .env) or ./.env when present,
// with environment variables applied on top.
func Load() Config {
	cfg, err := LoadFrom(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Printf("config: %v; falling back to environment", err)
		cfg = Config{}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Printf("config: read env: %v", err)
		}
		cfg.normalize()
	}
	return cfg
}

// LoadFrom reads configuration from path, or ./.env and the environment when path is empty.
func LoadFrom(path string) (Config, error) {
	var cfg Config

	if path == "" {
		if _, err := os.Stat(".env"); err == nil {
			path = ".env"
		}
	}

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	cfg.normalize()

	if cfg.Env == "production" && cfg.Security.FieldEncryptionSecret == "" {
		log.Printf("FIELD_ENCRYPTION_SECRET is required in production")
	}

	return cfg, nil
}

// CORSOrigins returns the configured allowed origins.
func (c Config) CORSOrigins() []string {
	return splitAndTrim(c.CORSAllowOrigin)
}

// IsDevLike reports whether in-memory fallbacks are acceptable.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func (c *Config) normalize() {
	c.Env = normalizeEnv(c.Env)
	c.Objects.Type = normalizeStoreType(c.Objects.Type)
	c.Storage.Driver = normalizeDriver(c.Storage)
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

// normalizeDriver picks mongo or postgres from the configured URLs when no driver is set.
func normalizeDriver(s StorageConfig) string {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case "mongo", "mongodb":
		return "mongo"
	case "postgres", "pg", "postgresql":
		return "postgres"
	case "memory":
		return "memory"
	}
	switch {
	case s.MongoURL != "":
		return "mongo"
	case s.DatabaseURL != "":
		return "postgres"
	default:
		return "memory"
	}
}
