package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/telemetry"
)

// Profile selects pool defaults for the kind of process opening the database.
type Profile string

const (
	ProfileServer  Profile = "server"
	ProfileLambda  Profile = "lambda"
	ProfileMigrate Profile = "migrate"
)

// ErrNoDatabaseURL is returned when the postgres driver is selected without a URL.
var ErrNoDatabaseURL = errors.New("DATABASE_URL is required")

// Pool is the resolved connection pool shape.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var profiles = map[Profile]Pool{
	// One warm connection per concurrent invocation is plenty.
	ProfileLambda:  {MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxLifetime: 15 * time.Minute, ConnMaxIdleTime: 30 * time.Second, PingTimeout: 3 * time.Second},
	ProfileServer:  {MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Hour, ConnMaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second},
	ProfileMigrate: {MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxLifetime: time.Hour, ConnMaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second},
}

var (
	openDB = sql.Open

	sharedMu sync.Mutex
	sharedDB *sql.DB
)

// DetectProfile returns ProfileLambda inside AWS Lambda and ProfileServer elsewhere.
func DetectProfile() Profile {
	if strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != "" {
		return ProfileLambda
	}
	return ProfileServer
}

// PoolFor merges configured overrides onto the profile defaults.
func PoolFor(profile Profile, override config.PoolConfig) Pool {
	p, ok := profiles[profile]
	if !ok {
		p = profiles[ProfileServer]
	}
	if override.MaxOpenConns > 0 {
		p.MaxOpenConns = override.MaxOpenConns
	}
	if override.MaxIdleConns > 0 {
		p.MaxIdleConns = override.MaxIdleConns
	}
	if override.ConnMaxLifetime > 0 {
		p.ConnMaxLifetime = override.ConnMaxLifetime
	}
	if override.ConnMaxIdleTime > 0 {
		p.ConnMaxIdleTime = override.ConnMaxIdleTime
	}
	if override.PingTimeout > 0 {
		p.PingTimeout = override.PingTimeout
	}
	if p.MaxIdleConns > p.MaxOpenConns {
		p.MaxIdleConns = p.MaxOpenConns
	}
	return p
}

// Open connects to the resume database described by cfg and verifies it answers a ping.
func Open(ctx context.Context, cfg config.StorageConfig, profile Profile) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, ErrNoDatabaseURL
	}
	pool := PoolFor(profile, cfg.Pool)

	database, err := openDB("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	database.SetMaxOpenConns(pool.MaxOpenConns)
	database.SetMaxIdleConns(pool.MaxIdleConns)
	database.SetConnMaxLifetime(pool.ConnMaxLifetime)
	database.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, pool.PingTimeout)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	telemetry.Info("db.pool_ready", map[string]any{
		"profile":  string(profile),
		"max_open": pool.MaxOpenConns,
		"max_idle": pool.MaxIdleConns,
	})
	return database, nil
}

// Shared returns one database per process so warm Lambda invocations reuse their
// pool. A failed open is not remembered; the next call tries again.
func Shared(ctx context.Context, cfg config.StorageConfig, profile Profile) (*sql.DB, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedDB != nil {
		return sharedDB, nil
	}
	database, err := Open(ctx, cfg, profile)
	if err != nil {
		return nil, err
	}
	sharedDB = database
	return sharedDB, nil
}
