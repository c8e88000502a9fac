package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/drafts"
	"resume-builder/internal/exports"
	"resume-builder/internal/resumes"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/cache"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/fieldcrypt"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/docstore"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/render"
)

// Secrets used only when a dev-like environment leaves them unset.
const (
	devFieldSecret = "dev-field-encryption-secret"
	devJWTSecret   = "dev-jwt-secret"
)

// App holds shared dependencies and the assembled router.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Mongo   *docstore.Mongo
	Cache   cache.Store
	Store   object.Store
	Tokens  *auth.TokenManager
	Health  *health.Service
	Repo    resumes.Repo
	Resumes *resumes.Service
	Exports *exports.Service
	Drafts  *drafts.Service
}

// Build prepares every dependency and wires the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg, Health: health.NewService()}

	if err := app.buildRepo(ctx); err != nil {
		return nil, err
	}
	if err := app.buildStore(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.buildCache(ctx)

	codec, err := fieldcrypt.NewCodec(secretOrDev(cfg, cfg.Security.FieldEncryptionSecret, devFieldSecret, "FIELD_ENCRYPTION_SECRET"))
	if err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("field encryption: %w", err)
	}
	app.Tokens, err = auth.NewTokenManager(secretOrDev(cfg, cfg.Security.JWTSecret, devJWTSecret, "JWT_SECRET"), cfg.Security.TokenTTL)
	if err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("jwt: %w", err)
	}

	app.Resumes = resumes.NewService(app.Repo, codec, app.Cache, app.Store)
	app.Resumes.CacheTTL = cfg.Cache.ResumeTTL

	photos := render.NewPhotoFetcher(app.Store, cfg.Export.PhotoTimeout, cfg.Export.PhotoMaxBytes)
	app.Exports = exports.NewService(app.Resumes, photos, cfg.Export.Timeout)
	app.Exports.Verify = cfg.Export.VerifyOutput

	app.Drafts = drafts.NewService(app.Cache, codec, app.Resumes, cfg.Cache.DraftTTL)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Verifier: app.Tokens,
		Health:   app.Health,
		Limiter:  middleware.NewRateLimiter(nil),
		Handlers: []server.RouteRegistrar{
			resumes.NewHandler(app.Resumes),
			exports.NewHandler(app.Exports),
			drafts.NewHandler(app.Drafts),
		},
	})
	telemetry.Info("bootstrap.ready", map[string]any{
		"env":           cfg.Env,
		"storage":       cfg.Storage.Driver,
		"object_store":  cfg.Objects.Type,
		"durable_cache": cfg.Cache.RedisURL != "",
	})
	return app, nil
}

// Close releases connections opened by Build.
func (a *App) Close(ctx context.Context) {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	if a.Mongo != nil {
		_ = a.Mongo.Close(ctx)
	}
	if a.DB != nil && db.DetectProfile() != db.ProfileLambda {
		_ = a.DB.Close()
	}
}

func (a *App) buildRepo(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Storage.Driver {
	case "mongo":
		m, err := docstore.Connect(ctx, cfg.Storage.MongoURL)
		if err != nil {
			return a.fallBack("mongo connect failed", err)
		}
		repo, err := resumes.NewMongoRepo(ctx, m.Collection(resumes.CollectionName))
		if err != nil {
			_ = m.Close(ctx)
			return a.fallBack("mongo indexes failed", err)
		}
		a.Mongo, a.Repo = m, repo
		a.Health.Register("mongo", m.Ping)
	case "postgres":
		sqlDB, err := connectDB(ctx, cfg.Storage)
		if err != nil {
			return a.fallBack("database connect failed", err)
		}
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return a.fallBack("migrations failed", err)
		}
		a.DB, a.Repo = sqlDB, &resumes.PGRepo{DB: sqlDB}
		a.Health.Register("postgres", sqlDB.PingContext)
	default:
		telemetry.Info("bootstrap.memory_repo", nil)
		a.Repo = resumes.NewMemoryRepo()
	}
	return nil
}

// fallBack swaps in the memory repository in dev-like environments and fails otherwise.
func (a *App) fallBack(reason string, err error) error {
	if !a.Config.IsDevLike() {
		return fmt.Errorf("%s: %w", reason, err)
	}
	telemetry.Warn("bootstrap.repo_fallback", map[string]any{"reason": reason, "error": err})
	a.Repo = resumes.NewMemoryRepo()
	return nil
}

func connectDB(ctx context.Context, cfg config.StorageConfig) (*sql.DB, error) {
	if profile := db.DetectProfile(); profile == db.ProfileLambda {
		return db.Shared(ctx, cfg, profile)
	}
	return db.Open(ctx, cfg, db.ProfileServer)
}

func (a *App) buildStore(ctx context.Context) error {
	cfg := a.Config.Objects
	switch cfg.Type {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return fmt.Errorf("s3 store: %w", err)
		}
		a.Store = store
	default:
		a.Store = localstore.New(cfg.LocalDir)
	}
	return nil
}

// buildCache always yields a usable store: Redis when reachable, memory otherwise.
func (a *App) buildCache(ctx context.Context) {
	cfg := a.Config.Cache
	mem := cache.NewMemoryStore(cfg.MemoryCapacity, cfg.SweepInterval)
	var durable cache.Store
	if strings.TrimSpace(cfg.RedisURL) != "" {
		rs, err := cache.NewRedisStore(ctx, cfg.RedisURL, cfg.Prefix)
		if err != nil {
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"error": err})
		} else {
			durable = rs
			a.Health.Register("redis", rs.Ping)
		}
	}
	a.Cache = cache.NewFallbackStore(durable, mem)
}

func secretOrDev(cfg config.Config, value, dev, name string) string {
	if strings.TrimSpace(value) != "" || !cfg.IsDevLike() {
		return value
	}
	telemetry.Warn("bootstrap.dev_secret", map[string]any{"name": name})
	return dev
}
