// Command api serves the developer directory HTTP API.
//
// @title                       Developer Directory API
// @version                     1.0
// @description                 User registration, token authentication and developer profiles.
// @BasePath                    /
// @securityDefinitions.apikey  TokenAuth
// @in                          header
// @name                        x-auth-token
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/devconnector/directory-api/internal/api"
	"github.com/devconnector/directory-api/internal/core/service"
	"github.com/devconnector/directory-api/internal/infrastructure/db/mongo"
	"github.com/devconnector/directory-api/internal/infrastructure/db/redis"
	"github.com/devconnector/directory-api/internal/infrastructure/http/handlers"
	"github.com/devconnector/directory-api/internal/infrastructure/queue"
	"github.com/devconnector/directory-api/internal/infrastructure/security"
	"github.com/devconnector/directory-api/internal/pkg/config"
	"github.com/devconnector/directory-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log := logger.Get()
		log.Fatal().Err(err).Msg("directory api stopped")
	}
}

func run() error {
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "directory-api"})
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "directory-api",
	})
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("failed to read .env file")
	}

	// --- Storage ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer disconnect(log, "mongodb", func(ctx context.Context) error { return mongoClient.Disconnect(ctx) })

	users := mongo.NewUserRepository(db)
	profiles := mongo.NewProfileRepository(db)
	if err := mongo.EnsureIndexes(ctx, users, profiles); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer disconnect(log, "redis", func(context.Context) error { return rdb.Close() })

	// --- Security ---
	// Workers outlive the signal so in-flight requests can finish hashing
	// while the server drains.
	poolCtx, stopPool := context.WithCancel(context.Background())
	defer stopPool()
	pool := queue.NewPool(cfg.Auth.HashWorkers, log)
	pool.Start(poolCtx)

	hasher, err := security.NewBcryptHasher(cfg.Auth.BcryptCost, pool)
	if err != nil {
		return err
	}
	tokens, err := security.NewTokenManager(security.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.JWTIssuer,
		TTL:    cfg.Auth.TokenTTL,
	}, log)
	if err != nil {
		return err
	}

	// --- Services ---
	authService, err := service.NewAuthService(ctx, users, hasher, tokens, log)
	if err != nil {
		return err
	}
	profileService := service.NewProfileService(profiles, users, redis.NewProfileCache(rdb, cfg.Redis.ProfileCacheTTL), log)

	e := api.NewRouter(api.Deps{
		Log:            log,
		AuthService:    authService,
		ProfileService: profileService,
		Tokens:         tokens,
		Health:         []handlers.Dependency{handlers.MongoDependency(db), handlers.RedisDependency(rdb)},
		MetricsEnabled: cfg.MetricsEnabled,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Int("hash_workers", pool.Workers()).
			Int("bcrypt_cost", hasher.Cost()).
			Dur("token_ttl", tokens.TTL()).
			Msg("directory api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

func disconnect(log zerolog.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn().Err(err).Str("dependency", name).Msg("disconnect failed")
	}
}
