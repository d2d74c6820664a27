// @title                       User Management API
// @version                     1.0
// @description                 Role based user management: authentication, account lifecycle and self-service profiles.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/staffhub/user-management/internal/api"
	"github.com/staffhub/user-management/internal/api/handler"
	"github.com/staffhub/user-management/internal/core/service"
	"github.com/staffhub/user-management/internal/infrastructure/db/mongo"
	"github.com/staffhub/user-management/internal/infrastructure/db/redis"
	"github.com/staffhub/user-management/internal/infrastructure/queue"
	"github.com/staffhub/user-management/internal/infrastructure/security"
	"github.com/staffhub/user-management/internal/infrastructure/storage/objstore"
	"github.com/staffhub/user-management/internal/pkg/config"
	"github.com/staffhub/user-management/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "user-management",
	})
	log.Info().Str("env", cfg.Env).Msg("starting user management api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Storage ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	files, err := objstore.NewFileStore(objstore.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
		PublicURL: cfg.MinIO.PublicURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create file store")
	}
	if err := files.EnsureBucket(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare image bucket")
	}

	accounts := mongo.NewAccountRepository(db)
	if err := accounts.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create account indexes")
	}

	// --- Services ---
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.TokenTTL)
	identities := redis.NewIdentityCache(rdb, cfg.Redis.IdentityTTL, logger.Component("identity_cache"))

	cleanup := queue.NewDispatcher(cfg.Cleanup.Workers, files, logger.Component("image_cleanup"))
	cleanup.Start(ctx)

	authService := service.NewAuthService(accounts, hasher, signer, identities, logger.Component("auth"))
	accountService := service.NewAccountService(accounts, hasher, identities, files, cleanup, logger.Component("accounts"))

	router := api.NewRouter(api.RouterConfig{
		Log:            log,
		AuthService:    authService,
		AccountService: accountService,
		Checks: map[string]handler.DependencyCheck{
			"mongo":   mongo.Ping(db),
			"redis":   redis.Ping(rdb),
			"storage": files.Ping(),
		},
		AllowBootstrap: cfg.AllowSuperAdminBootstrap,
		MaxImageBytes:  cfg.MinIO.MaxImageBytes,
	})
	if !cfg.AllowSuperAdminBootstrap {
		log.Info().Msg("super admin bootstrap route disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
		cancel()
	}()

	log.Info().Str("addr", srv.Addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}
