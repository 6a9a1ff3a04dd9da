// @title           VideoTube Account API
// @version         1.0
// @description     User accounts, sessions, channel profiles and watch history.
// @BasePath        /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in              header
// @name            Authorization
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
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/videotube/account-service/docs"
	"github.com/videotube/account-service/internal/api"
	"github.com/videotube/account-service/internal/api/handler"
	"github.com/videotube/account-service/internal/api/metrics"
	"github.com/videotube/account-service/internal/core/service"
	"github.com/videotube/account-service/internal/infrastructure/config"
	"github.com/videotube/account-service/internal/infrastructure/db/mongo"
	"github.com/videotube/account-service/internal/infrastructure/db/redis"
	"github.com/videotube/account-service/internal/infrastructure/http/handlers"
	"github.com/videotube/account-service/internal/infrastructure/queue"
	"github.com/videotube/account-service/internal/infrastructure/storage/s3"
	"github.com/videotube/account-service/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Service: "account-service"})
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "account-service",
	})
	if envErr != nil {
		log.Warn().Err(envErr).Msg(".env not loaded, using process environment")
	}

	// --- MongoDB ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongo.Disconnect(mongoClient); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	users := mongo.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}

	// --- Redis ---
	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Media store ---
	media, err := s3.New(ctx, s3.Config{
		Endpoint:     cfg.S3.Endpoint,
		Region:       cfg.S3.Region,
		AccessKey:    cfg.S3.AccessKey,
		SecretKey:    cfg.S3.SecretKey,
		Bucket:       cfg.S3.Bucket,
		PublicURL:    cfg.S3.PublicURL,
		UsePathStyle: cfg.S3.UsePathStyle,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("media store setup failed")
	}

	// --- Services ---
	tokens := service.NewTokenService(users, service.TokenConfig{
		AccessSecret:  cfg.Auth.AccessTokenSecret,
		AccessTTL:     cfg.Auth.AccessTokenExpiry,
		RefreshSecret: cfg.Auth.RefreshTokenSecret,
		RefreshTTL:    cfg.Auth.RefreshTokenExpiry,
	}, log)
	watchService := service.NewWatchService(
		mongo.NewWatchRepository(db),
		redis.NewDedupChecker(rdb, cfg.Watch.DedupWindow),
		log,
		service.WithDedupRecorder(metrics.WatchDedup{}),
	)

	dispatcher := queue.NewDispatcher(cfg.Watch.Workers, watchService, log)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)

	e := api.NewRouter(api.Deps{
		Auth:     service.NewAuthService(users, tokens, media, log),
		Accounts: service.NewAccountService(users, media, log),
		Profiles: service.NewProfileService(mongo.NewProfileRepository(db)),
		Tokens:   tokens,
		Users:    users,
		Watches:  dispatcher,
		Cookies: handler.CookieConfig{
			Secure:     cfg.Auth.CookieSecure,
			AccessTTL:  cfg.Auth.AccessTokenExpiry,
			RefreshTTL: cfg.Auth.RefreshTokenExpiry,
		},
		UploadDir:  cfg.Upload.Dir,
		BodyLimit:  cfg.Upload.MaxSize,
		CORSOrigin: cfg.CORSOrigin,
		Checks: map[string]handlers.Check{
			"mongodb": handlers.MongoCheck(db),
			"redis":   handlers.RedisCheck(rdb),
			"s3":      media.Ping,
		},
		Metrics: prometheus.DefaultRegisterer,
		Log:     log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("stopped")
}
