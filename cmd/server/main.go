package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/inotebook/backend/internal/api"
	"github.com/inotebook/backend/internal/core/ports"
	"github.com/inotebook/backend/internal/core/service"
	"github.com/inotebook/backend/internal/infrastructure/db/mongo"
	"github.com/inotebook/backend/internal/infrastructure/db/redis"
	"github.com/inotebook/backend/internal/infrastructure/queue"
	"github.com/inotebook/backend/internal/infrastructure/security"
	"github.com/inotebook/backend/internal/pkg/config"
	"github.com/inotebook/backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{}).Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "inotebook",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	var (
		rdb      *goredis.Client
		throttle ports.LoginThrottle
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		throttle = redis.NewLoginThrottle(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockoutWindow)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, login throttling disabled")
	}

	dispatcher := queue.NewDispatcher(cfg.Auth.HashWorkers, logger.Component("hash_pool"))
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	hasher, err := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(
		mongo.NewUserRepository(db),
		security.NewPooledHasher(hasher, dispatcher),
		tokens,
		logger.Component("auth"),
		service.AuthOptions{Throttle: throttle, Timeout: cfg.Auth.OperationTimeout},
	)
	noteService := service.NewNoteService(mongo.NewNoteRepository(db), logger.Component("notes"), cfg.Auth.OperationTimeout)

	e := api.NewRouter(api.Deps{
		Auth:           authService,
		Notes:          noteService,
		Tokens:         tokens,
		Mongo:          db,
		Redis:          rdb,
		Log:            log,
		RequestTimeout: cfg.RequestTimeout,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
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
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
