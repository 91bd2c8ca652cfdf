package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"

	"github.com/peliculas/catalog-api/internal/api"
	"github.com/peliculas/catalog-api/internal/api/handler"
	"github.com/peliculas/catalog-api/internal/api/metrics"
	"github.com/peliculas/catalog-api/internal/core/ports"
	"github.com/peliculas/catalog-api/internal/core/service"
	"github.com/peliculas/catalog-api/internal/infrastructure/auth"
	mongodb "github.com/peliculas/catalog-api/internal/infrastructure/db/mongo"
	redisdb "github.com/peliculas/catalog-api/internal/infrastructure/db/redis"
	"github.com/peliculas/catalog-api/internal/infrastructure/queue"
	"github.com/peliculas/catalog-api/internal/infrastructure/storage"
	"github.com/peliculas/catalog-api/internal/pkg/config"
	"github.com/peliculas/catalog-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx)
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "catalog-api",
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("error disconnecting mongodb")
		}
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	probes := map[string]handler.Pinger{"mongodb": handler.MongoPinger(db)}

	// Redis is optional; without it the role bootstrap is guarded in-process
	// and by the unique role index only.
	var bootstrapLock ports.BootstrapLock
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if rdb != nil {
		defer rdb.Close()
		bootstrapLock = redisdb.NewBootstrapLock(rdb)
		probes["redis"] = handler.RedisPinger(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, role bootstrap lock is process-local")
	}

	files, err := newFileStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("failed to initialise image storage")
	}
	files = metrics.InstrumentFileStore(files)

	issuer, err := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid token configuration")
	}

	// The dispatcher outlives the signal: in-flight writes must finish while
	// the server drains.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()
	writes := queue.NewDispatcher(cfg.WriteWorkers, logger.With("dispatcher"))
	writes.Start(dispatchCtx)

	userRepo := mongodb.NewUserRepository(db, auth.NewBcryptHasher(bcrypt.DefaultCost), auth.DefaultPasswordPolicy())
	movieRepo := mongodb.NewMovieRepository(db)
	categoryRepo := mongodb.NewCategoryRepository(db)

	bootstrapper := service.NewRoleBootstrapper(userRepo, bootstrapLock, logger.With("roles"))
	authService := service.NewAuthService(userRepo, issuer, bootstrapper, logger.With("auth"))
	assets := service.NewAssetReconciler(files, logger.With("assets"))
	movieService := service.NewMovieService(movieRepo, categoryRepo, assets, writes, logger.With("movies"))
	categoryService := service.NewCategoryService(categoryRepo, logger.With("categories"))

	e := api.NewRouter(api.Dependencies{
		Auth:       authService,
		Movies:     movieService,
		Categories: categoryService,
		Images:     files,
		Tokens:     issuer,
		Probes:     probes,
		PathBase:   cfg.PathBase,
		Log:        log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.Storage.Backend).Msg("catalog api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	stopDispatch()
}

func newFileStore(ctx context.Context, cfg *config.Config) (ports.FileStore, error) {
	if cfg.Storage.Backend == "s3" {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Region:          cfg.Storage.S3Region,
			Endpoint:        cfg.Storage.S3Endpoint,
			AccessKeyID:     cfg.Storage.S3AccessKey,
			SecretAccessKey: cfg.Storage.S3SecretKey,
			Bucket:          cfg.Storage.S3Bucket,
			Prefix:          cfg.Storage.S3Prefix,
			DisableSSL:      cfg.Storage.S3DisableSSL,
		})
		if err != nil {
			return nil, err
		}
		return s3Store, nil
	}
	local, err := storage.NewLocalStore(afero.NewOsFs(), cfg.Storage.Root)
	if err != nil {
		return nil, err
	}
	return local, nil
}
