package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/ecomstack/backend/internal/auth"
	"github.com/ecomstack/backend/internal/config"
	"github.com/ecomstack/backend/internal/logger"
	"github.com/ecomstack/backend/internal/store"
	"github.com/ecomstack/backend/internal/upload"
)

const connectTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "ecommerce-api", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
	log.Info("bye")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	db, closeDB, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	sessions, closeSessions, err := openSessions(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSessions()

	files, err := openFiles(ctx, cfg, log)
	if err != nil {
		return err
	}

	handler := newRouter(routerDeps{
		store:          db,
		files:          files,
		tokens:         auth.NewTokens(cfg.TokenSecret, cfg.TokenTTL, sessions),
		log:            log,
		publicBaseURL:  cfg.PublicBaseURL,
		maxUploadBytes: cfg.MaxUploadBytes,
		allowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server starting", "addr", srv.Addr, "store", cfg.StoreDriver, "files", cfg.FileStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (backend, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		disconnect := func() { client.Disconnect(context.Background()) }
		if err := client.Ping(ctx, nil); err != nil {
			disconnect()
			return nil, nil, fmt.Errorf("mongo ping: %w", err)
		}
		s := store.NewMongoStore(client.Database(cfg.MongoDB))
		if err := s.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, nil, err
		}
		log.Info("mongo connected", "db", cfg.MongoDB)
		return s, disconnect, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres ping: %w", err)
		}
		s := store.NewPostgresStore(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("postgres connected")
		return s, pool.Close, nil

	default:
		log.Warn("using in-memory store; data is lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}
}

func openSessions(ctx context.Context, cfg *config.Config, log *slog.Logger) (auth.Sessions, func(), error) {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set; token revocation is kept in process")
		return auth.NewDenylist(cfg.TokenTTL), func() {}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	rdb, err := store.NewRedisClient(ctx, store.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info("redis connected", "db", cfg.RedisDB)
	return auth.NewSessionStore(rdb, cfg.TokenTTL), func() { rdb.Close() }, nil
}

func openFiles(ctx context.Context, cfg *config.Config, log *slog.Logger) (upload.FileStore, error) {
	if cfg.FileStore == config.FileStoreMinio {
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		s, err := store.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return nil, err
		}
		log.Info("minio connected", "bucket", cfg.MinioBucket)
		return s, nil
	}
	s, err := store.NewDiskStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	log.Info("storing uploads on disk", "dir", cfg.UploadDir)
	return s, nil
}
