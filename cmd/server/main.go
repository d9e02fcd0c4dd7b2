package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/beans/internal/api"
	"github.com/lalith-99/beans/internal/config"
	"github.com/lalith-99/beans/internal/db"
	"github.com/lalith-99/beans/internal/observ"
	"github.com/lalith-99/beans/internal/repository"
	"github.com/lalith-99/beans/internal/repository/file"
	"github.com/lalith-99/beans/internal/repository/postgres"
	"github.com/lalith-99/beans/internal/repository/redis"
	"github.com/lalith-99/beans/internal/scheduler"
	"github.com/lalith-99/beans/internal/service"
	"github.com/lalith-99/beans/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Load config
	//
	// .env is optional. Anything already in the environment wins over it.
	// ---------------------------------------------------------------
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ---------------------------------------------------------------
	// 2. Create logger
	// ---------------------------------------------------------------
	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// ---------------------------------------------------------------
	// 3. Open the snapshot backend
	//
	// The backend only sees whole snapshots; the store above it does
	// not care which one it got.
	// ---------------------------------------------------------------
	repo, health, closeRepo, err := openRepository(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	// ---------------------------------------------------------------
	// 4. Load state and build the services
	// ---------------------------------------------------------------
	st, err := store.Open(context.Background(), repo, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	svc := service.New(st, service.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.TokenTTL}, logger)

	// ---------------------------------------------------------------
	// 5. Start the sweep
	//
	// Standups past their finish time and due "send later" messages are
	// handled here. Reads also catch expired standups lazily, so a slow
	// tick never shows a stale state.
	// ---------------------------------------------------------------
	sched := scheduler.New(cfg.SweepSchedule, svc.Standups, svc.Messages, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	// ---------------------------------------------------------------
	// 6. Set up HTTP server
	// ---------------------------------------------------------------
	gin.SetMode(cfg.GinMode)
	router := api.NewRouter(svc, api.RouterOptions{
		Health:       health,
		AllowOrigins: cfg.CORSAllowedOrigins,
		EnableClear:  cfg.AllowClear,
	}, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting beans",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.StoreDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// ---------------------------------------------------------------
	// 7. Graceful shutdown
	//
	// Stop taking requests first, then let a running sweep finish so
	// its commit is not cut off halfway.
	// ---------------------------------------------------------------
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil {
			sched.Stop(context.Background())
			return fmt.Errorf("http server: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	sched.Stop(ctx)

	logger.Info("server exited")
	return nil
}

// openRepository picks the snapshot backend named by STORE_DRIVER. health is
// nil for backends with nothing to ping. closeFn is always safe to call.
func openRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repo repository.SnapshotRepository, health api.HealthChecker, closeFn func(), err error) {
	noop := func() {}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		database, err := db.New(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns), logger)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("connect to database: %w", err)
		}
		if cfg.DBMigrate {
			if err := database.Migrate(); err != nil {
				database.Close()
				return nil, nil, noop, fmt.Errorf("migrate database: %w", err)
			}
		}
		return postgres.NewSnapshotStore(database.Pool()), database, database.Close, nil

	case config.DriverRedis:
		rdb, err := db.NewRedis(ctx, cfg.RedisURL, logger)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("connect to redis: %w", err)
		}
		return redis.NewSnapshotStore(rdb.Client(), cfg.RedisKey), rdb, rdb.Close, nil

	case config.DriverMemory:
		logger.Warn("using the memory store, nothing will survive a restart")
		return repository.Memory{}, nil, noop, nil

	default:
		return file.NewSnapshotStore(cfg.DataFile), nil, noop, nil
	}
}
