package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"taskboard/tasks/adapters/auth"
	"taskboard/tasks/adapters/memory"
	"taskboard/tasks/adapters/mongodb"
	"taskboard/tasks/adapters/postgres"
	"taskboard/tasks/adapters/rest/handlers"
	"taskboard/tasks/adapters/rest/middleware"
	"taskboard/tasks/config"
	"taskboard/tasks/core"
)

type storage interface {
	core.DB
	io.Closer
}

func main() {
	// config
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "taskboard server configuration file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	// logger
	log := mustMakeLogger(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	log.Info("starting taskboard server", "storage", cfg.Storage.Driver)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// database adapter
	db, err := openStorage(ctx, cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close storage", "error", err)
		}
	}()

	// services
	tokens := auth.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	tasksService := core.NewService(log, db)
	usersService := core.NewUserService(log, db, auth.NewBcrypt(cfg.Auth.BcryptCost), tokens, cfg.Auth.AllowAdminRegistration)

	if cfg.Auth.AdminEmail != "" {
		admin, created, err := usersService.EnsureAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			return fmt.Errorf("failed to bootstrap admin: %w", err)
		}
		if created {
			log.Info("bootstrap admin created", "user_id", admin.ID, "email", admin.Email)
		}
	}

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg)

	// http
	mux := http.NewServeMux()
	handlers.Register(mux, log, handlers.Deps{
		Tasks:   tasksService,
		Users:   usersService,
		Pingers: map[string]core.Pinger{"storage": db},
		Auth:    middleware.Auth(log, tokens),
		Metrics: metrics.Handler(),
	}, cfg.HTTP.Timeout)

	handler := middleware.Chain(middleware.RecordRoute(mux),
		middleware.Logging(log),
		metrics.Middleware,
		middleware.RequestIDMiddleware,
		middleware.CORS(middleware.CORSOptions{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: cfg.CORS.AllowedMethods,
			AllowedHeaders: cfg.CORS.AllowedHeaders,
			MaxAge:         cfg.CORS.MaxAge,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodyBytes),
	)

	server := http.Server{
		Addr:              cfg.HTTP.Address,
		ReadHeaderTimeout: cfg.HTTP.Timeout,
		Handler:           handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("taskboard http server is running", "address", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown: %w", err)
	}
	return nil
}

func openStorage(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (storage, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		db, err := mongodb.New(ctx, log, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureIndexes(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil

	case config.DriverPostgres:
		db, err := postgres.New(log, cfg.PostgresAddress)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}
		return db, nil

	case config.DriverMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func mustMakeLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
