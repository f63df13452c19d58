// Package app provides the main application lifecycle management for the storefront service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/nutesshop/storefront/internal/api"
	"github.com/nutesshop/storefront/internal/cache"
	"github.com/nutesshop/storefront/internal/config"
	"github.com/nutesshop/storefront/internal/content"
	"github.com/nutesshop/storefront/internal/database"
	"github.com/nutesshop/storefront/internal/logger"
	"github.com/nutesshop/storefront/internal/metrics"
	"github.com/nutesshop/storefront/internal/orders"
	"github.com/nutesshop/storefront/internal/strapi"
)

const (
	// DefaultShutdownTimeout is the default timeout for graceful shutdown
	DefaultShutdownTimeout = 30 * time.Second
	// StartupResyncTimeout bounds the initial content refresh
	StartupResyncTimeout = 60 * time.Second
)

// App represents the storefront application with all its dependencies
type App struct {
	config      *config.Config
	logger      logger.Logger
	repository  *database.Repository
	redisClient redis.UniversalClient
	content     *content.Service
	httpServer  *http.Server
	version     string
}

// Options contains configuration for creating a new App
type Options struct {
	ConfigPath    string
	MigrationsDir string
	Version       string
}

// New creates a new App instance with all dependencies initialized
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	appLogger, err := logger.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	appLogger = appLogger.With(
		logger.String("service", "storefront"),
		logger.String("version", opts.Version),
	)

	db, err := database.NewPostgresConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		_ = appLogger.Sync()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	migrationsDir := opts.MigrationsDir
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	migrator := database.NewMigrator(db, migrationsDir, appLogger)
	if migrateErr := migrator.Apply(context.Background()); migrateErr != nil {
		_ = db.Close()
		_ = appLogger.Sync()
		return nil, fmt.Errorf("apply migrations: %w", migrateErr)
	}

	redisClient, err := cache.NewRedisClient(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		_ = db.Close()
		_ = appLogger.Sync()
		return nil, fmt.Errorf("connect to Redis: %w", err)
	}

	origin, err := strapi.NewClient(cfg.Strapi.BaseURL, cfg.Strapi.Token, cfg.Strapi.Timeout, appLogger)
	if err != nil {
		_ = db.Close()
		_ = redisClient.Close()
		_ = appLogger.Sync()
		return nil, fmt.Errorf("create origin client: %w", err)
	}

	registry := prometheus.NewRegistry()
	appMetrics := metrics.New(registry)

	repository := database.NewRepository(db)
	hotCache := cache.New(redisClient, cfg.Content.CacheTTL, appLogger)
	contentService := content.NewService(origin, repository, hotCache, appMetrics, appLogger)
	orderService := orders.NewService(contentService, repository, appLogger)

	handlers := api.NewHandlers(contentService, orderService, repository, appLogger)
	router := api.NewRouter(handlers, appLogger, api.RouterOptions{
		Debug:       cfg.Debug,
		CORSOrigins: cfg.Server.CORSOrigins,
		Registry:    registry,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &App{
		config:      cfg,
		logger:      appLogger,
		repository:  repository,
		redisClient: redisClient,
		content:     contentService,
		httpServer:  httpServer,
		version:     opts.Version,
	}, nil
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	// Warm durable and hot tiers before serving traffic. Failures are
	// logged and tolerated; reads fall back to origin fetches.
	go func() {
		resyncCtx, cancel := context.WithTimeout(ctx, StartupResyncTimeout)
		defer cancel()
		if err := a.content.Resync(resyncCtx); err != nil {
			a.logger.Warn("Startup content resync failed", logger.Error(err))
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server",
			logger.String("address", a.config.Server.Address),
			logger.Bool("debug", a.config.Debug),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	return a.waitForShutdown(ctx, serverErr)
}

// waitForShutdown handles graceful shutdown
func (a *App) waitForShutdown(ctx context.Context, serverErr chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("Shutting down gracefully", logger.String("signal", sig.String()))
		a.shutdownHTTPServer()
		return nil

	case <-ctx.Done():
		a.shutdownHTTPServer()
		return ctx.Err()

	case err := <-serverErr:
		if err != nil {
			a.logger.Error("Server error", logger.Error(err))
		}
		return err
	}
}

// shutdownHTTPServer gracefully shuts down the HTTP server
func (a *App) shutdownHTTPServer() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown error", logger.Error(err))
	} else {
		a.logger.Info("HTTP server stopped")
	}
}

// Close cleans up resources
func (a *App) Close() error {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("Failed to close Redis client", logger.Error(err))
		}
	}
	if a.repository != nil {
		if err := a.repository.Close(); err != nil {
			a.logger.Warn("Failed to close database", logger.Error(err))
		}
	}
	return a.logger.Sync()
}

// Logger returns the application logger
func (a *App) Logger() logger.Logger {
	return a.logger
}
