// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turbokuzmich/yourcosmetics/internal/application/container"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/caching/cleanup"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/email"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/persistence/database"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/storage"
	"github.com/turbokuzmich/yourcosmetics/internal/presentation/http/server"
	"github.com/turbokuzmich/yourcosmetics/pkg/config"
)

// Initialize performs the complete startup sequence and blocks until a
// shutdown signal arrives.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `
  ▄▄  ▄▄ ▄▄▄▄▄ ▄▄ ▄▄ ▄▄▄▄    ▄▄▄▄ ▄▄▄▄▄  ▄▄▄▄ ▄▄   ▄▄ ▄▄▄▄▄ ▄▄▄▄▄▄ ▄▄  ▄▄▄▄  ▄▄▄▄
   ▀██▀  ██ ██ ██ ██ ██▄█▀   ██    ██ ██ ▀▀▄▄  ██▀▄▀██ ██ ██   ██   ██ ██    ▀▀▄▄
    ██   ██▄██ ██▄██ ██ ▀▄   ▀▀▀▀ ██▄██ ▄▄▄▀  ██   ██ ██▄██   ██   ██ ▀▀▀▀ ▄▄▄▀
` + "\033[97m" + `
  lead intake
` + "\033[0m")

	// Step 1: Logging
	logger, err := logging.NewChanneledLogger(loggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()
	logger.Startup().Info("Channeled logging initialized", "level", config.LogLevel, "json", config.LogJSON)

	// Step 2: Keyed store
	logger.Startup().Info("Opening keyed store...", "backend", config.StoreBackend)
	startStoreTime := time.Now()

	store, err := storage.Open(ctx, storage.Options{
		Backend:          config.StoreBackend,
		RedisURL:         config.RedisURL,
		SQLitePath:       config.SQLitePath,
		TursoDatabaseURL: config.TursoDatabaseURL,
		TursoAuthToken:   config.TursoAuthToken,
		Pool: database.PoolConfig{
			MaxOpenConns: config.DBMaxOpenConns,
			MaxIdleConns: config.DBMaxIdleConns,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", config.StoreBackend, err)
	}
	logger.Startup().Info("Keyed store ready", "backend", store.Name(), "duration", time.Since(startStoreTime))

	// Step 3: Notifier
	notifier, err := email.New(email.Config{
		Provider: config.EmailProvider,
		SMTP: email.SMTPConfig{
			Host:     config.EmailHost,
			Port:     config.EmailPort,
			Username: config.EmailUser,
			Password: config.EmailPass,
		},
		ResendAPIKey: config.ResendAPIKey,
	}, logger)
	if err != nil {
		store.Close()
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}
	if len(config.EmailTo) == 0 {
		logger.Startup().Warn("EMAIL_TO is empty, accepted leads will not be delivered")
	}
	logger.Startup().Info("Notifier ready", "provider", notifier.Name(), "recipients", len(config.EmailTo))

	// Step 4: Dependency injection container
	appContainer := container.NewContainer(container.DefaultSettings(), store, notifier, logger)
	logger.Startup().Info("Dependency injection container created with singleton services",
		"allowedOrigins", config.AllowedOrigins,
		"rateLimit", fmt.Sprintf("%d/%s", config.RateLimitMax, config.RateLimitWindow),
		"csrfTTL", config.CSRFTokenTTL)

	// Step 5: Background sweep of expired CSRF and rate limit records
	cleanupWorker := cleanup.NewWorker(cleanup.NewConfig(), logger, store)
	go cleanupWorker.Start(ctx)
	logger.Startup().Info("Background cleanup worker started", "interval", config.StoreSweepInterval)

	// Step 6: HTTP server
	httpServer := server.New(config.Port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+config.Port)
		serverErr <- httpServer.Start()
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", config.Port)

	var runErr error
	select {
	case <-gracefulShutdown:
		logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")
	case runErr = <-serverErr:
		if runErr != nil {
			logger.System().Error("HTTP server failed", "error", runErr.Error())
		}
	}

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing keyed store...")
	if err := store.Close(); err != nil {
		logger.Shutdown().Error("Error closing keyed store", "error", err.Error())
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return runErr
}

func loggerConfig() *logging.LoggerConfig {
	cfg := logging.DefaultLoggerConfig()
	cfg.DefaultLevel = logging.ParseLevel(config.LogLevel)
	cfg.JSONFormat = config.LogJSON
	cfg.OutputToFile = config.LogToFile
	cfg.LogDirectory = config.LogDir
	return cfg
}

// setupLogging configures application logging
func setupLogging() {
	if config.GinRelease {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
