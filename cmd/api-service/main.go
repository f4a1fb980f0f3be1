package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/api/handler"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/api/router"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/browser"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/config"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
	genstorage "github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/storage"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/prompts"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/shared/logger"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/shared/postgresql"
	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/shared/rabbitmq"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("BOT_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting bot service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// Optional PostgreSQL result sink
	var (
		dbClient *postgresql.Client
		store    *genstorage.Storage
	)
	if cfg.Database.Enabled {
		dbClient, err = initPostgreSQL(&cfg.Database, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		store = genstorage.NewStorage(dbClient.GetDB(), appLogger.Logger)
		appLogger.Info("Database connection established")
	} else {
		appLogger.Warn("Database disabled, outcomes will not be persisted")
	}

	// Progress event channel with an optional RabbitMQ fan-out
	notifier := generation.NewNotifier(cfg.Generation.EventBuffer, appLogger.Logger)

	var rabbitClient *rabbitmq.Client
	if cfg.RabbitMQ.Enabled {
		rabbitClient, err = initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		appLogger.Info("RabbitMQ connection established")

		notifier.Subscribe(func(ev generation.ProgressEvent) error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return rabbitClient.PublishJSON(ctx, ev)
		})
	}

	// Core registries
	batches := generation.NewRegistry(appLogger.Logger)
	sessions := browser.NewRegistry(browser.DetachedLauncher{}, appLogger.Logger)
	promptLoader := prompts.NewLoader(cfg.Prompts.Dir, appLogger.Logger)

	executors := generation.NewExecutorRegistry()
	executors.Register("dryrun", dryRunExecutor{})

	deps := &handler.Dependencies{
		Logger:    appLogger.Logger,
		Batches:   batches,
		Executors: executors,
		Sessions:  sessions,
		Prompts:   promptLoader,
		Notifier:  notifier,
		Storage:   store,
		Defaults: generation.BatchConfig{
			MaxWorkers:      cfg.Generation.MaxWorkers,
			JobTimeout:      cfg.Generation.JobTimeout,
			RetryAttempts:   cfg.Generation.RetryAttempts,
			SubmissionDelay: cfg.Generation.SubmissionDelay,
		},
	}

	// Initialize router
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.SetupRouter(deps)

	// Create HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed to start",
				slog.Any("error", err),
			)
			os.Exit(1)
		}
	}()

	appLogger.Info("Bot service is running",
		slog.String("address", addr),
	)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	// Drain buffered progress events, then close external clients
	notifier.Close()
	if rabbitClient != nil {
		rabbitClient.Close()
	}
	if dbClient != nil {
		dbClient.Close()
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initRabbitMQ initializes the RabbitMQ progress event publisher
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	rabbitConfig := &rabbitmq.Config{
		Host:          cfg.Host,
		Port:          cfg.Port,
		User:          cfg.User,
		Password:      cfg.Password,
		VHost:         cfg.VHost,
		Exchange:      cfg.Exchange,
		ExchangeType:  cfg.ExchangeType,
		RoutingKey:    cfg.RoutingKey,
		RetryAttempts: cfg.RetryAttempts,
		RetryInterval: cfg.RetryInterval,
		Heartbeat:     cfg.Heartbeat,
	}

	return rabbitmq.NewClient(rabbitConfig, logger)
}

// dryRunExecutor smoke-tests the scheduling pipeline without driving a
// browser. The "duration_ms" job parameter controls how long it pretends
// to work.
type dryRunExecutor struct{}

func (dryRunExecutor) Generate(ctx context.Context, job *domain.Job, res domain.Resource) (*domain.Outcome, error) {
	wait := 500 * time.Millisecond
	if v, ok := job.Parameters["duration_ms"]; ok {
		if d, err := time.ParseDuration(v + "ms"); err == nil {
			wait = d
		}
	}

	select {
	case <-time.After(wait):
		return &domain.Outcome{
			Success:       true,
			ArtifactPaths: []string{fmt.Sprintf("dryrun/%s/%s.png", res.ProfileName(), job.ID)},
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
