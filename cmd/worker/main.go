package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/card-collection/internal/collection"
	"github.com/benvon/card-collection/internal/config"
	"github.com/benvon/card-collection/internal/database"
	"github.com/benvon/card-collection/internal/eventtiming"
	"github.com/benvon/card-collection/internal/logger"
	"github.com/benvon/card-collection/internal/queue"
	"github.com/benvon/card-collection/internal/telemetry"
	"github.com/benvon/card-collection/internal/workers"
	"go.uber.org/zap"
)

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.RequireRabbitMQ(); err != nil {
		log.Fatalf("Invalid worker configuration: %v", err)
	}

	maxInterval, err := time.ParseDuration(cfg.WatchMaxInterval)
	if err != nil {
		log.Fatalf("Invalid WATCH_MAX_INTERVAL %q: %v", cfg.WatchMaxInterval, err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewFileLogger(debugMode, logger.FileConfig{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   true,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Strings("collections", cfg.WatchCollections),
		zap.Duration("max_interval", maxInterval),
	)

	if cfg.OTELEnabled && cfg.OTELEndpoint != "" {
		tp, err := telemetry.InitTracer(context.Background(), telemetry.WorkerServiceName, cfg.OTELEndpoint)
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	var store collection.Store
	if cfg.DatabaseURL != "" {
		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_database")
		store = database.NewCollectionRepository(db)
	} else {
		store = collection.NewFileStore(cfg.CollectionsDir)
	}

	// Retry connection with exponential backoff to handle RabbitMQ startup delays
	const maxRetries = 10
	const initialDelay = 2 * time.Second
	var publisher *queue.RabbitMQPublisher
	for attempt := 0; attempt < maxRetries; attempt++ {
		publisher, err = queue.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err == nil {
			break
		}
		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq")

	scheduler := eventtiming.NewScheduler(eventtiming.WithLogger(zapLogger))
	watcher := workers.NewTransitionWatcher(store, publisher, scheduler, zapLogger, maxInterval)

	// Cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := watcher.Run(ctx, cfg.WatchCollections); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Error("transition_watcher_failed", zap.Error(err))
		return
	}

	zapLogger.Info("worker_stopped")
}
