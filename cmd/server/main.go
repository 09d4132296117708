package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/card-collection/internal/bookmarks"
	"github.com/benvon/card-collection/internal/collection"
	"github.com/benvon/card-collection/internal/config"
	"github.com/benvon/card-collection/internal/database"
	"github.com/benvon/card-collection/internal/handlers"
	"github.com/benvon/card-collection/internal/logger"
	"github.com/benvon/card-collection/internal/middleware"
	"github.com/benvon/card-collection/internal/tagmatch"
	"github.com/benvon/card-collection/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
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

	debugMode := cfg.ServerDebugMode || *debugFlag

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
		// Sync errors on stdout are expected and ignored
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Bool("database_enabled", cfg.DatabaseURL != ""),
		zap.Bool("redis_enabled", cfg.RedisURL != ""),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	otelActive := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), telemetry.ServerServiceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				otelActive = true
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	healthChecker := handlers.NewHealthChecker()

	// Collections come from PostgreSQL when configured, otherwise from YAML files
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
		if err := db.EnsureSchema(context.Background()); err != nil {
			zapLogger.Fatal("failed_to_ensure_database_schema", zap.Error(err))
		}
		zapLogger.Info("connected_to_database")
		store = database.NewCollectionRepository(db)
		healthChecker.AddCheck("database", db.PingContext)
	} else {
		store = collection.NewFileStore(cfg.CollectionsDir)
		zapLogger.Info("using_collection_files", zap.String("dir", logger.SanitizePath(cfg.CollectionsDir)))
		healthChecker.AddCheck("collections", func(ctx context.Context) error {
			_, err := store.List(ctx)
			return err
		})
	}

	// Redis backs bookmarks and rate limiting when configured
	var redisClient *redis.Client
	var bookmarkStore bookmarks.Store
	if cfg.RedisURL != "" {
		redisClient, err = bookmarks.NewRedisClient(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")
		redisStore := bookmarks.NewRedisStore(redisClient, bookmarks.DefaultTTL)
		bookmarkStore = redisStore
		healthChecker.AddCheck("redis", redisStore.Ping)
	} else {
		zapLogger.Warn("redis_not_configured_using_memory_bookmarks")
		bookmarkStore = bookmarks.NewMemoryStore()
	}

	matcher, err := tagmatch.New(tagmatch.Config{
		Featured: cfg.FeaturedTagPatterns,
		Gated:    cfg.GatedTagPatterns,
	})
	if err != nil {
		zapLogger.Fatal("invalid_tag_patterns", zap.Error(err))
	}

	rateLimitMW, err := middleware.RateLimit(cfg.RateLimit, redisClient)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	// Initialize handlers
	collectionHandler := handlers.NewCollectionHandler(store, bookmarkStore, zapLogger,
		handlers.WithCollectionTagMatcher(matcher),
	)
	bookmarkHandler := handlers.NewBookmarkHandler(bookmarkStore, zapLogger)

	// Setup router
	r := mux.NewRouter()

	// Middleware registered first is the outermost wrapper
	if otelActive {
		r.Use(otelmux.Middleware(telemetry.ServerServiceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(zapLogger))

	// Public routes (no rate limiting for health checks)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	// API v1 routes
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(rateLimitMW)
	collectionHandler.RegisterRoutes(apiRouter.PathPrefix("/collections").Subrouter())
	bookmarkHandler.RegisterRoutes(apiRouter.PathPrefix("/bookmarks").Subrouter())

	// Preflight requests are answered by the CORS middleware; this keeps mux
	// from rejecting OPTIONS on routes that do not list it
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   middleware.DefaultRequestTimeout + 5*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	// Only expose minimal version info
	_, _ = fmt.Fprintf(w, `{"version":"%s","timestamp":"%s"}`, telemetry.ServiceVersion, time.Now().UTC().Format(time.RFC3339))
}
