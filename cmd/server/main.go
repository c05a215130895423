package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zombar/newscred/internal/api"
	"github.com/zombar/newscred/internal/classifier"
	"github.com/zombar/newscred/internal/credibility"
	"github.com/zombar/newscred/internal/database"
	"github.com/zombar/newscred/internal/engine"
	"github.com/zombar/newscred/internal/ollama"
	"github.com/zombar/newscred/internal/queue"
	"github.com/zombar/newscred/pkg/logging"
	"github.com/zombar/newscred/pkg/metrics"
	"github.com/zombar/newscred/pkg/tracing"
)

func main() {
	// Optional .env file for local development
	_ = godotenv.Load()

	// Setup structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("newscred service initializing", "version", "1.0.0")

	// Initialize tracing
	tp, err := tracing.InitTracer("newscred")
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer", "error", err)
			}
		}()
		logger.Info("tracing initialized successfully")
	}

	// Get default values from environment variables, with fallbacks
	portDefault := getEnv("PORT", "8080")
	dbDriverDefault := getEnv("DB_DRIVER", database.DriverSQLite)
	dbDSNDefault := getEnv("DB_DSN", "newscred.db")
	modelPathDefault := getEnv("MODEL_PATH", "")
	credConfigDefault := getEnv("CREDIBILITY_CONFIG", "")
	redisAddrDefault := getEnv("REDIS_ADDR", "")
	concurrencyDefault := getEnvInt("WORKER_CONCURRENCY", 4)
	ollamaURLDefault := getEnv("OLLAMA_URL", "http://localhost:11434")
	ollamaModelDefault := getEnv("OLLAMA_MODEL", ollama.DefaultModel)
	useOllamaDefault := getEnvBool("USE_OLLAMA", true)

	var (
		port        = flag.String("port", portDefault, "Server port (env: PORT)")
		dbDriver    = flag.String("db-driver", dbDriverDefault, "Database driver: sqlite or postgres (env: DB_DRIVER)")
		dbDSN       = flag.String("db-dsn", dbDSNDefault, "Database DSN: file path for sqlite, connection string for postgres (env: DB_DSN)")
		modelPath   = flag.String("model", modelPathDefault, "Classifier artifact path, empty for the embedded model (env: MODEL_PATH)")
		credConfig  = flag.String("credibility-config", credConfigDefault, "Credibility tunables YAML file (env: CREDIBILITY_CONFIG)")
		redisAddr   = flag.String("redis-addr", redisAddrDefault, "Redis address for the task queue, empty disables it (env: REDIS_ADDR)")
		concurrency = flag.Int("worker-concurrency", concurrencyDefault, "Queue worker concurrency (env: WORKER_CONCURRENCY)")
		ollamaURL   = flag.String("ollama-url", ollamaURLDefault, "Ollama API URL (env: OLLAMA_URL)")
		ollamaModel = flag.String("ollama-model", ollamaModelDefault, "Ollama model for reviewer notes (env: OLLAMA_MODEL)")
		useOllama   = flag.Bool("use-ollama", useOllamaDefault, "Enable Ollama report enrichment (env: USE_OLLAMA)")
	)
	flag.Parse()

	// Initialize database
	db, err := database.New(*dbDriver, *dbDSN)
	if err != nil {
		logger.Error("failed to initialize database", "error", err, "driver", *dbDriver)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database metrics
	dbMetrics := metrics.NewDatabaseMetrics("newscred")
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			dbMetrics.UpdateDBStats(db.Conn())
		}
	}()
	businessMetrics := metrics.NewBusinessMetrics("newscred")
	logger.Info("metrics initialized")

	// Load the classifier artifact once; it is shared read-only across
	// requests. A missing or corrupt artifact is fatal, never a default
	// label.
	var clf *classifier.Classifier
	if *modelPath != "" {
		clf, err = classifier.Load(*modelPath)
	} else {
		clf, err = classifier.LoadDefault()
	}
	if err != nil {
		logger.Error("failed to load classifier artifact", "error", err, "model_path", *modelPath)
		os.Exit(1)
	}
	logger.Info("classifier loaded", "model_version", clf.Version())

	// Credibility tunables
	credCfg := credibility.DefaultConfig()
	if *credConfig != "" {
		credCfg, err = credibility.LoadConfig(*credConfig)
		if err != nil {
			logger.Warn("failed to load credibility config, using defaults", "error", err, "path", *credConfig)
			credCfg = credibility.DefaultConfig()
		}
	}

	eng := engine.New(clf, credibility.New(credCfg))

	// Ollama powers the asynchronous reviewer notes on saved reports
	var ollamaClient *ollama.Client
	if *useOllama {
		ollamaClient, err = ollama.New(*ollamaURL, *ollamaModel)
		if err != nil {
			logger.Warn("failed to initialize Ollama client, reports will not be enriched",
				"error", err,
				"ollama_url", *ollamaURL,
			)
			ollamaClient = nil
		} else {
			logger.Info("Ollama client initialized", "model", *ollamaModel, "url", *ollamaURL)
		}
	} else {
		logger.Info("Ollama disabled, reports will not be enriched")
	}

	// Queue: optional. Without Redis the API writes history inline and
	// skips enrichment.
	var apiHandler http.Handler
	if *redisAddr != "" {
		queueClient := queue.NewClient(queue.ClientConfig{RedisAddr: *redisAddr})
		defer queueClient.Close()

		worker := queue.NewWorker(queue.WorkerConfig{
			RedisAddr:   *redisAddr,
			Concurrency: *concurrency,
		}, db, ollamaClient, businessMetrics)
		go func() {
			if err := worker.Start(); err != nil {
				logger.Error("queue worker stopped", "error", err)
			}
		}()
		defer worker.Shutdown()

		logger.Info("task queue enabled", "redis_addr", *redisAddr, "concurrency", *concurrency)
		apiHandler = api.NewHandler(db, eng, queueClient, businessMetrics)
	} else {
		logger.Info("task queue disabled, history writes are inline")
		apiHandler = api.NewHandler(db, eng, nil, businessMetrics)
	}

	// Wrap handler with middleware chain: HTTP logging -> tracing -> handlers
	handler := logging.HTTPLoggingMiddleware(logger)(
		tracing.HTTPMiddleware("newscred")(apiHandler),
	)

	// Create server. Writes get headroom for explanation runs.
	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("newscred service starting",
			"port", *port,
			"db_driver", *dbDriver,
			"queue_enabled", *redisAddr != "",
			"ollama_enabled", ollamaClient != nil,
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
