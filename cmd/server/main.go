package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardfile/cardfile/internal/config"
	"github.com/cardfile/cardfile/internal/database"
	"github.com/cardfile/cardfile/internal/extract"
	"github.com/cardfile/cardfile/internal/handlers"
	"github.com/cardfile/cardfile/internal/ingest"
	"github.com/cardfile/cardfile/internal/logger"
	"github.com/cardfile/cardfile/internal/middleware"
	"github.com/cardfile/cardfile/internal/queue"
	"github.com/cardfile/cardfile/internal/services/ai"
	"github.com/cardfile/cardfile/internal/telemetry"
	"github.com/cardfile/cardfile/internal/think"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "cardfile-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tp.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		zapLogger.Fatal("failed_to_migrate_database", zap.Error(err))
	}
	zapLogger.Info("connected_to_database")

	// Connect to Redis for rate limiting
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("invalid_redis_url", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	// Connect to RabbitMQ if configured. The server only needs the queue for
	// the extended health check; analysis jobs are scheduled by the worker.
	var jobQueue queue.JobQueue
	if cfg.RabbitMQURL != "" {
		jobQueue, err = connectRabbitMQ(cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
		}
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_rabbitmq")
	}

	// Initialize repositories
	cardRepo := database.NewCardRepository(db)
	envelopeRepo := database.NewEnvelopeRepository(db)
	contextRepo := database.NewContextRepository(db)
	suggestionRepo := database.NewSuggestionRepository(db)

	// Assemble the ingestion pipeline
	extractor := ai.NewExtractor(ai.ExtractorConfig{
		OpenAIKey: cfg.OpenAIKey,
		Model:     cfg.AIModel,
		BaseURL:   cfg.AIBaseURL,
		Timeout:   cfg.AITimeout,
		DebugMode: debugMode,
	}, nil, zapLogger)
	zapLogger.Info("extractor_ready", zap.String("extractor", extractor.Name()))

	normalizer := ingest.NewNormalizer(extract.New())
	matcher := ingest.NewEnvelopeMatcher(envelopeRepo, zapLogger)
	refiner := ingest.NewRefiner(contextRepo, envelopeRepo, zapLogger)
	pipeline := ingest.NewPipeline(extractor, normalizer, matcher, refiner, cardRepo, zapLogger)

	engine := think.NewEngine(cardRepo, envelopeRepo, suggestionRepo, zapLogger)

	// Initialize handlers
	noteHandler := handlers.NewNoteHandler(pipeline)
	cardHandler := handlers.NewCardHandler(cardRepo)
	envelopeHandler := handlers.NewEnvelopeHandler(envelopeRepo)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionRepo, engine, zapLogger)
	healthChecker := handlers.NewHealthChecker(db, jobQueue)

	rateLimitMW, err := middleware.RateLimit(redisClient, cfg.RateLimit)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	// Setup router. Middleware registered first wraps outermost.
	r := mux.NewRouter()

	if cfg.OTELEnabled {
		r.Use(otelmux.Middleware("cardfile-api"))
	}
	r.Use(middleware.SecurityHeaders(false))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes, no rate limiting for health checks
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(rateLimitMW)

	noteHandler.RegisterRoutes(apiRouter.PathPrefix("/notes").Subrouter())
	cardHandler.RegisterRoutes(apiRouter.PathPrefix("/cards").Subrouter())
	envelopeHandler.RegisterRoutes(apiRouter.PathPrefix("/envelopes").Subrouter())
	suggestionHandler.RegisterRoutes(apiRouter.PathPrefix("/suggestions").Subrouter())
	apiRouter.HandleFunc("/analysis/run", suggestionHandler.RunAnalysis).Methods("POST")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        corsHandler.Handler(r),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectRabbitMQ retries with exponential backoff to ride out broker
// startup delays
func connectRabbitMQ(url string, zapLogger *zap.Logger) (queue.JobQueue, error) {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err := queue.NewRabbitMQQueue(url)
		if err == nil {
			return jobQueue, nil
		}

		lastErr = err
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

	return nil, lastErr
}
