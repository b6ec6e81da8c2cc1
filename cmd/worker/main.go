package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardfile/cardfile/internal/config"
	"github.com/cardfile/cardfile/internal/database"
	"github.com/cardfile/cardfile/internal/ingest"
	"github.com/cardfile/cardfile/internal/logger"
	"github.com/cardfile/cardfile/internal/queue"
	"github.com/cardfile/cardfile/internal/think"
	"github.com/cardfile/cardfile/internal/workers"
	"go.uber.org/zap"
)

// sweepEvery is how many analysis ticks pass between context sweeps
const sweepEvery = 24

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Duration("analysis_interval", cfg.AnalysisInterval),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	cardRepo := database.NewCardRepository(db)
	envelopeRepo := database.NewEnvelopeRepository(db)
	contextRepo := database.NewContextRepository(db)
	suggestionRepo := database.NewSuggestionRepository(db)

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq", zap.Int("prefetch", cfg.RabbitMQPrefetch))

	engine := think.NewEngine(cardRepo, envelopeRepo, suggestionRepo, zapLogger)
	refiner := ingest.NewRefiner(contextRepo, envelopeRepo, zapLogger)
	runner := workers.NewEngineRunner(engine, refiner)
	worker := workers.NewAnalysisWorker(runner, jobQueue, zapLogger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}

	zapLogger.Info("worker_started")

	// Process messages
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("message_channel_closed")
					return
				}

				if err := worker.ProcessJob(ctx, msg); err != nil {
					zapLogger.Error("job_processing_failed",
						zap.Error(err),
						zap.String("job_id", msg.GetJob().ID.String()),
						zap.String("job_type", string(msg.GetJob().Type)),
					)
				}
			}
		}
	}()

	// Surface queue errors
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("queue_error", zap.Error(err))
			}
		}
	}()

	// Schedule recurring analysis runs. Every sweepEvery-th tick also
	// enqueues a context sweep.
	go scheduleJobs(ctx, jobQueue, cfg.AnalysisInterval, zapLogger)

	// Purge dead-lettered jobs hourly, keeping a day of history
	dlqGC := queue.NewGarbageCollector(jobQueue, 1*time.Hour, 24*time.Hour, zapLogger)
	go func() {
		if err := dlqGC.Start(ctx); err != nil && err != context.Canceled {
			zapLogger.Error("dlq_garbage_collector_stopped", zap.Error(err))
		}
	}()

	<-sigChan
	zapLogger.Info("shutdown_signal_received")
	cancel()

	zapLogger.Info("worker_stopped")
}

func scheduleJobs(ctx context.Context, jobQueue queue.JobQueue, interval time.Duration, zapLogger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run one analysis at startup so a fresh deployment has suggestions
	// before the first tick
	enqueue(ctx, jobQueue, queue.JobTypeRunAnalysis, zapLogger)

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ticks++
			enqueue(ctx, jobQueue, queue.JobTypeRunAnalysis, zapLogger)
			if ticks%sweepEvery == 0 {
				enqueue(ctx, jobQueue, queue.JobTypeContextSweep, zapLogger)
			}
		}
	}
}

func enqueue(ctx context.Context, jobQueue queue.JobQueue, jobType queue.JobType, zapLogger *zap.Logger) {
	job := queue.NewJob(jobType)
	if err := jobQueue.Enqueue(ctx, job); err != nil {
		zapLogger.Error("failed_to_enqueue_job",
			zap.String("job_type", string(jobType)),
			zap.Error(err),
		)
		return
	}
	zapLogger.Info("job_enqueued",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(jobType)),
	)
}
