package workers

import (
	"context"
	"fmt"
	"time"

	logpkg "github.com/cardfile/cardfile/internal/logger"
	"github.com/cardfile/cardfile/internal/queue"
	"github.com/cardfile/cardfile/internal/services/ai"
	"go.uber.org/zap"
)

// AnalysisRunner is the narrow surface the worker needs from the suggestion
// engine and the context refiner.
type AnalysisRunner interface {
	RunAnalysis(ctx context.Context) (int, error)
	RunContextSweep(ctx context.Context) error
}

// AnalysisWorker consumes analysis and sweep jobs from the queue
type AnalysisWorker struct {
	runner   AnalysisRunner
	jobQueue queue.JobQueue // for re-enqueueing jobs with delays
	logger   *zap.Logger
}

// NewAnalysisWorker creates a new analysis worker
func NewAnalysisWorker(runner AnalysisRunner, jobQueue queue.JobQueue, logger *zap.Logger) *AnalysisWorker {
	return &AnalysisWorker{
		runner:   runner,
		jobQueue: jobQueue,
		logger:   logger,
	}
}

// ProcessJob processes a job based on its type
func (w *AnalysisWorker) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if !job.ShouldProcess() {
		if job.IsExpired() {
			w.logger.Info("job_expired", zap.String("job_id", job.ID.String()))
			if ackErr := msg.Ack(); ackErr != nil {
				w.logger.Warn("job_ack_failed", zap.Error(ackErr))
			}
			return nil
		}
		// Not ready yet, put it back
		if nackErr := msg.Nack(true); nackErr != nil {
			w.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeRunAnalysis:
		created, err := w.runner.RunAnalysis(ctx)
		if err != nil {
			return w.handleJobError(ctx, msg, job, err, "analysis")
		}
		w.logger.Info("analysis_job_completed",
			zap.String("job_id", job.ID.String()),
			zap.Int("suggestions_created", created),
		)
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	case queue.JobTypeContextSweep:
		if err := w.runner.RunContextSweep(ctx); err != nil {
			return w.handleJobError(ctx, msg, job, err, "context sweep")
		}
		w.logger.Info("context_sweep_completed", zap.String("job_id", job.ID.String()))
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack sweep job: %w", ackErr)
		}
		return nil

	default:
		// Unknown job type, send to DLQ
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError retries failed jobs. Rate-limit and quota errors from the
// extraction layer are re-enqueued with a delay instead of hammering the
// provider; other errors get the standard nack/requeue cycle until retries
// run out and the job dead-letters.
func (w *AnalysisWorker) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error, jobType string) error {
	if ai.IsQuotaError(err) || ai.IsRateLimitError(err) {
		retryDelay := ai.GetRetryDelay(err, job.RetryCount)

		if job.CanRetry() && w.jobQueue != nil {
			notBefore := time.Now().Add(retryDelay)
			delayedJob := &queue.Job{
				ID:         job.ID,
				Type:       job.Type,
				NotBefore:  &notBefore,
				NotAfter:   job.NotAfter,
				Metadata:   job.Metadata,
				CreatedAt:  job.CreatedAt,
				RetryCount: job.RetryCount + 1,
				MaxRetries: job.MaxRetries,
			}

			if ackErr := msg.Ack(); ackErr != nil {
				w.logger.Warn("job_ack_failed", zap.Error(ackErr))
			}

			if enqueueErr := w.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				return fmt.Errorf("%s throttled, failed to re-enqueue: %w", jobType, enqueueErr)
			}

			w.logger.Info("job_requeued_with_delay",
				zap.String("job_id", job.ID.String()),
				zap.String("job_type", string(job.Type)),
				zap.Duration("delay", retryDelay),
			)
			return nil
		}
	}

	if job.CanRetry() {
		job.IncrementRetry()
		w.logger.Warn("job_failed_will_retry",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.Int("attempt", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			// Provider errors can echo note text; sanitize before logging
			zap.String("error", logpkg.SanitizeError(err)),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			w.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("%s job failed (will retry): %w", jobType, err)
	}

	w.logger.Error("job_failed_dead_lettered",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.String("error", logpkg.SanitizeError(err)),
	)
	if nackErr := msg.Nack(false); nackErr != nil {
		w.logger.Warn("job_nack_failed", zap.Error(nackErr))
	}
	return fmt.Errorf("%s job failed (max retries): %w", jobType, err)
}
