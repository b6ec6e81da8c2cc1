package queue

import (
	"context"
	"time"
)

// MessageInterface abstracts a delivered queue message so workers can be
// tested against in-memory fakes.
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue is the broker-facing side of the job pipeline.
type JobQueue interface {
	// Enqueue publishes a job. A job with NotBefore set is delayed when
	// the broker supports it.
	Enqueue(ctx context.Context, job *Job) error

	// Consume starts delivering messages. The caller owns acknowledgement
	// of every message it receives. prefetchCount bounds how many
	// unacknowledged messages a consumer holds at once. Both channels
	// close when the context is cancelled or the connection drops.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	// Close tears down the broker connection
	Close() error

	// HealthCheck verifies the broker connection is usable
	HealthCheck(ctx context.Context) error
}

// DLQPurger removes dead-lettered messages older than a retention window
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
