package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType identifies what a queued job asks the worker to do
type JobType string

const (
	// JobTypeRunAnalysis asks the worker to run a full suggestion analysis
	JobTypeRunAnalysis JobType = "run_analysis"
	// JobTypeContextSweep asks the worker to seed and purge user contexts
	JobTypeContextSweep JobType = "context_sweep"
)

// Job is the unit of work carried over the broker. NotBefore and NotAfter
// bound the processing window; either may be nil.
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	NotBefore  *time.Time     `json:"not_before,omitempty"`
	NotAfter   *time.Time     `json:"not_after,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewJob creates a job of the given type with the default retry budget
func NewJob(jobType JobType) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// ShouldProcess reports whether now falls inside the job's processing window
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired reports whether the job's NotAfter deadline has passed
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}
	return time.Now().After(*j.NotAfter)
}

// CanRetry reports whether the retry budget allows another attempt
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry records a failed attempt
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
