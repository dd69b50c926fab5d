package transcripts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/kbukum/audiodesk/errors"
	"github.com/kbukum/audiodesk/redis"
)

// Queue kinds accepted by WorkerConfig.Queue.
const (
	QueueMemory = "memory"
	QueueRedis  = "redis"
)

// Job asks the worker to transcribe one document.
type Job struct {
	DocumentID string    `json:"document_id"`
	UserID     string    `json:"user_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Queue hands jobs from the upload API to the worker.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// Dequeue blocks until a job is available or ctx is done.
	Dequeue(ctx context.Context) (Job, error)
}

// MemoryQueue is a bounded in-process queue. Jobs are lost on restart.
type MemoryQueue struct {
	jobs chan Job
}

// NewMemoryQueue creates a queue holding up to capacity pending jobs.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryQueue{jobs: make(chan Job, capacity)}
}

// Enqueue fails with SERVICE_UNAVAILABLE when the queue is full.
func (q *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return apperrors.ServiceUnavailable("transcription queue")
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (Job, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

// Len returns the number of pending jobs.
func (q *MemoryQueue) Len() int { return len(q.jobs) }

// RedisQueue keeps jobs in a Redis list so they survive restarts and can be
// shared between replicas.
type RedisQueue struct {
	client      *redis.Client
	key         string
	pollTimeout time.Duration
}

// NewRedisQueue creates a queue on the list "<prefix>:transcripts:jobs".
// pollTimeout bounds each blocking pop so Dequeue notices cancellation.
func NewRedisQueue(client *redis.Client, pollTimeout time.Duration) *RedisQueue {
	if pollTimeout <= 0 {
		pollTimeout = time.Second
	}
	return &RedisQueue{
		client:      client,
		key:         client.Key("transcripts", "jobs"),
		pollTimeout: pollTimeout,
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("encode job: %w", err))
	}
	if err := q.client.RPush(ctx, q.key, payload); err != nil {
		return apperrors.ExternalServiceError("redis", err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (Job, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Job{}, err
		}
		raw, err := q.client.BLPop(ctx, q.pollTimeout, q.key)
		if redis.IsNil(err) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return Job{}, ctx.Err()
			}
			return Job{}, apperrors.ExternalServiceError("redis", err)
		}
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			return Job{}, apperrors.Internal(fmt.Errorf("decode job: %w", err))
		}
		return job, nil
	}
}
