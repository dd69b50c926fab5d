package transcripts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	apperrors "github.com/kbukum/audiodesk/errors"
	"github.com/kbukum/audiodesk/logger"
	"github.com/kbukum/audiodesk/redis"
)

func TestMemoryQueue(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()

	if err := q.Enqueue(ctx, Job{DocumentID: "d1"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	err := q.Enqueue(ctx, Job{DocumentID: "d2"})
	assertCode(t, err, apperrors.ErrCodeServiceUnavailable)
	if q.Len() != 1 {
		t.Errorf("Len = %d", q.Len())
	}

	job, err := q.Dequeue(ctx)
	if err != nil || job.DocumentID != "d1" {
		t.Fatalf("Dequeue = %+v, %v", job, err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := q.Dequeue(canceled); !errors.Is(err, context.Canceled) {
		t.Errorf("Dequeue on canceled ctx = %v", err)
	}
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	client, err := redis.New(redis.Config{Enabled: true, Addr: mini.Addr()}, logger.NewNop())
	if err != nil {
		t.Fatalf("redis.New: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, mini
}

func TestRedisQueueRoundTrip(t *testing.T) {
	client, mini := newTestRedis(t)
	q := NewRedisQueue(client, time.Second)
	ctx := context.Background()
	enqueued := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	for _, id := range []string{"d1", "d2"} {
		if err := q.Enqueue(ctx, Job{DocumentID: id, UserID: testUser, EnqueuedAt: enqueued}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	if !mini.Exists("audiodesk:transcripts:jobs") {
		t.Fatalf("expected jobs list, have %v", mini.Keys())
	}

	for _, want := range []string{"d1", "d2"} {
		job, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		if job.DocumentID != want || job.UserID != testUser || !job.EnqueuedAt.Equal(enqueued) {
			t.Errorf("job = %+v, want document %s", job, want)
		}
	}
}

func TestRedisQueueDequeueStopsOnCancel(t *testing.T) {
	client, _ := newTestRedis(t)
	q := NewRedisQueue(client, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := q.Dequeue(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Dequeue = %v, want deadline exceeded", err)
	}
}

func TestRedisQueueRejectsGarbage(t *testing.T) {
	client, mini := newTestRedis(t)
	q := NewRedisQueue(client, time.Second)
	if _, err := mini.Push("audiodesk:transcripts:jobs", "not json"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	_, err := q.Dequeue(context.Background())
	assertCode(t, err, apperrors.ErrCodeInternal)
}
