package transcripts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/audiodesk/component"
	apperrors "github.com/kbukum/audiodesk/errors"
	"github.com/kbukum/audiodesk/logger"
	"github.com/kbukum/audiodesk/observability"
	"github.com/kbukum/audiodesk/resilience"
	"github.com/kbukum/audiodesk/settings"
	"github.com/kbukum/audiodesk/storage"
	"github.com/kbukum/audiodesk/transcription"
	"github.com/kbukum/audiodesk/transcription/speech"
	"github.com/kbukum/audiodesk/validation"
)

const workerName = "transcription-worker"

// WorkerConfig configures the transcription worker.
type WorkerConfig struct {
	Enabled     bool   `mapstructure:"enabled" json:"enabled"`
	Concurrency int    `mapstructure:"concurrency" json:"concurrency" validate:"gte=1,lte=64"`
	Queue       string `mapstructure:"queue" json:"queue" validate:"oneof=memory redis"`
	// QueueCapacity bounds the memory queue.
	QueueCapacity int `mapstructure:"queue_capacity" json:"queue_capacity" validate:"gte=1"`
	// PollTimeout bounds each blocking pop of the redis queue.
	PollTimeout   time.Duration          `mapstructure:"poll_timeout" json:"poll_timeout"`
	JobTimeout    time.Duration          `mapstructure:"job_timeout" json:"job_timeout"`
	SpeechTimeout time.Duration          `mapstructure:"speech_timeout" json:"speech_timeout"`
	Retry         resilience.RetryConfig `mapstructure:"retry" json:"retry"`
	// Identity authenticates to the speech service when no key is set.
	Identity speech.IdentityConfig `mapstructure:"identity" json:"identity"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *WorkerConfig) ApplyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 2
	}
	if c.Queue == "" {
		c.Queue = QueueMemory
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = 256
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 2 * time.Second
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 30 * time.Minute
	}
	if c.SpeechTimeout <= 0 {
		c.SpeechTimeout = 10 * time.Minute
	}
	c.Retry.ApplyDefaults()
	c.Identity.ApplyDefaults()
}

// Validate checks the worker settings against their tags.
func (c *WorkerConfig) Validate() error {
	return validation.Validate(c)
}

// ProviderFactory builds a transcription provider from the current settings.
type ProviderFactory func(s settings.Settings) (transcription.Provider, error)

// SpeechProviderFactory builds a speech service client from the speech
// settings. Without a key, requests carry a bearer token from token. It
// fails with NOT_CONFIGURED when the endpoint or credentials are missing.
func SpeechProviderFactory(timeout time.Duration, token func(ctx context.Context) (string, error)) ProviderFactory {
	return func(s settings.Settings) (transcription.Provider, error) {
		return speech.NewProvider(speech.Config{
			Endpoint: s.String(settings.KeySpeechServiceEndpoint),
			Key:      s.String(settings.KeySpeechServiceKey),
			Location: s.String(settings.KeySpeechServiceLocation),
			Locale:   s.String(settings.KeySpeechServiceLocale),
			Timeout:  timeout,
			Token:    token,
		})
	}
}

// Worker consumes transcription jobs from a Queue.
type Worker struct {
	cfg      WorkerConfig
	repo     Repository
	blobs    storage.Storage
	queue    Queue
	settings settings.Store
	provider ProviderFactory
	metrics  *observability.Metrics
	log      *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
	done    atomic.Int64
}

var (
	_ component.Component   = (*Worker)(nil)
	_ component.Describable = (*Worker)(nil)
)

// NewWorker creates a worker. metrics may be nil.
func NewWorker(cfg WorkerConfig, repo Repository, blobs storage.Storage, queue Queue, store settings.Store, provider ProviderFactory, metrics *observability.Metrics, log *logger.Logger) *Worker {
	cfg.ApplyDefaults()
	return &Worker{
		cfg:      cfg,
		repo:     repo,
		blobs:    blobs,
		queue:    queue,
		settings: store,
		provider: provider,
		metrics:  metrics,
		log:      log.WithComponent(workerName),
	}
}

func (w *Worker) Name() string { return workerName }

// Start launches the consumer goroutines. They outlive ctx and run until
// Stop.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.cfg.Enabled {
		w.log.Info("Transcription worker is disabled")
		return nil
	}
	if w.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancel = cancel
	for i := 0; i < w.cfg.Concurrency; i++ {
		w.wg.Add(1)
		go w.loop(runCtx, i)
	}
	w.running.Store(true)
	w.log.Info("Transcription worker started", logger.Fields("concurrency", w.cfg.Concurrency, "queue", w.cfg.Queue))
	return nil
}

// Stop cancels the consumers and waits for in-flight jobs, or for ctx.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	w.running.Store(false)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("transcription worker stop: %w", ctx.Err())
	}
}

func (w *Worker) Health(_ context.Context) component.Health {
	h := component.Health{Name: workerName, Status: component.StatusHealthy}
	switch {
	case !w.cfg.Enabled:
		h.Message = "disabled"
	case !w.running.Load():
		h.Status, h.Message = component.StatusUnhealthy, "worker not running"
	}
	return h
}

func (w *Worker) Describe() component.Description {
	return component.Description{
		Name:    "Transcription Worker",
		Type:    "worker",
		Details: fmt.Sprintf("queue=%s concurrency=%d", w.cfg.Queue, w.cfg.Concurrency),
	}
}

// Processed returns the number of jobs finished since start.
func (w *Worker) Processed() int64 { return w.done.Load() }

func (w *Worker) loop(ctx context.Context, n int) {
	defer w.wg.Done()
	log := w.log.WithFields(logger.Fields("slot", n))
	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("Dequeue failed", logger.Fields(logger.FieldError, err.Error()))
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.cfg.PollTimeout):
			}
			continue
		}
		jobCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
		_ = w.Process(jobCtx, job)
		cancel()
		w.done.Add(1)
	}
}

// Process transcribes the document of one job. A failure is recorded on the
// document and returned.
func (w *Worker) Process(ctx context.Context, job Job) error {
	start := time.Now()
	ctx = logger.ContextWithUserID(ctx, job.UserID)
	ctx, span := observability.StartSpan(ctx, "transcripts.job",
		attribute.String(observability.AttrDocumentID, job.DocumentID),
		attribute.String(observability.AttrUserID, job.UserID),
	)
	defer span.End()
	log := w.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldDocumentID, job.DocumentID))

	doc, err := w.repo.Get(ctx, job.DocumentID)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeNotFound {
			log.Warn("Dropping job for missing document")
			return nil
		}
		return w.finish(ctx, span, log, start, job, err)
	}

	if err := w.repo.UpdateProgress(ctx, doc.ID, StatusProcessing, progressStarted); err != nil {
		return w.finish(ctx, span, log, start, job, err)
	}
	err = w.transcribe(ctx, log, doc)
	return w.finish(ctx, span, log, start, job, err)
}

func (w *Worker) transcribe(ctx context.Context, log *logger.Logger, doc *Document) error {
	current, err := w.settings.Get(ctx)
	if err != nil {
		return err
	}
	provider, err := w.provider(current)
	if err != nil {
		return err
	}
	locale := current.String(settings.KeySpeechServiceLocale)

	retry := w.cfg.Retry
	retry.RetryIf = apperrors.IsRetryable
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		log.Warn("Transcription attempt failed, retrying", logger.Fields(
			"attempt", attempt, logger.FieldError, err.Error(), "backoff", backoff.String()))
	}
	resp, err := resilience.Retry(ctx, retry, func(ctx context.Context) (*transcription.TranscriptionResponse, error) {
		audio, err := w.blobs.Download(ctx, doc.BlobPath)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, apperrors.NotFound("audio", doc.BlobPath)
			}
			return nil, apperrors.StorageError("download", err)
		}
		defer audio.Close()
		return provider.Transcribe(ctx, transcription.TranscriptionRequest{
			Audio:    audio,
			FileName: doc.FileName,
			Locale:   locale,
		})
	})
	if err != nil {
		return err
	}

	if resp.Locale != "" {
		locale = resp.Locale
	}
	chunks := chunksFrom(doc.ID, resp)
	if err := w.repo.Complete(ctx, doc.ID, locale, chunks); err != nil {
		return err
	}
	log.Info("Transcription complete", logger.Fields(
		"provider", provider.Name(), "chunks", len(chunks), "duration_s", resp.Duration))
	return nil
}

func (w *Worker) finish(ctx context.Context, span trace.Span, log *logger.Logger, start time.Time, job Job, err error) error {
	status := string(StatusComplete)
	if err != nil {
		status = string(StatusFailed)
		log.Error("Transcription failed", logger.Fields(logger.FieldError, err.Error()))
		observability.SetSpanError(span, err)
		if ferr := w.repo.Fail(context.WithoutCancel(ctx), job.DocumentID, errorMessage(err)); ferr != nil {
			log.Error("Failed to record transcription failure", logger.Fields(logger.FieldError, ferr.Error()))
		}
	}
	span.SetAttributes(attribute.String(observability.AttrStatus, status))
	w.metrics.RecordJob(ctx, status, time.Since(start))
	return err
}
