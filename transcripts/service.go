package transcripts

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/kbukum/audiodesk/errors"
	"github.com/kbukum/audiodesk/logger"
	"github.com/kbukum/audiodesk/observability"
	"github.com/kbukum/audiodesk/storage"
	"github.com/kbukum/audiodesk/util"
)

const blobPrefix = "audio"

// UploadResult reports the outcome of a multi-file upload.
type UploadResult struct {
	ProcessedFilenames []string `json:"processed_filenames"`
	Errors             []string `json:"errors"`
}

// Accepted reports whether at least one file was queued.
func (r *UploadResult) Accepted() bool { return len(r.ProcessedFilenames) > 0 }

// ServiceConfig configures upload validation.
type ServiceConfig struct {
	Extensions  []string
	MaxFileSize int64
}

// Service accepts uploads and answers queries for a user's transcripts.
type Service struct {
	repo       Repository
	blobs      storage.Storage
	queue      Queue
	extensions map[string]bool
	accepted   []string
	maxSize    int64
	metrics    *observability.Metrics
	log        *logger.Logger
}

// NewService creates a Service. metrics may be nil.
func NewService(cfg ServiceConfig, repo Repository, blobs storage.Storage, queue Queue, metrics *observability.Metrics, log *logger.Logger) *Service {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = AudioFileExtensions
	}
	exts := make(map[string]bool, len(cfg.Extensions))
	accepted := make([]string, 0, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		if !exts[ext] {
			exts[ext] = true
			accepted = append(accepted, ext)
		}
	}
	return &Service{
		repo:       repo,
		blobs:      blobs,
		queue:      queue,
		extensions: exts,
		accepted:   accepted,
		maxSize:    cfg.MaxFileSize,
		metrics:    metrics,
		log:        log.WithComponent("transcripts"),
	}
}

// Upload stores, records and enqueues each file. Per-file problems are
// collected in the result; the returned error is reserved for failures that
// make the whole request meaningless.
func (s *Service) Upload(ctx context.Context, userID string, files []*multipart.FileHeader) (*UploadResult, error) {
	ctx, span := observability.StartSpan(ctx, "transcripts.upload")
	defer span.End()
	span.SetAttributes(
		attribute.String(observability.AttrUserID, userID),
		attribute.Int("upload.files", len(files)),
	)

	result := &UploadResult{ProcessedFilenames: []string{}, Errors: []string{}}
	for _, fh := range files {
		name, err := s.uploadOne(ctx, userID, fh)
		if err != nil {
			s.metrics.RecordUpload(ctx, "rejected")
			result.Errors = append(result.Errors, rejection(util.SanitizeFileName(fh.Filename), err))
			s.log.WithContext(ctx).Warn("Upload rejected", logger.Fields(
				"file_name", fh.Filename, logger.FieldError, err.Error()))
			continue
		}
		s.metrics.RecordUpload(ctx, "accepted")
		result.ProcessedFilenames = append(result.ProcessedFilenames, name)
	}
	return result, nil
}

func (s *Service) uploadOne(ctx context.Context, userID string, fh *multipart.FileHeader) (string, error) {
	name := util.SanitizeFileName(fh.Filename)
	if name == "" {
		return "", apperrors.InvalidInput("file", "file name is empty")
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if !s.extensions[ext] {
		return "", apperrors.UnsupportedFileType(name, s.accepted)
	}
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return "", apperrors.FileTooLarge(name, s.maxSize)
	}

	src, err := fh.Open()
	if err != nil {
		return "", apperrors.InvalidInput("file", err.Error())
	}
	defer src.Close()

	doc := &Document{
		UserID:   userID,
		FileName: name,
		Title:    strings.TrimSuffix(name, path.Ext(name)),
		Size:     fh.Size,
		Status:   StatusQueued,
	}
	doc.ID = uuid.NewString()
	doc.BlobPath = path.Join(blobPrefix, userID, doc.ID, name)

	if err := s.blobs.Upload(ctx, doc.BlobPath, src); err != nil {
		return "", apperrors.StorageError("upload", err)
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		_ = s.blobs.Delete(context.WithoutCancel(ctx), doc.BlobPath)
		return "", err
	}

	job := Job{DocumentID: doc.ID, UserID: userID, EnqueuedAt: time.Now().UTC()}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		if ferr := s.repo.Fail(context.WithoutCancel(ctx), doc.ID, "could not be queued for transcription"); ferr != nil {
			s.log.WithContext(ctx).Error("Failed to mark unqueued document", logger.Fields(
				logger.FieldDocumentID, doc.ID, logger.FieldError, ferr.Error()))
		}
		return "", apperrors.ServiceUnavailable("transcription queue").WithCause(err)
	}

	s.log.WithContext(ctx).Info("Upload queued", logger.Fields(
		logger.FieldDocumentID, doc.ID, "file_name", name, "size", fh.Size))
	return name, nil
}

// List returns the user's documents, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]DocumentView, error) {
	docs, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]DocumentView, len(docs))
	for i := range docs {
		views[i] = docs[i].View()
	}
	return views, nil
}

// Chunks returns the chunks of one of the user's documents. Documents owned
// by other users are reported as not found.
func (s *Service) Chunks(ctx context.Context, userID, documentID string) ([]ChunkView, error) {
	if _, err := s.repo.GetForUser(ctx, userID, documentID); err != nil {
		return nil, err
	}
	chunks, err := s.repo.Chunks(ctx, documentID)
	if err != nil {
		return nil, err
	}
	views := make([]ChunkView, len(chunks))
	for i := range chunks {
		views[i] = chunks[i].View()
	}
	return views, nil
}

// rejection names the file in the message reported for it.
func rejection(fileName string, err error) string {
	msg := apperrors.ToAppError(err).Message
	if fileName == "" || strings.Contains(msg, fileName) {
		return msg
	}
	return fmt.Sprintf("%s: %s", fileName, msg)
}

// errorMessage is the user-facing text for a failed job.
func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "transcription failed"
}
