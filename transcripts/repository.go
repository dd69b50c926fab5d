package transcripts

import (
	"context"

	"gorm.io/gorm"

	"github.com/kbukum/audiodesk/database"
)

// Repository persists documents and their chunks.
type Repository interface {
	Create(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id string) (*Document, error)
	// GetForUser fails with NotFound when the document belongs to someone else.
	GetForUser(ctx context.Context, userID, id string) (*Document, error)
	// ListForUser returns the user's documents, most recently updated first.
	ListForUser(ctx context.Context, userID string) ([]Document, error)
	UpdateProgress(ctx context.Context, id string, status Status, percentage int) error
	Fail(ctx context.Context, id, reason string) error
	// Complete replaces the document's chunks and marks it Complete.
	Complete(ctx context.Context, id, locale string, chunks []Chunk) error
	Chunks(ctx context.Context, documentID string) ([]Chunk, error)
}

// GormRepository is the GORM-backed Repository.
type GormRepository struct {
	db *database.DB
}

var _ Repository = (*GormRepository)(nil)

// NewGormRepository creates a repository on db.
func NewGormRepository(db *database.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, doc *Document) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return database.FromDatabase(err, "document", doc.ID)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*Document, error) {
	var doc Document
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, database.FromDatabase(err, "document", id)
	}
	return &doc, nil
}

func (r *GormRepository) GetForUser(ctx context.Context, userID, id string) (*Document, error) {
	var doc Document
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&doc).Error
	if err != nil {
		return nil, database.FromDatabase(err, "document", id)
	}
	return &doc, nil
}

func (r *GormRepository) ListForUser(ctx context.Context, userID string) ([]Document, error) {
	var docs []Document
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, database.FromDatabase(err, "document", "")
	}
	return docs, nil
}

func (r *GormRepository) UpdateProgress(ctx context.Context, id string, status Status, percentage int) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":              status,
		"percentage_complete": percentage,
		"error":               "",
	})
}

func (r *GormRepository) Fail(ctx context.Context, id, reason string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status": StatusFailed,
		"error":  reason,
	})
}

func (r *GormRepository) update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&Document{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return database.FromDatabase(res.Error, "document", id)
	}
	if res.RowsAffected == 0 {
		return database.FromDatabase(gorm.ErrRecordNotFound, "document", id)
	}
	return nil
}

func (r *GormRepository) Complete(ctx context.Context, id, locale string, chunks []Chunk) error {
	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&Chunk{}).Error; err != nil {
			return err
		}
		if len(chunks) > 0 {
			if err := tx.CreateInBatches(chunks, 200).Error; err != nil {
				return err
			}
		}
		res := tx.Model(&Document{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":              StatusComplete,
			"percentage_complete": progressComplete,
			"num_chunks":          len(chunks),
			"locale":              locale,
			"error":               "",
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return database.FromDatabase(err, "document", id)
	}
	return nil
}

func (r *GormRepository) Chunks(ctx context.Context, documentID string) ([]Chunk, error) {
	var chunks []Chunk
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("sequence ASC").
		Find(&chunks).Error
	if err != nil {
		return nil, database.FromDatabase(err, "chunk", documentID)
	}
	return chunks, nil
}
