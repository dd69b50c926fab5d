package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/audiodesk/database"
	"github.com/kbukum/audiodesk/encryption"
)

// Record is one persisted setting. Value holds the JSON encoding of the
// setting; sensitive values are encrypted before encoding.
type Record struct {
	Key       string    `gorm:"primaryKey;type:text"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName implements gorm's tabler.
func (Record) TableName() string { return "app_settings" }

// GormStore persists settings in a key/value table.
type GormStore struct {
	db  *gorm.DB
	enc encryption.Encryptor
}

// NewGormStore returns a store on db. enc may be nil to store secrets in
// plain text.
func NewGormStore(db *gorm.DB, enc encryption.Encryptor) *GormStore {
	return &GormStore{db: db, enc: enc}
}

// Get loads every setting.
func (s *GormStore) Get(ctx context.Context) (Settings, error) {
	var records []Record
	if err := s.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, database.FromDatabase(err, "settings", "")
	}

	out := make(Settings, len(records))
	for _, r := range records {
		var v any
		if err := json.Unmarshal([]byte(r.Value), &v); err != nil {
			return nil, fmt.Errorf("decode setting %q: %w", r.Key, err)
		}
		out[r.Key] = v
	}
	if err := openSecrets(s.enc, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Set upserts one setting.
func (s *GormStore) Set(ctx context.Context, key string, value any) error {
	single := Settings{key: value}
	if err := sealSecrets(s.enc, single); err != nil {
		return err
	}
	data, err := json.Marshal(single[key])
	if err != nil {
		return fmt.Errorf("encode setting %q: %w", key, err)
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&Record{Key: key, Value: string(data)}).Error
	if err != nil {
		return database.FromDatabase(err, "settings", key)
	}
	return nil
}

// SeedDefaults writes every key of defaults that is not yet stored.
// Existing values are left alone.
func (s *GormStore) SeedDefaults(ctx context.Context, defaults Settings) (int, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}
	seeded := 0
	for k, v := range defaults {
		if _, ok := current[k]; ok {
			continue
		}
		if err := s.Set(ctx, k, v); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}
