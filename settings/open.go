package settings

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kbukum/audiodesk/encryption"
	"github.com/kbukum/audiodesk/logger"
	"github.com/kbukum/audiodesk/redis"
)

// Encryptor returns the cipher for EncryptionKey, or nil when no key is set.
func (c *Config) Encryptor() (encryption.Encryptor, error) {
	if c.EncryptionKey == "" {
		return nil, nil
	}
	enc, err := encryption.New(c.EncryptionKey, "")
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return enc, nil
}

// Open builds the configured Store. The database backend needs db and is
// seeded with InitialValues. The store is wrapped in a Redis cache when
// client is not nil and CacheTTL is positive.
func Open(ctx context.Context, cfg Config, db *gorm.DB, client *redis.Client, log *logger.Logger) (Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	enc, err := cfg.Encryptor()
	if err != nil {
		return nil, err
	}

	var store Store
	switch cfg.Backend {
	case BackendStatic:
		store = NewStaticStore(cfg.InitialValues())
	case BackendDatabase:
		if db == nil {
			return nil, errors.New("settings: database backend requires a database")
		}
		gs := NewGormStore(db, enc)
		seeded, err := gs.SeedDefaults(ctx, cfg.InitialValues())
		if err != nil {
			return nil, fmt.Errorf("settings: seed defaults: %w", err)
		}
		if seeded > 0 {
			log.Info("Seeded default settings", logger.Fields("count", seeded))
		}
		store = gs
	}

	if client != nil && cfg.CacheTTL > 0 {
		store = NewCachedStore(store, client, enc, cfg.CacheTTL, log)
	}
	return store, nil
}
