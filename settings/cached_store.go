package settings

import (
	"context"
	"time"

	"github.com/kbukum/audiodesk/encryption"
	"github.com/kbukum/audiodesk/logger"
	"github.com/kbukum/audiodesk/redis"
)

const cacheKey = "snapshot"

// CachedStore serves snapshots from Redis and falls back to the wrapped
// store on a miss. Sensitive values are encrypted in the cache when an
// encryptor is configured. Cache failures are logged and bypassed.
type CachedStore struct {
	next  Store
	cache *redis.TypedStore[Settings]
	enc   encryption.Encryptor
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedStore wraps next with a Redis cache under the "settings" prefix.
func NewCachedStore(next Store, client *redis.Client, enc encryption.Encryptor, ttl time.Duration, log *logger.Logger) *CachedStore {
	return &CachedStore{
		next:  next,
		cache: redis.NewTypedStore[Settings](client, "settings"),
		enc:   enc,
		ttl:   ttl,
		log:   log.WithComponent("settings-cache"),
	}
}

func (s *CachedStore) Get(ctx context.Context) (Settings, error) {
	cached, err := s.cache.Load(ctx, cacheKey)
	if err != nil {
		s.log.Warn("Settings cache read failed", logger.Fields(logger.FieldError, err.Error()))
	}
	if cached != nil {
		if err := openSecrets(s.enc, *cached); err == nil {
			return *cached, nil
		}
		s.log.Warn("Discarding unreadable settings cache entry")
	}

	fresh, err := s.next.Get(ctx)
	if err != nil {
		return nil, err
	}

	sealed := fresh.Clone()
	if err := sealSecrets(s.enc, sealed); err != nil {
		return nil, err
	}
	if err := s.cache.Save(ctx, cacheKey, &sealed, s.ttl); err != nil {
		s.log.Warn("Settings cache write failed", logger.Fields(logger.FieldError, err.Error()))
	}
	return fresh, nil
}

// Set writes through to the wrapped store and drops the cached snapshot.
// It fails when the wrapped store is read-only.
func (s *CachedStore) Set(ctx context.Context, key string, value any) error {
	w, ok := s.next.(Writer)
	if !ok {
		return errReadOnly
	}
	if err := w.Set(ctx, key, value); err != nil {
		return err
	}
	return s.Invalidate(ctx)
}

// Invalidate drops the cached snapshot.
func (s *CachedStore) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, cacheKey)
}
