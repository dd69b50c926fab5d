package flash

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/audiodesk/redis"
)

const (
	idCookie   = "flash_id"
	idKey      = "flash.id"
	defaultTTL = 10 * time.Minute
)

// RedisStore queues notices in a Redis list keyed by a random id held in a
// cookie. Entries expire after ttl if never popped.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewRedisStore returns a Redis-backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration, secure bool) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, secure: secure}
}

func (s *RedisStore) Add(c *gin.Context, n Notice) error {
	id := s.id(c)
	if id == "" {
		id = uuid.NewString()
		c.Set(idKey, id)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(idCookie, id, int(s.ttl.Seconds()), "/", "", s.secure, true)
	}

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("flash: encode: %w", err)
	}
	ctx := c.Request.Context()
	key := s.client.Key("flash", id)
	if err := s.client.RPush(ctx, key, string(data)); err != nil {
		return fmt.Errorf("flash: push: %w", err)
	}
	if err := s.client.Expire(ctx, key, s.ttl); err != nil {
		return fmt.Errorf("flash: expire: %w", err)
	}
	return nil
}

// Pop drains the list. Malformed entries are skipped.
func (s *RedisStore) Pop(c *gin.Context) ([]Notice, error) {
	id := s.id(c)
	if id == "" {
		return nil, nil
	}
	values, err := s.client.LPopAll(c.Request.Context(), s.client.Key("flash", id))
	if err != nil {
		return nil, fmt.Errorf("flash: pop: %w", err)
	}

	notices := make([]Notice, 0, len(values))
	for _, v := range values {
		var n Notice
		if err := json.Unmarshal([]byte(v), &n); err == nil {
			notices = append(notices, n)
		}
	}
	return notices, nil
}

func (s *RedisStore) id(c *gin.Context) string {
	if v, ok := c.Get(idKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	id, err := c.Cookie(idCookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}
