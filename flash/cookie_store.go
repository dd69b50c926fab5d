package flash

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/audiodesk/encryption"
)

// DefaultCookieName is the cookie CookieStore uses when none is configured.
const DefaultCookieName = "flash"

// CookieStore keeps notices in a client cookie. With an encryptor the
// cookie is sealed so clients can neither read nor forge it.
type CookieStore struct {
	name   string
	secure bool
	enc    encryption.Encryptor
}

// NewCookieStore returns a cookie-backed store. enc may be nil.
func NewCookieStore(name string, secure bool, enc encryption.Encryptor) *CookieStore {
	if name == "" {
		name = DefaultCookieName
	}
	return &CookieStore{name: name, secure: secure, enc: enc}
}

// Add appends n to the pending notices. A cookie that cannot be decoded,
// for example one sealed with a rotated key, is replaced.
func (s *CookieStore) Add(c *gin.Context, n Notice) error {
	notices := pending(c)
	if notices == nil {
		notices = s.read(c)
	}
	notices = append(notices, n)
	c.Set(pendingKey, notices)

	value, err := s.encode(notices)
	if err != nil {
		return err
	}
	s.write(c, value, 0)
	return nil
}

// Pop returns the notices and expires the cookie. A cookie that cannot be
// decoded is dropped without error.
func (s *CookieStore) Pop(c *gin.Context) ([]Notice, error) {
	raw, err := c.Cookie(s.name)
	if err != nil || raw == "" {
		return nil, nil
	}
	s.write(c, "", -1)

	notices, err := s.decode(raw)
	if err != nil {
		return nil, nil
	}
	return notices, nil
}

func (s *CookieStore) read(c *gin.Context) []Notice {
	raw, err := c.Cookie(s.name)
	if err != nil || raw == "" {
		return nil
	}
	notices, err := s.decode(raw)
	if err != nil {
		return nil
	}
	return notices
}

func (s *CookieStore) write(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, value, maxAge, "/", "", s.secure, true)
}

func (s *CookieStore) encode(notices []Notice) (string, error) {
	data, err := json.Marshal(notices)
	if err != nil {
		return "", fmt.Errorf("flash: encode: %w", err)
	}
	if s.enc == nil {
		return base64.RawURLEncoding.EncodeToString(data), nil
	}
	return s.enc.Encrypt(string(data))
}

func (s *CookieStore) decode(raw string) ([]Notice, error) {
	var data []byte
	if s.enc == nil {
		b, err := base64.RawURLEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("flash: decode: %w", err)
		}
		data = b
	} else {
		plain, err := s.enc.Decrypt(raw)
		if err != nil {
			return nil, fmt.Errorf("flash: decrypt: %w", err)
		}
		data = []byte(plain)
	}

	var notices []Notice
	if err := json.Unmarshal(data, &notices); err != nil {
		return nil, fmt.Errorf("flash: decode: %w", err)
	}
	return notices, nil
}
