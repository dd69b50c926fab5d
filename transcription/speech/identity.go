package speech

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/kbukum/audiodesk/errors"
	"github.com/kbukum/audiodesk/httpclient"
)

const (
	// DefaultIdentityEndpoint is the instance metadata token endpoint.
	DefaultIdentityEndpoint = "http://169.254.169.254/metadata/identity/oauth2/token"

	identityService    = "managed identity"
	identityAPIVersion = "2018-02-01"
	tokenResource      = "https://cognitiveservices.azure.com"
	// Tokens are refreshed this long before they expire.
	tokenRefreshSkew       = 5 * time.Minute
	defaultIdentityTimeout = 10 * time.Second
)

// IdentityConfig configures the managed identity used when the speech
// settings carry a location but no key.
type IdentityConfig struct {
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// ClientID selects a user-assigned identity; empty uses the system one.
	ClientID string        `mapstructure:"client_id" json:"client_id"`
	Timeout  time.Duration `mapstructure:"timeout" json:"timeout"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *IdentityConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultIdentityEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultIdentityTimeout
	}
}

// ManagedIdentity fetches and caches bearer tokens for the speech service.
// It is safe for concurrent use.
type ManagedIdentity struct {
	client *httpclient.Client
	cfg    IdentityConfig
	now    func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewManagedIdentity creates a token source from cfg.
func NewManagedIdentity(cfg IdentityConfig) (*ManagedIdentity, error) {
	cfg.ApplyDefaults()
	client, err := httpclient.New(httpclient.Config{
		Name:    identityService,
		Timeout: cfg.Timeout,
		Headers: map[string]string{"Metadata": "true"},
	})
	if err != nil {
		return nil, err
	}
	return &ManagedIdentity{client: client, cfg: cfg, now: time.Now}, nil
}

// Token returns a cached token, fetching a new one when it is close to expiry.
func (m *ManagedIdentity) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.now().Add(tokenRefreshSkew).Before(m.expires) {
		return m.token, nil
	}

	query := map[string]string{
		"api-version": identityAPIVersion,
		"resource":    tokenResource,
	}
	if m.cfg.ClientID != "" {
		query["client_id"] = m.cfg.ClientID
	}
	resp, err := m.client.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   m.cfg.Endpoint,
		Query:  query,
	})
	if err != nil {
		return "", err
	}

	var tok tokenResponse
	if err := resp.JSON(&tok); err != nil || tok.AccessToken == "" {
		if err == nil {
			err = fmt.Errorf("empty access token")
		}
		return "", apperrors.ExternalServiceError(identityService, fmt.Errorf("decode token: %w", err))
	}

	m.token = tok.AccessToken
	m.expires = tok.expiry(m.now())
	return m.token, nil
}

// Metadata endpoints send numbers as strings.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresOn   string `json:"expires_on"`
	ExpiresIn   string `json:"expires_in"`
}

func (t tokenResponse) expiry(now time.Time) time.Time {
	if sec, err := strconv.ParseInt(t.ExpiresOn, 10, 64); err == nil {
		return time.Unix(sec, 0)
	}
	if sec, err := strconv.ParseInt(t.ExpiresIn, 10, 64); err == nil {
		return now.Add(time.Duration(sec) * time.Second)
	}
	return now
}
