// Package speech implements transcription.Provider against a hosted
// speech-to-text service exposing the fast transcription REST API
// (POST {endpoint}/speechtotext/transcriptions:transcribe).
package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/kbukum/audiodesk/errors"
	"github.com/kbukum/audiodesk/httpclient"
	"github.com/kbukum/audiodesk/transcription"
)

const (
	// ProviderName is the name reported by Provider.Name.
	ProviderName = "speech"

	defaultAPIVersion = "2024-11-15"
	defaultTimeout    = 10 * time.Minute

	keyHeader      = "Ocp-Apim-Subscription-Key"
	transcribePath = "/speechtotext/transcriptions:transcribe"
)

// Config holds connection settings for the speech service.
type Config struct {
	Endpoint string
	Key      string
	// Location is the service region. With no Key, requests authenticate
	// with a bearer token from Token.
	Location   string
	Locale     string
	APIVersion string
	Timeout    time.Duration
	// Token returns a bearer token when Key is empty.
	Token func(ctx context.Context) (string, error)
}

// Configured reports whether the endpoint and one credential source are set.
func (c Config) Configured() bool {
	return c.Endpoint != "" && (c.Key != "" || c.Location != "")
}

// Provider calls the speech service over HTTP.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

var _ transcription.Provider = (*Provider)(nil)

// NewProvider creates a Provider. It fails with a NOT_CONFIGURED error when
// cfg lacks an endpoint or credentials.
func NewProvider(cfg Config) (*Provider, error) {
	if !cfg.Configured() {
		return nil, apperrors.NotConfigured("speech service")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	client, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: cfg.Endpoint,
		Timeout: cfg.Timeout,
		Headers: map[string]string{"Accept": "application/json"},
		Auth:    authFor(cfg),
	})
	if err != nil {
		return nil, apperrors.NotConfigured("speech service").WithCause(err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

func authFor(cfg Config) *httpclient.AuthConfig {
	if cfg.Key != "" {
		return httpclient.APIKeyAuthHeader(cfg.Key, keyHeader)
	}
	if cfg.Token != nil {
		return httpclient.TokenAuth(cfg.Token)
	}
	return nil
}

func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the provider has what it needs to authenticate.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return p.cfg.Key != "" || p.cfg.Token != nil
}

// Transcribe uploads the audio and maps recognized phrases to segments.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	if !p.IsAvailable(ctx) {
		return nil, apperrors.NotConfigured("speech service credentials")
	}

	locale := req.Locale
	if locale == "" {
		locale = p.cfg.Locale
	}

	def := definition{}
	if locale != "" {
		def.Locales = []string{locale}
	}
	defJSON, err := json.Marshal(def)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	name := req.FileName
	if name == "" {
		name = "audio"
	}

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   transcribePath,
		Query:  map[string]string{"api-version": p.cfg.APIVersion},
		Body: &httpclient.MultipartBody{
			Fields: []httpclient.FormField{{Name: "definition", Value: string(defJSON)}},
			Files:  []httpclient.FileField{{FieldName: "audio", FileName: name, Reader: req.Audio}},
		},
	})
	if err != nil {
		return nil, err
	}

	var result transcribeResponse
	if err := resp.JSON(&result); err != nil {
		return nil, apperrors.ExternalServiceError(ProviderName, fmt.Errorf("decode response: %w", err))
	}
	return result.toResponse(locale), nil
}

// --- wire types ---

type definition struct {
	Locales []string `json:"locales,omitempty"`
}

type transcribeResponse struct {
	DurationMilliseconds int64            `json:"durationMilliseconds"`
	CombinedPhrases      []combinedPhrase `json:"combinedPhrases"`
	Phrases              []phrase         `json:"phrases"`
}

type combinedPhrase struct {
	Text string `json:"text"`
}

type phrase struct {
	OffsetMilliseconds   int64  `json:"offsetMilliseconds"`
	DurationMilliseconds int64  `json:"durationMilliseconds"`
	Text                 string `json:"text"`
	Locale               string `json:"locale"`
	Speaker              int    `json:"speaker,omitempty"`
}

func (r *transcribeResponse) toResponse(locale string) *transcription.TranscriptionResponse {
	segments := make([]transcription.Segment, 0, len(r.Phrases))
	for _, ph := range r.Phrases {
		seg := transcription.Segment{
			Start: float64(ph.OffsetMilliseconds) / 1000,
			End:   float64(ph.OffsetMilliseconds+ph.DurationMilliseconds) / 1000,
			Text:  ph.Text,
		}
		if ph.Speaker > 0 {
			seg.Speaker = fmt.Sprintf("speaker-%d", ph.Speaker)
		}
		if locale == "" && ph.Locale != "" {
			locale = ph.Locale
		}
		segments = append(segments, seg)
	}

	text := transcription.JoinText(segments)
	if len(r.CombinedPhrases) > 0 {
		parts := make([]string, 0, len(r.CombinedPhrases))
		for _, cp := range r.CombinedPhrases {
			parts = append(parts, cp.Text)
		}
		text = strings.Join(parts, "\n")
	}

	return &transcription.TranscriptionResponse{
		Text:     text,
		Segments: segments,
		Duration: float64(r.DurationMilliseconds) / 1000,
		Locale:   locale,
	}
}
