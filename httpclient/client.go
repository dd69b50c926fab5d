package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/kbukum/audiodesk/errors"
)

// maxErrorBody caps how much of a failed response is kept for the error.
const maxErrorBody = 4096

// Client is an HTTP client bound to one remote service.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a client from cfg.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{
		httpClient: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		config:     cfg,
	}, nil
}

// Name returns the configured service name.
func (c *Client) Name() string { return c.config.Name }

// Do sends req and reads the whole response. A non-2xx status returns the
// response together with an *errors.AppError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		appErr := apperrors.ExternalServiceError(c.config.Name, err)
		if ctx.Err() != nil {
			appErr.Retryable = false
		}
		return nil, appErr
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ExternalServiceError(c.config.Name, fmt.Errorf("read response body: %w", err))
	}

	result := &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Body: body}
	if !result.IsSuccess() {
		return result, c.statusError(resp.StatusCode, body)
	}
	return result, nil
}

// statusError maps a failed status; only throttling and server errors
// stay retryable.
func (c *Client) statusError(status int, body []byte) *apperrors.AppError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	err := apperrors.ExternalServiceError(c.config.Name,
		fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(body)))).
		WithDetail("status", status)
	if status != http.StatusTooManyRequests && status < 500 {
		err.Retryable = false
	}
	return err
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := req.Path
	if c.config.BaseURL != "" && !strings.HasPrefix(req.Path, "http://") && !strings.HasPrefix(req.Path, "https://") {
		url = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("encode body: %w", err))
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create request: %w", err))
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	auth := c.config.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	if err := auth.apply(ctx, httpReq); err != nil {
		return nil, apperrors.ExternalServiceError(c.config.Name, err)
	}
	return httpReq, nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case *MultipartBody:
		return v.encode()
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
