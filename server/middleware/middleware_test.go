package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/audiodesk/auth"
	apperrors "github.com/kbukum/audiodesk/errors"
	"github.com/kbukum/audiodesk/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newBufferLogger() (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf), &buf
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

func TestRecovery_AttachesInternalError(t *testing.T) {
	log, buf := newBufferLogger()
	var captured error

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		if last := c.Errors.Last(); last != nil {
			captured = last.Err
		}
	})
	r.Use(Recovery(log))
	r.GET("/boom", func(c *gin.Context) { panic("test panic") })

	serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))

	appErr, ok := apperrors.AsAppError(captured)
	if !ok || appErr.Code != apperrors.ErrCodeInternal {
		t.Fatalf("expected internal AppError, got %v", captured)
	}
	if !strings.Contains(buf.String(), "Panic recovered") || !strings.Contains(buf.String(), "test panic") {
		t.Errorf("expected panic log, got %s", buf.String())
	}
}

func TestRecovery_NoPanic(t *testing.T) {
	log, _ := newBufferLogger()
	r := gin.New()
	r.Use(Recovery(log))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	if w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil)); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// RequestID
// ---------------------------------------------------------------------------

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		reuse    bool
	}{
		{"generates when missing", "", false},
		{"preserves existing", "req-abc", true},
		{"replaces oversized", strings.Repeat("x", 200), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log, buf := newBufferLogger()
			r := gin.New()
			r.Use(RequestID())
			r.GET("/", func(c *gin.Context) {
				log.WithContext(c.Request.Context()).Info("inside")
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.incoming != "" {
				req.Header.Set(HeaderRequestID, tc.incoming)
			}
			w := serve(r, req)

			got := w.Header().Get(HeaderRequestID)
			if got == "" {
				t.Fatal("expected response request id")
			}
			if tc.reuse && got != tc.incoming {
				t.Errorf("request id = %q, want %q", got, tc.incoming)
			}
			if !tc.reuse && got == tc.incoming {
				t.Errorf("expected a generated id, got %q", got)
			}
			var line map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
				t.Fatalf("invalid log line: %v", err)
			}
			if line[logger.FieldRequestID] != got {
				t.Errorf("log request_id = %v, want %q", line[logger.FieldRequestID], got)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// RequestLogger
// ---------------------------------------------------------------------------

type recordedRequest struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []recordedRequest
}

func (f *fakeRecorder) RecordRequest(_ context.Context, method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, recordedRequest{method, route, status})
}

func TestRequestLogger(t *testing.T) {
	log, buf := newBufferLogger()
	rec := &fakeRecorder{}

	r := gin.New()
	r.Use(RequestLogger(log, rec))
	r.GET("/api/transcripts/:id/chunks", func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound("document", c.Param("id")))
		c.Status(http.StatusNotFound)
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/api/transcripts/d1/chunks", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line (health skipped), got %d: %s", len(lines), buf.String())
	}
	var line map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &line); err != nil {
		t.Fatalf("invalid log line: %v", err)
	}
	if line["level"] != "warn" {
		t.Errorf("level = %v, want warn", line["level"])
	}
	if line["route"] != "/api/transcripts/:id/chunks" {
		t.Errorf("route = %v", line["route"])
	}
	if line["error_code"] != string(apperrors.ErrCodeNotFound) {
		t.Errorf("error_code = %v", line["error_code"])
	}

	if len(rec.seen) != 2 {
		t.Fatalf("expected both requests recorded, got %d", len(rec.seen))
	}
	if rec.seen[0] != (recordedRequest{http.MethodGet, "/api/transcripts/:id/chunks", http.StatusNotFound}) {
		t.Errorf("unexpected record %+v", rec.seen[0])
	}
}

func TestRequestLogger_NilRecorder(t *testing.T) {
	log, _ := newBufferLogger()
	r := gin.New()
	r.Use(RequestLogger(log, nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil)); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// CORS and BodySizeLimit through GinWrap
// ---------------------------------------------------------------------------

func TestCORS(t *testing.T) {
	cfg := &CORSConfig{
		AllowedOrigins:   []string{"https://desk.example.com"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}
	r := gin.New()
	r.Use(GinWrap(CORS(cfg)))
	r.GET("/api/transcripts", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/transcripts", nil)
		req.Header.Set("Origin", "https://desk.example.com")
		w := serve(r, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://desk.example.com" {
			t.Errorf("allow origin = %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("allow credentials = %q", got)
		}
	})

	t.Run("disallowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/transcripts", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := serve(r, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("expected no allow origin, got %q", got)
		}
	})

	t.Run("preflight aborts chain", func(t *testing.T) {
		reached := false
		pr := gin.New()
		pr.Use(GinWrap(CORS(cfg)))
		pr.OPTIONS("/api/documents/upload", func(c *gin.Context) { reached = true })

		req := httptest.NewRequest(http.MethodOptions, "/api/documents/upload", nil)
		req.Header.Set("Origin", "https://desk.example.com")
		w := serve(pr, req)
		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", w.Code)
		}
		if reached {
			t.Error("handler should not run on preflight")
		}
	})
}

func TestBodySizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(GinWrap(BodySizeLimit("10B")))
	r.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	small := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	if small.Code != http.StatusOK {
		t.Errorf("small body status = %d", small.Code)
	}
	big := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 64))))
	if big.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("big body status = %d", big.Code)
	}
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

type fakeResolver struct {
	claims *auth.SessionClaims
	err    error
}

func (f fakeResolver) Resolve(*http.Request) (*auth.SessionClaims, error) {
	return f.claims, f.err
}

func TestSession(t *testing.T) {
	tests := []struct {
		name     string
		resolver fakeResolver
		wantUser string
		wantLog  bool
	}{
		{"signed in", fakeResolver{claims: &auth.SessionClaims{UserID: "user-1"}}, "user-1", false},
		{"anonymous", fakeResolver{err: auth.ErrNoSession}, "", false},
		{"invalid token", fakeResolver{err: apperrors.InvalidToken()}, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log, buf := newBufferLogger()
			var gotUser string
			r := gin.New()
			r.Use(Session(tc.resolver, log))
			r.GET("/", func(c *gin.Context) {
				gotUser = auth.UserID(c.Request.Context())
				c.Status(http.StatusOK)
			})

			w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			if gotUser != tc.wantUser {
				t.Errorf("user = %q, want %q", gotUser, tc.wantUser)
			}
			if logged := strings.Contains(buf.String(), "Ignoring invalid session"); logged != tc.wantLog {
				t.Errorf("logged = %v, want %v", logged, tc.wantLog)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// RateLimit
// ---------------------------------------------------------------------------

func TestRateLimit(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var rejected error

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		if last := c.Errors.Last(); last != nil {
			rejected = last.Err
		}
	})
	r.Use(RateLimit(RateLimitConfig{
		RequestsPerMinute: 2,
		KeyFunc:           IPBasedKey,
		now:               func() time.Time { return now },
	}))
	r.POST("/api/documents/upload", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		return serve(r, req).Code
	}

	if send() != http.StatusOK || send() != http.StatusOK {
		t.Fatal("first two requests should pass")
	}
	send()
	if appErr, ok := apperrors.AsAppError(rejected); !ok || appErr.Code != apperrors.ErrCodeRateLimited {
		t.Fatalf("expected rate limited error, got %v", rejected)
	}

	rejected = nil
	now = now.Add(61 * time.Second)
	if send() != http.StatusOK || rejected != nil {
		t.Errorf("window should have slid, err = %v", rejected)
	}
}

func TestUserBasedKey(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	c.Request = req
	if got := UserBasedKey(c); got != "ip:10.0.0.2" {
		t.Errorf("anonymous key = %q", got)
	}

	c.Request = req.WithContext(auth.WithSession(req.Context(), &auth.SessionClaims{UserID: "u9"}))
	if got := UserBasedKey(c); got != "user:u9" {
		t.Errorf("user key = %q", got)
	}
}

// ---------------------------------------------------------------------------
// Tracing
// ---------------------------------------------------------------------------

func TestTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := gin.New()
	r.Use(RequestID(), Tracing())
	r.GET("/transcripts", func(c *gin.Context) {
		_ = c.Error(apperrors.Internal(nil))
		c.Status(http.StatusInternalServerError)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/transcripts", nil))

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "GET /transcripts" {
		t.Errorf("span name = %q", spans[0].Name())
	}
	if spans[0].Status().Code.String() != "Error" {
		t.Errorf("span status = %v", spans[0].Status())
	}
	var sawStatus bool
	for _, kv := range spans[0].Attributes() {
		if string(kv.Key) == "http.response.status_code" && kv.Value.AsInt64() == http.StatusInternalServerError {
			sawStatus = true
		}
	}
	if !sawStatus {
		t.Error("expected status code attribute")
	}
}
