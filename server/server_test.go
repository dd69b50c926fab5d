package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/audiodesk/component"
	"github.com/kbukum/audiodesk/logger"
)

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Port != 8080 || cfg.ReadTimeout != 60*time.Second || cfg.MaxBodySize != "256MB" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	bad := Config{Port: 70000}
	if err := bad.Validate(); err == nil {
		t.Error("expected port validation error")
	}
}

func TestServerMiddlewareStack(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	s := New(cfg, logger.NewNop())
	s.ApplyMiddleware(nil, nil)
	s.RegisterHealth("audiodesk", func(context.Context) []component.Health {
		return []component.Health{{Name: "database", Status: component.StatusHealthy}}
	})

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if w.Header().Get("X-Request-Id") == "" {
			t.Error("expected request id header")
		}
	})

	t.Run("unknown route is a JSON 404 without an error page", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d", w.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid body: %v", err)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/health", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d", w.Code)
		}
	})
}

func TestServerLifecycle(t *testing.T) {
	s := New(Config{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second}, logger.NewNop())
	s.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	sc := NewComponent(s)

	if h := sc.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %s", h.Status)
	}
	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := sc.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("health after start = %s", h.Status)
	}

	resp, err := http.Get("http://" + s.Addr() + "/ping")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "pong" {
		t.Errorf("body = %q", body)
	}

	if err := sc.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if h := sc.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("health after stop = %s", h.Status)
	}
	if d := sc.Describe(); d.Type != "server" {
		t.Errorf("describe = %+v", d)
	}
}
