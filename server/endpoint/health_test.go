package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/audiodesk/component"
)

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		components []component.Health
		wantCode   int
		wantStatus string
	}{
		{"no components", nil, http.StatusOK, "healthy"},
		{"all healthy", []component.Health{{Name: "database", Status: component.StatusHealthy}}, http.StatusOK, "healthy"},
		{"degraded", []component.Health{
			{Name: "database", Status: component.StatusHealthy},
			{Name: "redis", Status: component.StatusDegraded},
		}, http.StatusOK, "degraded"},
		{"unhealthy", []component.Health{
			{Name: "redis", Status: component.StatusDegraded},
			{Name: "database", Status: component.StatusUnhealthy, Message: "ping failed"},
		}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", Health("audiodesk", func(context.Context) []component.Health {
				return tc.components
			}))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tc.wantCode {
				t.Fatalf("status code = %d, want %d", w.Code, tc.wantCode)
			}
			var body struct {
				Status  string `json:"status"`
				Service string `json:"service"`
				Version struct {
					Version string `json:"version"`
				} `json:"version"`
				Components []component.Health `json:"components"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if body.Status != tc.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tc.wantStatus)
			}
			if body.Service != "audiodesk" {
				t.Errorf("service = %q", body.Service)
			}
			if body.Version.Version == "" {
				t.Error("expected build version in body")
			}
			if len(body.Components) != len(tc.components) {
				t.Errorf("components = %d, want %d", len(body.Components), len(tc.components))
			}
		})
	}
}
