package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/audiodesk/errors"
)

func TestManagedIdentityCachesUntilNearExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		q := r.URL.Query()
		if q.Get("resource") != tokenResource || q.Get("api-version") != identityAPIVersion {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		if q.Get("client_id") != "user-assigned" {
			t.Errorf("client_id = %q", q.Get("client_id"))
		}
		if r.Header.Get("Metadata") != "true" {
			t.Error("missing Metadata header")
		}
		expires := now.Add(time.Hour).Unix()
		_, _ = w.Write([]byte(`{"access_token":"tok-` + strconv.Itoa(int(n)) + `","expires_on":"` + strconv.FormatInt(expires, 10) + `"}`))
	}))
	defer srv.Close()

	mi, err := NewManagedIdentity(IdentityConfig{Endpoint: srv.URL, ClientID: "user-assigned"})
	if err != nil {
		t.Fatalf("NewManagedIdentity: %v", err)
	}
	mi.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		tok, err := mi.Token(context.Background())
		if err != nil || tok != "tok-1" {
			t.Fatalf("Token = %q, %v", tok, err)
		}
	}

	now = now.Add(56 * time.Minute)
	tok, err := mi.Token(context.Background())
	if err != nil || tok != "tok-2" {
		t.Fatalf("Token after expiry window = %q, %v", tok, err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestManagedIdentityErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"identity unavailable", http.StatusBadRequest, `{"error":"invalid_request"}`},
		{"empty token", http.StatusOK, `{"expires_in":"3600"}`},
		{"malformed body", http.StatusOK, `not json`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			mi, _ := NewManagedIdentity(IdentityConfig{Endpoint: srv.URL})
			_, err := mi.Token(context.Background())
			appErr, ok := apperrors.AsAppError(err)
			if !ok || appErr.Code != apperrors.ErrCodeExternalService {
				t.Fatalf("expected external service error, got %v", err)
			}
		})
	}
}

func TestIdentityConfigDefaults(t *testing.T) {
	var cfg IdentityConfig
	cfg.ApplyDefaults()
	if cfg.Endpoint != DefaultIdentityEndpoint || cfg.Timeout != defaultIdentityTimeout {
		t.Errorf("defaults = %+v", cfg)
	}
}
