package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/audiodesk/component"
	"github.com/kbukum/audiodesk/logger"
	"github.com/kbukum/audiodesk/security"
)

type testState struct {
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)

	client, err := New(Config{Enabled: true, Addr: mini.Addr()}, logger.NewNop())
	if err != nil {
		t.Fatalf("failed to create redis client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, mini
}

func TestTypedStore_SaveLoadDelete(t *testing.T) {
	client, mini := newTestClient(t)
	store := NewTypedStore[testState](client, "state")
	ctx := context.Background()

	if err := store.Save(ctx, "k1", &testState{Count: 5, Tags: []string{"a", "b"}}, time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !mini.Exists("audiodesk:state:k1") {
		t.Fatalf("expected prefixed key, have %v", mini.Keys())
	}

	got, err := store.Load(ctx, "k1")
	if err != nil || got == nil {
		t.Fatalf("Load: %v, %v", got, err)
	}
	if got.Count != 5 || len(got.Tags) != 2 {
		t.Fatalf("unexpected state %+v", got)
	}

	if err := store.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = store.Load(ctx, "k1")
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil) after delete, got %v, %v", got, err)
	}
}

func TestTypedStore_TTL(t *testing.T) {
	client, mini := newTestClient(t)
	store := NewTypedStore[testState](client, "ttl")
	ctx := context.Background()

	store.Save(ctx, "k", &testState{Count: 1}, time.Second)
	mini.FastForward(2 * time.Second)

	got, err := store.Load(ctx, "k")
	if err != nil || got != nil {
		t.Fatalf("expected expiry, got %v, %v", got, err)
	}
}

func TestTypedStore_CorruptValue(t *testing.T) {
	client, mini := newTestClient(t)
	mini.Set("audiodesk:state:bad", "{not json")
	store := NewTypedStore[testState](client, "state")

	if _, err := store.Load(context.Background(), "bad"); err == nil {
		t.Error("expected unmarshal error")
	}
}

func TestClient_ListOps(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	key := client.Key("list")

	if err := client.RPush(ctx, key, "a", "b"); err != nil {
		t.Fatalf("RPush: %v", err)
	}
	v, err := client.BLPop(ctx, time.Second, key)
	if err != nil || v != "a" {
		t.Fatalf("BLPop = %q, %v", v, err)
	}
	rest, err := client.LPopAll(ctx, key)
	if err != nil || len(rest) != 1 || rest[0] != "b" {
		t.Fatalf("LPopAll = %v, %v", rest, err)
	}
	rest, err = client.LPopAll(ctx, key)
	if err != nil || len(rest) != 0 {
		t.Fatalf("expected empty list, got %v, %v", rest, err)
	}
}

func TestComponentLifecycle(t *testing.T) {
	mini := miniredis.RunT(t)
	c := NewComponent(Config{Enabled: true, Addr: mini.Addr()}, logger.NewNop())
	ctx := context.Background()

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", h.Status, h.Message)
	}
	if c.Client() == nil {
		t.Fatal("expected client after start")
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Enabled: true, DB: -1, Addr: "x:1"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative db")
	}
	disabled := Config{}
	if err := disabled.Validate(); err != nil {
		t.Errorf("disabled config should validate, got %v", err)
	}
	halfPair := Config{Enabled: true, Addr: "x:1", TLS: security.TLSConfig{CertFile: "client.pem"}}
	if err := halfPair.Validate(); err == nil {
		t.Error("expected error for cert without key")
	}
}

func TestNewWithTLS(t *testing.T) {
	c, err := New(Config{Enabled: true, Addr: "cache.example.net:6380", TLS: security.TLSConfig{Enabled: true}}, logger.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = c.Close() }()
	if c.Unwrap().Options().TLSConfig == nil {
		t.Error("expected TLS on the underlying client")
	}

	_, err = New(Config{Enabled: true, Addr: "x:1", TLS: security.TLSConfig{CAFile: "/does/not/exist.pem"}}, logger.NewNop())
	if err == nil {
		t.Error("expected error for unreadable CA file")
	}
}
