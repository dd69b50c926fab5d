package component

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/kbukum/audiodesk/logger"
)

type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health { return m.health }

func newTestRegistry() *Registry { return NewRegistry(logger.NewNop()) }

func TestRegisterDuplicate(t *testing.T) {
	r := newTestRegistry()
	if err := r.Register(&mockComponent{name: "database"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "database"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestStartStopOrder(t *testing.T) {
	var started, stopped []string
	r := newTestRegistry()
	for _, name := range []string{"database", "redis", "http-server"} {
		r.Register(&mockComponent{name: name, startOrder: &started, stopOrder: &stopped})
	}

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	if want := []string{"database", "redis", "http-server"}; !reflect.DeepEqual(started, want) {
		t.Errorf("start order = %v, want %v", started, want)
	}
	if want := []string{"http-server", "redis", "database"}; !reflect.DeepEqual(stopped, want) {
		t.Errorf("stop order = %v, want %v", stopped, want)
	}
}

func TestStartAllFailureStopsOnlyStarted(t *testing.T) {
	var started, stopped []string
	r := newTestRegistry()
	r.Register(&mockComponent{name: "database", startOrder: &started, stopOrder: &stopped})
	r.Register(&mockComponent{name: "redis", startErr: fmt.Errorf("refused"), startOrder: &started, stopOrder: &stopped})
	r.Register(&mockComponent{name: "worker", startOrder: &started, stopOrder: &stopped})

	err := r.StartAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "redis") {
		t.Fatalf("expected redis start error, got %v", err)
	}
	if len(started) != 2 {
		t.Errorf("worker must not start after failure, started = %v", started)
	}

	r.StopAll(context.Background())
	if !reflect.DeepEqual(stopped, []string{"database"}) {
		t.Errorf("stopped = %v, want only database", stopped)
	}
}

func TestStopAllCollectsErrors(t *testing.T) {
	r := newTestRegistry()
	r.Register(&mockComponent{name: "a", stopErr: fmt.Errorf("boom")})
	r.Register(&mockComponent{name: "b"})
	r.StartAll(context.Background())

	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected shutdown error")
	}
}

func TestHealthAllAndOverall(t *testing.T) {
	r := newTestRegistry()
	r.Register(&mockComponent{name: "a", health: Health{Name: "a", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "b", health: Health{Name: "b", Status: StatusDegraded}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if got := Overall(results); got != StatusDegraded {
		t.Errorf("Overall = %s, want degraded", got)
	}

	results = append(results, Health{Name: "c", Status: StatusUnhealthy})
	if got := Overall(results); got != StatusUnhealthy {
		t.Errorf("Overall = %s, want unhealthy", got)
	}
	if got := Overall(nil); got != StatusHealthy {
		t.Errorf("Overall(nil) = %s, want healthy", got)
	}
}

func TestGetAndAll(t *testing.T) {
	r := newTestRegistry()
	c := &mockComponent{name: "storage"}
	r.Register(c)

	if r.Get("storage") != c {
		t.Error("expected Get to return registered component")
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unknown component")
	}
	if len(r.All()) != 1 {
		t.Errorf("All() = %d entries", len(r.All()))
	}
}
