package bootstrap

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/audiodesk/component"
	"github.com/kbukum/audiodesk/config"
	"github.com/kbukum/audiodesk/logger"
)

type testConfig struct {
	config.ServiceConfig `mapstructure:",squash"`
}

type recorder struct {
	name   string
	events *[]string
	health component.HealthStatus
}

func (r *recorder) Name() string { return r.name }
func (r *recorder) Start(ctx context.Context) error {
	*r.events = append(*r.events, "start:"+r.name)
	return nil
}
func (r *recorder) Stop(ctx context.Context) error {
	*r.events = append(*r.events, "stop:"+r.name)
	return nil
}
func (r *recorder) Health(ctx context.Context) component.Health {
	status := r.health
	if status == "" {
		status = component.StatusHealthy
	}
	return component.Health{Name: r.name, Status: status}
}

func newTestApp(t *testing.T) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "audiodesk"}}
	app, err := NewApp(cfg, WithLogger(logger.NewNop()), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func TestNewAppValidatesConfig(t *testing.T) {
	_, err := NewApp(&testConfig{}, WithLogger(logger.NewNop()))
	if err == nil || !strings.Contains(err.Error(), "config validation") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewAppAppliesDefaults(t *testing.T) {
	app := newTestApp(t)
	if app.Cfg.Environment != "development" {
		t.Errorf("environment = %q", app.Cfg.Environment)
	}
	if app.Name != "audiodesk" {
		t.Errorf("name = %q", app.Name)
	}
}

func TestRunLifecycleOrder(t *testing.T) {
	app := newTestApp(t)
	var events []string
	app.RegisterComponent(&recorder{name: "database", events: &events})
	app.RegisterComponent(&recorder{name: "http-server", events: &events})

	ctx, cancel := context.WithCancel(context.Background())
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		events = append(events, "configure")
		return nil
	})
	app.OnReady(func(ctx context.Context) error {
		events = append(events, "ready")
		cancel()
		return nil
	})
	app.OnStop(func(ctx context.Context) error {
		events = append(events, "on-stop")
		return nil
	})

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"start:database", "start:http-server",
		"configure", "ready",
		"on-stop", "stop:http-server", "stop:database",
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v\nwant %v", events, want)
	}
}

func TestRunConfigureFailureShutsDown(t *testing.T) {
	app := newTestApp(t)
	var events []string
	app.RegisterComponent(&recorder{name: "database", events: &events})
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		return fmt.Errorf("wiring failed")
	})

	err := app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "wiring failed") {
		t.Fatalf("expected configure error, got %v", err)
	}
	if events[len(events)-1] != "stop:database" {
		t.Errorf("expected database to be stopped, events = %v", events)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t)
	var events []string
	app.RegisterComponent(&recorder{name: "redis", events: &events, health: component.StatusUnhealthy})

	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "redis=unhealthy") {
		t.Errorf("expected unhealthy redis, got %v", err)
	}
}
