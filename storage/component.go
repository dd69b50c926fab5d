package storage

import (
	"context"
	"fmt"

	"github.com/kbukum/audiodesk/component"
	"github.com/kbukum/audiodesk/logger"
)

const healthProbePath = ".health"

// Component wraps Storage for lifecycle management.
type Component struct {
	storage Storage
	cfg     Config
	log     *logger.Logger
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a storage component for the registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("storage")}
}

// Storage returns the backend, or nil if not started or disabled.
func (c *Component) Storage() Storage { return c.storage }

func (c *Component) Name() string { return "storage" }

// Start initializes the storage backend.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("Storage component is disabled")
		return nil
	}
	s, err := New(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.storage = s
	return nil
}

func (c *Component) Stop(_ context.Context) error {
	c.storage = nil
	return nil
}

// Health probes the backend with an existence check.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	switch {
	case !c.cfg.Enabled:
		h.Message = "disabled"
	case c.storage == nil:
		h.Status, h.Message = component.StatusUnhealthy, "storage not initialized"
	default:
		if _, err := c.storage.Exists(ctx, healthProbePath); err != nil {
			h.Status, h.Message = component.StatusUnhealthy, fmt.Sprintf("health probe failed: %v", err)
		}
	}
	return h
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("provider=%s max_upload=%d", c.cfg.Provider, c.cfg.MaxUploadBytes())
	switch c.cfg.Provider {
	case ProviderLocal:
		details += " path=" + c.cfg.Local.BasePath
	case ProviderS3:
		details += " bucket=" + c.cfg.S3.Bucket
	}
	return component.Description{Name: "Storage", Type: "storage", Details: details}
}
