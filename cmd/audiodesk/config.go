package main

import (
	"errors"
	"fmt"

	"github.com/kbukum/audiodesk/auth"
	"github.com/kbukum/audiodesk/config"
	"github.com/kbukum/audiodesk/database"
	"github.com/kbukum/audiodesk/flash"
	"github.com/kbukum/audiodesk/observability"
	"github.com/kbukum/audiodesk/redis"
	"github.com/kbukum/audiodesk/server"
	"github.com/kbukum/audiodesk/settings"
	"github.com/kbukum/audiodesk/storage"
	"github.com/kbukum/audiodesk/transcripts"
)

// AppConfig is the full configuration of the audiodesk binary.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server   server.Config            `yaml:"server" mapstructure:"server"`
	Auth     auth.Config              `yaml:"auth" mapstructure:"auth"`
	Database database.Config          `yaml:"database" mapstructure:"database"`
	Redis    redis.Config             `yaml:"redis" mapstructure:"redis"`
	Storage  storage.Config           `yaml:"storage" mapstructure:"storage"`
	Settings settings.Config          `yaml:"settings" mapstructure:"settings"`
	Flash    flash.Config             `yaml:"flash" mapstructure:"flash"`
	Worker   transcripts.WorkerConfig `yaml:"worker" mapstructure:"worker"`
	Tracing  observability.Config     `yaml:"tracing" mapstructure:"tracing"`
}

func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Settings.ApplyDefaults()
	c.Flash.ApplyDefaults()
	c.Worker.ApplyDefaults()

	c.Tracing.ServiceName = c.Name
	c.Tracing.ServiceVersion = c.Version
	c.Tracing.Environment = c.Environment
	c.Tracing.ApplyDefaults()
}

func (c *AppConfig) Validate() error {
	var errs []error
	if err := c.ServiceConfig.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	if err := c.Redis.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("redis: %w", err))
	}
	if !c.Storage.Enabled {
		errs = append(errs, errors.New("storage: must be enabled to accept uploads"))
	} else if err := c.Storage.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Settings.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Flash.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Worker.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("worker: %w", err))
	}
	if !c.Redis.Enabled {
		if c.Worker.Queue == transcripts.QueueRedis {
			errs = append(errs, errors.New("worker: the redis queue requires redis.enabled"))
		}
		if c.Flash.Backend == flash.BackendRedis {
			errs = append(errs, errors.New("flash: the redis backend requires redis.enabled"))
		}
	}
	return errors.Join(errs...)
}
