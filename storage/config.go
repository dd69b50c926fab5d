package storage

import (
	"errors"
	"fmt"

	"github.com/kbukum/audiodesk/util"
)

// Provider constants for supported storage backends.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

// Default configuration values.
const (
	DefaultProvider      = ProviderLocal
	DefaultBasePath      = "./data/uploads"
	DefaultRegion        = "us-east-1"
	DefaultMaxUploadSize = int64(200 * 1024 * 1024)
)

// LocalConfig configures the filesystem backend.
type LocalConfig struct {
	BasePath string `mapstructure:"base_path" json:"base_path"`
}

// S3Config configures the S3 backend.
type S3Config struct {
	Bucket string `mapstructure:"bucket" json:"bucket"`
	Region string `mapstructure:"region" json:"region"`

	// Endpoint is a custom S3-compatible endpoint (e.g. MinIO).
	Endpoint  string `mapstructure:"endpoint" json:"endpoint"`
	AccessKey string `mapstructure:"access_key" json:"access_key"`
	SecretKey string `mapstructure:"secret_key" json:"-"`

	// ForcePathStyle forces path-style URLs instead of virtual-hosted-style.
	ForcePathStyle bool `mapstructure:"force_path_style" json:"force_path_style"`
}

// Config holds storage configuration.
type Config struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`

	// Provider selects the storage backend: "local" or "s3".
	Provider string `mapstructure:"provider" json:"provider"`

	// MaxUploadSize caps a single uploaded file, e.g. "200MB".
	MaxUploadSize string `mapstructure:"max_upload_size" json:"max_upload_size"`

	Local LocalConfig `mapstructure:"local" json:"local"`
	S3    S3Config    `mapstructure:"s3" json:"s3"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Local.BasePath == "" {
		c.Local.BasePath = DefaultBasePath
	}
	if c.S3.Region == "" {
		c.S3.Region = DefaultRegion
	}
}

// MaxUploadBytes returns the parsed upload limit.
func (c *Config) MaxUploadBytes() int64 {
	return util.ParseSize(c.MaxUploadSize, DefaultMaxUploadSize)
}

// Validate checks that the configuration is valid for the selected provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderLocal:
		if c.Local.BasePath == "" {
			return errors.New("storage: local.base_path is required for local provider")
		}
	case ProviderS3:
		var errs []error
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("storage: s3.bucket is required"))
		}
		if c.S3.Region == "" {
			errs = append(errs, errors.New("storage: s3.region is required"))
		}
		if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
			errs = append(errs, errors.New("storage: s3.access_key and s3.secret_key must be set together"))
		}
		if len(errs) > 0 {
			return fmt.Errorf("storage: invalid s3 config: %w", errors.Join(errs...))
		}
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	return nil
}
