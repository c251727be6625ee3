package config

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/database"
	"github.com/JaimeStill/optigate/pkg/metrics"
	"github.com/JaimeStill/optigate/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvOptigateEnv             = "OPTIGATE_ENV"
	EnvOptigateShutdownTimeout = "OPTIGATE_SHUTDOWN_TIMEOUT"
	EnvOptigateVersion         = "OPTIGATE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "OPTIGATE_DB_HOST",
	Port:            "OPTIGATE_DB_PORT",
	Name:            "OPTIGATE_DB_NAME",
	User:            "OPTIGATE_DB_USER",
	Password:        "OPTIGATE_DB_PASSWORD",
	SSLMode:         "OPTIGATE_DB_SSL_MODE",
	MaxOpenConns:    "OPTIGATE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "OPTIGATE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "OPTIGATE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "OPTIGATE_DB_CONN_TIMEOUT",
	LockTimeout:     "OPTIGATE_DB_LOCK_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "OPTIGATE_STORAGE_CONTAINER_NAME",
	ConnectionString: "OPTIGATE_STORAGE_CONNECTION_STRING",
	AccountURL:       "OPTIGATE_STORAGE_ACCOUNT_URL",
	MaxListSize:      "OPTIGATE_STORAGE_MAX_LIST_SIZE",
	MaxRetries:       "OPTIGATE_STORAGE_MAX_RETRIES",
}

var authEnv = &auth.Env{
	Mode:          "OPTIGATE_AUTH_MODE",
	IssuerURL:     "OPTIGATE_AUTH_ISSUER_URL",
	ClientID:      "OPTIGATE_AUTH_CLIENT_ID",
	RoleClaim:     "OPTIGATE_AUTH_ROLE_CLAIM",
	FacilityClaim: "OPTIGATE_AUTH_FACILITY_CLAIM",
}

var metricsEnv = &metrics.Env{
	Enabled:   "OPTIGATE_METRICS_ENABLED",
	Path:      "OPTIGATE_METRICS_PATH",
	Namespace: "OPTIGATE_METRICS_NAMESPACE",
}

// Config is the root configuration for the optigate service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Auth            auth.Config     `toml:"auth"`
	Metrics         metrics.Config  `toml:"metrics"`
	Reports         ReportsConfig   `toml:"reports"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the OPTIGATE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvOptigateEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Metrics.Merge(&overlay.Metrics)
	c.Reports.Merge(&overlay.Reports)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Metrics.Finalize(metricsEnv); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := c.Reports.Finalize(); err != nil {
		return fmt.Errorf("reports: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvOptigateShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvOptigateVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvOptigateEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
