package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/optigate/pkg/formatting"
	"github.com/JaimeStill/optigate/pkg/middleware"
	"github.com/JaimeStill/optigate/pkg/openapi"
	"github.com/JaimeStill/optigate/pkg/pagination"
)

const (
	EnvAPIBasePath    = "OPTIGATE_API_BASE_PATH"
	EnvAPIMaxBodySize = "OPTIGATE_API_MAX_BODY_SIZE"

	defaultMaxBodySize = 1 << 20
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "OPTIGATE_CORS_ENABLED",
	Origins:          "OPTIGATE_CORS_ORIGINS",
	AllowedMethods:   "OPTIGATE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "OPTIGATE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "OPTIGATE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "OPTIGATE_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultLimit: "OPTIGATE_PAGINATION_DEFAULT_LIMIT",
	MaxLimit:     "OPTIGATE_PAGINATION_MAX_LIMIT",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "OPTIGATE_OPENAPI_TITLE",
	Description: "OPTIGATE_OPENAPI_DESCRIPTION",
	Servers:     "OPTIGATE_OPENAPI_SERVERS",
}

// APIConfig holds API routing, request limits, CORS, pagination and OpenAPI settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`
	OpenAPI     openapi.Config        `toml:"openapi"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes, falling back to 1MB when unparseable.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil || size <= 0 {
		return defaultMaxBodySize
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxBodySize); err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxBodySize); v != "" {
		c.MaxBodySize = v
	}
}
