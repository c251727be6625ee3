package openapi

import (
	"os"
	"strings"
)

// Config carries document metadata. Servers lists public URLs the API is
// reachable at in addition to the mounted base path, such as a gateway host.
type Config struct {
	Title       string   `toml:"title"`
	Description string   `toml:"description"`
	Servers     []string `toml:"servers"`
}

// ConfigEnv names the environment variables that override Config.
// Servers is read as a comma-separated list.
type ConfigEnv struct {
	Title       string
	Description string
	Servers     string
}

func (c *Config) Finalize(env *ConfigEnv) error {
	if env != nil {
		c.loadEnv(env)
	}
	if c.Title == "" {
		c.Title = "Optigate API"
	}
	if c.Description == "" {
		c.Description = "Per-facility medical equipment analysis settings, classification hierarchy and report selection."
	}
	return nil
}

func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
	if len(overlay.Servers) > 0 {
		c.Servers = overlay.Servers
	}
}

// Apply writes the metadata into spec. basePath is listed first.
func (c *Config) Apply(spec *Spec, basePath string) {
	spec.Info.Title = c.Title
	spec.SetDescription(c.Description)
	spec.AddServer(basePath)
	for _, s := range c.Servers {
		spec.AddServer(s)
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	lookup := func(key string) (string, bool) {
		if key == "" {
			return "", false
		}
		v := os.Getenv(key)
		return v, v != ""
	}

	if v, ok := lookup(env.Title); ok {
		c.Title = v
	}
	if v, ok := lookup(env.Description); ok {
		c.Description = v
	}
	if v, ok := lookup(env.Servers); ok {
		c.Servers = nil
		for s := range strings.SplitSeq(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.Servers = append(c.Servers, s)
			}
		}
	}
}
