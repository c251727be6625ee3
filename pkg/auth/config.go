package auth

import (
	"fmt"
	"os"
)

const (
	ModeHeader = "header"
	ModeOIDC   = "oidc"
)

// Config selects how principals are resolved.
// Header mode trusts X-User-* headers and is meant for local development.
type Config struct {
	Mode          string `toml:"mode"`
	IssuerURL     string `toml:"issuer_url"`
	ClientID      string `toml:"client_id"`
	RoleClaim     string `toml:"role_claim"`
	FacilityClaim string `toml:"facility_claim"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Mode          string
	IssuerURL     string
	ClientID      string
	RoleClaim     string
	FacilityClaim string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.IssuerURL != "" {
		c.IssuerURL = overlay.IssuerURL
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.RoleClaim != "" {
		c.RoleClaim = overlay.RoleClaim
	}
	if overlay.FacilityClaim != "" {
		c.FacilityClaim = overlay.FacilityClaim
	}
}

func (c *Config) loadDefaults() {
	if c.Mode == "" {
		c.Mode = ModeHeader
	}
	if c.RoleClaim == "" {
		c.RoleClaim = "role"
	}
	if c.FacilityClaim == "" {
		c.FacilityClaim = "facility_id"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Mode, &c.Mode)
	set(env.IssuerURL, &c.IssuerURL)
	set(env.ClientID, &c.ClientID)
	set(env.RoleClaim, &c.RoleClaim)
	set(env.FacilityClaim, &c.FacilityClaim)
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeHeader:
		return nil
	case ModeOIDC:
		if c.IssuerURL == "" {
			return fmt.Errorf("issuer_url required for oidc mode")
		}
		if c.ClientID == "" {
			return fmt.Errorf("client_id required for oidc mode")
		}
		return nil
	}
	return fmt.Errorf("unknown mode: %s", c.Mode)
}
