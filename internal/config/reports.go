package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvReportsPrefix      = "OPTIGATE_REPORTS_PREFIX"
	EnvReportsSheetName   = "OPTIGATE_REPORTS_SHEET_NAME"
	EnvReportsConcurrency = "OPTIGATE_REPORTS_CONCURRENCY"
)

// ReportsConfig controls where published report workbooks are stored and how they are built.
type ReportsConfig struct {
	Prefix      string `toml:"prefix"`
	SheetName   string `toml:"sheet_name"`
	Concurrency int    `toml:"concurrency"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ReportsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ReportsConfig) Merge(overlay *ReportsConfig) {
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
	if overlay.SheetName != "" {
		c.SheetName = overlay.SheetName
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
}

func (c *ReportsConfig) loadDefaults() {
	if c.Prefix == "" {
		c.Prefix = "reports"
	}
	if c.SheetName == "" {
		c.SheetName = "Classifications"
	}
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
}

func (c *ReportsConfig) loadEnv() {
	if v := os.Getenv(EnvReportsPrefix); v != "" {
		c.Prefix = v
	}
	if v := os.Getenv(EnvReportsSheetName); v != "" {
		c.SheetName = v
	}
	if v := os.Getenv(EnvReportsConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
}

func (c *ReportsConfig) validate() error {
	c.Prefix = strings.Trim(c.Prefix, "/")
	if c.Prefix == "" {
		return fmt.Errorf("prefix required")
	}
	if len(c.SheetName) > 31 {
		return fmt.Errorf("sheet_name must be at most 31 characters")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive: %d", c.Concurrency)
	}
	return nil
}
