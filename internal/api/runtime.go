package api

import (
	"github.com/JaimeStill/optigate/internal/config"
	"github.com/JaimeStill/optigate/internal/infrastructure"
	"github.com/JaimeStill/optigate/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Reports    config.ReportsConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Validator: infra.Validator,
			Metrics:   infra.Metrics,
			Recorder:  infra.Recorder,
			Clock:     infra.Clock,
		},
		Pagination: cfg.API.Pagination,
		Reports:    cfg.Reports,
	}
}
