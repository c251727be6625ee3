// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, metrics, validation)
// that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/JaimeStill/optigate/internal/config"
	"github.com/JaimeStill/optigate/pkg/database"
	"github.com/JaimeStill/optigate/pkg/lifecycle"
	"github.com/JaimeStill/optigate/pkg/metrics"
	"github.com/JaimeStill/optigate/pkg/storage"
	"github.com/JaimeStill/optigate/pkg/validation"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Validator *validation.Validator

	// Metrics is nil when metrics are disabled. Recorder is always usable.
	Metrics  *metrics.Metrics
	Recorder metrics.Recorder

	// Clock stamps audit history and published reports. Always UTC.
	Clock func() time.Time
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	infra := &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Validator: validation.New(),
		Recorder:  metrics.Discard,
		Clock:     func() time.Time { return time.Now().UTC() },
	}

	if cfg.Metrics.IsEnabled() {
		infra.Metrics = metrics.New(cfg.Metrics.Namespace)
		infra.Recorder = infra.Metrics
	}

	return infra, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
