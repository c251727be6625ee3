// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JaimeStill/optigate/internal/config"
	"github.com/JaimeStill/optigate/internal/infrastructure"
	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/middleware"
	"github.com/JaimeStill/optigate/pkg/module"
	"github.com/JaimeStill/optigate/pkg/openapi"
)

// NewModule creates the API module with all domain handlers and middleware,
// and the OpenAPI document describing it.
func NewModule(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *openapi.Spec, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	authenticator, err := auth.New(ctx, &cfg.Auth)
	if err != nil {
		return nil, nil, fmt.Errorf("auth init failed: %w", err)
	}

	groups := domain.Groups()

	mux := http.NewServeMux()
	registerRoutes(mux, groups)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.RequestID())
	m.Use(middleware.Logger(runtime.Logger))
	if runtime.Metrics != nil {
		m.Use(runtime.Metrics.Middleware())
	}
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.MaxBytes(cfg.API.MaxBodySizeBytes()))
	m.Use(auth.Middleware(authenticator, runtime.Logger))

	spec := NewSpec(&cfg.API.OpenAPI, cfg.Version, cfg.API.BasePath, groups)

	return m, spec, nil
}
