package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JaimeStill/optigate/internal/api"
	"github.com/JaimeStill/optigate/internal/config"
	"github.com/JaimeStill/optigate/internal/infrastructure"
	"github.com/JaimeStill/optigate/pkg/module"
	"github.com/JaimeStill/optigate/pkg/openapi"
)

type Modules struct {
	API  *module.Module
	Spec []byte
}

func NewModules(ctx context.Context, infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, spec, err := api.NewModule(ctx, cfg, infra)
	if err != nil {
		return nil, err
	}

	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}

	return &Modules{
		API:  apiModule,
		Spec: specBytes,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.HandleNative("GET /openapi.json", openapi.ServeSpec(m.Spec))
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.Config) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}

		if failures := infra.Lifecycle.Probe(r.Context()); len(failures) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]any{"status": "degraded", "failures": failures})
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	if infra.Metrics != nil {
		router.Handle("GET "+cfg.Metrics.Path, infra.Metrics.Handler())
	}

	return router
}
