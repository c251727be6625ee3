package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/optigate/internal/api"
	"github.com/JaimeStill/optigate/internal/config"
	"github.com/JaimeStill/optigate/internal/infrastructure"
	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/database"
	"github.com/JaimeStill/optigate/pkg/openapi"
	"github.com/JaimeStill/optigate/pkg/pagination"
	"github.com/JaimeStill/optigate/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func testConfig() *config.Config {
	return &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "optigate",
			User:            "optigate",
			Password:        "optigate",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
			LockTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "reports",
			ConnectionString: azuriteConnString,
		},
		API: config.APIConfig{
			BasePath:   "/api",
			Pagination: pagination.Config{DefaultLimit: 100, MaxLimit: 1000},
			OpenAPI:    openapi.Config{Title: "Optigate API", Description: "test"},
		},
		Auth:    auth.Config{Mode: auth.ModeHeader},
		Reports: config.ReportsConfig{Prefix: "reports", SheetName: "Classifications", Concurrency: 2},
		Version: "0.1.0",
	}
}

func newModule(t *testing.T) (http.Handler, *openapi.Spec) {
	t.Helper()
	cfg := testConfig()

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure.New: %v", err)
	}
	t.Cleanup(func() { infra.Database.Connection().Close() })

	m, spec, err := api.NewModule(context.Background(), cfg, infra)
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}
	return http.HandlerFunc(m.Serve), spec
}

func TestNewModuleDocumentsEveryDomain(t *testing.T) {
	_, spec := newModule(t)

	paths := []string{
		"/facilities/{facilityId}/settings",
		"/facilities/{facilityId}/classifications",
		"/classifications/{id}",
		"/facilities/{facilityId}/analysis-settings",
		"/analysis-settings/{ledgerId}/analysis-target",
		"/analysis-settings/{ledgerId}/classification",
		"/facilities/{facilityId}/report-selection",
		"/facilities/{facilityId}/reports/{id}",
	}
	for _, p := range paths {
		if _, ok := spec.Paths[p]; !ok {
			t.Errorf("spec missing path %s", p)
		}
	}

	if spec.Info.Version != "0.1.0" {
		t.Errorf("version = %q", spec.Info.Version)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "/api" {
		t.Errorf("servers = %+v", spec.Servers)
	}
	if _, err := openapi.MarshalJSON(spec); err != nil {
		t.Errorf("MarshalJSON: %v", err)
	}
}

func TestNewModuleRequiresPrincipal(t *testing.T) {
	handler, _ := newModule(t)

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{
			name: "other facility",
			headers: map[string]string{
				auth.HeaderUserID:     "u1",
				auth.HeaderFacilityID: "2",
			},
			want: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/facilities/1/report-selection", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if rec.Header().Get("X-Request-Id") == "" {
				t.Error("request id header not set")
			}
		})
	}
}
