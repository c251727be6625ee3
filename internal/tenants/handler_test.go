package tenants_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/optigate/internal/tenants"
	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/routes"
)

type mockSystem struct {
	existsFn   func(ctx context.Context, facilityID int64) (bool, error)
	settingsFn func(ctx context.Context, facilityID int64) (*tenants.Settings, error)
	updateFn   func(ctx context.Context, facilityID int64, cmd tenants.UpdateSettingsCommand) (*tenants.Settings, error)
}

func (m *mockSystem) Handler() *tenants.Handler {
	return tenants.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (m *mockSystem) Exists(ctx context.Context, facilityID int64) (bool, error) {
	return m.existsFn(ctx, facilityID)
}

func (m *mockSystem) Settings(ctx context.Context, facilityID int64) (*tenants.Settings, error) {
	return m.settingsFn(ctx, facilityID)
}

func (m *mockSystem) UpdateSettings(ctx context.Context, facilityID int64, cmd tenants.UpdateSettingsCommand) (*tenants.Settings, error) {
	return m.updateFn(ctx, facilityID, cmd)
}

func setupMux(sys *mockSystem) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	return mux
}

func facilityUser(id int64) auth.Principal {
	return auth.Principal{UserID: "nurse-1", Role: auth.RoleFacility, FacilityID: &id}
}

func serve(mux *http.ServeMux, p auth.Principal, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerFind(t *testing.T) {
	sys := &mockSystem{
		settingsFn: func(_ context.Context, facilityID int64) (*tenants.Settings, error) {
			if facilityID == 99 {
				return nil, tenants.FacilityNotFound(facilityID)
			}
			return &tenants.Settings{FacilityID: facilityID, MaxReportoutClassificationCount: 5, AnalysisClassificationLevel: 3}, nil
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		name      string
		principal auth.Principal
		path      string
		want      int
	}{
		{"own facility", facilityUser(3), "/facilities/3/settings", http.StatusOK},
		{"other facility", facilityUser(3), "/facilities/4/settings", http.StatusForbidden},
		{"admin missing facility", auth.Service("admin"), "/facilities/99/settings", http.StatusNotFound},
		{"malformed id", auth.Service("admin"), "/facilities/abc/settings", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(mux, tt.principal, "GET", tt.path, "")
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	rec := serve(mux, facilityUser(3), "GET", "/facilities/3/settings", "")
	var got tenants.Settings
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MaxReportoutClassificationCount != 5 {
		t.Errorf("max count = %d, want 5", got.MaxReportoutClassificationCount)
	}
}

func TestHandlerUpdate(t *testing.T) {
	var captured tenants.UpdateSettingsCommand
	sys := &mockSystem{
		updateFn: func(_ context.Context, facilityID int64, cmd tenants.UpdateSettingsCommand) (*tenants.Settings, error) {
			captured = cmd
			return &tenants.Settings{FacilityID: facilityID, MaxReportoutClassificationCount: *cmd.MaxReportoutClassificationCount, AnalysisClassificationLevel: 3}, nil
		},
	}
	mux := setupMux(sys)

	t.Run("admin updates", func(t *testing.T) {
		rec := serve(mux, auth.Service("admin"), "PUT", "/facilities/3/settings", `{"max_reportout_classification_count": 8}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		if captured.MaxReportoutClassificationCount == nil || *captured.MaxReportoutClassificationCount != 8 {
			t.Errorf("captured = %+v", captured)
		}
	})

	t.Run("facility user forbidden", func(t *testing.T) {
		rec := serve(mux, facilityUser(3), "PUT", "/facilities/3/settings", `{"max_reportout_classification_count": 8}`)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := serve(mux, auth.Service("admin"), "PUT", "/facilities/3/settings", `{"max_reportout_classification_count": "eight"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})
}
