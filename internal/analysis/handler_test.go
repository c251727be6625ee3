package analysis_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/optigate/internal/analysis"
	"github.com/JaimeStill/optigate/internal/tenants"
	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/faults"
	"github.com/JaimeStill/optigate/pkg/pagination"
	"github.com/JaimeStill/optigate/pkg/routes"
)

type mockSystem struct {
	listFn              func(ctx context.Context, facilityID int64, f analysis.Filters, w pagination.Window) (*pagination.WindowResult[analysis.Setting], error)
	findFn              func(ctx context.Context, ledgerID int64) (*analysis.Setting, error)
	setIncludedFn       func(ctx context.Context, ledgerID int64, cmd analysis.SetIncludedCommand, actor string) (*analysis.SetIncludedResult, error)
	setClassificationFn func(ctx context.Context, ledgerID int64, cmd analysis.SetClassificationCommand, actor string) (*analysis.SetClassificationResult, error)
	restoreFn           func(ctx context.Context, ledgerID int64) (*analysis.RestoreResult, error)
	restoreFacilityFn   func(ctx context.Context, facilityID int64) (*analysis.RestoreResult, error)
}

func (m *mockSystem) Handler() *analysis.Handler {
	return analysis.NewHandler(
		m,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultLimit: 100, MaxLimit: 1000},
	)
}

func (m *mockSystem) List(ctx context.Context, facilityID int64, f analysis.Filters, w pagination.Window) (*pagination.WindowResult[analysis.Setting], error) {
	return m.listFn(ctx, facilityID, f, w)
}

func (m *mockSystem) Find(ctx context.Context, ledgerID int64) (*analysis.Setting, error) {
	return m.findFn(ctx, ledgerID)
}

// FacilityOf places ledger ids 1..99 in facility 1 and 100..199 in facility 2.
func (m *mockSystem) FacilityOf(_ context.Context, ledgerID int64) (int64, error) {
	switch {
	case ledgerID < 100:
		return 1, nil
	case ledgerID < 200:
		return 2, nil
	}
	return 0, analysis.LedgerNotFound(ledgerID)
}

func (m *mockSystem) SetIncluded(ctx context.Context, ledgerID int64, cmd analysis.SetIncludedCommand, actor string) (*analysis.SetIncludedResult, error) {
	return m.setIncludedFn(ctx, ledgerID, cmd, actor)
}

func (m *mockSystem) SetClassification(ctx context.Context, ledgerID int64, cmd analysis.SetClassificationCommand, actor string) (*analysis.SetClassificationResult, error) {
	return m.setClassificationFn(ctx, ledgerID, cmd, actor)
}

func (m *mockSystem) Restore(ctx context.Context, ledgerID int64) (*analysis.RestoreResult, error) {
	return m.restoreFn(ctx, ledgerID)
}

func (m *mockSystem) RestoreFacility(ctx context.Context, facilityID int64) (*analysis.RestoreResult, error) {
	return m.restoreFacilityFn(ctx, facilityID)
}

func setupMux(sys *mockSystem) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	return mux
}

func facilityUser(id int64) *auth.Principal {
	return &auth.Principal{UserID: "u1", Role: auth.RoleFacility, FacilityID: &id}
}

func serve(mux *http.ServeMux, p *auth.Principal, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if p != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), *p))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerList(t *testing.T) {
	var gotFilters analysis.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, facilityID int64, f analysis.Filters, w pagination.Window) (*pagination.WindowResult[analysis.Setting], error) {
			if facilityID == 9 {
				return nil, tenants.FacilityNotFound(facilityID)
			}
			gotFilters = f
			items := []analysis.Setting{{LedgerEntry: analysis.LedgerEntry{ID: 42, FacilityID: facilityID}}}
			r := pagination.NewWindowResult(items, 250, w)
			return &r, nil
		},
	}
	mux := setupMux(sys)
	admin := auth.Service("admin")

	tests := []struct {
		name      string
		principal *auth.Principal
		path      string
		want      int
	}{
		{"own facility", facilityUser(1), "/facilities/1/analysis-settings?classification_id=100", http.StatusOK},
		{"other facility", facilityUser(1), "/facilities/2/analysis-settings", http.StatusForbidden},
		{"unauthenticated", nil, "/facilities/1/analysis-settings", http.StatusUnauthorized},
		{"missing facility", &admin, "/facilities/9/analysis-settings", http.StatusNotFound},
		{"negative skip", &admin, "/facilities/1/analysis-settings?skip=-1", http.StatusUnprocessableEntity},
		{"limit too large", &admin, "/facilities/1/analysis-settings?limit=1001", http.StatusUnprocessableEntity},
		{"bad classification filter", &admin, "/facilities/1/analysis-settings?classification_id=x", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(mux, tt.principal, "GET", tt.path, "")
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	rec := serve(mux, facilityUser(1), "GET", "/facilities/1/analysis-settings?classification_id=100", "")
	var got pagination.WindowResult[analysis.Setting]
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalCount != 250 || !got.HasNext || got.Limit != 100 {
		t.Errorf("window = total %d, has_next %v, limit %d", got.TotalCount, got.HasNext, got.Limit)
	}
	if gotFilters.ClassificationID == nil || *gotFilters.ClassificationID != 100 {
		t.Errorf("filter = %v, want 100", gotFilters.ClassificationID)
	}
}

func TestHandlerSetIncluded(t *testing.T) {
	var actor string
	sys := &mockSystem{
		setIncludedFn: func(_ context.Context, ledgerID int64, cmd analysis.SetIncludedCommand, a string) (*analysis.SetIncludedResult, error) {
			if !*cmd.IsIncluded {
				return nil, faults.InvalidOverride("override_is_included false is the same as the default false")
			}
			actor = a
			return &analysis.SetIncludedResult{LedgerID: ledgerID, OverrideIsIncluded: true, EffectiveIsIncluded: true, HistoryLength: 1}, nil
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		name      string
		principal *auth.Principal
		path      string
		body      string
		want      int
	}{
		{"applies", facilityUser(1), "/analysis-settings/42/analysis-target", `{"override_is_included": true, "note": "critical equipment"}`, http.StatusOK},
		{"same as default", facilityUser(1), "/analysis-settings/42/analysis-target", `{"override_is_included": false, "note": "n"}`, http.StatusBadRequest},
		{"other facility ledger", facilityUser(1), "/analysis-settings/142/analysis-target", `{"override_is_included": true, "note": "n"}`, http.StatusForbidden},
		{"missing ledger", facilityUser(1), "/analysis-settings/500/analysis-target", `{"override_is_included": true, "note": "n"}`, http.StatusNotFound},
		{"malformed body", facilityUser(1), "/analysis-settings/42/analysis-target", `{"override_is_included": "yes"}`, http.StatusUnprocessableEntity},
		{"unauthenticated", nil, "/analysis-settings/42/analysis-target", `{"override_is_included": true, "note": "n"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(mux, tt.principal, "PUT", tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	if actor != "u1" {
		t.Errorf("actor = %q, want u1", actor)
	}
}

func TestHandlerSetClassification(t *testing.T) {
	sys := &mockSystem{
		setClassificationFn: func(_ context.Context, ledgerID int64, cmd analysis.SetClassificationCommand, _ string) (*analysis.SetClassificationResult, error) {
			if *cmd.ClassificationID == 999 {
				return nil, analysis.UnknownClassification(999)
			}
			return &analysis.SetClassificationResult{
				LedgerID:                  ledgerID,
				OverrideClassificationID:  *cmd.ClassificationID,
				EffectiveClassificationID: *cmd.ClassificationID,
				ClassificationName:        "Monitors",
				HistoryLength:             2,
			}, nil
		},
	}
	mux := setupMux(sys)

	rec := serve(mux, facilityUser(1), "PUT", "/analysis-settings/42/classification", `{"override_classification_id": 200, "note": "reclassified per hospital rule"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got analysis.SetClassificationResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.EffectiveClassificationID != 200 || got.HistoryLength != 2 {
		t.Errorf("result = %+v", got)
	}

	rec = serve(mux, facilityUser(1), "PUT", "/analysis-settings/42/classification", `{"override_classification_id": 999, "note": "n"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown classification: status = %d, want 422", rec.Code)
	}
	var body struct {
		Kind   string `json:"kind"`
		Values []any  `json:"values"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Kind != "validation" || len(body.Values) != 1 {
		t.Errorf("error body = %+v", body)
	}
}

func TestHandlerRestore(t *testing.T) {
	sys := &mockSystem{
		restoreFn: func(_ context.Context, ledgerID int64) (*analysis.RestoreResult, error) {
			if ledgerID == 43 {
				return nil, analysis.OverrideNotFound(ledgerID)
			}
			return &analysis.RestoreResult{AffectedCount: 1, LedgerIDs: []int64{ledgerID}}, nil
		},
		restoreFacilityFn: func(_ context.Context, facilityID int64) (*analysis.RestoreResult, error) {
			return &analysis.RestoreResult{AffectedCount: 0, LedgerIDs: []int64{}}, nil
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"single", "/analysis-settings/42", http.StatusOK},
		{"no override", "/analysis-settings/43", http.StatusNotFound},
		{"missing ledger", "/analysis-settings/900", http.StatusNotFound},
		{"facility with nothing to restore", "/facilities/1/analysis-settings", http.StatusOK},
		{"other facility", "/facilities/2/analysis-settings", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(mux, facilityUser(1), "DELETE", tt.path, "")
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandlerFind(t *testing.T) {
	sys := &mockSystem{
		findFn: func(_ context.Context, ledgerID int64) (*analysis.Setting, error) {
			return &analysis.Setting{LedgerEntry: analysis.LedgerEntry{ID: ledgerID, FacilityID: 1}, History: analysis.History{}}, nil
		},
	}
	mux := setupMux(sys)

	if rec := serve(mux, facilityUser(1), "GET", "/analysis-settings/42", ""); rec.Code != http.StatusOK {
		t.Errorf("own ledger: status = %d, want 200", rec.Code)
	}
	if rec := serve(mux, facilityUser(2), "GET", "/analysis-settings/42", ""); rec.Code != http.StatusForbidden {
		t.Errorf("other ledger: status = %d, want 403", rec.Code)
	}
}
