package selections_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/optigate/internal/selections"
	"github.com/JaimeStill/optigate/internal/tenants"
	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/routes"
)

// memorySystem keeps selections per facility and applies the package rules,
// standing in for the database-backed system.
type memorySystem struct {
	maxCount int
	names    map[int64]string
	stored   map[int64][]selections.Selection
}

func newMemorySystem() *memorySystem {
	return &memorySystem{
		maxCount: 3,
		names:    map[int64]string{10: "Ventilators", 20: "Monitors", 30: "Pumps", 40: "Beds"},
		stored:   map[int64][]selections.Selection{1: nil},
	}
}

func (m *memorySystem) Handler() *selections.Handler {
	return selections.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (m *memorySystem) Get(_ context.Context, facilityID int64) (*selections.Result, error) {
	current, ok := m.stored[facilityID]
	if !ok {
		return nil, tenants.FacilityNotFound(facilityID)
	}
	return &selections.Result{FacilityID: facilityID, MaxCount: m.maxCount, Selections: selections.Cap(current, m.maxCount)}, nil
}

func (m *memorySystem) Set(_ context.Context, facilityID int64, cmd selections.SetCommand, _ string) (*selections.SetResult, error) {
	current, ok := m.stored[facilityID]
	if !ok {
		return nil, tenants.FacilityNotFound(facilityID)
	}
	if err := selections.Check(cmd.ClassificationIDs, m.maxCount); err != nil {
		return nil, err
	}

	var missing []int64
	for _, id := range cmd.ClassificationIDs {
		if _, ok := m.names[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, selections.NotInFacility(facilityID, missing)
	}

	next := selections.Rank(cmd.ClassificationIDs)
	for i := range next {
		next[i].ClassificationName = m.names[next[i].ClassificationID]
	}
	m.stored[facilityID] = next

	return &selections.SetResult{
		FacilityID:   facilityID,
		CreatedCount: len(next),
		DeletedCount: len(current),
		Selections:   next,
	}, nil
}

func (m *memorySystem) Clear(_ context.Context, facilityID int64) (*selections.ClearResult, error) {
	current, ok := m.stored[facilityID]
	if !ok {
		return nil, tenants.FacilityNotFound(facilityID)
	}
	m.stored[facilityID] = nil
	return &selections.ClearResult{FacilityID: facilityID, DeletedCount: len(current)}, nil
}

func serve(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	id := int64(1)
	p := auth.Principal{UserID: "u1", Role: auth.RoleFacility, FacilityID: &id}

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHandlerRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, newMemorySystem().Handler().Routes())

	rec := serve(mux, "GET", "/facilities/1/report-selection", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("initial get: status = %d", rec.Code)
	}
	if got := decode[selections.Result](t, rec); got.MaxCount != 3 || len(got.Selections) != 0 {
		t.Errorf("initial = %+v, want empty with max 3", got)
	}

	rec = serve(mux, "PUT", "/facilities/1/report-selection", `{"classification_ids": [30, 10]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set: status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = serve(mux, "GET", "/facilities/1/report-selection", "")
	want := []selections.Selection{
		{Rank: 1, ClassificationID: 30, ClassificationName: "Pumps"},
		{Rank: 2, ClassificationID: 10, ClassificationName: "Ventilators"},
	}
	if diff := cmp.Diff(want, decode[selections.Result](t, rec).Selections); diff != "" {
		t.Errorf("after set (-want +got):\n%s", diff)
	}

	rec = serve(mux, "PUT", "/facilities/1/report-selection", `{"classification_ids": [20]}`)
	set := decode[selections.SetResult](t, rec)
	if set.DeletedCount != 2 || set.CreatedCount != 1 {
		t.Errorf("replace counts = deleted %d, created %d", set.DeletedCount, set.CreatedCount)
	}

	rec = serve(mux, "GET", "/facilities/1/report-selection", "")
	want = []selections.Selection{{Rank: 1, ClassificationID: 20, ClassificationName: "Monitors"}}
	if diff := cmp.Diff(want, decode[selections.Result](t, rec).Selections); diff != "" {
		t.Errorf("after replace (-want +got):\n%s", diff)
	}

	rec = serve(mux, "DELETE", "/facilities/1/report-selection", "")
	if got := decode[selections.ClearResult](t, rec); got.DeletedCount != 1 {
		t.Errorf("clear deleted = %d, want 1", got.DeletedCount)
	}
}

func TestHandlerSetRejects(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, newMemorySystem().Handler().Routes())

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"empty list", "/facilities/1/report-selection", `{"classification_ids": []}`, http.StatusUnprocessableEntity},
		{"duplicates", "/facilities/1/report-selection", `{"classification_ids": [10, 10]}`, http.StatusUnprocessableEntity},
		{"unknown id", "/facilities/1/report-selection", `{"classification_ids": [10, 99]}`, http.StatusUnprocessableEntity},
		{"over max", "/facilities/1/report-selection", `{"classification_ids": [10, 20, 30, 40]}`, http.StatusUnprocessableEntity},
		{"other facility", "/facilities/2/report-selection", `{"classification_ids": [10]}`, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(mux, "PUT", tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	rec := serve(mux, "PUT", "/facilities/1/report-selection", `{"classification_ids": [10, 99, 98]}`)
	body := decode[struct {
		Error  string `json:"error"`
		Values []any  `json:"values"`
	}](t, rec)
	if !strings.Contains(body.Error, "99, 98") || len(body.Values) != 2 {
		t.Errorf("unknown ids not named: %+v", body)
	}
}
