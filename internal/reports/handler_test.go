package reports_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/optigate/internal/reports"
	"github.com/JaimeStill/optigate/pkg/auth"
	"github.com/JaimeStill/optigate/pkg/routes"
)

type mockSystem struct {
	publishFn  func(ctx context.Context, facilityID int64, actor string) (*reports.Publication, error)
	listFn     func(ctx context.Context, facilityID int64) ([]reports.Report, error)
	downloadFn func(ctx context.Context, facilityID int64, id uuid.UUID, actor string) (io.ReadCloser, error)
}

func (m *mockSystem) Handler() *reports.Handler {
	return reports.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (m *mockSystem) Publish(ctx context.Context, facilityID int64, actor string) (*reports.Publication, error) {
	return m.publishFn(ctx, facilityID, actor)
}

func (m *mockSystem) List(ctx context.Context, facilityID int64) ([]reports.Report, error) {
	return m.listFn(ctx, facilityID)
}

func (m *mockSystem) Download(ctx context.Context, facilityID int64, id uuid.UUID, actor string) (io.ReadCloser, error) {
	return m.downloadFn(ctx, facilityID, id, actor)
}

func serve(sys reports.System, method, path string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())

	facility := int64(1)
	p := auth.Principal{UserID: "u1", Role: auth.RoleFacility, FacilityID: &facility}

	req := httptest.NewRequest(method, path, nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerPublish(t *testing.T) {
	var gotActor string
	sys := &mockSystem{
		publishFn: func(_ context.Context, facilityID int64, actor string) (*reports.Publication, error) {
			gotActor = actor
			return &reports.Publication{FacilityID: facilityID}, nil
		},
	}

	rec := serve(sys, "POST", "/facilities/1/reports")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if gotActor != "u1" {
		t.Errorf("actor = %q, want u1", gotActor)
	}

	sys.publishFn = func(_ context.Context, facilityID int64, _ string) (*reports.Publication, error) {
		return nil, reports.NoSelection(facilityID)
	}
	if rec := serve(sys, "POST", "/facilities/1/reports"); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("no selection status = %d, want 422", rec.Code)
	}

	if rec := serve(sys, "POST", "/facilities/2/reports"); rec.Code != http.StatusForbidden {
		t.Errorf("other facility status = %d, want 403", rec.Code)
	}
}

func TestHandlerList(t *testing.T) {
	sys := &mockSystem{
		listFn: func(_ context.Context, facilityID int64) ([]reports.Report, error) {
			return []reports.Report{{ID: uuid.New(), FacilityID: facilityID}}, nil
		},
	}

	rec := serve(sys, "GET", "/facilities/1/reports")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"facility_id":1`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandlerDownload(t *testing.T) {
	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	sys := &mockSystem{
		downloadFn: func(_ context.Context, facilityID int64, got uuid.UUID, actor string) (io.ReadCloser, error) {
			if actor != "u1" {
				return nil, fmt.Errorf("actor = %q, want u1", actor)
			}
			if got != id {
				return nil, reports.NotFound(facilityID, got.String())
			}
			return io.NopCloser(strings.NewReader("workbook")), nil
		},
	}

	tests := []struct {
		name string
		path string
		want int
	}{
		{"found", "/facilities/1/reports/" + id.String(), http.StatusOK},
		{"missing", "/facilities/1/reports/" + uuid.NewString(), http.StatusNotFound},
		{"malformed id", "/facilities/1/reports/latest", http.StatusUnprocessableEntity},
		{"other facility", "/facilities/2/reports/" + id.String(), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(sys, "GET", tt.path)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}
			if got := rec.Header().Get("Content-Type"); got != reports.ContentType {
				t.Errorf("Content-Type = %q", got)
			}
			want := `attachment; filename="report-1-` + id.String() + `.xlsx"`
			if got := rec.Header().Get("Content-Disposition"); got != want {
				t.Errorf("Content-Disposition = %q, want %q", got, want)
			}
			if rec.Body.String() != "workbook" {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}
