package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/optigate/pkg/auth"
)

func facility(id int64) *int64 { return &id }

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name      string
		principal *auth.Principal
		facility  int64
		want      error
	}{
		{"no principal", nil, 1, auth.ErrUnauthenticated},
		{"admin any facility", &auth.Principal{UserID: "a", Role: auth.RoleAdmin}, 99, nil},
		{"facility own", &auth.Principal{UserID: "u", Role: auth.RoleFacility, FacilityID: facility(3)}, 3, nil},
		{"facility other", &auth.Principal{UserID: "u", Role: auth.RoleFacility, FacilityID: facility(3)}, 4, auth.ErrForbidden},
		{"facility unbound", &auth.Principal{UserID: "u", Role: auth.RoleFacility}, 3, auth.ErrForbidden},
		{"unknown role", &auth.Principal{UserID: "u", Role: "dealer", FacilityID: facility(3)}, 3, auth.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.principal != nil {
				ctx = auth.WithPrincipal(ctx, *tt.principal)
			}

			err := auth.Authorize(ctx, tt.facility)
			if !errors.Is(err, tt.want) {
				t.Errorf("Authorize() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	if got := auth.MapHTTPStatus(auth.ErrUnauthenticated); got != http.StatusUnauthorized {
		t.Errorf("unauthenticated = %d", got)
	}
	if got := auth.MapHTTPStatus(auth.ErrForbidden); got != http.StatusForbidden {
		t.Errorf("forbidden = %d", got)
	}
	if got := auth.MapHTTPStatus(errors.New("x")); got != 0 {
		t.Errorf("other = %d, want 0", got)
	}
}

func TestHeaderAuthenticator(t *testing.T) {
	a, err := auth.New(context.Background(), &auth.Config{Mode: auth.ModeHeader})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name    string
		headers map[string]string
		want    auth.Principal
		wantErr bool
	}{
		{
			name:    "missing user",
			headers: map[string]string{},
			wantErr: true,
		},
		{
			name:    "facility user",
			headers: map[string]string{auth.HeaderUserID: "u-1", auth.HeaderFacilityID: "12"},
			want:    auth.Principal{UserID: "u-1", Role: auth.RoleFacility, FacilityID: facility(12)},
		},
		{
			name:    "admin",
			headers: map[string]string{auth.HeaderUserID: "root", auth.HeaderUserRole: "admin"},
			want:    auth.Principal{UserID: "root", Role: auth.RoleAdmin},
		},
		{
			name:    "malformed facility",
			headers: map[string]string{auth.HeaderUserID: "u-1", auth.HeaderFacilityID: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			got, err := a.Authenticate(req)
			if tt.wantErr {
				if !errors.Is(err, auth.ErrUnauthenticated) {
					t.Fatalf("err = %v, want ErrUnauthenticated", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("principal mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrincipalFromClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
		want   auth.Principal
	}{
		{
			name:   "numeric facility",
			claims: map[string]any{"role": "facility", "facility_id": float64(8)},
			want:   auth.Principal{UserID: "sub", Role: auth.RoleFacility, FacilityID: facility(8)},
		},
		{
			name:   "string facility",
			claims: map[string]any{"facility_id": "9"},
			want:   auth.Principal{UserID: "sub", Role: auth.RoleFacility, FacilityID: facility(9)},
		},
		{
			name:   "admin without facility",
			claims: map[string]any{"role": "admin"},
			want:   auth.Principal{UserID: "sub", Role: auth.RoleAdmin},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := auth.PrincipalFromClaims("sub", tt.claims, "role", "facility_id")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("principal mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	a, _ := auth.New(context.Background(), &auth.Config{Mode: auth.ModeHeader})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var actor string
	handler := auth.Middleware(a, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = auth.Actor(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(auth.HeaderUserID, "u-7")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if actor != "u-7" {
		t.Errorf("actor = %q, want u-7", actor)
	}
}

func TestConfigFinalize(t *testing.T) {
	cfg := auth.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.Mode != auth.ModeHeader {
		t.Errorf("Mode = %q, want header", cfg.Mode)
	}

	oidcCfg := auth.Config{Mode: auth.ModeOIDC}
	if err := oidcCfg.Finalize(nil); err == nil {
		t.Error("expected error for oidc mode without issuer")
	}

	bad := auth.Config{Mode: "ldap"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected error for unknown mode")
	}
}
