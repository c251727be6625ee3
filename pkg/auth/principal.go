// Package auth resolves the calling principal at the HTTP boundary and
// authorizes facility-scoped operations.
package auth

import (
	"context"
	"errors"
	"net/http"
)

// Role is an explicit authorization claim.
type Role string

const (
	// RoleAdmin may act on every facility.
	RoleAdmin Role = "admin"
	// RoleFacility may act only on its own facility.
	RoleFacility Role = "facility"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("not permitted for this facility")
)

// Principal is the authenticated caller.
type Principal struct {
	UserID     string
	Role       Role
	FacilityID *int64
}

// CanAccess reports whether p may act on facilityID.
func (p Principal) CanAccess(facilityID int64) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleFacility:
		return p.FacilityID != nil && *p.FacilityID == facilityID
	}
	return false
}

// Service returns an admin principal for non-interactive callers such as import jobs.
func Service(name string) Principal {
	return Principal{UserID: name, Role: RoleAdmin}
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Actor returns the user id of the principal in ctx, or "" when unauthenticated.
func Actor(ctx context.Context) string {
	p, _ := FromContext(ctx)
	return p.UserID
}

// Authorize checks that the principal in ctx may act on facilityID.
func Authorize(ctx context.Context, facilityID int64) error {
	p, ok := FromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if !p.CanAccess(facilityID) {
		return ErrForbidden
	}
	return nil
}

// MapHTTPStatus maps auth errors to HTTP status codes. It returns 0 for other errors.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	}
	return 0
}
