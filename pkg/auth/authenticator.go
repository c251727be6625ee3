package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/JaimeStill/optigate/pkg/handlers"
)

// Development headers read in header mode.
const (
	HeaderUserID     = "X-User-Id"
	HeaderUserRole   = "X-User-Role"
	HeaderFacilityID = "X-Facility-Id"
)

// Authenticator resolves the principal for a request.
type Authenticator interface {
	Authenticate(r *http.Request) (Principal, error)
}

// New builds the authenticator selected by cfg.Mode. OIDC mode performs
// provider discovery against cfg.IssuerURL.
func New(ctx context.Context, cfg *Config) (Authenticator, error) {
	switch cfg.Mode {
	case ModeOIDC:
		provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("oidc discovery: %w", err)
		}
		return &bearer{
			verifier:      provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
			roleClaim:     cfg.RoleClaim,
			facilityClaim: cfg.FacilityClaim,
		}, nil
	default:
		return headers{}, nil
	}
}

type headers struct{}

func (headers) Authenticate(r *http.Request) (Principal, error) {
	id := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if id == "" {
		return Principal{}, ErrUnauthenticated
	}

	p := Principal{UserID: id, Role: Role(r.Header.Get(HeaderUserRole))}
	if p.Role == "" {
		p.Role = RoleFacility
	}

	if v := r.Header.Get(HeaderFacilityID); v != "" {
		fid, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Principal{}, fmt.Errorf("%w: malformed %s", ErrUnauthenticated, HeaderFacilityID)
		}
		p.FacilityID = &fid
	}

	return p, nil
}

type tokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

type bearer struct {
	verifier      tokenVerifier
	roleClaim     string
	facilityClaim string
}

func (b *bearer) Authenticate(r *http.Request) (Principal, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return Principal{}, ErrUnauthenticated
	}

	token, err := b.verifier.Verify(r.Context(), raw)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	var claims map[string]any
	if err := token.Claims(&claims); err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	return principalFromClaims(token.Subject, claims, b.roleClaim, b.facilityClaim), nil
}

func principalFromClaims(subject string, claims map[string]any, roleClaim, facilityClaim string) Principal {
	p := Principal{UserID: subject, Role: RoleFacility}

	if role, ok := claims[roleClaim].(string); ok && role != "" {
		p.Role = Role(role)
	}

	switch v := claims[facilityClaim].(type) {
	case float64:
		fid := int64(v)
		p.FacilityID = &fid
	case string:
		if fid, err := strconv.ParseInt(v, 10, 64); err == nil {
			p.FacilityID = &fid
		}
	}

	return p
}

// Middleware resolves the principal for every request and rejects
// unauthenticated callers with 401.
func Middleware(a Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("middleware", "auth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.Authenticate(r)
			if err != nil {
				handlers.RespondError(w, logger, http.StatusUnauthorized, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
