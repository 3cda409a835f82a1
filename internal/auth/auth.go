// Package auth verifies OIDC bearer tokens on incoming requests. With
// no issuer configured, verification is skipped and requests proceed
// anonymously, matching the local development setup.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/printmechecks/server/internal/config"
	"github.com/printmechecks/server/internal/pkg/httputil"
)

type contextKey struct{}

var identityKey contextKey

// Identity is the caller extracted from a verified bearer token.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Verifier validates bearer tokens against an OIDC issuer. A zero
// Verifier passes every request through anonymously.
type Verifier struct {
	verifier *gooidc.IDTokenVerifier
}

// NewVerifier builds a token verifier from config. Returns a pass-through
// verifier when auth is not configured. Discovery runs once at startup.
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (*Verifier, error) {
	if !cfg.Configured() {
		return &Verifier{}, nil
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)

	issuer := strings.TrimSuffix(cfg.IssuerURL, "/")
	provider, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery for %s: %w", issuer, err)
	}

	return &Verifier{
		verifier: provider.Verifier(&gooidc.Config{ClientID: cfg.Audience}),
	}, nil
}

// Configured reports whether tokens are actually verified.
func (v *Verifier) Configured() bool {
	return v.verifier != nil
}

type tokenClaims struct {
	Subject           string `json:"sub"`
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
	Name              string `json:"name"`
}

// Middleware enforces bearer authentication on the wrapped handler. When
// verification is not configured the request proceeds with no identity.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v.verifier == nil {
			next.ServeHTTP(w, r)
			return
		}

		raw := bearerToken(r)
		if raw == "" {
			httputil.Unauthorized(w, "missing_token")
			return
		}

		idToken, err := v.verifier.Verify(r.Context(), raw)
		if err != nil {
			httputil.Unauthorized(w, "invalid_token")
			return
		}

		var claims tokenClaims
		if err := idToken.Claims(&claims); err != nil {
			httputil.Unauthorized(w, "invalid_token")
			return
		}

		email := claims.Email
		if email == "" {
			email = claims.PreferredUsername
		}
		identity := &Identity{
			Subject: claims.Subject,
			Email:   email,
			Name:    claims.Name,
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// WithIdentity returns a context carrying the caller identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller identity, or nil for anonymous
// requests.
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
