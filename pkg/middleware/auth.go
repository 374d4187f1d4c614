// Package middleware provides the HTTP access gate that resolves an acting
// identity before any downstream handler executes.
package middleware

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/depotlabs/filedepot/pkg/auth"
	"github.com/depotlabs/filedepot/pkg/httputil"
	"github.com/depotlabs/filedepot/pkg/observability"
)

// TokenHeader carries the session token on protected endpoints
const TokenHeader = "X-Token"

// AccessGate resolves a request's declared auth mode into an Identity or
// rejects the request. It attaches the identity to the request context and
// persists nothing.
type AccessGate struct {
	sessions *auth.SessionManager
	verifier *auth.CredentialVerifier
	metrics  *observability.Metrics
}

// NewAccessGate creates an access gate over the session manager and verifier
func NewAccessGate(sessions *auth.SessionManager, verifier *auth.CredentialVerifier, metrics *observability.Metrics) *AccessGate {
	return &AccessGate{
		sessions: sessions,
		verifier: verifier,
		metrics:  metrics,
	}
}

// RequireToken gates an endpoint on a resolvable X-Token header. A missing or
// unresolvable token ends the request with the canonical 401 envelope.
func (g *AccessGate) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := g.ResolveToken(r)
		if err != nil {
			g.reject(w, r, err, string(auth.MethodToken))
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), identity)))
	})
}

// RequireBasic gates the login endpoint on a Basic authorization header,
// verifying the credentials directly without creating a session. All
// malformations and mismatches collapse into the same 401.
func (g *AccessGate) RequireBasic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, secret, err := ParseBasicHeader(r.Header.Get("Authorization"))
		if err != nil {
			g.reject(w, r, err, string(auth.MethodBasic))
			return
		}

		userID, err := g.verifier.Verify(r.Context(), email, secret)
		if err != nil {
			g.reject(w, r, err, string(auth.MethodBasic))
			return
		}

		identity := &auth.Identity{UserID: userID, Method: auth.MethodBasic}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), identity)))
	})
}

// ResolveToken resolves the X-Token header into an identity without writing a
// response. Handlers that serve public content use it for opportunistic
// authentication.
func (g *AccessGate) ResolveToken(r *http.Request) (*auth.Identity, error) {
	token := r.Header.Get(TokenHeader)
	if token == "" {
		return nil, auth.ErrUnauthorized
	}

	userID, err := g.sessions.Resolve(r.Context(), token)
	if err != nil {
		return nil, err
	}

	return &auth.Identity{UserID: userID, Method: auth.MethodToken}, nil
}

// reject writes the failure response. Authentication failures always produce
// the identical 401 envelope; anything else is a collaborator failure and
// produces an opaque 500. The raw token and secret never reach the log line.
func (g *AccessGate) reject(w http.ResponseWriter, r *http.Request, err error, mode string) {
	logger := observability.FromContext(r.Context())
	if errors.Is(err, auth.ErrUnauthorized) {
		if g.metrics != nil {
			g.metrics.AuthFailuresTotal.WithLabelValues(mode).Inc()
		}
		logger.WithField("mode", mode).Debug("authentication rejected")
		httputil.WriteUnauthorized(w)
		return
	}
	logger.WithError(err).Error("authentication collaborator failure")
	httputil.WriteInternalError(w)
}

// ParseBasicHeader decodes an "Authorization: Basic base64(email:secret)"
// header. Missing header, wrong scheme, bad base64, and a missing colon
// separator all fail with ErrInvalidCredentialFormat.
func ParseBasicHeader(header string) (email, secret string, err error) {
	if header == "" {
		return "", "", auth.ErrInvalidCredentialFormat
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Basic" {
		return "", "", auth.ErrInvalidCredentialFormat
	}

	decoded, decErr := base64.StdEncoding.DecodeString(parts[1])
	if decErr != nil {
		return "", "", auth.ErrInvalidCredentialFormat
	}

	email, secret, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", "", auth.ErrInvalidCredentialFormat
	}

	return email, secret, nil
}
