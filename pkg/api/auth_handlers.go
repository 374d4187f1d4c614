package api

import (
	"errors"
	"net/http"

	"github.com/depotlabs/filedepot/pkg/auth"
	"github.com/depotlabs/filedepot/pkg/httputil"
	"github.com/depotlabs/filedepot/pkg/middleware"
	"github.com/depotlabs/filedepot/pkg/observability"
)

// AuthHandlers serves the session lifecycle endpoints
type AuthHandlers struct {
	sessions *auth.SessionManager
	metrics  *observability.Metrics
}

// NewAuthHandlers creates the auth handlers
func NewAuthHandlers(sessions *auth.SessionManager, metrics *observability.Metrics) *AuthHandlers {
	return &AuthHandlers{
		sessions: sessions,
		metrics:  metrics,
	}
}

// getConnect handles GET /connect. The access gate has already verified the
// Basic credentials; this handler only issues the session.
func (h *AuthHandlers) getConnect(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		httputil.WriteUnauthorized(w)
		return
	}

	token, err := h.sessions.Issue(r.Context(), identity.UserID)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to issue session")
		httputil.WriteInternalError(w)
		return
	}

	if h.metrics != nil {
		h.metrics.SessionsIssuedTotal.Inc()
	}
	httputil.WriteSuccess(w, map[string]string{"token": token})
}

// getDisconnect handles GET /disconnect. The access gate has already resolved
// the token, so the logout below can only fail on a revocation race or a
// collaborator error.
func (h *AuthHandlers) getDisconnect(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(middleware.TokenHeader)

	if err := h.sessions.Logout(r.Context(), token); err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			// revoked between the gate's resolve and this logout
			httputil.WriteUnauthorized(w)
			return
		}
		observability.FromContext(r.Context()).WithError(err).Error("failed to revoke session")
		httputil.WriteInternalError(w)
		return
	}

	if h.metrics != nil {
		h.metrics.SessionsRevokedTotal.Inc()
	}
	httputil.WriteNoContent(w)
}
