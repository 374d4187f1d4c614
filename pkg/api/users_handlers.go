package api

import (
	"errors"
	"net/http"

	"github.com/depotlabs/filedepot/pkg/auth"
	"github.com/depotlabs/filedepot/pkg/httputil"
	"github.com/depotlabs/filedepot/pkg/observability"
	"github.com/depotlabs/filedepot/pkg/store"
)

// UserHandlers serves registration and the current-user endpoint
type UserHandlers struct {
	users store.UserStore
}

// NewUserHandlers creates the user handlers
func NewUserHandlers(users store.UserStore) *UserHandlers {
	return &UserHandlers{users: users}
}

// userResponse is the client-facing user document
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// postUser handles POST /users
func (h *UserHandlers) postUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.Email == "" {
		httputil.WriteBadRequest(w, "Missing email")
		return
	}
	if req.Password == "" {
		httputil.WriteBadRequest(w, "Missing password")
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Email, auth.HashSecret(req.Password))
	if errors.Is(err, store.ErrDuplicateEmail) {
		httputil.WriteBadRequest(w, "Already exist")
		return
	}
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to create user")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteCreated(w, userResponse{ID: user.ID, Email: user.Email})
}

// getMe handles GET /users/me. The access gate guarantees an identity.
func (h *UserHandlers) getMe(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		httputil.WriteUnauthorized(w)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), identity.UserID)
	if errors.Is(err, store.ErrNotFound) {
		// session outlived the user record
		httputil.WriteUnauthorized(w)
		return
	}
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to load user")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, userResponse{ID: user.ID, Email: user.Email})
}
