package api

import (
	"net/http"

	"github.com/depotlabs/filedepot/pkg/httputil"
	"github.com/depotlabs/filedepot/pkg/observability"
	"github.com/depotlabs/filedepot/pkg/store"
)

// AppHandlers serves the status and statistics endpoints
type AppHandlers struct {
	health *observability.HealthChecker
	users  store.UserStore
	files  store.FileStore
}

// NewAppHandlers creates the app handlers
func NewAppHandlers(health *observability.HealthChecker, users store.UserStore, files store.FileStore) *AppHandlers {
	return &AppHandlers{
		health: health,
		users:  users,
		files:  files,
	}
}

// getStatus handles GET /status
func (h *AppHandlers) getStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]bool{
		"redis": h.health.RedisAlive(r.Context()),
		"db":    h.health.DBAlive(r.Context()),
	})
}

// getStats handles GET /stats
func (h *AppHandlers) getStats(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context())

	users, err := h.users.CountUsers(r.Context())
	if err != nil {
		logger.WithError(err).Error("failed to count users")
		httputil.WriteInternalError(w)
		return
	}

	files, err := h.files.CountFiles(r.Context())
	if err != nil {
		logger.WithError(err).Error("failed to count files")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, map[string]int64{
		"users": users,
		"files": files,
	})
}
