// Package api wires the HTTP surface of the service: routing, handlers, and
// the middleware chain.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/depotlabs/filedepot/pkg/auth"
	"github.com/depotlabs/filedepot/pkg/authz"
	"github.com/depotlabs/filedepot/pkg/httputil"
	"github.com/depotlabs/filedepot/pkg/middleware"
	"github.com/depotlabs/filedepot/pkg/observability"
	"github.com/depotlabs/filedepot/pkg/store"
)

// Server holds the service's handlers and collaborators
type Server struct {
	logger  *observability.Logger
	metrics *observability.Metrics
	gate    *middleware.AccessGate

	app   *AppHandlers
	auth  *AuthHandlers
	users *UserHandlers
	files *FileHandlers
}

// ServerDeps bundles the collaborators the server is built from
type ServerDeps struct {
	Logger     *observability.Logger
	Metrics    *observability.Metrics
	Health     *observability.HealthChecker
	Gate       *middleware.AccessGate
	Sessions   *auth.SessionManager
	Users      store.UserStore
	Files      store.FileStore
	Blobs      store.BlobStore
	Authorizer *authz.FileAuthorizer
}

// NewServer creates the API server from its collaborators
func NewServer(deps ServerDeps) *Server {
	return &Server{
		logger:  deps.Logger,
		metrics: deps.Metrics,
		gate:    deps.Gate,
		app:     NewAppHandlers(deps.Health, deps.Users, deps.Files),
		auth:    NewAuthHandlers(deps.Sessions, deps.Metrics),
		users:   NewUserHandlers(deps.Users),
		files:   NewFileHandlers(deps.Files, deps.Blobs, deps.Authorizer, deps.Gate),
	}
}

// Router builds the route table with the full middleware chain
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/status", s.app.getStatus).Methods("GET")
	router.HandleFunc("/stats", s.app.getStats).Methods("GET")

	router.Handle("/connect", s.gate.RequireBasic(http.HandlerFunc(s.auth.getConnect))).Methods("GET")
	router.Handle("/disconnect", s.gate.RequireToken(http.HandlerFunc(s.auth.getDisconnect))).Methods("GET")

	router.HandleFunc("/users", s.users.postUser).Methods("POST")
	router.Handle("/users/me", s.gate.RequireToken(http.HandlerFunc(s.users.getMe))).Methods("GET")

	router.Handle("/files", s.gate.RequireToken(http.HandlerFunc(s.files.postFile))).Methods("POST")
	router.Handle("/files", s.gate.RequireToken(http.HandlerFunc(s.files.listFiles))).Methods("GET")
	router.Handle("/files/{id}", s.gate.RequireToken(http.HandlerFunc(s.files.getFile))).Methods("GET")
	router.Handle("/files/{id}/publish", s.gate.RequireToken(http.HandlerFunc(s.files.publishFile))).Methods("PUT")
	router.Handle("/files/{id}/unpublish", s.gate.RequireToken(http.HandlerFunc(s.files.unpublishFile))).Methods("PUT")
	// File content is fetchable without a token when the file is public; the
	// handler resolves the identity opportunistically.
	router.HandleFunc("/files/{id}/data", s.files.getFileData).Methods("GET")

	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	var handler http.Handler = router
	handler = httputil.LoggingMiddleware(s.logger, s.metrics)(handler)
	handler = httputil.RequestIDMiddleware(handler)
	handler = httputil.RecoveryMiddleware(s.logger)(handler)
	return handler
}
