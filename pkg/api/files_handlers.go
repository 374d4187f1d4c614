package api

import (
	"encoding/base64"
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/depotlabs/filedepot/pkg/auth"
	"github.com/depotlabs/filedepot/pkg/authz"
	"github.com/depotlabs/filedepot/pkg/httputil"
	"github.com/depotlabs/filedepot/pkg/middleware"
	"github.com/depotlabs/filedepot/pkg/observability"
	"github.com/depotlabs/filedepot/pkg/store"
)

// filesPageSize is the fixed page size for file listings
const filesPageSize = 20

// FileHandlers serves the file record endpoints
type FileHandlers struct {
	files      store.FileStore
	blobs      store.BlobStore
	authorizer *authz.FileAuthorizer
	gate       *middleware.AccessGate
}

// NewFileHandlers creates the file handlers
func NewFileHandlers(files store.FileStore, blobs store.BlobStore, authorizer *authz.FileAuthorizer, gate *middleware.AccessGate) *FileHandlers {
	return &FileHandlers{
		files:      files,
		blobs:      blobs,
		authorizer: authorizer,
		gate:       gate,
	}
}

// postFile handles POST /files
func (h *FileHandlers) postFile(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		httputil.WriteUnauthorized(w)
		return
	}

	var req struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		ParentID string `json:"parentId"`
		IsPublic bool   `json:"isPublic"`
		Data     string `json:"data"`
	}

	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.Name == "" {
		httputil.WriteBadRequest(w, "Missing name")
		return
	}
	fileType := store.FileType(req.Type)
	if !store.ValidFileType(fileType) {
		httputil.WriteBadRequest(w, "Missing type")
		return
	}
	if req.Data == "" && fileType != store.FileTypeFolder {
		httputil.WriteBadRequest(w, "Missing data")
		return
	}

	if req.ParentID != "" {
		parent, err := h.files.GetFileByID(r.Context(), req.ParentID)
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteBadRequest(w, "Parent not found")
			return
		}
		if err != nil {
			observability.FromContext(r.Context()).WithError(err).Error("failed to load parent")
			httputil.WriteInternalError(w)
			return
		}
		if parent.Type != store.FileTypeFolder {
			httputil.WriteBadRequest(w, "Parent is not a folder")
			return
		}
	}

	file := &store.File{
		OwnerID:  identity.UserID,
		Name:     req.Name,
		Type:     fileType,
		IsPublic: req.IsPublic,
		ParentID: req.ParentID,
	}

	if fileType != store.FileTypeFolder {
		data, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid data")
			return
		}

		key, err := h.blobs.Put(r.Context(), data)
		if err != nil {
			observability.FromContext(r.Context()).WithError(err).Error("failed to store file content")
			httputil.WriteInternalError(w)
			return
		}
		file.BlobKey = key
	}

	created, err := h.files.CreateFile(r.Context(), file)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to create file record")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteCreated(w, created)
}

// getFile handles GET /files/{id}. A file the identity may not read is
// reported as absent, never as forbidden.
func (h *FileHandlers) getFile(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	file, ok := h.loadFile(w, r)
	if !ok {
		return
	}

	if !h.authorizer.CanRead(identity, file) {
		httputil.WriteNotFound(w)
		return
	}

	httputil.WriteSuccess(w, file)
}

// listFiles handles GET /files
func (h *FileHandlers) listFiles(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		httputil.WriteUnauthorized(w)
		return
	}

	parentID := r.URL.Query().Get("parentId")
	page := httputil.ParseQueryInt(r, "page", 0)
	if page < 0 {
		page = 0
	}

	files, err := h.files.ListFilesByOwner(r.Context(), identity.UserID, parentID, filesPageSize, page*filesPageSize)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to list files")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, files)
}

// publishFile handles PUT /files/{id}/publish
func (h *FileHandlers) publishFile(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, true)
}

// unpublishFile handles PUT /files/{id}/unpublish
func (h *FileHandlers) unpublishFile(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, false)
}

// setVisibility flips the public flag for an owner. The existence of the file
// is already implied by the request path, so a non-owner gets 403 here, not
// the 404 used on the read path.
func (h *FileHandlers) setVisibility(w http.ResponseWriter, r *http.Request, isPublic bool) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		httputil.WriteUnauthorized(w)
		return
	}

	file, ok := h.loadFile(w, r)
	if !ok {
		return
	}

	if !h.authorizer.CanPublish(identity, file) {
		httputil.WriteForbidden(w)
		return
	}

	updated, err := h.files.SetFileVisibility(r.Context(), file.ID, isPublic)
	if errors.Is(err, store.ErrNotFound) {
		httputil.WriteNotFound(w)
		return
	}
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to update visibility")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, updated)
}

// getFileData handles GET /files/{id}/data. No gate is mounted: public file
// content must be fetchable anonymously. When an X-Token is present the
// identity is resolved opportunistically so owners can fetch private content.
func (h *FileHandlers) getFileData(w http.ResponseWriter, r *http.Request) {
	identity, err := h.gate.ResolveToken(r)
	if err != nil && !errors.Is(err, auth.ErrUnauthorized) {
		observability.FromContext(r.Context()).WithError(err).Error("failed to resolve token")
		httputil.WriteInternalError(w)
		return
	}

	file, ok := h.loadFile(w, r)
	if !ok {
		return
	}

	if !h.authorizer.CanRead(identity, file) {
		httputil.WriteNotFound(w)
		return
	}

	if file.Type == store.FileTypeFolder {
		httputil.WriteBadRequest(w, "A folder doesn't have content")
		return
	}

	data, err := h.blobs.Get(r.Context(), file.BlobKey)
	if errors.Is(err, store.ErrNotFound) {
		httputil.WriteNotFound(w)
		return
	}
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to read file content")
		httputil.WriteInternalError(w)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(file.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// loadFile fetches the file record from the path id, mapping absence to 404
// and collaborator failure to 500. Returns false when a response was written.
func (h *FileHandlers) loadFile(w http.ResponseWriter, r *http.Request) (*store.File, bool) {
	id, err := httputil.ParsePathString(r, "id")
	if err != nil {
		httputil.WriteNotFound(w)
		return nil, false
	}

	file, err := h.files.GetFileByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		httputil.WriteNotFound(w)
		return nil, false
	}
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to load file record")
		httputil.WriteInternalError(w)
		return nil, false
	}

	return file, true
}
