// Package authz decides per-file permissions for a resolved identity.
//
// Denials are booleans, not errors: the HTTP layer maps a read denial to 404
// and a write/publish denial to 403. The asymmetry keeps the existence of
// private files unobservable to non-owners and must not be collapsed into a
// uniform 403.
package authz

import (
	"github.com/depotlabs/filedepot/pkg/auth"
	"github.com/depotlabs/filedepot/pkg/store"
)

// FileAuthorizer decides read/write/publish permission for file records. It
// only reads the owner and visibility fields; it never mutates a record.
type FileAuthorizer struct{}

// NewFileAuthorizer creates a new file authorizer
func NewFileAuthorizer() *FileAuthorizer {
	return &FileAuthorizer{}
}

// CanRead reports whether the identity may read the file: public files are
// readable by anyone (including no identity at all), private files only by
// their owner.
func (a *FileAuthorizer) CanRead(identity *auth.Identity, file *store.File) bool {
	if file == nil {
		return false
	}
	if file.IsPublic {
		return true
	}
	return identity != nil && identity.UserID == file.OwnerID
}

// CanWrite reports whether the identity may modify the file. Owner only,
// regardless of visibility.
func (a *FileAuthorizer) CanWrite(identity *auth.Identity, file *store.File) bool {
	return identity != nil && file != nil && identity.UserID == file.OwnerID
}

// CanPublish reports whether the identity may change the file's visibility.
// Owner only, regardless of visibility.
func (a *FileAuthorizer) CanPublish(identity *auth.Identity, file *store.File) bool {
	return identity != nil && file != nil && identity.UserID == file.OwnerID
}
