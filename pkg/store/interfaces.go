package store

import (
	"context"
	"errors"
)

// Sentinel errors shared by all store implementations
var (
	// ErrNotFound is returned when a record does not exist. Implementations
	// never distinguish "never existed" from "no longer visible".
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when registering an email that is taken
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserStore is the document-store collaborator for user records
type UserStore interface {
	// CreateUser persists a new user and returns it with its assigned ID
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)
	// GetUserByEmailAndHash performs the exact (email, hash) equality lookup
	// used for credential verification. Returns ErrNotFound on no match.
	GetUserByEmailAndHash(ctx context.Context, email, passwordHash string) (*User, error)
	// GetUserByID fetches a user by identifier. Returns ErrNotFound when absent.
	GetUserByID(ctx context.Context, id string) (*User, error)
	// CountUsers returns the total number of registered users
	CountUsers(ctx context.Context) (int64, error)
}

// FileStore is the document-store collaborator for file records
type FileStore interface {
	// CreateFile persists a new file record and returns it with its assigned ID
	CreateFile(ctx context.Context, file *File) (*File, error)
	// GetFileByID fetches a file record by identifier. Returns ErrNotFound when absent.
	GetFileByID(ctx context.Context, id string) (*File, error)
	// ListFilesByOwner lists an owner's files under the given parent
	// (empty parentID means top level), paginated.
	ListFilesByOwner(ctx context.Context, ownerID, parentID string, limit, offset int) ([]*File, error)
	// SetFileVisibility flips the public flag. Returns ErrNotFound when absent.
	SetFileVisibility(ctx context.Context, id string, isPublic bool) (*File, error)
	// CountFiles returns the total number of file records
	CountFiles(ctx context.Context) (int64, error)
}

// BlobStore holds opaque file contents keyed by an unguessable identifier
type BlobStore interface {
	// Put stores the payload and returns its key
	Put(ctx context.Context, data []byte) (string, error)
	// Get retrieves a payload by key. Returns ErrNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes a payload; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error
}
