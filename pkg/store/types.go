package store

import "time"

// FileType enumerates the kinds of file records
type FileType string

const (
	FileTypeFolder FileType = "folder"
	FileTypeFile   FileType = "file"
	FileTypeImage  FileType = "image"
)

// ValidFileType reports whether t is one of the accepted file kinds
func ValidFileType(t FileType) bool {
	switch t {
	case FileTypeFolder, FileTypeFile, FileTypeImage:
		return true
	}
	return false
}

// User is a registered account. The password is held only as a one-way hash;
// the plaintext never reaches this package.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// File is a stored file record. OwnerID is immutable after creation and
// IsPublic is mutable only through SetFileVisibility.
type File struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"userId"`
	Name      string    `json:"name"`
	Type      FileType  `json:"type"`
	IsPublic  bool      `json:"isPublic"`
	ParentID  string    `json:"parentId,omitempty"`
	BlobKey   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
