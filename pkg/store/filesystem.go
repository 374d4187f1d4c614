package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileSystemBlobStore implements BlobStore on the local filesystem, one file
// per blob under a single root directory.
type FileSystemBlobStore struct {
	rootDir string
}

// NewFileSystemBlobStore creates a new filesystem-backed blob store
func NewFileSystemBlobStore(rootDir string) (*FileSystemBlobStore, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	return &FileSystemBlobStore{rootDir: rootDir}, nil
}

// Put implements BlobStore.Put
func (s *FileSystemBlobStore) Put(_ context.Context, data []byte) (string, error) {
	key := uuid.NewString()
	if err := os.WriteFile(s.path(key), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return key, nil
}

// Get implements BlobStore.Get
func (s *FileSystemBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.safePath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// Delete implements BlobStore.Delete
func (s *FileSystemBlobStore) Delete(_ context.Context, key string) error {
	path, err := s.safePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

func (s *FileSystemBlobStore) path(key string) string {
	return filepath.Join(s.rootDir, key)
}

// safePath rejects keys that would escape the root directory
func (s *FileSystemBlobStore) safePath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return "", ErrNotFound
	}
	return s.path(key), nil
}
