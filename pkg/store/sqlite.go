package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL REFERENCES users(id),
	name       TEXT NOT NULL,
	type       TEXT NOT NULL,
	is_public  BOOLEAN NOT NULL DEFAULT 0,
	parent_id  TEXT NOT NULL DEFAULT '',
	blob_key   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_owner_parent ON files(owner_id, parent_id);
`

// SQLiteStore implements UserStore and FileStore over an embedded SQLite
// database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite allows a single writer; serialize access through one connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStoreWithDB wraps an existing database handle. The schema must
// already be in place. Used by tests to substitute a mock.
func NewSQLiteStoreWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// DB exposes the underlying handle for health checks
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser implements UserStore.CreateUser
func (s *SQLiteStore) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	var existing int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, email).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing > 0 {
		return nil, ErrDuplicateEmail
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// GetUserByEmailAndHash implements UserStore.GetUserByEmailAndHash
func (s *SQLiteStore) GetUserByEmailAndHash(ctx context.Context, email, passwordHash string) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users WHERE email = ? AND password_hash = ?
	`, email, passwordHash).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetUserByID implements UserStore.GetUserByID
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users WHERE id = ?
	`, id).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// CountUsers implements UserStore.CountUsers
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// CreateFile implements FileStore.CreateFile
func (s *SQLiteStore) CreateFile(ctx context.Context, file *File) (*File, error) {
	created := *file
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files (id, owner_id, name, type, is_public, parent_id, blob_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, created.ID, created.OwnerID, created.Name, string(created.Type), created.IsPublic,
		created.ParentID, created.BlobKey, created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert file: %w", err)
	}

	return &created, nil
}

// GetFileByID implements FileStore.GetFileByID
func (s *SQLiteStore) GetFileByID(ctx context.Context, id string) (*File, error) {
	file, err := s.scanFile(s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, type, is_public, parent_id, blob_key, created_at
		FROM files WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file: %w", err)
	}
	return file, nil
}

// ListFilesByOwner implements FileStore.ListFilesByOwner
func (s *SQLiteStore) ListFilesByOwner(ctx context.Context, ownerID, parentID string, limit, offset int) ([]*File, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, type, is_public, parent_id, blob_key, created_at
		FROM files WHERE owner_id = ? AND parent_id = ?
		ORDER BY created_at, id
		LIMIT ? OFFSET ?
	`, ownerID, parentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	files := []*File{}
	for rows.Next() {
		file, err := s.scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate files: %w", err)
	}
	return files, nil
}

// SetFileVisibility implements FileStore.SetFileVisibility
func (s *SQLiteStore) SetFileVisibility(ctx context.Context, id string, isPublic bool) (*File, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE files SET is_public = ? WHERE id = ?`, isPublic, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update file visibility: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetFileByID(ctx, id)
}

// CountFiles implements FileStore.CountFiles
func (s *SQLiteStore) CountFiles(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM files`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func (s *SQLiteStore) scanFile(row scanner) (*File, error) {
	file := &File{}
	var fileType string
	err := row.Scan(&file.ID, &file.OwnerID, &file.Name, &fileType,
		&file.IsPublic, &file.ParentID, &file.BlobKey, &file.CreatedAt)
	if err != nil {
		return nil, err
	}
	file.Type = FileType(fileType)
	return file, nil
}
