package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/depotlabs/filedepot/pkg/auth"
	"github.com/depotlabs/filedepot/pkg/authz"
	"github.com/depotlabs/filedepot/pkg/middleware"
	"github.com/depotlabs/filedepot/pkg/observability"
	"github.com/depotlabs/filedepot/pkg/store"
)

// fakeUserStore is an in-memory UserStore
type fakeUserStore struct {
	users  map[string]*store.User // keyed by ID
	nextID int
	err    error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*store.User{}}
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, passwordHash string) (*store.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, user := range f.users {
		if user.Email == email {
			return nil, store.ErrDuplicateEmail
		}
	}
	f.nextID++
	user := &store.User{
		ID:           "user-" + string(rune('0'+f.nextID)),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) GetUserByEmailAndHash(_ context.Context, email, passwordHash string) (*store.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, user := range f.users {
		if user.Email == email && user.PasswordHash == passwordHash {
			return user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (*store.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserStore) CountUsers(_ context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.users)), nil
}

// fakeFileStore is an in-memory FileStore
type fakeFileStore struct {
	files  map[string]*store.File
	nextID int
	err    error
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: map[string]*store.File{}}
}

func (f *fakeFileStore) CreateFile(_ context.Context, file *store.File) (*store.File, error) {
	if f.err != nil {
		return nil, f.err
	}
	created := *file
	f.nextID++
	created.ID = "file-" + string(rune('0'+f.nextID))
	created.CreatedAt = time.Now()
	f.files[created.ID] = &created
	return &created, nil
}

func (f *fakeFileStore) GetFileByID(_ context.Context, id string) (*store.File, error) {
	if f.err != nil {
		return nil, f.err
	}
	file, ok := f.files[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *file
	return &copied, nil
}

func (f *fakeFileStore) ListFilesByOwner(_ context.Context, ownerID, parentID string, limit, offset int) ([]*store.File, error) {
	if f.err != nil {
		return nil, f.err
	}
	var matches []*store.File
	for _, file := range f.files {
		if file.OwnerID == ownerID && file.ParentID == parentID {
			copied := *file
			matches = append(matches, &copied)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	if offset >= len(matches) {
		return []*store.File{}, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}

func (f *fakeFileStore) SetFileVisibility(_ context.Context, id string, isPublic bool) (*store.File, error) {
	if f.err != nil {
		return nil, f.err
	}
	file, ok := f.files[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	file.IsPublic = isPublic
	copied := *file
	return &copied, nil
}

func (f *fakeFileStore) CountFiles(_ context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.files)), nil
}

// fakeBlobStore is an in-memory BlobStore
type fakeBlobStore struct {
	blobs  map[string][]byte
	nextID int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string][]byte{}}
}

func (f *fakeBlobStore) Put(_ context.Context, data []byte) (string, error) {
	f.nextID++
	key := "blob-" + string(rune('0'+f.nextID))
	f.blobs[key] = data
	return key, nil
}

func (f *fakeBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := f.blobs[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return data, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, key string) error {
	delete(f.blobs, key)
	return nil
}

// testEnv bundles the handler under test with its collaborators
type testEnv struct {
	handler  http.Handler
	users    *fakeUserStore
	files    *fakeFileStore
	blobs    *fakeBlobStore
	sessions *auth.SessionManager
	redis    *redis.Client
}

// newTestEnv builds a full server over miniredis and in-memory fakes
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	users := newFakeUserStore()
	files := newFakeFileStore()
	blobs := newFakeBlobStore()

	verifier := auth.NewCredentialVerifier(users)
	sessions := auth.NewSessionManager(verifier, auth.NewSessionStore(redisClient), nil, time.Hour)
	gate := middleware.NewAccessGate(sessions, verifier, nil)
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)

	server := NewServer(ServerDeps{
		Logger:     logger,
		Health:     observability.NewHealthChecker(nil, redisClient),
		Gate:       gate,
		Sessions:   sessions,
		Users:      users,
		Files:      files,
		Blobs:      blobs,
		Authorizer: authz.NewFileAuthorizer(),
	})

	return &testEnv{
		handler:  server.Router(),
		users:    users,
		files:    files,
		blobs:    blobs,
		sessions: sessions,
		redis:    redisClient,
	}
}

// registerUser seeds a user and returns its ID
func (e *testEnv) registerUser(t *testing.T, email, password string) string {
	t.Helper()
	user, err := e.users.CreateUser(context.Background(), email, auth.HashSecret(password))
	require.NoError(t, err)
	return user.ID
}

// loginUser issues a session token for an already-seeded user
func (e *testEnv) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	token, err := e.sessions.Login(context.Background(), email, password)
	require.NoError(t, err)
	return token
}

// do executes a request against the router
func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a JSON response body
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}
