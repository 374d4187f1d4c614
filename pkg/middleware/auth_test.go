package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depotlabs/filedepot/pkg/auth"
	"github.com/depotlabs/filedepot/pkg/store"
)

type fakeUserStore struct {
	users map[string]*store.User
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, passwordHash string) (*store.User, error) {
	user := &store.User{ID: "user-" + email, Email: email, PasswordHash: passwordHash}
	f.users[email] = user
	return user, nil
}

func (f *fakeUserStore) GetUserByEmailAndHash(_ context.Context, email, passwordHash string) (*store.User, error) {
	user, ok := f.users[email]
	if !ok || user.PasswordHash != passwordHash {
		return nil, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (*store.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) CountUsers(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

// setupGateTest builds an access gate over miniredis and a single stored user
func setupGateTest(t *testing.T) (*AccessGate, *auth.SessionManager) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	users := &fakeUserStore{users: map[string]*store.User{
		"bob@dylan.com": {ID: "user-1", Email: "bob@dylan.com", PasswordHash: auth.HashSecret("toto1234!")},
	}}

	verifier := auth.NewCredentialVerifier(users)
	sessions := auth.NewSessionManager(verifier, auth.NewSessionStore(client), nil, time.Hour)

	return NewAccessGate(sessions, verifier, nil), sessions
}

// identityEcho records the identity the gate attached
func identityEcho(captured **auth.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func basicHeader(email, secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+secret))
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestParseBasicHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantErr bool
		email   string
		secret  string
	}{
		{"valid", basicHeader("bob@dylan.com", "toto1234!"), false, "bob@dylan.com", "toto1234!"},
		{"secret containing colon", basicHeader("bob@dylan.com", "to:to"), false, "bob@dylan.com", "to:to"},
		{"missing header", "", true, "", ""},
		{"wrong scheme", "Bearer abc", true, "", ""},
		{"not base64", "Basic not-base64!!!", true, "", ""},
		{"no colon separator", "Basic " + base64.StdEncoding.EncodeToString([]byte("bobdylan")), true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, secret, err := ParseBasicHeader(tt.header)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, auth.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, email)
			assert.Equal(t, tt.secret, secret)
		})
	}
}

func TestRequireBasic_Success(t *testing.T) {
	gate, _ := setupGateTest(t)

	var identity *auth.Identity
	handler := gate.RequireBasic(identityEcho(&identity))

	req := httptest.NewRequest("GET", "/connect", nil)
	req.Header.Set("Authorization", basicHeader("bob@dylan.com", "toto1234!"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, identity)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, auth.MethodBasic, identity.Method)
}

func TestRequireBasic_UniformUnauthorizedBody(t *testing.T) {
	gate, _ := setupGateTest(t)
	handler := gate.RequireBasic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	// a malformed header and a wrong password must be indistinguishable
	headers := []string{
		"Basic not-base64",
		basicHeader("bob@dylan.com", "wrong"),
		basicHeader("unknown@dylan.com", "toto1234!"),
		"",
	}

	var bodies []map[string]string
	for _, header := range headers {
		req := httptest.NewRequest("GET", "/connect", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		bodies = append(bodies, errorBody(t, rec))
	}

	for _, body := range bodies {
		assert.Equal(t, bodies[0], body)
		assert.Equal(t, "Unauthorized", body["error"])
	}
}

func TestRequireToken_Success(t *testing.T) {
	gate, sessions := setupGateTest(t)

	token, err := sessions.Login(context.Background(), "bob@dylan.com", "toto1234!")
	require.NoError(t, err)

	var identity *auth.Identity
	handler := gate.RequireToken(identityEcho(&identity))

	req := httptest.NewRequest("GET", "/users/me", nil)
	req.Header.Set(TokenHeader, token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, identity)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, auth.MethodToken, identity.Method)
}

func TestRequireToken_Rejections(t *testing.T) {
	gate, sessions := setupGateTest(t)

	revoked, err := sessions.Login(context.Background(), "bob@dylan.com", "toto1234!")
	require.NoError(t, err)
	require.NoError(t, sessions.Logout(context.Background(), revoked))

	tests := []struct {
		name  string
		token string
	}{
		{"missing header", ""},
		{"never issued", "deadbeefdeadbeefdeadbeefdeadbeef"},
		{"revoked token", revoked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := gate.RequireToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			}))

			req := httptest.NewRequest("GET", "/users/me", nil)
			if tt.token != "" {
				req.Header.Set(TokenHeader, tt.token)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Unauthorized", errorBody(t, rec)["error"])
		})
	}
}

func TestResolveToken_Opportunistic(t *testing.T) {
	gate, sessions := setupGateTest(t)

	token, err := sessions.Login(context.Background(), "bob@dylan.com", "toto1234!")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/files/abc/data", nil)
	req.Header.Set(TokenHeader, token)
	identity, err := gate.ResolveToken(req)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)

	anon := httptest.NewRequest("GET", "/files/abc/data", nil)
	identity, err = gate.ResolveToken(anon)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
	assert.Nil(t, identity)
}
