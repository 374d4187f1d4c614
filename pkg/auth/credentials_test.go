package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depotlabs/filedepot/pkg/store"
)

// fakeUserStore is an in-memory UserStore for credential tests
type fakeUserStore struct {
	users map[string]*store.User // keyed by email
	err   error
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, passwordHash string) (*store.User, error) {
	if _, ok := f.users[email]; ok {
		return nil, store.ErrDuplicateEmail
	}
	user := &store.User{ID: "user-" + email, Email: email, PasswordHash: passwordHash}
	f.users[email] = user
	return user, nil
}

func (f *fakeUserStore) GetUserByEmailAndHash(_ context.Context, email, passwordHash string) (*store.User, error) {
	if f.err != nil {
		return nil, f.err
	}
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

func newFakeUserStore(email, password string) *fakeUserStore {
	return &fakeUserStore{
		users: map[string]*store.User{
			email: {ID: "user-" + email, Email: email, PasswordHash: HashSecret(password)},
		},
	}
}

func TestCredentialVerifier_Verify_Success(t *testing.T) {
	verifier := NewCredentialVerifier(newFakeUserStore("bob@dylan.com", "toto1234!"))

	userID, err := verifier.Verify(context.Background(), "bob@dylan.com", "toto1234!")
	require.NoError(t, err)
	assert.Equal(t, "user-bob@dylan.com", userID)
}

func TestCredentialVerifier_Verify_Failures(t *testing.T) {
	verifier := NewCredentialVerifier(newFakeUserStore("bob@dylan.com", "toto1234!"))

	tests := []struct {
		name   string
		email  string
		secret string
	}{
		{"empty email", "", "toto1234!"},
		{"empty secret", "bob@dylan.com", ""},
		{"email without at sign", "bob.dylan.com", "toto1234!"},
		{"wrong password", "bob@dylan.com", "wrong"},
		{"unknown user", "alice@dylan.com", "toto1234!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), tt.email, tt.secret)
			require.Error(t, err)
			// every failure collapses into the same outward outcome
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestCredentialVerifier_FormatAndMismatchIndistinguishable(t *testing.T) {
	verifier := NewCredentialVerifier(newFakeUserStore("bob@dylan.com", "toto1234!"))

	_, formatErr := verifier.Verify(context.Background(), "not-an-email", "x")
	_, mismatchErr := verifier.Verify(context.Background(), "bob@dylan.com", "wrong")

	assert.ErrorIs(t, formatErr, ErrUnauthorized)
	assert.ErrorIs(t, mismatchErr, ErrUnauthorized)
}

func TestCredentialVerifier_CollaboratorFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	verifier := NewCredentialVerifier(&fakeUserStore{err: storeErr})

	_, err := verifier.Verify(context.Background(), "bob@dylan.com", "toto1234!")
	require.Error(t, err)
	// infrastructure errors are not authentication failures
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, storeErr)
}
