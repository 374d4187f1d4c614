package auth

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/depotlabs/filedepot/pkg/store"
)

// HashSecret applies the fixed one-way hash used for stored credentials.
// Every credential comparison goes through this single function; plaintext
// secrets are never compared or stored.
func HashSecret(secret string) string {
	sum := sha1.Sum([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// CredentialVerifier checks an email/secret pair against stored user records
type CredentialVerifier struct {
	users store.UserStore
}

// NewCredentialVerifier creates a verifier backed by the given user store
func NewCredentialVerifier(users store.UserStore) *CredentialVerifier {
	return &CredentialVerifier{users: users}
}

// Verify returns the matching user's identifier. A malformed pair fails with
// ErrInvalidCredentialFormat and a non-matching pair with
// ErrCredentialMismatch; both unwrap to ErrUnauthorized and callers must not
// surface the difference. The secret is hashed before it leaves this function
// and is never logged.
func (v *CredentialVerifier) Verify(ctx context.Context, email, secret string) (string, error) {
	if email == "" || secret == "" || !strings.Contains(email, "@") {
		return "", ErrInvalidCredentialFormat
	}

	user, err := v.users.GetUserByEmailAndHash(ctx, email, HashSecret(secret))
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrCredentialMismatch
	}
	if err != nil {
		return "", fmt.Errorf("user lookup failed: %w", err)
	}

	return user.ID, nil
}
