package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// sessionKeyPrefix namespaces session tokens in the key-value store
	sessionKeyPrefix = "auth_"
	// DefaultSessionTTL is the session lifetime unless overridden
	DefaultSessionTTL = 24 * time.Hour
)

// SessionStore is the time-expiring token→user mapping. Expiry is enforced by
// the key-value collaborator's native TTL; this type never sweeps.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a session store over the given redis client
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Put stores the token→userID mapping with an absolute expiry. A put for an
// existing token overwrites it.
func (s *SessionStore) Put(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKeyPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get returns the user ID for a token. The second return is false when the
// token is absent; expired and never-existed are indistinguishable.
func (s *SessionStore) Get(ctx context.Context, token string) (string, bool, error) {
	userID, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session: %w", err)
	}
	return userID, true, nil
}

// Delete removes the mapping. Deleting an absent token is not an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// SessionManager issues, resolves, and revokes sessions
type SessionManager struct {
	verifier *CredentialVerifier
	sessions *SessionStore
	tokens   TokenGenerator
	ttl      time.Duration
}

// NewSessionManager creates a session manager. A nil token generator falls
// back to the crypto/rand implementation; a zero TTL falls back to the
// 24-hour default.
func NewSessionManager(verifier *CredentialVerifier, sessions *SessionStore, tokens TokenGenerator, ttl time.Duration) *SessionManager {
	if tokens == nil {
		tokens = NewRandomTokenGenerator()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		verifier: verifier,
		sessions: sessions,
		tokens:   tokens,
		ttl:      ttl,
	}
}

// Login verifies the credentials and, on success, issues a fresh token bound
// to the user. Concurrent logins for the same user yield independent
// sessions. On failure no session is created.
func (m *SessionManager) Login(ctx context.Context, email, secret string) (string, error) {
	userID, err := m.verifier.Verify(ctx, email, secret)
	if err != nil {
		return "", err
	}
	return m.Issue(ctx, userID)
}

// Issue creates a session for an already-authenticated user. Used by the
// login endpoint after the access gate has verified the Basic credentials.
func (m *SessionManager) Issue(ctx context.Context, userID string) (string, error) {
	token, err := m.tokens.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	if err := m.sessions.Put(ctx, token, userID, m.ttl); err != nil {
		return "", err
	}

	return token, nil
}

// Resolve returns the user ID bound to an active token. An absent token,
// whether expired, revoked, or never issued, fails with ErrUnauthorized.
func (m *SessionManager) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}

	userID, ok, err := m.sessions.Get(ctx, token)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrUnauthorized
	}
	return userID, nil
}

// Logout revokes a session. The token must currently resolve; a logout for a
// token nobody holds reports ErrUnauthorized rather than silently succeeding.
func (m *SessionManager) Logout(ctx context.Context, token string) error {
	if _, err := m.Resolve(ctx, token); err != nil {
		return err
	}
	return m.sessions.Delete(ctx, token)
}
