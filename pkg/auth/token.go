package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the entropy of a session token (128 bits)
const tokenBytes = 16

// TokenGenerator produces opaque session tokens. It is injected into the
// SessionManager so tests can supply deterministic tokens.
type TokenGenerator interface {
	Generate() (string, error)
}

// RandomTokenGenerator generates tokens from crypto/rand
type RandomTokenGenerator struct{}

// NewRandomTokenGenerator creates a new cryptographically secure generator
func NewRandomTokenGenerator() *RandomTokenGenerator {
	return &RandomTokenGenerator{}
}

// Generate returns a fresh token: 16 random bytes, hex-encoded. The token is
// an opaque identifier, not a signature; its only security property is
// unguessability.
func (g *RandomTokenGenerator) Generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
