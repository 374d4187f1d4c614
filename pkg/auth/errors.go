package auth

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is the single outcome every authentication failure maps to.
// Handlers test against this sentinel with errors.Is and emit a uniform 401.
var ErrUnauthorized = errors.New("unauthorized")

// The specific failure causes below all unwrap to ErrUnauthorized so that a
// caller cannot distinguish a malformed credential from a non-matching one.
// Keeping them separate internally preserves log fidelity without changing
// the wire behavior.
var (
	// ErrInvalidCredentialFormat marks a malformed email/secret pair
	ErrInvalidCredentialFormat = fmt.Errorf("invalid credential format: %w", ErrUnauthorized)
	// ErrCredentialMismatch marks a well-formed pair with no matching user
	ErrCredentialMismatch = fmt.Errorf("credential mismatch: %w", ErrUnauthorized)
)
