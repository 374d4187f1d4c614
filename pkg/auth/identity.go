package auth

import (
	"context"

	"github.com/depotlabs/filedepot/pkg/contextkeys"
)

// Method records how an identity was authenticated
type Method string

const (
	// MethodBasic marks an identity resolved from a Basic authorization header
	MethodBasic Method = "basic"
	// MethodToken marks an identity resolved from a session token
	MethodToken Method = "token"
)

// Identity is the outcome of successful authentication. It is derived per
// request, never persisted, and valid only for the request that produced it.
type Identity struct {
	UserID string
	Method Method
}

// IdentityFromContext retrieves the identity attached by the access gate, or
// nil when the request was not authenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	identity, ok := ctx.Value(contextkeys.IdentityKey).(*Identity)
	if !ok {
		return nil
	}
	return identity
}

// ContextWithIdentity attaches a resolved identity to the context
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return contextkeys.WithIdentity(ctx, identity)
}
