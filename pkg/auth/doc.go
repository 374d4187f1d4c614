// Package auth implements the authentication core: credential verification,
// session tokens, and the session lifecycle.
//
// A session is the server-side binding of an opaque token to a user for a
// bounded time. Tokens are generated from crypto/rand (128 bits) and live in
// the redis collaborator under their own TTL; nothing in this package sweeps
// or polls. The lifecycle is:
//
//	NONE --Login--> ACTIVE --Logout--> REVOKED
//	                ACTIVE --(redis TTL)--> EXPIRED
//
// Resolve is a pure lookup: an expired, revoked, or never-issued token is
// simply absent and yields ErrUnauthorized. Every internal failure cause
// (malformed credentials, unknown user, wrong secret) unwraps to the same
// ErrUnauthorized sentinel so the HTTP layer cannot leak which one occurred.
package auth
