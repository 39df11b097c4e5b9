package domain

import "time"

// TokenIssuer issues tokens (e.g. JWT) carrying a caller identity.
type TokenIssuer interface {
	Issue(id Identity, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the identity it carries.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}
