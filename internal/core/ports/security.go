package ports

import (
	"context"

	"github.com/devconnector/directory-api/internal/core/domain"
)

// PasswordHasher derives and checks salted one-way password records.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. Malformed records never match.
	Verify(ctx context.Context, plaintext, hash string) bool
	// NeedsRehash reports whether hash was produced with outdated parameters.
	NeedsRehash(hash string) bool
}

// TokenIssuer mints signed, time-limited bearer tokens.
type TokenIssuer interface {
	Issue(identity domain.Identity) (string, error)
}

// TokenVerifier checks a bearer token and returns the identity it carries.
// Every rejection is reported as domain.ErrTokenInvalid.
type TokenVerifier interface {
	Verify(token string) (*domain.Identity, error)
}
