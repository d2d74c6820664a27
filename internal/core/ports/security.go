package ports

import (
	"context"
	"io"
	"time"

	"github.com/staffhub/user-management/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords with a slow adaptive function.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// TokenSigner issues and parses signed, expiring bearer tokens.
type TokenSigner interface {
	Sign(accountID string, role domain.Role) (string, error)
	// Parse returns domain.ErrTokenExpired or domain.ErrTokenInvalid on failure.
	Parse(token string) (TokenClaims, error)
}

// TokenClaims is the verified payload of a bearer token.
type TokenClaims struct {
	AccountID string
	Role      domain.Role
	ExpiresAt time.Time
}

// IdentityCache caches the role/active pair VerifyToken needs for each account.
// Implementations treat backend failures as misses.
type IdentityCache interface {
	Get(ctx context.Context, accountID string) (*CachedIdentity, bool)
	Set(ctx context.Context, accountID string, id CachedIdentity)
	Invalidate(ctx context.Context, accountID string)
}

// CachedIdentity is what IdentityCache stores per account.
type CachedIdentity struct {
	Role     domain.Role `json:"role"`
	IsActive bool        `json:"isActive"`
}

// FileStore persists binary objects such as profile images.
type FileStore interface {
	// Store writes body and returns a reference usable as a public URL.
	Store(ctx context.Context, accountID string, body io.Reader, size int64, contentType, filename string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// CleanupQueue schedules asynchronous deletion of stored files.
type CleanupQueue interface {
	Enqueue(accountID, ref string)
}
