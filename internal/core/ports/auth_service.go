package ports

import (
	"context"

	"github.com/staffhub/user-management/internal/core/domain"
)

// AuthService verifies credentials and bearer tokens.
type AuthService interface {
	// Login returns a signed token and the account for a valid email/password pair.
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
	// VerifyToken resolves a bearer token into the current identity of its subject.
	VerifyToken(ctx context.Context, token string) (domain.Actor, error)
}
