package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/staffhub/user-management/internal/core/domain"
	"github.com/staffhub/user-management/internal/core/ports"
)

// AuthService verifies credentials and bearer tokens.
type AuthService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	signer ports.TokenSigner
	cache  ports.IdentityCache
	log    zerolog.Logger
}

// NewAuthService returns an AuthService. cache may be nil, in which case every
// token verification reads the account store.
func NewAuthService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	signer ports.TokenSigner,
	cache ports.IdentityCache,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, signer: signer, cache: cache, log: log}
}

// Login authenticates an email/password pair. Unknown emails and wrong passwords
// fail identically with domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if !account.IsActive {
		s.log.Info().Str("user_id", account.ID).Msg("login rejected for deactivated account")
		return "", nil, domain.ErrAccountDeactivated
	}

	if !s.hasher.Compare(account.PasswordHash, password) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.signer.Sign(account.ID, account.Role)
	if err != nil {
		return "", nil, fmt.Errorf("login: sign token: %w", err)
	}

	s.log.Info().Str("user_id", account.ID).Str("role", string(account.Role)).Msg("login succeeded")
	return token, account, nil
}

// VerifyToken parses token and resolves its subject to the account's current
// role and status. The cache is consulted first; misses read the store and
// repopulate it.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (domain.Actor, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return domain.Actor{}, err
	}

	identity, err := s.resolveIdentity(ctx, claims.AccountID)
	if err != nil {
		return domain.Actor{}, err
	}
	if !identity.IsActive {
		return domain.Actor{}, domain.ErrAccountDeactivated
	}

	return domain.Actor{ID: claims.AccountID, Role: identity.Role}, nil
}

func (s *AuthService) resolveIdentity(ctx context.Context, accountID string) (ports.CachedIdentity, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, accountID); ok {
			return *cached, nil
		}
	}

	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return ports.CachedIdentity{}, domain.ErrAccountMissing
		}
		return ports.CachedIdentity{}, fmt.Errorf("verify token: %w", err)
	}

	identity := ports.CachedIdentity{Role: account.Role, IsActive: account.IsActive}
	if s.cache != nil {
		s.cache.Set(ctx, accountID, identity)
	}
	return identity, nil
}
