package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/staffhub/user-management/internal/core/domain"
	"github.com/staffhub/user-management/internal/core/ports"
)

// AccountService applies the account lifecycle rules on top of the account store.
type AccountService struct {
	repo     ports.AccountRepository
	hasher   ports.PasswordHasher
	cache    ports.IdentityCache
	files    ports.FileStore
	cleanup  ports.CleanupQueue
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time
}

// NewAccountService returns an AccountService. cache, files and cleanup may be nil;
// without files, profile image uploads fail.
func NewAccountService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	cache ports.IdentityCache,
	files ports.FileStore,
	cleanup ports.CleanupQueue,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		repo:     repo,
		hasher:   hasher,
		cache:    cache,
		files:    files,
		cleanup:  cleanup,
		validate: validator.New(),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RegisterSuperAdmin creates the bootstrap account. It needs no actor.
func (s *AccountService) RegisterSuperAdmin(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	account, err := s.register(ctx, in, domain.RoleSuperAdmin, "")
	if err != nil {
		return nil, err
	}
	s.log.Warn().Str("user_id", account.ID).Str("email", account.Email).Msg("super admin registered through bootstrap")
	return account, nil
}

// RegisterUser creates a USER or ADMIN account on behalf of a super admin.
func (s *AccountService) RegisterUser(ctx context.Context, actor domain.Actor, in ports.RegisterInput) (*domain.Account, error) {
	if err := domain.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}
	role, err := domain.AssignableRole(in.Role)
	if err != nil {
		return nil, err
	}

	account, err := s.register(ctx, in, role, actor.ID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", account.ID).Str("role", string(role)).Str("created_by", actor.ID).Msg("user registered")
	return account, nil
}

func (s *AccountService) register(ctx context.Context, in ports.RegisterInput, role domain.Role, createdBy string) (*domain.Account, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, fmt.Errorf("%w: email must be a valid email", domain.ErrValidation)
	}
	if err := checkBio(in.Bio); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now()
	created, err := s.repo.Create(ctx, &domain.Account{
		Name:         name,
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		Bio:          in.Bio,
		Role:         role,
		IsActive:     true,
		Experience:   []domain.Experience{},
		Education:    []domain.Education{},
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return created, nil
}

// PromoteToAdmin moves a USER to ADMIN.
func (s *AccountService) PromoteToAdmin(ctx context.Context, actor domain.Actor, targetID string) (*domain.Account, error) {
	return s.changeRole(ctx, actor, targetID, domain.RoleAdmin)
}

// DemoteToUser moves an ADMIN back to USER.
func (s *AccountService) DemoteToUser(ctx context.Context, actor domain.Actor, targetID string) (*domain.Account, error) {
	return s.changeRole(ctx, actor, targetID, domain.RoleUser)
}

func (s *AccountService) changeRole(ctx context.Context, actor domain.Actor, targetID string, to domain.Role) (*domain.Account, error) {
	if err := domain.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckRoleChange(target, to); err != nil {
		return nil, err
	}

	updated, err := s.update(ctx, targetID, ports.AccountUpdate{Role: &to})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", targetID).Str("from", string(target.Role)).Str("to", string(to)).Str("actor_id", actor.ID).Msg("role changed")
	return updated, nil
}

// Activate re-enables an account. Activating an active account succeeds.
func (s *AccountService) Activate(ctx context.Context, actor domain.Actor, targetID string) (*domain.Account, error) {
	if err := domain.RequireAdministrator(actor); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		return nil, err
	}

	active := true
	updated, err := s.update(ctx, targetID, ports.AccountUpdate{IsActive: &active})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", targetID).Str("actor_id", actor.ID).Msg("account activated")
	return updated, nil
}

// Deactivate disables an account. Deactivating an inactive account succeeds.
func (s *AccountService) Deactivate(ctx context.Context, actor domain.Actor, targetID string) (*domain.Account, error) {
	if err := domain.RequireAdministrator(actor); err != nil {
		return nil, err
	}
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckDestructive(actor, target); err != nil {
		return nil, err
	}

	inactive := false
	updated, err := s.update(ctx, targetID, ports.AccountUpdate{IsActive: &inactive})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", targetID).Str("actor_id", actor.ID).Msg("account deactivated")
	return updated, nil
}

// Delete removes an account permanently and schedules removal of its profile image.
func (s *AccountService) Delete(ctx context.Context, actor domain.Actor, targetID string) error {
	if err := domain.RequireAdministrator(actor); err != nil {
		return err
	}
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := domain.CheckDestructive(actor, target); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}
	s.invalidate(ctx, targetID)
	s.discardImage(targetID, target.ProfileImage)

	s.log.Info().Str("user_id", targetID).Str("email", target.Email).Str("actor_id", actor.ID).Msg("account deleted")
	return nil
}

// List returns every account, newest first.
func (s *AccountService) List(ctx context.Context, actor domain.Actor) ([]*domain.Account, error) {
	if err := domain.RequireAdministrator(actor); err != nil {
		return nil, err
	}
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// Get returns a single account. Non-administrators may only read themselves.
func (s *AccountService) Get(ctx context.Context, actor domain.Actor, targetID string) (*domain.Account, error) {
	if err := domain.CanRead(actor, targetID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, targetID)
}

// UpdateOwnProfile applies patch to the actor's own account. Fields absent from
// patch are left untouched.
func (s *AccountService) UpdateOwnProfile(ctx context.Context, actor domain.Actor, patch ports.ProfilePatch) (*domain.Account, error) {
	u := ports.AccountUpdate{
		Name:             trimmed(patch.Name),
		LastName:         trimmed(patch.LastName),
		Bio:              patch.Bio,
		MobileNumber:     trimmed(patch.MobileNumber),
		PermanentAddress: trimmed(patch.PermanentAddress),
		CurrentPosition:  trimmed(patch.CurrentPosition),
	}
	if u.Name != nil && *u.Name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
	}
	if u.Bio != nil {
		if err := checkBio(*u.Bio); err != nil {
			return nil, err
		}
	}

	var err error
	if u.Experience, err = decodeEntries[domain.Experience](s.validate, "experience", patch.Experience); err != nil {
		return nil, err
	}
	if u.Education, err = decodeEntries[domain.Education](s.validate, "education", patch.Education); err != nil {
		return nil, err
	}

	if u.IsEmpty() {
		return s.repo.FindByID(ctx, actor.ID)
	}

	updated, err := s.update(ctx, actor.ID, u)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", actor.ID).Msg("profile updated")
	return updated, nil
}

// UpdateProfileImage stores a new profile image for the actor and schedules the
// previous one for deletion.
func (s *AccountService) UpdateProfileImage(ctx context.Context, actor domain.Actor, img ports.ImageUpload) (*domain.Account, error) {
	if s.files == nil {
		return nil, errors.New("profile image storage is not configured")
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		return nil, fmt.Errorf("%w: profile image must be an image", domain.ErrValidation)
	}

	current, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	ref, err := s.files.Store(ctx, actor.ID, img.Body, img.Size, img.ContentType, img.Filename)
	if err != nil {
		return nil, fmt.Errorf("store profile image: %w", err)
	}

	updated, err := s.update(ctx, actor.ID, ports.AccountUpdate{ProfileImage: &ref})
	if err != nil {
		s.discardImage(actor.ID, ref)
		return nil, err
	}
	s.discardImage(actor.ID, current.ProfileImage)

	s.log.Info().Str("user_id", actor.ID).Str("profile_image", ref).Msg("profile image updated")
	return updated, nil
}

func (s *AccountService) update(ctx context.Context, id string, u ports.AccountUpdate) (*domain.Account, error) {
	updated, err := s.repo.Update(ctx, id, u, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update account %s: %w", id, err)
	}
	s.invalidate(ctx, id)
	return updated, nil
}

func (s *AccountService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}

func (s *AccountService) discardImage(accountID, ref string) {
	if ref == "" || s.cleanup == nil {
		return
	}
	s.cleanup.Enqueue(accountID, ref)
}

func checkBio(bio string) error {
	if utf8.RuneCountInString(bio) > domain.MaxBioLength {
		return fmt.Errorf("%w: bio cannot exceed %d characters", domain.ErrValidation, domain.MaxBioLength)
	}
	return nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

// decodeEntries parses a list field that may arrive as a JSON array or as a JSON
// string holding one. An empty raw value means the field was absent; an explicit
// null is present but not a list.
func decodeEntries[T any](v *validator.Validate, field string, raw json.RawMessage) (*[]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	raw = bytes.TrimSpace(raw)

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("%w: %s must be an array", domain.ErrValidation, field)
		}
		raw = bytes.TrimSpace([]byte(inner))
	}
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: %s must be an array", domain.ErrValidation, field)
	}

	entries := []T{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrValidation, field, err)
	}
	for i := range entries {
		if err := v.Struct(entries[i]); err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %s", domain.ErrValidation, field, i, describe(err))
		}
	}
	return &entries, nil
}

// describe flattens validator errors into "field is required" style messages.
func describe(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, strings.ToLower(fe.Field()[:1])+fe.Field()[1:]+" is "+fe.Tag())
	}
	return strings.Join(msgs, "; ")
}
