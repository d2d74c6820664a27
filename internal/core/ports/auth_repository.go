package ports

import (
	"context"
	"time"

	"github.com/staffhub/user-management/internal/core/domain"
)

// AccountUpdate is a sparse set of field changes. Nil fields are left untouched.
type AccountUpdate struct {
	Name             *string
	LastName         *string
	Bio              *string
	Role             *domain.Role
	IsActive         *bool
	MobileNumber     *string
	PermanentAddress *string
	CurrentPosition  *string
	Experience       *[]domain.Experience
	Education        *[]domain.Education
	ProfileImage     *string
}

// IsEmpty reports whether u carries no changes.
func (u AccountUpdate) IsEmpty() bool {
	return u.Name == nil && u.LastName == nil && u.Bio == nil && u.Role == nil &&
		u.IsActive == nil && u.MobileNumber == nil && u.PermanentAddress == nil &&
		u.CurrentPosition == nil && u.Experience == nil && u.Education == nil &&
		u.ProfileImage == nil
}

// AccountRepository defines persistence operations for accounts.
// Emails are stored normalized; lookups expect a normalized email.
type AccountRepository interface {
	// EnsureIndexes creates the unique email index.
	EnsureIndexes(ctx context.Context) error
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// FindByID returns the account with its creator resolved.
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// Create assigns the id and timestamps. Returns domain.ErrDuplicateEmail on a taken email.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// Update applies u and stamps updatedAt with now, returning the stored account.
	Update(ctx context.Context, id string, u AccountUpdate, now time.Time) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
	// List returns every account with creators resolved, newest first.
	List(ctx context.Context) ([]*domain.Account, error)
}
