package ports

import (
	"context"
	"encoding/json"
	"io"

	"github.com/staffhub/user-management/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string
	LastName string
	Email    string
	Password string
	Bio      string
	// Role is only honoured for administrative registration.
	Role string
}

// ProfilePatch is a self-service profile edit. Nil fields are left unchanged.
// Experience and Education accept either a JSON array or a JSON string holding one;
// they are nil when the key was absent and hold "null" when it was sent as null.
type ProfilePatch struct {
	Name             *string
	LastName         *string
	Bio              *string
	MobileNumber     *string
	PermanentAddress *string
	CurrentPosition  *string
	Experience       json.RawMessage
	Education        json.RawMessage
}

// ImageUpload is a profile image about to be stored.
type ImageUpload struct {
	Body        io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// AccountService implements the account lifecycle rules.
type AccountService interface {
	RegisterSuperAdmin(ctx context.Context, in RegisterInput) (*domain.Account, error)
	RegisterUser(ctx context.Context, actor domain.Actor, in RegisterInput) (*domain.Account, error)
	PromoteToAdmin(ctx context.Context, actor domain.Actor, targetID string) (*domain.Account, error)
	DemoteToUser(ctx context.Context, actor domain.Actor, targetID string) (*domain.Account, error)
	Activate(ctx context.Context, actor domain.Actor, targetID string) (*domain.Account, error)
	Deactivate(ctx context.Context, actor domain.Actor, targetID string) (*domain.Account, error)
	Delete(ctx context.Context, actor domain.Actor, targetID string) error
	List(ctx context.Context, actor domain.Actor) ([]*domain.Account, error)
	Get(ctx context.Context, actor domain.Actor, targetID string) (*domain.Account, error)
	UpdateOwnProfile(ctx context.Context, actor domain.Actor, patch ProfilePatch) (*domain.Account, error)
	UpdateProfileImage(ctx context.Context, actor domain.Actor, img ImageUpload) (*domain.Account, error)
}
