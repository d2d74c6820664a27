package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/staffhub/user-management/internal/api/middleware"
	"github.com/staffhub/user-management/internal/core/domain"
	"github.com/staffhub/user-management/internal/core/ports"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, email, password string) (string, *domain.Account, error)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) VerifyToken(context.Context, string) (domain.Actor, error) {
	return domain.Actor{}, domain.ErrTokenInvalid
}

// stubAccountService records the last call and returns the configured result.
type stubAccountService struct {
	account  *domain.Account
	accounts []*domain.Account
	err      error

	lastActor  domain.Actor
	lastTarget string
	lastInput  ports.RegisterInput
	lastPatch  ports.ProfilePatch
	lastImage  ports.ImageUpload
	imageBody  []byte
	called     string
}

func (s *stubAccountService) RegisterSuperAdmin(_ context.Context, in ports.RegisterInput) (*domain.Account, error) {
	s.called, s.lastInput = "RegisterSuperAdmin", in
	return s.account, s.err
}

func (s *stubAccountService) RegisterUser(_ context.Context, actor domain.Actor, in ports.RegisterInput) (*domain.Account, error) {
	s.called, s.lastActor, s.lastInput = "RegisterUser", actor, in
	return s.account, s.err
}

func (s *stubAccountService) targeted(name string, actor domain.Actor, id string) (*domain.Account, error) {
	s.called, s.lastActor, s.lastTarget = name, actor, id
	return s.account, s.err
}

func (s *stubAccountService) PromoteToAdmin(_ context.Context, actor domain.Actor, id string) (*domain.Account, error) {
	return s.targeted("PromoteToAdmin", actor, id)
}

func (s *stubAccountService) DemoteToUser(_ context.Context, actor domain.Actor, id string) (*domain.Account, error) {
	return s.targeted("DemoteToUser", actor, id)
}

func (s *stubAccountService) Activate(_ context.Context, actor domain.Actor, id string) (*domain.Account, error) {
	return s.targeted("Activate", actor, id)
}

func (s *stubAccountService) Deactivate(_ context.Context, actor domain.Actor, id string) (*domain.Account, error) {
	return s.targeted("Deactivate", actor, id)
}

func (s *stubAccountService) Delete(_ context.Context, actor domain.Actor, id string) error {
	_, err := s.targeted("Delete", actor, id)
	return err
}

func (s *stubAccountService) List(_ context.Context, actor domain.Actor) ([]*domain.Account, error) {
	s.called, s.lastActor = "List", actor
	return s.accounts, s.err
}

func (s *stubAccountService) Get(_ context.Context, actor domain.Actor, id string) (*domain.Account, error) {
	return s.targeted("Get", actor, id)
}

func (s *stubAccountService) UpdateOwnProfile(_ context.Context, actor domain.Actor, patch ports.ProfilePatch) (*domain.Account, error) {
	s.called, s.lastActor, s.lastPatch = "UpdateOwnProfile", actor, patch
	return s.account, s.err
}

func (s *stubAccountService) UpdateProfileImage(_ context.Context, actor domain.Actor, img ports.ImageUpload) (*domain.Account, error) {
	s.called, s.lastActor, s.lastImage = "UpdateProfileImage", actor, img
	if img.Body != nil {
		body, err := io.ReadAll(img.Body)
		if err != nil {
			return nil, err
		}
		s.imageBody = body
	}
	return s.account, s.err
}

// newContext builds an echo context with the validator installed and,
// when actor is non-nil, the identity the Auth middleware would inject.
func newContext(method, target, body string, actor *domain.Actor) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actor != nil {
		c.Set(middleware.ContextUserID, actor.ID)
		c.Set(middleware.ContextRole, string(actor.Role))
	}
	return c, rec
}

var (
	rootActor  = &domain.Actor{ID: "root", Role: domain.RoleSuperAdmin}
	adminActor = &domain.Actor{ID: "adm", Role: domain.RoleAdmin}
	userActor  = &domain.Actor{ID: "usr", Role: domain.RoleUser}
)

func sampleAccount(id string, role domain.Role) *domain.Account {
	return &domain.Account{ID: id, Name: "Name " + id, Email: id + "@example.com", Role: role, IsActive: true}
}
