package handler

import (
	"encoding/json"

	"github.com/staffhub/user-management/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	LastName string `json:"lastName"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Bio      string `json:"bio"      validate:"max=500"`
}

type registerUserRequest struct {
	registerRequest
	Role string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// updateProfileRequest is a sparse patch: absent keys decode to nil and are left
// untouched. experience and education accept an array or a JSON string of one.
type updateProfileRequest struct {
	Name             *string         `json:"name"`
	LastName         *string         `json:"lastName"`
	Bio              *string         `json:"bio"`
	MobileNumber     *string         `json:"mobileNumber"`
	PermanentAddress *string         `json:"permanentAddress"`
	CurrentPosition  *string         `json:"currentPosition"`
	Experience       json.RawMessage `json:"experience" swaggertype:"array,object"`
	Education        json.RawMessage `json:"education"  swaggertype:"array,object"`
}

// --- Response types ---

type userSummary struct {
	UserID   string      `json:"userId"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	IsActive bool        `json:"isActive"`
}

type loginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    userSummary `json:"user"`
}

type userActionResponse struct {
	Message string      `json:"message"`
	User    userSummary `json:"user"`
}

type accountResponse struct {
	Message string          `json:"message,omitempty"`
	User    *domain.Account `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type creatorView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type userListItem struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	LastName        string              `json:"lastName"`
	Email           string              `json:"email"`
	Phone           string              `json:"phone"`
	Address         string              `json:"address"`
	ProfileImage    *string             `json:"profileImage"`
	JoinDate        string              `json:"joinDate"`
	Status          string              `json:"status"`
	Role            domain.Role         `json:"role"`
	CurrentPosition string              `json:"currentPosition"`
	Experience      []domain.Experience `json:"experience"`
	Education       []domain.Education  `json:"education"`
	CreatedBy       *creatorView        `json:"createdBy"`
}

type userListResponse struct {
	Message string         `json:"message"`
	Count   int            `json:"count"`
	Users   []userListItem `json:"users"`
}
