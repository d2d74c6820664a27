package domain

import "errors"

// Lifecycle failures.
var (
	ErrValidation      = errors.New("validation failed")
	ErrDuplicateEmail  = errors.New("user already exists")
	ErrAccountNotFound = errors.New("user not found")
	ErrForbidden       = errors.New("access forbidden")
	ErrImmutable       = errors.New("super admin account cannot be modified")
	ErrSelfTarget      = errors.New("operation not allowed on your own account")
	ErrNoOp            = errors.New("account already in requested state")
)

// Authentication failures.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrAccountMissing     = errors.New("user no longer exists")
)
