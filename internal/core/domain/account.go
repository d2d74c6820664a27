package domain

import (
	"strings"
	"time"
)

// MaxBioLength caps the free-text bio.
const MaxBioLength = 500

// Experience is one entry of an account's work history.
type Experience struct {
	Company     string `json:"company" validate:"required"`
	Position    string `json:"position" validate:"required"`
	StartDate   *Date  `json:"startDate,omitempty"`
	EndDate     *Date  `json:"endDate"`
	Description string `json:"description,omitempty"`
	IsCurrent   bool   `json:"isCurrent"`
}

// Education is one entry of an account's education history.
type Education struct {
	Institution  string `json:"institution" validate:"required"`
	Degree       string `json:"degree" validate:"required"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	StartDate    *Date  `json:"startDate,omitempty"`
	EndDate      *Date  `json:"endDate"`
	Description  string `json:"description,omitempty"`
}

// AccountSummary is the redacted view of an account used for createdBy references.
type AccountSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Account is the central entity: identity, credentials, role, status and profile.
type Account struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	LastName         string       `json:"lastName"`
	Email            string       `json:"email"`
	PasswordHash     string       `json:"-"`
	Bio              string       `json:"bio,omitempty"`
	Role             Role         `json:"role"`
	IsActive         bool         `json:"isActive"`
	MobileNumber     string       `json:"mobileNumber"`
	PermanentAddress string       `json:"permanentAddress"`
	CurrentPosition  string       `json:"currentPosition"`
	Experience       []Experience `json:"experience"`
	Education        []Education  `json:"education"`
	ProfileImage     string       `json:"profileImage,omitempty"`

	// CreatedBy is the id of the creating account; empty for the bootstrap super admin.
	CreatedBy string `json:"-"`
	// Creator is CreatedBy resolved by the store, nil when absent or dangling.
	Creator *AccountSummary `json:"createdBy"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary returns the redacted id/name/email view of a.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{ID: a.ID, Name: a.Name, Email: a.Email}
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
