package domain

import (
	"strings"

	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
)

// User represents an authenticated account. Email is the login identity
// and is stored normalized.
type User struct {
	Timestamps
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	IsActive     bool   `json:"is_active"`
	IsStaff      bool   `json:"is_staff"`
	IsSuperuser  bool   `json:"is_superuser"`
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser builds an active user with a normalized email.
// Missing email or name is a validation error.
func NewUser(email, name, passwordHash string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, domainerrors.FieldValidation("email", "users must have an email address")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.FieldValidation("name", "users must have a name")
	}

	u := &User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	u.InitTimestamps()
	return u, nil
}

// NewSuperuser builds a user with staff and superuser privileges.
func NewSuperuser(email, name, passwordHash string) (*User, error) {
	u, err := NewUser(email, name, passwordHash)
	if err != nil {
		return nil, err
	}
	u.IsStaff = true
	u.IsSuperuser = true
	return u, nil
}

func (u *User) String() string {
	return u.Email
}
