package dto

import "github.com/recipebox/recipebox-server/internal/domain"

// User is the client-facing profile. The password hash never leaves
// the server.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewUser converts a domain user.
func NewUser(u *domain.User) User {
	return User{ID: u.ID, Email: u.Email, Name: u.Name}
}
