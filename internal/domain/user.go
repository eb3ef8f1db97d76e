package domain

import (
	"time"
)

// User represents a registered user in the system.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthenticatedUser is a user profile together with a freshly issued
// bearer token, returned by register and login.
type AuthenticatedUser struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
