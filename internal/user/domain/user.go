package domain

import (
	"errors"
	"strings"
	"time"
)

// User is an account that can authenticate. Role membership lives with roles.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	IsSuper      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PasswordChange is the only mutable input accepted for an existing user.
type PasswordChange struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Validate returns an error when either password is missing.
func (p PasswordChange) Validate() error {
	if p.OldPassword == "" || p.NewPassword == "" {
		return errors.New("old_password and new_password are required")
	}
	return nil
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return errors.New("username is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}

// View is the public representation of a user. It never carries the password hash.
type View struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
	Active    bool      `json:"active"`
	IsSuper   bool      `json:"is_super"`
}

// NewView returns the public representation of u.
func NewView(u *User) View {
	return View{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Active:    u.IsActive,
		IsSuper:   u.IsSuper,
	}
}
