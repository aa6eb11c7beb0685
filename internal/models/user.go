package models

import (
	"errors"
	"strings"
	"time"
)

// Role represents a user's role in the marketplace
type Role string

const (
	RoleClient Role = "Client"
	RolePilot  Role = "Pilot"
	RoleAdmin  Role = "Admin"
)

// User represents a registered account. Role is immutable after creation.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// IsClient checks if the user has the Client role
func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

// IsPilot checks if the user has the Pilot role
func (u *User) IsPilot() bool {
	return u.Role == RolePilot
}

// RegisterRequest represents the request to register a new account
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     Role   `json:"role" binding:"required"`
}

// Validate validates the register request
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username must not be empty")
	}

	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	if r.Role != RoleClient && r.Role != RolePilot {
		return errors.New("role must be Client or Pilot")
	}

	return nil
}

// LoginRequest represents the request to log in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned on successful registration or login
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
