package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access level of an account.
type Role string

const (
	// RoleUser may only see and manage sales it owns.
	RoleUser Role = "user"
	// RoleAdmin may see and manage every sale.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole converts s into a Role. An empty string yields RoleUser.
func ParseRole(s string) (Role, bool) {
	if s == "" {
		return RoleUser, true
	}
	r := Role(s)
	return r, r.Valid()
}

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the login name (unique).
	Username string

	// PasswordHash is the bcrypt hash of the user's password.
	// The plaintext password is never stored.
	PasswordHash string

	// Role decides which sales the user can see and manage.
	Role Role

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser creates a User with a fresh ID and creation timestamp.
func NewUser(username, passwordHash string, role Role) *User {
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().Unix(),
	}
}

// Identity returns the token identity for this user.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Role: u.Role}
}
