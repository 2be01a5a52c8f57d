package models

import "errors"

// ErrInvalidIdentity is returned when an identity is missing its ID or carries an unknown role.
var ErrInvalidIdentity = errors.New("invalid identity")

// Identity is the caller identity embedded in an access token.
// It reflects the account as it was when the token was issued.
type Identity struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the identity has the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Validate checks that the identity is well formed.
func (i Identity) Validate() error {
	if i.ID == "" || !i.Role.Valid() {
		return ErrInvalidIdentity
	}
	return nil
}
