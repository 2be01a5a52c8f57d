package auth

import (
	"context"

	"github.com/mmynk/salesledger/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new account with the given username, credential and role.
	// Returns the created user or an error if registration fails.
	Register(ctx context.Context, username, credential string, role models.Role) (*models.User, error)

	// Authenticate verifies the credentials and returns the user if successful.
	// It does not reveal whether the username or the credential was wrong.
	Authenticate(ctx context.Context, username, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
