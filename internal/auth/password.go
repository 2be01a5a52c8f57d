package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/salesledger/internal/models"
	"github.com/mmynk/salesledger/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyCredential    = errors.New("password is required")
	ErrEmptyUsername      = errors.New("username is required")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidRole        = errors.New("role must be 'user' or 'admin'")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage storage.UserStore
	cost    int
	// dummyHash is compared against when the username does not exist,
	// so unknown users cost the same bcrypt work as wrong passwords.
	dummyHash []byte
}

// Ensure PasswordAuthenticator implements Authenticator
var _ Authenticator = (*PasswordAuthenticator)(nil)

// NewPasswordAuthenticator creates a new password-based authenticator.
// A cost of 0 selects bcrypt.DefaultCost.
func NewPasswordAuthenticator(store storage.UserStore, cost int) *PasswordAuthenticator {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("salesledger-dummy-password"), cost)
	return &PasswordAuthenticator{
		storage:   store,
		cost:      cost,
		dummyHash: dummy,
	}
}

// ValidateCredential checks that a password was supplied.
// bcrypt rejects inputs longer than 72 bytes, so those are refused up front.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if credential == "" {
		return ErrEmptyCredential
	}
	if len(credential) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}

// Register creates a new user account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, username, credential string, role models.Role) (*models.User, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	_, err := a.storage.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(username, string(hashedPassword), role)

	// The unique index still guards against a concurrent registration.
	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the username and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(credential))
		return nil, ErrInvalidCredentials
	}

	// CompareHashAndPassword compares in constant time.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
