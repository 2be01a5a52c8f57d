package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/salesledger/internal/apperr"
	"github.com/mmynk/salesledger/internal/auth"
	"github.com/mmynk/salesledger/internal/models"
	"github.com/mmynk/salesledger/internal/storage"
)

// AuthService handles registration, login and token reissue.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

// Register creates a new user account.
// An empty role registers a regular user.
func (s *AuthService) Register(ctx context.Context, username, password, role string) (*models.User, error) {
	s.logger.Info("Register request", "username", username, "role", role)

	r, ok := models.ParseRole(role)
	if !ok {
		return nil, apperr.New(apperr.CodeInvalidArgument, auth.ErrInvalidRole)
	}

	user, err := s.authenticator.Register(ctx, username, password, r)
	if err != nil {
		s.logger.Warn("Registration failed", "username", username, "error", err)
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			return nil, apperr.New(apperr.CodeAlreadyExists, err)
		case errors.Is(err, auth.ErrEmptyUsername),
			errors.Is(err, auth.ErrEmptyCredential),
			errors.Is(err, auth.ErrInvalidRole),
			errors.Is(err, auth.ErrPasswordTooLong):
			return nil, apperr.New(apperr.CodeInvalidArgument, err)
		}
		return nil, apperr.New(apperr.CodeInternal, err)
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return user, nil
}

// Login authenticates a user and returns a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*auth.IssuedToken, error) {
	s.logger.Info("Login request", "username", username)

	if username == "" || password == "" {
		return nil, apperr.New(apperr.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Error("Login lookup failed", "username", username, "error", err)
			return nil, apperr.New(apperr.CodeInternal, err)
		}
		s.logger.Warn("Login failed", "username", username)
		return nil, apperr.New(apperr.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	return s.issue(user)
}

// Refresh issues a new token for the caller using the account's current role.
// Tokens carry the role they were issued with, so this is how a role change takes effect.
func (s *AuthService) Refresh(ctx context.Context, caller models.Identity) (*auth.IssuedToken, error) {
	user, err := s.lookup(ctx, caller)
	if err != nil {
		return nil, err
	}
	if user.Role != caller.Role {
		s.logger.Info("Role changed since token issuance", "user_id", user.ID, "old_role", caller.Role, "new_role", user.Role)
	}
	return s.issue(user)
}

// CurrentUser returns the stored account behind the caller's token.
func (s *AuthService) CurrentUser(ctx context.Context, caller models.Identity) (*models.User, error) {
	return s.lookup(ctx, caller)
}

func (s *AuthService) lookup(ctx context.Context, caller models.Identity) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Token is validly signed but the account is gone.
			return nil, apperr.New(apperr.CodeUnauthenticated, auth.ErrInvalidToken)
		}
		s.logger.Error("Failed to load user", "user_id", caller.ID, "error", err)
		return nil, apperr.New(apperr.CodeInternal, err)
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*auth.IssuedToken, error) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, apperr.New(apperr.CodeInternal, err)
	}

	s.logger.Info("Token issued", "user_id", user.ID, "role", user.Role, "expires_at", token.ExpiresAt)
	return token, nil
}
