package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/salesledger/internal/apperr"
	"github.com/mmynk/salesledger/internal/auth"
	"github.com/mmynk/salesledger/internal/models"
	"github.com/mmynk/salesledger/internal/storage/sqlite"
)

type testEnv struct {
	store *sqlite.SQLiteStore
	auth  *AuthService
	sales *SaleService
	jwt   *auth.JWTManager
}

// setupServices wires both services over a temporary SQLite database.
func setupServices(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.DiscardHandler)
	jwtManager := auth.NewJWTManager("test-secret", "salesledger-test", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store, bcrypt.MinCost)

	return &testEnv{
		store: store,
		auth:  NewAuthService(authenticator, jwtManager, store, logger),
		sales: NewSaleService(store, logger),
		jwt:   jwtManager,
	}
}

func (e *testEnv) register(t *testing.T, username, role string) models.Identity {
	t.Helper()
	user, err := e.auth.Register(context.Background(), username, "pw", role)
	require.NoError(t, err)
	return user.Identity()
}

func amount(v float64) *float64 { return &v }
func str(s string) *string      { return &s }

func assertCode(t *testing.T, want apperr.Code, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, apperr.CodeOf(err), "unexpected code for %v", err)
}
