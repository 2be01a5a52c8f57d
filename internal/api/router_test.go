package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/salesledger/internal/auth"
	"github.com/mmynk/salesledger/internal/middleware"
	"github.com/mmynk/salesledger/internal/service"
	"github.com/mmynk/salesledger/internal/storage/sqlite"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	jwt    *auth.JWTManager
}

// setupTestServer builds the full router over a temporary SQLite database.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlite.New(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.DiscardHandler)
	jwtManager := auth.NewJWTManager("test-secret", "salesledger-test", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store, bcrypt.MinCost)

	router := NewRouter(Deps{
		Auth:    service.NewAuthService(authenticator, jwtManager, store, logger),
		Sales:   service.NewSaleService(store, logger),
		JWT:     jwtManager,
		Store:   store,
		Metrics: middleware.NewMetrics(),
		Logger:  logger,
	})

	return &testServer{t: t, router: router, jwt: jwtManager}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(s.t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// account registers and logs in, returning the user ID and token.
func (s *testServer) account(username, role string) (string, string) {
	s.t.Helper()

	w := s.do(http.MethodPost, "/register", "", map[string]string{
		"username": username, "password": "pw", "role": role,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var user userResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &user))

	w = s.do(http.MethodPost, "/login", "", map[string]string{"username": username, "password": "pw"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var tok tokenResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &tok))

	return user.ID, tok.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRegisterLoginAndCreateSale(t *testing.T) {
	srv := setupTestServer(t)

	w := srv.do(http.MethodPost, "/register", "", `{"username":"alice","password":"pw","role":"user"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	alice := decode[userResponse](t, w)
	assert.Equal(t, "user", alice.Role)

	w = srv.do(http.MethodPost, "/login", "", `{"username":"alice","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	tok := decode[tokenResponse](t, w)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.True(t, tok.ExpiresAt.After(time.Now()))

	claims, err := srv.jwt.Validate(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, claims.UserID)
	assert.Equal(t, "user", claims.Role)

	w = srv.do(http.MethodPost, "/sales", tok.AccessToken,
		`{"productName":"Pen","amount":3.5,"dateOfSale":"2024-01-01","status":"pending"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sale := decode[saleResponse](t, w)
	assert.Equal(t, alice.ID, sale.UserID)
	assert.Equal(t, "Pen", sale.ProductName)
	assert.Equal(t, 3.5, sale.Amount)
	assert.Equal(t, "2024-01-01", sale.DateOfSale)
	assert.Equal(t, "pending", sale.Status)

	w = srv.do(http.MethodGet, "/sales/"+sale.ID, tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sale.ID, decode[saleResponse](t, w).ID)
}

func TestAuthEndpoints(t *testing.T) {
	srv := setupTestServer(t)
	_, token := srv.account("alice", "user")

	t.Run("duplicate username", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/register", "", `{"username":"alice","password":"x"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/register", "", `{"username":"eve","password":"x","role":"root"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/register", "", `{"username":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad credentials", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/login", "", `{"username":"alice","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid username or password", decode[errorResponse](t, w).Error)
	})

	t.Run("me", func(t *testing.T) {
		w := srv.do(http.MethodGet, "/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		me := decode[userResponse](t, w)
		assert.Equal(t, "alice", me.Username)
		assert.Equal(t, "user", me.Role)
	})

	t.Run("refresh", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/token/refresh", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, decode[tokenResponse](t, w).AccessToken)
	})

	t.Run("protected routes need a token", func(t *testing.T) {
		for _, path := range []string{"/me", "/sales"} {
			w := srv.do(http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		}
		w := srv.do(http.MethodGet, "/sales", "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSalesAccessControl(t *testing.T) {
	srv := setupTestServer(t)
	_, adminToken := srv.account("root", "admin")
	aliceID, aliceToken := srv.account("alice", "user")
	bobID, bobToken := srv.account("bob", "user")

	pen := map[string]any{"productName": "Pen", "amount": 3.5, "dateOfSale": "2024-01-01"}

	w := srv.do(http.MethodPost, "/sales", aliceToken, pen)
	require.Equal(t, http.StatusCreated, w.Code)
	aliceSale := decode[saleResponse](t, w)

	w = srv.do(http.MethodPost, "/sales", bobToken, pen)
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("user cannot create for others", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/sales", aliceToken, map[string]any{
			"productName": "Pen", "amount": 1, "dateOfSale": "2024-01-01", "userId": bobID,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin must name owner", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/sales", adminToken, pen)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = srv.do(http.MethodPost, "/sales", adminToken, map[string]any{
			"productName": "Ink", "amount": 2, "dateOfSale": "2024-01-02", "userId": aliceID,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, aliceID, decode[saleResponse](t, w).UserID)
	})

	t.Run("create validation", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/sales", aliceToken, map[string]any{
			"productName": "Pen", "amount": 1, "dateOfSale": "2024/01/01",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = srv.do(http.MethodPost, "/sales", aliceToken, map[string]any{
			"productName": "Pen", "amount": -1, "dateOfSale": "2024-01-01",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = srv.do(http.MethodPost, "/sales", aliceToken, map[string]any{
			"productName": "Pen", "dateOfSale": "2024-01-01",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list is scoped by role", func(t *testing.T) {
		w := srv.do(http.MethodGet, "/sales", aliceToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[[]saleResponse](t, w)
		assert.Len(t, list, 2)
		for _, s := range list {
			assert.Equal(t, aliceID, s.UserID)
		}

		w = srv.do(http.MethodGet, "/sales", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]saleResponse](t, w), 3)

		w = srv.do(http.MethodGet, "/sales?status=nope", adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get", func(t *testing.T) {
		w := srv.do(http.MethodGet, "/sales/"+aliceSale.ID, bobToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = srv.do(http.MethodGet, "/sales/"+aliceSale.ID, adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		for _, tok := range []string{adminToken, aliceToken, bobToken} {
			w = srv.do(http.MethodGet, "/sales/does-not-exist", tok, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)
		}
	})

	t.Run("update", func(t *testing.T) {
		w := srv.do(http.MethodPut, "/sales/"+aliceSale.ID, bobToken, `{"status":"completed"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)

		// Owners may update their own sales.
		w = srv.do(http.MethodPut, "/sales/"+aliceSale.ID, aliceToken, `{"status":"completed"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode[saleResponse](t, w)
		assert.Equal(t, "completed", updated.Status)
		assert.Equal(t, "Pen", updated.ProductName)

		w = srv.do(http.MethodPut, "/sales/"+aliceSale.ID, adminToken, `{"amount":9.25}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 9.25, decode[saleResponse](t, w).Amount)

		w = srv.do(http.MethodPut, "/sales/"+aliceSale.ID, aliceToken, `{"dateOfSale":"not-a-date"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = srv.do(http.MethodPut, "/sales/"+aliceSale.ID, adminToken, map[string]string{"userId": bobID})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = srv.do(http.MethodPut, "/sales/missing", adminToken, `{"status":"completed"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := srv.do(http.MethodDelete, "/sales/"+aliceSale.ID, bobToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = srv.do(http.MethodDelete, "/sales/"+aliceSale.ID, aliceToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = srv.do(http.MethodGet, "/sales/"+aliceSale.ID, aliceToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = srv.do(http.MethodDelete, "/sales/"+aliceSale.ID, adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	srv := setupTestServer(t)

	w := srv.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	srv.do(http.MethodPost, "/login", "", `{"username":"ghost","password":"pw"}`)

	w = srv.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `salesledger_auth_failures_total{kind="login"} 1`)
}
