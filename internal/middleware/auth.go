package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/salesledger/internal/auth"
	"github.com/mmynk/salesledger/internal/models"
)

// identityKey is the gin context key for the authenticated caller.
const identityKey = "identity"

// GetIdentity extracts the caller identity set by RequireAuth.
// ok is false if the request was not authenticated.
func GetIdentity(c *gin.Context) (models.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}

// GetUserID returns the authenticated user ID, or "" before authentication.
func GetUserID(c *gin.Context) string {
	id, _ := GetIdentity(c)
	return id.ID
}

// RequireAuth returns a middleware that validates JWT tokens and requires authentication.
// It extracts the token from the Authorization header, validates it, and stores
// the caller identity in the gin context.
func RequireAuth(jwtManager *auth.JWTManager, metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var claims *auth.Claims
			claims, err = jwtManager.Validate(tokenString)
			if err == nil {
				c.Set(identityKey, claims.Identity())
				c.Next()
				return
			}
		}

		if metrics != nil {
			metrics.AuthFailures.WithLabelValues("token").Inc()
		}
		c.Header("WWW-Authenticate", `Bearer realm="salesledger"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", auth.ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}
