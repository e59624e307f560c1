package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/response"
)

// Context keys set by the auth middleware
const (
	UserKey  = "user"
	TokenKey = "jwtToken"
)

const validateTimeout = 5 * time.Second

// TokenValidator resolves a bearer token to the signed-in user
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
}

// AuthWithValidator returns a middleware that authenticates every request
// through validator. The token comes from the Authorization header, or from
// the token query parameter for websocket upgrades that cannot set headers.
func AuthWithValidator(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Authorization header is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), validateTimeout)
		defer cancel()

		user, err := validator.ValidateToken(ctx, token)
		if err != nil || user == nil {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(UserKey, *user)
		c.Set(TokenKey, token)
		c.Next()
	}
}

// RequireAdmin rejects callers whose role is not admin. It must run after
// AuthWithValidator.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !user.IsAdmin() {
			response.SendError(c, http.StatusForbidden, response.ErrCodeForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by the auth middleware
func CurrentUser(c *gin.Context) (domain.User, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return domain.User{}, false
	}
	user, ok := v.(domain.User)
	return user, ok
}

// CurrentToken returns the bearer token of the request
func CurrentToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if token := c.Query("token"); token != "" {
			return token, true
		}
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
