package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/response"
)

const testSecret = "test-secret"

type fakeResolver struct {
	users map[string]domain.User
}

func (f *fakeResolver) Me(ctx context.Context, token string) (*domain.User, error) {
	u, ok := f.users[token]
	if !ok {
		return nil, errors.New("unauthorized")
	}
	return &u, nil
}

func setupAuthRouter(v TokenValidator, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(AuthWithValidator(v))
	r.Use(extra...)
	r.GET("/whoami", func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"email": user.Email, "role": user.Role, "token": CurrentToken(c)})
	})
	return r
}

func doGet(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthWithValidator_Platform(t *testing.T) {
	resolver := &fakeResolver{users: map[string]domain.User{
		"good": {ID: "1", Email: "artist@example.com"},
	}}
	r := setupAuthRouter(NewPlatformValidator(resolver))

	w := doGet(r, "/whoami", "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "artist@example.com", body["email"])
	assert.Equal(t, domain.RoleUser, body["role"])
	assert.Equal(t, "good", body["token"])

	// websocket clients pass the token as a query parameter
	w = doGet(r, "/whoami?token=good", "")
	assert.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name string
		auth string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic good"},
		{"empty token", "Bearer "},
		{"unknown token", "Bearer bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, "/whoami", tt.auth)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var resp struct {
				Success bool               `json:"success"`
				Error   response.ErrorBody `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, response.ErrCodeUnauthorized, resp.Error.Code)
		})
	}
}

func TestLocalJWTValidator(t *testing.T) {
	v := NewLocalJWTValidator(testSecret)
	ctx := context.Background()

	token, err := v.Sign(domain.User{ID: "42", Email: "Mixer@Example.com", FullName: "Mix Er", Role: domain.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	user, err := v.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "42", user.ID)
	assert.Equal(t, "mixer@example.com", user.Email)
	assert.Equal(t, "Mix Er", user.FullName)
	assert.True(t, user.IsAdmin())

	t.Run("expired", func(t *testing.T) {
		expired, err := v.Sign(domain.User{Email: "a@example.com"}, -time.Minute)
		require.NoError(t, err)
		_, err = v.ValidateToken(ctx, expired)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewLocalJWTValidator("other").Sign(domain.User{Email: "a@example.com"}, time.Hour)
		require.NoError(t, err)
		_, err = v.ValidateToken(ctx, other)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "a@example.com"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = v.ValidateToken(ctx, none)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing email", func(t *testing.T) {
		noEmail, err := v.Sign(domain.User{ID: "7"}, time.Hour)
		require.NoError(t, err)
		_, err = v.ValidateToken(ctx, noEmail)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role is downgraded", func(t *testing.T) {
		tok, err := v.Sign(domain.User{Email: "a@example.com", Role: "superuser"}, time.Hour)
		require.NoError(t, err)
		user, err := v.ValidateToken(ctx, tok)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, user.Role)
		assert.Equal(t, "a@example.com", user.ID)
	})
}

func TestRequireAdmin(t *testing.T) {
	v := NewLocalJWTValidator(testSecret)
	r := setupAuthRouter(v, RequireAdmin())

	userToken, err := v.Sign(domain.User{Email: "u@example.com"}, time.Hour)
	require.NoError(t, err)
	adminToken, err := v.Sign(domain.User{Email: "admin@example.com", Role: domain.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, doGet(r, "/whoami", "Bearer "+userToken).Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/whoami", "Bearer "+adminToken).Code)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { response.SendSuccess(c, http.StatusOK, "pong") })

	w := doGet(r, "/ping", "")
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Contains(t, w.Body.String(), generated)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173", "*.signalforge.app"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:5173", true},
		{"https://studio.signalforge.app", true},
		{"http://studio.signalforge.app", false},
		{"https://evil.example.com", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", tt.origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if tt.allowed {
			assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"), tt.origin)
		} else {
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"), tt.origin)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := doGet(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), response.ErrCodeInternal)
}
