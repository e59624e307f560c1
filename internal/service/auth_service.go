package service

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/response"
)

// SessionBackend is the identity provider behind browser sessions
type SessionBackend interface {
	LoginURL(next string) string
	Logout(ctx context.Context, token string) error
}

// AuthService exposes the caller's session
type AuthService interface {
	Me(user domain.User) *dto.UserResponse
	LoginURL(next string) (string, error)
	Logout(ctx context.Context, user domain.User, token string) error
}

type authServiceImpl struct {
	backend SessionBackend
	logger  *zap.Logger
}

// NewAuthService creates a new instance of AuthService. backend is nil when
// tokens are issued outside the dashboard.
func NewAuthService(backend SessionBackend, logger *zap.Logger) AuthService {
	return &authServiceImpl{backend: backend, logger: logger}
}

func (s *authServiceImpl) Me(user domain.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		IsAdmin:  user.IsAdmin(),
	}
}

// LoginURL returns where to send a browser to sign in. next must be a
// relative path or an absolute http(s) URL.
func (s *authServiceImpl) LoginURL(next string) (string, error) {
	if s.backend == nil {
		return "", response.NewNotFoundError("Interactive login is not configured", "")
	}
	if next != "" && !validNext(next) {
		return "", response.NewValidationError("Invalid redirect target", next)
	}
	return s.backend.LoginURL(next), nil
}

// Logout ends the platform session. Without a platform it is a no-op.
func (s *authServiceImpl) Logout(ctx context.Context, user domain.User, token string) error {
	if s.backend == nil {
		return nil
	}
	if err := s.backend.Logout(ctx, token); err != nil {
		s.logger.Warn("Platform logout failed", zap.String("user_email", user.Email), zap.Error(err))
		return response.WrapAppError(response.ErrCodeUpstream, "Logout failed", err)
	}
	return nil
}

func validNext(next string) bool {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return true
	}
	u, err := url.Parse(next)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
