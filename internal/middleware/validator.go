package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// ErrInvalidToken is returned for tokens that fail validation
var ErrInvalidToken = errors.New("invalid token")

// UserResolver looks up the user a platform session token belongs to
type UserResolver interface {
	Me(ctx context.Context, token string) (*domain.User, error)
}

type platformValidator struct {
	resolver UserResolver
}

// NewPlatformValidator validates tokens by asking the hosted platform who
// they belong to. Logged-out tokens are rejected by the platform itself.
func NewPlatformValidator(resolver UserResolver) TokenValidator {
	return &platformValidator{resolver: resolver}
}

func (v *platformValidator) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	user, err := v.resolver.Me(ctx, token)
	if err != nil {
		return nil, err
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	return user, nil
}

// Claims are the JWT claims of a locally issued token
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// LocalJWTValidator validates HMAC-signed tokens with a shared secret
type LocalJWTValidator struct {
	secret []byte
}

// NewLocalJWTValidator creates a validator for tokens signed with secret
func NewLocalJWTValidator(secret string) *LocalJWTValidator {
	return &LocalJWTValidator{secret: []byte(secret)}
}

func (v *LocalJWTValidator) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email claim is missing", ErrInvalidToken)
	}

	role := claims.Role
	if role != domain.RoleAdmin {
		role = domain.RoleUser
	}
	id := claims.Subject
	if id == "" {
		id = email
	}
	return &domain.User{ID: id, Email: email, FullName: claims.Name, Role: role}, nil
}

// Sign issues a token for user that expires after ttl
func (v *LocalJWTValidator) Sign(user domain.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: user.Email,
		Name:  user.FullName,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
