// Package security provides authentication for the assistant API
package security

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mealsmith/api/internal/domain/cooking"
	"github.com/mealsmith/api/internal/infrastructure/config"
	"github.com/mealsmith/api/internal/ports/outbound"
	apperrors "github.com/mealsmith/api/pkg/errors"
)

// AuthService issues and validates access tokens and verifies credentials
type AuthService struct {
	config    *config.Config
	logger    *zap.Logger
	users     outbound.UserRepository
	jwtSecret []byte
}

// NewAuthService creates a new authentication service
func NewAuthService(cfg *config.Config, logger *zap.Logger, users outbound.UserRepository) *AuthService {
	return &AuthService{
		config:    cfg,
		logger:    logger,
		users:     users,
		jwtSecret: []byte(cfg.Auth.JWTSecret),
	}
}

// Claims represents JWT claims structure
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthRequest represents a login request
type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents a successful login
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserInfo  `json:"user"`
}

// UserInfo represents user information in the auth response
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Authenticate verifies credentials and returns a signed access token.
// Both an unknown email and a wrong password map to the same error so the
// response does not reveal which one failed.
func (a *AuthService) Authenticate(ctx context.Context, req AuthRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("email and password are required")
	}

	user, err := a.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeUserNotFound) {
			return nil, apperrors.NewInvalidCredentialsError()
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.NewInvalidCredentialsError()
	}

	if !user.IsActive {
		return nil, apperrors.NewUnauthorizedError("account is disabled")
	}

	token, expiresAt, err := a.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	a.logger.Info("user authenticated", zap.String("user_id", user.ID.String()))

	return &AuthResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User: UserInfo{
			ID:    user.ID.String(),
			Name:  user.Name,
			Email: user.Email,
		},
	}, nil
}

// GenerateAccessToken creates a signed access token for the user
func (a *AuthService) GenerateAccessToken(user *cooking.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(a.config.Auth.JWTExpiration)

	claims := &Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mealsmith",
			Subject:   user.ID.String(),
			Audience:  []string{"mealsmith-api"},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.jwtSecret)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(err, "failed to sign token")
	}

	return tokenString, expiresAt, nil
}

// ValidateToken parses and validates an access token
func (a *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.NewUnauthorizedError("invalid token claims")
	}

	return claims, nil
}
