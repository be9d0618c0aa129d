package security

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/mealsmith/api/internal/domain/cooking"
	"github.com/mealsmith/api/internal/infrastructure/config"
	apperrors "github.com/mealsmith/api/pkg/errors"
)

// MockUserRepository is a mock implementation of the user repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*cooking.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cooking.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*cooking.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cooking.User), args.Error(1)
}

func (m *MockUserRepository) PreferencesByUserID(ctx context.Context, userID uuid.UUID) (*cooking.Preferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cooking.Preferences), args.Error(1)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret-at-least-32-characters"
	cfg.Auth.JWTExpiration = time.Hour
	cfg.Auth.BCryptCost = bcrypt.MinCost
	return cfg
}

func testUser(t *testing.T, password string) *cooking.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &cooking.User{
		ID:           uuid.New(),
		Name:         "Aye Chan",
		Email:        "aye@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
}

func TestAuthenticate_Success(t *testing.T) {
	users := new(MockUserRepository)
	user := testUser(t, "correct horse")
	users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)

	svc := NewAuthService(testConfig(), zaptest.NewLogger(t), users)
	resp, err := svc.Authenticate(context.Background(), AuthRequest{
		Email:    user.Email,
		Password: "correct horse",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, user.ID.String(), resp.User.ID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	users := new(MockUserRepository)
	user := testUser(t, "correct horse")
	users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)

	svc := NewAuthService(testConfig(), zaptest.NewLogger(t), users)
	_, err := svc.Authenticate(context.Background(), AuthRequest{
		Email:    user.Email,
		Password: "wrong",
	})

	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidCredentials))
}

func TestAuthenticate_UnknownEmailSameError(t *testing.T) {
	users := new(MockUserRepository)
	users.On("FindByEmail", mock.Anything, "nobody@example.com").
		Return(nil, apperrors.NewUserNotFoundError("nobody@example.com"))

	svc := NewAuthService(testConfig(), zaptest.NewLogger(t), users)
	_, err := svc.Authenticate(context.Background(), AuthRequest{
		Email:    "nobody@example.com",
		Password: "anything",
	})

	// Unknown email and wrong password must be indistinguishable
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidCredentials))
}

func TestAuthenticate_DisabledAccount(t *testing.T) {
	users := new(MockUserRepository)
	user := testUser(t, "correct horse")
	user.IsActive = false
	users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)

	svc := NewAuthService(testConfig(), zaptest.NewLogger(t), users)
	_, err := svc.Authenticate(context.Background(), AuthRequest{
		Email:    user.Email,
		Password: "correct horse",
	})

	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))
}

func TestAuthenticate_MissingFields(t *testing.T) {
	svc := NewAuthService(testConfig(), zaptest.NewLogger(t), new(MockUserRepository))

	_, err := svc.Authenticate(context.Background(), AuthRequest{})

	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
}

func TestValidateToken_RejectsTampered(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewAuthService(testConfig(), zaptest.NewLogger(t), users)

	token, _, err := svc.GenerateAccessToken(testUser(t, "pw"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "tampered")
	assert.Error(t, err)
}

func TestValidateToken_RejectsExpired(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTExpiration = -time.Hour

	svc := NewAuthService(cfg, zaptest.NewLogger(t), new(MockUserRepository))
	token, _, err := svc.GenerateAccessToken(testUser(t, "pw"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
