package chat

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	"github.com/mealsmith/api/internal/domain/cooking"
	"github.com/mealsmith/api/internal/infrastructure/monitoring"
	"github.com/mealsmith/api/internal/ports/outbound"
)

// testMetrics returns a collector backed by its own registry
func testMetrics(t *testing.T) *monitoring.MetricsCollector {
	t.Helper()
	return monitoring.NewMetricsCollector(zaptest.NewLogger(t))
}

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

// MockRecipeRepository is a mock implementation of the recipe repository
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*cooking.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cooking.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*cooking.Recipe, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cooking.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) Query(ctx context.Context, filter outbound.RecipeFilter) ([]*cooking.Recipe, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cooking.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) Steps(ctx context.Context, recipeID uuid.UUID) ([]cooking.CookingStep, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cooking.CookingStep), args.Error(1)
}

// MockMessageRepository is a mock implementation of the message repository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Append(ctx context.Context, msg *cooking.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*cooking.Message, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cooking.Message), args.Error(1)
}

// MockCompletionService is a mock implementation of the language-model service
type MockCompletionService struct {
	mock.Mock
}

func (m *MockCompletionService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}
