package recommendation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mealsmith/api/internal/application/chat"
	"github.com/mealsmith/api/internal/domain/cooking"
	"github.com/mealsmith/api/internal/infrastructure/cache"
	"github.com/mealsmith/api/internal/infrastructure/monitoring"
	"github.com/mealsmith/api/internal/ports/inbound"
	"github.com/mealsmith/api/internal/ports/outbound"
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

// MockCompletionService is a mock implementation of the language-model service
type MockCompletionService struct {
	mock.Mock
}

func (m *MockCompletionService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

type fixture struct {
	users       *MockUserRepository
	recipes     *MockRecipeRepository
	completions *MockCompletionService
	store       *cache.MemoryStore
	service     *Service
	userID      uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)

	f := &fixture{
		users:       new(MockUserRepository),
		recipes:     new(MockRecipeRepository),
		completions: new(MockCompletionService),
		store:       cache.NewMemoryStore(),
		userID:      uuid.New(),
	}

	loader := chat.NewPreferenceLoader(f.users, log)
	f.service = NewService(loader, f.recipes, f.completions, f.store, 30*time.Minute, monitoring.NewMetricsCollector(log), log)
	return f
}

func (f *fixture) knownUser() {
	f.users.On("FindByID", mock.Anything, f.userID).Return(&cooking.User{
		ID:   f.userID,
		Name: "Aye Chan",
	}, nil)
	f.users.On("PreferencesByUserID", mock.Anything, f.userID).Return(nil, nil)
}

func TestCacheKey_StableAcrossAssemblyOrder(t *testing.T) {
	userID := uuid.New()

	a := inbound.RecommendationQuery{}
	a.MaxTime = 30
	a.Query = "spicy dinner"
	a.Cuisine = "Burmese"
	a.MaxResults = 5

	b := inbound.RecommendationQuery{
		Query:      "spicy dinner",
		MaxResults: 5,
		Cuisine:    "Burmese",
		MaxTime:    30,
	}

	keyA, err := CacheKey(userID, a)
	require.NoError(t, err)
	keyB, err := CacheKey(userID, b)
	require.NoError(t, err)

	assert.Equal(t, keyA, keyB)
}

func TestCacheKey_DiffersAcrossUsersAndQueries(t *testing.T) {
	query := inbound.RecommendationQuery{Query: "spicy dinner", MaxResults: 5}

	k1, err := CacheKey(uuid.New(), query)
	require.NoError(t, err)
	k2, err := CacheKey(uuid.New(), query)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)

	userID := uuid.New()
	k3, err := CacheKey(userID, inbound.RecommendationQuery{Query: "spicy dinner", MaxResults: 5})
	require.NoError(t, err)
	k4, err := CacheKey(userID, inbound.RecommendationQuery{Query: "mild dinner", MaxResults: 5})
	require.NoError(t, err)
	assert.NotEqual(t, k3, k4)
}

func TestRecommend_EmptyQueryRejected(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Recommend(context.Background(), f.userID, inbound.RecommendationQuery{})

	assert.Nil(t, result)
	assert.Error(t, err)
}

func TestRecommend_FreshRunCachesAndReturns(t *testing.T) {
	f := newFixture(t)
	f.knownUser()

	recipeID := uuid.New()
	f.recipes.On("Query", mock.Anything, mock.Anything).Return([]*cooking.Recipe{
		{ID: recipeID, Title: "Spicy Chicken Curry", Description: "hot", Cuisine: "Burmese", IsPublic: true},
	}, nil)
	f.completions.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"recipe_ids": [1], "explanation": "A fiery pick for dinner."}`, nil)

	query := inbound.RecommendationQuery{Query: "spicy dinner", MaxResults: 5}
	result, err := f.service.Recommend(context.Background(), f.userID, query)

	require.NoError(t, err)
	assert.False(t, result.FromCache)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, recipeID, result.Recommendations[0].RecipeID)
	assert.Equal(t, "A fiery pick for dinner.", result.Explanation)

	// The payload was cached: ids and explanation only
	key, err := CacheKey(f.userID, query)
	require.NoError(t, err)
	data, err := f.store.Get(context.Background(), key)
	require.NoError(t, err)

	var payload cachedPayload
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, []uuid.UUID{recipeID}, payload.RecipeIDs)
}

func TestRecommend_CacheHitSkipsModel(t *testing.T) {
	f := newFixture(t)
	f.knownUser()

	recipeID := uuid.New()
	query := inbound.RecommendationQuery{Query: "spicy dinner", MaxResults: 5}
	key, err := CacheKey(f.userID, query)
	require.NoError(t, err)

	data, _ := json.Marshal(cachedPayload{RecipeIDs: []uuid.UUID{recipeID}, Explanation: "cached"})
	require.NoError(t, f.store.Set(context.Background(), key, data, time.Minute))

	f.recipes.On("FindByIDs", mock.Anything, []uuid.UUID{recipeID}).Return([]*cooking.Recipe{
		{ID: recipeID, Title: "Spicy Chicken Curry", IsPublic: true},
	}, nil)

	result, err := f.service.Recommend(context.Background(), f.userID, query)

	require.NoError(t, err)
	assert.True(t, result.FromCache)
	require.Len(t, result.Recommendations, 1)
	f.completions.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecommend_CacheHitDropsDeletedRecipe(t *testing.T) {
	f := newFixture(t)
	f.knownUser()

	liveID := uuid.New()
	deletedID := uuid.New()
	query := inbound.RecommendationQuery{Query: "spicy dinner", MaxResults: 5}
	key, err := CacheKey(f.userID, query)
	require.NoError(t, err)

	data, _ := json.Marshal(cachedPayload{RecipeIDs: []uuid.UUID{deletedID, liveID}, Explanation: "cached"})
	require.NoError(t, f.store.Set(context.Background(), key, data, time.Minute))

	// Storage no longer knows the deleted id
	f.recipes.On("FindByIDs", mock.Anything, []uuid.UUID{deletedID, liveID}).Return([]*cooking.Recipe{
		{ID: liveID, Title: "Spicy Chicken Curry", IsPublic: true},
	}, nil)

	result, err := f.service.Recommend(context.Background(), f.userID, query)

	require.NoError(t, err)
	assert.True(t, result.FromCache)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, liveID, result.Recommendations[0].RecipeID)
}

func TestRecommend_CacheHitDropsUnpublishedRecipe(t *testing.T) {
	f := newFixture(t)
	f.knownUser()

	privateID := uuid.New()
	query := inbound.RecommendationQuery{Query: "spicy dinner", MaxResults: 5}
	key, err := CacheKey(f.userID, query)
	require.NoError(t, err)

	data, _ := json.Marshal(cachedPayload{RecipeIDs: []uuid.UUID{privateID}, Explanation: "cached"})
	require.NoError(t, f.store.Set(context.Background(), key, data, time.Minute))

	f.recipes.On("FindByIDs", mock.Anything, []uuid.UUID{privateID}).Return([]*cooking.Recipe{
		{ID: privateID, Title: "Secret Family Curry", IsPublic: false},
	}, nil)

	result, err := f.service.Recommend(context.Background(), f.userID, query)

	require.NoError(t, err)
	assert.Empty(t, result.Recommendations)
}

func TestRecommend_ModelFailureFallsBackDeterministically(t *testing.T) {
	f := newFixture(t)
	f.knownUser()

	corpus := []*cooking.Recipe{
		{ID: uuid.New(), Title: "Spicy Chicken Curry", Description: "hot and fragrant", IsPublic: true},
		{ID: uuid.New(), Title: "Plain Rice", Description: "steamed", IsPublic: true},
		{ID: uuid.New(), Title: "Spicy Noodles", Description: "street style", IsPublic: true},
	}
	f.recipes.On("Query", mock.Anything, mock.Anything).Return(corpus, nil)
	f.completions.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", assert.AnError)

	run := func(q string) []inbound.RecommendedRecipe {
		result, err := f.service.Recommend(context.Background(), f.userID, inbound.RecommendationQuery{Query: q, MaxResults: 5})
		require.NoError(t, err)
		return result.Recommendations
	}

	first := run("spicy dinner")
	require.NoError(t, f.store.Clear(context.Background()))
	second := run("spicy dinner")

	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "Spicy Chicken Curry", first[0].Title)
	assert.Equal(t, "Spicy Noodles", first[1].Title)
}

func TestRecommend_UnparseableModelReplyFallsBack(t *testing.T) {
	f := newFixture(t)
	f.knownUser()

	f.recipes.On("Query", mock.Anything, mock.Anything).Return([]*cooking.Recipe{
		{ID: uuid.New(), Title: "Spicy Chicken Curry", Description: "hot", IsPublic: true},
	}, nil)
	f.completions.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("Sure! I'd recommend the curry.", nil)

	result, err := f.service.Recommend(context.Background(), f.userID, inbound.RecommendationQuery{Query: "spicy food", MaxResults: 3})

	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "Spicy Chicken Curry", result.Recommendations[0].Title)
}

func TestRecommend_MaxResultsClampedToFifty(t *testing.T) {
	f := newFixture(t)
	f.knownUser()

	recipeID := uuid.New()

	// Prime the cache under the clamped query. An oversized max_results must
	// resolve to the same entry.
	clamped := inbound.RecommendationQuery{Query: "spicy dinner", MaxResults: 50}
	key, err := CacheKey(f.userID, clamped)
	require.NoError(t, err)

	data, _ := json.Marshal(cachedPayload{RecipeIDs: []uuid.UUID{recipeID}, Explanation: "cached"})
	require.NoError(t, f.store.Set(context.Background(), key, data, time.Minute))

	f.recipes.On("FindByIDs", mock.Anything, []uuid.UUID{recipeID}).Return([]*cooking.Recipe{
		{ID: recipeID, Title: "Spicy Chicken Curry", IsPublic: true},
	}, nil)

	oversized := inbound.RecommendationQuery{Query: "spicy dinner", MaxResults: 999}
	result, err := f.service.Recommend(context.Background(), f.userID, oversized)

	require.NoError(t, err)
	assert.True(t, result.FromCache)
	f.completions.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestSweepExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Set(ctx, "dead", []byte("x"), -time.Second))
	require.NoError(t, f.store.Set(ctx, "live", []byte("y"), time.Minute))

	removed, err := f.service.SweepExpired(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestInvalidateAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Set(ctx, "a", []byte("x"), time.Minute))
	require.NoError(t, f.store.Set(ctx, "b", []byte("y"), time.Minute))

	require.NoError(t, f.service.InvalidateAll(ctx))

	_, err := f.store.Get(ctx, "a")
	assert.Equal(t, outbound.ErrCacheMiss, err)
	_, err = f.store.Get(ctx, "b")
	assert.Equal(t, outbound.ErrCacheMiss, err)
}
