// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mealsmith/api/internal/domain/cooking"
)

// ErrCacheMiss is returned by CacheRepository.Get when a key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*cooking.User, error)
	FindByEmail(ctx context.Context, email string) (*cooking.User, error)

	// PreferencesByUserID returns (nil, nil) when the user has no stored
	// preferences; missing preferences are not an error.
	PreferencesByUserID(ctx context.Context, userID uuid.UUID) (*cooking.Preferences, error)
}

// RecipeFilter defines query parameters for recipe candidate selection
type RecipeFilter struct {
	// DietKeywords restricts to recipes whose description contains at least
	// one of the keywords (case-insensitive).
	DietKeywords []string

	// ExcludeKeywords drops recipes whose description contains any of the
	// keywords (case-insensitive).
	ExcludeKeywords []string

	Cuisine      string // substring match
	Difficulty   string // exact match
	MaxTotalTime int    // minutes, 0 = no limit
	PublicOnly   bool
	Limit        int
}

// RecipeRepository defines the interface for recipe persistence
type RecipeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*cooking.Recipe, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*cooking.Recipe, error)

	// Query returns matching recipes in storage order, capped at filter.Limit.
	Query(ctx context.Context, filter RecipeFilter) ([]*cooking.Recipe, error)

	// Steps returns a recipe's cooking steps ordered by step number.
	Steps(ctx context.Context, recipeID uuid.UUID) ([]cooking.CookingStep, error)
}

// MessageRepository defines the interface for conversation persistence
type MessageRepository interface {
	Append(ctx context.Context, msg *cooking.Message) error

	// ListByUser returns up to limit messages for a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*cooking.Message, error)
}

// CacheRepository defines the interface for TTL-keyed caching
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// Sweep removes expired entries and reports how many were dropped.
	// An explicit maintenance operation, not triggered on every access.
	Sweep(ctx context.Context) (int, error)

	// Clear drops all entries.
	Clear(ctx context.Context) error
}

// CompletionService defines the single call contract to the language-model
// service. Implementations enforce a bounded timeout; callers treat any error
// as the model being unavailable and fall back deterministically.
type CompletionService interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
