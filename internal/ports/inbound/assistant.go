// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mealsmith/api/internal/domain/cooking"
)

// ChatService drives one assistant conversation turn
type ChatService interface {
	// SendMessage runs the full orchestration for one user message and
	// records the resulting conversation turn.
	SendMessage(ctx context.Context, userID uuid.UUID, message string) (*ChatResult, error)

	// History returns the user's last N turns, oldest first.
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*cooking.Message, error)
}

// ChatResult is the outcome of one orchestration run
type ChatResult struct {
	MessageID        uuid.UUID         `json:"message_id"`
	AIReply          string            `json:"ai_reply"`
	Language         cooking.Language  `json:"language"`
	CookingRecipe    string            `json:"cooking_recipe,omitempty"`
	HealthNutrition  string            `json:"health_nutrition,omitempty"`
	MediaSuggestions *MediaSuggestion  `json:"media_suggestions,omitempty"`
	Fallback         bool              `json:"fallback"`
	CreatedAt        time.Time         `json:"created_at"`
}

// MediaSuggestion is a search-term hint for recipe media; the assistant never
// fetches actual media.
type MediaSuggestion struct {
	SearchTerm string `json:"search_term"`
	Kind       string `json:"kind"`
}

// RecommendationService produces cached, model-scored recipe recommendations
type RecommendationService interface {
	Recommend(ctx context.Context, userID uuid.UUID, query RecommendationQuery) (*RecommendationResult, error)

	// SweepExpired removes expired cache entries and reports how many.
	SweepExpired(ctx context.Context) (int, error)

	// InvalidateAll drops every cached recommendation.
	InvalidateAll(ctx context.Context) error
}

// RecommendationQuery carries the free-text query plus filters
type RecommendationQuery struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	Cuisine    string `json:"cuisine,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	MaxTime    int    `json:"max_time,omitempty"`
}

// RecommendationResult is the reply of the recommend operation
type RecommendationResult struct {
	Recommendations []RecommendedRecipe `json:"recommendations"`
	Explanation     string              `json:"explanation"`
	Query           string              `json:"query"`
	FromCache       bool                `json:"from_cache"`
}

// RecommendedRecipe pairs a live recipe with its recommendation rank
type RecommendedRecipe struct {
	RecipeID         uuid.UUID `json:"recipe_id"`
	Title            string    `json:"title"`
	Cuisine          string    `json:"cuisine"`
	Difficulty       string    `json:"difficulty"`
	TotalTimeMinutes int       `json:"total_time_minutes"`
	Description      string    `json:"description"`
}
