// Package recommendation implements the cached, model-scored recommendation flow
package recommendation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mealsmith/api/internal/application/chat"
	"github.com/mealsmith/api/internal/domain/cooking"
	"github.com/mealsmith/api/internal/infrastructure/monitoring"
	"github.com/mealsmith/api/internal/ports/inbound"
	"github.com/mealsmith/api/internal/ports/outbound"
	apperrors "github.com/mealsmith/api/pkg/errors"
)

const (
	defaultMaxResults = 5
	maxMaxResults     = 50
)

// cachedPayload is what a cache entry stores: recipe ids and the explanation,
// never denormalized recipe objects. The hit path reloads the recipes so
// edits and deletions since the write are reflected.
type cachedPayload struct {
	RecipeIDs   []uuid.UUID `json:"recipe_ids"`
	Explanation string      `json:"explanation"`
}

// Service produces recipe recommendations: filter candidates, score them with
// the model, cache the outcome
type Service struct {
	loader      *chat.PreferenceLoader
	recipes     outbound.RecipeRepository
	completions outbound.CompletionService
	cache       outbound.CacheRepository
	ttl         time.Duration
	metrics     *monitoring.MetricsCollector
	logger      *zap.Logger
}

var _ inbound.RecommendationService = (*Service)(nil)

// NewService creates the recommendation service
func NewService(
	loader *chat.PreferenceLoader,
	recipes outbound.RecipeRepository,
	completions outbound.CompletionService,
	cache outbound.CacheRepository,
	ttl time.Duration,
	metrics *monitoring.MetricsCollector,
	logger *zap.Logger,
) *Service {
	return &Service{
		loader:      loader,
		recipes:     recipes,
		completions: completions,
		cache:       cache,
		ttl:         ttl,
		metrics:     metrics,
		logger:      logger,
	}
}

// Recommend serves a recommendation query, from cache when possible
func (s *Service) Recommend(ctx context.Context, userID uuid.UUID, query inbound.RecommendationQuery) (*inbound.RecommendationResult, error) {
	if strings.TrimSpace(query.Query) == "" {
		return nil, apperrors.NewValidationError("query must not be empty")
	}
	if query.MaxResults <= 0 {
		query.MaxResults = defaultMaxResults
	}
	if query.MaxResults > maxMaxResults {
		query.MaxResults = maxMaxResults
	}

	prefs, err := s.loader.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := CacheKey(userID, query)
	if err != nil {
		return nil, err
	}

	if result, ok := s.fromCache(ctx, key, query); ok {
		s.metrics.RecordRecommendation("cache")
		return result, nil
	}

	candidates, err := s.loadCandidates(ctx, prefs, query)
	if err != nil {
		return nil, err
	}

	picked, explanation := s.score(ctx, query, candidates)

	s.writeCache(ctx, key, picked, explanation)
	s.metrics.RecordRecommendation("fresh")

	return &inbound.RecommendationResult{
		Recommendations: toRecommended(picked),
		Explanation:     explanation,
		Query:           query.Query,
		FromCache:       false,
	}, nil
}

// fromCache serves a hit after re-validating that the referenced recipes
// still exist and are public; stale ids are dropped silently
func (s *Service) fromCache(ctx context.Context, key string, query inbound.RecommendationQuery) (*inbound.RecommendationResult, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if err != outbound.ErrCacheMiss {
			s.logger.Warn("recommendation cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation("get", "miss")
		return nil, false
	}
	s.metrics.RecordCacheOperation("get", "hit")

	var payload cachedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.logger.Warn("dropping corrupt recommendation cache entry", zap.Error(err))
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}

	recipes, err := s.recipes.FindByIDs(ctx, payload.RecipeIDs)
	if err != nil {
		s.logger.Warn("cache re-validation failed, recomputing", zap.Error(err))
		return nil, false
	}

	byID := make(map[uuid.UUID]*cooking.Recipe, len(recipes))
	for _, r := range recipes {
		if r.IsPublic {
			byID[r.ID] = r
		}
	}

	// Preserve the cached ranking while dropping deleted or unpublished ids
	live := make([]chat.RecipeCandidate, 0, len(payload.RecipeIDs))
	for _, id := range payload.RecipeIDs {
		if r, ok := byID[id]; ok {
			live = append(live, chat.CandidateOf(r))
		}
	}

	return &inbound.RecommendationResult{
		Recommendations: toRecommended(live),
		Explanation:     payload.Explanation,
		Query:           query.Query,
		FromCache:       true,
	}, true
}

// loadCandidates applies preference filters plus the query's explicit filters
func (s *Service) loadCandidates(ctx context.Context, prefs *chat.PreferenceContext, query inbound.RecommendationQuery) ([]chat.RecipeCandidate, error) {
	filter := chat.BuildRecipeFilter(prefs, chat.RecommendCandidateLimit)
	if query.Cuisine != "" {
		filter.Cuisine = query.Cuisine
	}
	filter.Difficulty = query.Difficulty
	filter.MaxTotalTime = query.MaxTime

	recipes, err := s.recipes.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	candidates := make([]chat.RecipeCandidate, 0, len(recipes))
	for _, r := range recipes {
		candidates = append(candidates, chat.CandidateOf(r))
	}
	return candidates, nil
}

// score asks the model to pick and explain the best candidates; any failure
// degrades to the deterministic keyword scorer
func (s *Service) score(ctx context.Context, query inbound.RecommendationQuery, candidates []chat.RecipeCandidate) ([]chat.RecipeCandidate, string) {
	if len(candidates) == 0 {
		return nil, "No recipes matched your filters."
	}

	picked, explanation, err := s.modelScore(ctx, query, candidates)
	if err != nil {
		s.logger.Warn("model scoring failed, using keyword fallback", zap.Error(err))
		picked = chat.ScoreCandidates(query.Query, candidates)
		if len(picked) > query.MaxResults {
			picked = picked[:query.MaxResults]
		}
		if len(picked) == 0 {
			return nil, "No recipes matched your query."
		}
		return picked, fmt.Sprintf("Recipes matching your search for %q.", query.Query)
	}
	return picked, explanation
}

// modelScoreResponse is the JSON shape the scoring prompt requests
type modelScoreResponse struct {
	RecipeIDs   []int  `json:"recipe_ids"`
	Explanation string `json:"explanation"`
}

func (s *Service) modelScore(ctx context.Context, query inbound.RecommendationQuery, candidates []chat.RecipeCandidate) ([]chat.RecipeCandidate, string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The user is looking for recipes matching: %q\n\n", query.Query)
	sb.WriteString("Candidate recipes:\n")
	for i, c := range candidates {
		fmt.Fprintf(&sb, "- Recipe ID %d: %s (%s, %s, %d mins) %s\n",
			i+1, c.Title, c.Cuisine, c.Difficulty, c.TotalTimeMinutes, c.ShortDescription)
	}
	fmt.Fprintf(&sb, "\nPick the best %d recipes for the user.\n", query.MaxResults)
	sb.WriteString(`Respond with ONLY a valid JSON object in this exact format:
{"recipe_ids": [1, 2], "explanation": "one short paragraph explaining the picks"}`)

	systemPrompt := "You are a recipe recommendation engine. You respond with only valid JSON."

	start := time.Now()
	raw, err := s.completions.Complete(ctx, systemPrompt, sb.String())
	if err != nil {
		s.metrics.RecordCompletionCall("recommendation", "error", time.Since(start))
		return nil, "", err
	}
	s.metrics.RecordCompletionCall("recommendation", "success", time.Since(start))

	jsonStr, err := extractJSON(raw)
	if err != nil {
		return nil, "", err
	}

	var resp modelScoreResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, "", fmt.Errorf("failed to parse scoring response: %w", err)
	}

	picked := make([]chat.RecipeCandidate, 0, query.MaxResults)
	for _, n := range resp.RecipeIDs {
		if n < 1 || n > len(candidates) {
			continue
		}
		picked = append(picked, candidates[n-1])
		if len(picked) == query.MaxResults {
			break
		}
	}
	if len(picked) == 0 {
		return nil, "", fmt.Errorf("scoring response referenced no valid candidates")
	}

	explanation := resp.Explanation
	if explanation == "" {
		explanation = fmt.Sprintf("Recipes matching your search for %q.", query.Query)
	}
	return picked, explanation, nil
}

func (s *Service) writeCache(ctx context.Context, key string, picked []chat.RecipeCandidate, explanation string) {
	ids := make([]uuid.UUID, 0, len(picked))
	for _, c := range picked {
		ids = append(ids, c.ID)
	}

	data, err := json.Marshal(cachedPayload{RecipeIDs: ids, Explanation: explanation})
	if err != nil {
		s.logger.Warn("failed to marshal recommendation cache payload", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("recommendation cache write failed", zap.Error(err))
		s.metrics.RecordCacheOperation("set", "error")
		return
	}
	s.metrics.RecordCacheOperation("set", "ok")
}

// SweepExpired removes expired cache entries; wired to a periodic maintenance
// ticker, not to the request path
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	removed, err := s.cache.Sweep(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Debug("swept expired recommendation cache entries", zap.Int("removed", removed))
	}
	return removed, nil
}

// InvalidateAll drops every cached recommendation
func (s *Service) InvalidateAll(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

func toRecommended(candidates []chat.RecipeCandidate) []inbound.RecommendedRecipe {
	out := make([]inbound.RecommendedRecipe, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, inbound.RecommendedRecipe{
			RecipeID:         c.ID,
			Title:            c.Title,
			Cuisine:          c.Cuisine,
			Difficulty:       c.Difficulty,
			TotalTimeMinutes: c.TotalTimeMinutes,
			Description:      c.ShortDescription,
		})
	}
	return out
}

// extractJSON returns the substring between the first "{" and the last "}",
// tolerating prose the model sometimes wraps around the object
func extractJSON(response string) (string, error) {
	response = strings.TrimSpace(response)
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no valid JSON found in response")
	}
	return response[start : end+1], nil
}
