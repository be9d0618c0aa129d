package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mealsmith/api/internal/ports/inbound"
)

// RecommendationAPIHandlers handles recommendation requests
type RecommendationAPIHandlers struct {
	recommendations inbound.RecommendationService
	logger          *zap.Logger
}

// NewRecommendationAPIHandlers creates a new recommendation API handlers instance
func NewRecommendationAPIHandlers(recommendations inbound.RecommendationService, logger *zap.Logger) *RecommendationAPIHandlers {
	return &RecommendationAPIHandlers{
		recommendations: recommendations,
		logger:          logger,
	}
}

// Recommend handles GET /api/v1/recommendations.
// Query parameters: query (required), max_results, cuisine, difficulty, max_time.
func (h *RecommendationAPIHandlers) Recommend(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(r)
	if !ok {
		writeErrorJSON(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	params := r.URL.Query()

	query := inbound.RecommendationQuery{
		Query:      params.Get("query"),
		Cuisine:    params.Get("cuisine"),
		Difficulty: params.Get("difficulty"),
	}

	if raw := params.Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeErrorJSON(w, http.StatusBadRequest, "Invalid max_results parameter")
			return
		}
		query.MaxResults = n
	}

	if raw := params.Get("max_time"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeErrorJSON(w, http.StatusBadRequest, "Invalid max_time parameter")
			return
		}
		query.MaxTime = n
	}

	result, err := h.recommendations.Recommend(r.Context(), userID, query)
	if err != nil {
		h.logger.Warn("recommendation request failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    result,
	})
}

// InvalidateCache handles POST /api/v1/admin/recommendations/invalidate
func (h *RecommendationAPIHandlers) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if err := h.recommendations.InvalidateAll(r.Context()); err != nil {
		h.logger.Error("recommendation cache invalidation failed", zap.Error(err))
		writeAppError(w, r, err)
		return
	}

	h.logger.Info("recommendation cache invalidated")
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Recommendation cache cleared",
	})
}
