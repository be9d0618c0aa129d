package recommendation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/mealsmith/api/internal/ports/inbound"
)

// CacheKey derives the cache key for a recommendation query: a sha256 hash
// over the canonical form of the full query payload. encoding/json emits map
// keys in sorted order, so the key is insensitive to how the payload fields
// were assembled. Only active filter fields participate, so an absent filter
// and a zero-valued one hash identically.
func CacheKey(userID uuid.UUID, query inbound.RecommendationQuery) (string, error) {
	payload := map[string]interface{}{
		"user_id":     userID.String(),
		"query":       query.Query,
		"max_results": query.MaxResults,
	}
	if query.Cuisine != "" {
		payload["cuisine"] = query.Cuisine
	}
	if query.Difficulty != "" {
		payload["difficulty"] = query.Difficulty
	}
	if query.MaxTime > 0 {
		payload["max_time"] = query.MaxTime
	}

	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to build cache key: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
