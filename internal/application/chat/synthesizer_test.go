package chat

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	"github.com/mealsmith/api/internal/domain/cooking"
)

func TestSynthesize_ReturnsModelReplyVerbatim(t *testing.T) {
	completions := new(MockCompletionService)
	completions.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("Here are some ideas for dinner tonight.", nil)

	s := NewSynthesizer(completions, testMetrics(t), zaptest.NewLogger(t))
	reply, fallback := s.Synthesize(context.Background(), testPrefs(), "dinner ideas", nil)

	assert.Equal(t, "Here are some ideas for dinner tonight.", reply)
	assert.False(t, fallback)
}

func TestSynthesize_FallsBackWhenModelFails(t *testing.T) {
	completions := new(MockCompletionService)
	completions.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", assert.AnError)

	contents := []*Content{{
		Kind: KindRecipes,
		Recipes: []RecipeCandidate{
			{ID: uuid.New(), Title: "Chicken Curry", ShortDescription: "spicy chicken in curry sauce"},
		},
	}}

	s := NewSynthesizer(completions, testMetrics(t), zaptest.NewLogger(t))
	reply, fallback := s.Synthesize(context.Background(), testPrefs(), "spicy chicken", contents)

	assert.True(t, fallback)
	assert.Contains(t, reply, "Chicken Curry")
}

func TestSynthesize_RecordsCompletionMetrics(t *testing.T) {
	completions := new(MockCompletionService)
	completions.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", assert.AnError)

	metrics := testMetrics(t)
	s := NewSynthesizer(completions, metrics, zaptest.NewLogger(t))
	s.Synthesize(context.Background(), testPrefs(), "spicy chicken", nil)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Contains(t, rec.Body.String(), `completion_calls_total{purpose="chat_reply",status="error"} 1`)
}

func TestSynthesize_BurmeseSystemPrompt(t *testing.T) {
	completions := new(MockCompletionService)
	var capturedSystem string
	completions.On("Complete", mock.Anything, mock.MatchedBy(func(s string) bool {
		capturedSystem = s
		return true
	}), mock.Anything).Return("reply", nil)

	prefs := testPrefs()
	prefs.Language = cooking.LanguageBurmese

	s := NewSynthesizer(completions, testMetrics(t), zaptest.NewLogger(t))
	s.Synthesize(context.Background(), prefs, "ဟယ်လို", nil)

	assert.Equal(t, systemPromptBurmese, capturedSystem)
}

func TestBuildUserPrompt_LabelsOnlyPresentSections(t *testing.T) {
	contents := []*Content{
		{Kind: KindRecipes, Recipes: []RecipeCandidate{{Title: "Mohinga", Cuisine: "Burmese", Difficulty: "Medium", TotalTimeMinutes: 45}}},
		{Kind: KindNutrition, Text: "High in protein."},
	}

	prompt := buildUserPrompt(testPrefs(), "a healthy dinner recipe", contents)

	assert.Contains(t, prompt, "Available recipes:")
	assert.Contains(t, prompt, "Recipe ID 1: Mohinga (Burmese, Medium, 45 mins)")
	assert.Contains(t, prompt, "Nutrition guidance:")
	assert.Contains(t, prompt, "High in protein.")
	assert.NotContains(t, prompt, "Media hint")
	assert.Contains(t, prompt, "- Diet: omnivore")
	assert.Contains(t, prompt, `The user asked: "a healthy dinner recipe"`)
}

func TestScoreCandidates_OrderingAndTieBreak(t *testing.T) {
	// Scores against "spicy chicken dinner": {2, 0, 1}
	candidates := []RecipeCandidate{
		{Title: "Spicy Chicken Curry", ShortDescription: "hot and fragrant"},
		{Title: "Plain Rice", ShortDescription: "steamed jasmine rice"},
		{Title: "Chicken Soup", ShortDescription: "comforting broth"},
	}

	ranked := ScoreCandidates("spicy chicken dinner", candidates)

	assert.Len(t, ranked, 2)
	assert.Equal(t, "Spicy Chicken Curry", ranked[0].Title)
	assert.Equal(t, "Chicken Soup", ranked[1].Title)
}

func TestScoreCandidates_StableSortKeepsStorageOrderOnTies(t *testing.T) {
	candidates := []RecipeCandidate{
		{Title: "Chicken Curry"},
		{Title: "Chicken Salad"},
		{Title: "Chicken Soup"},
	}

	ranked := ScoreCandidates("chicken", candidates)

	assert.Equal(t, []string{"Chicken Curry", "Chicken Salad", "Chicken Soup"},
		[]string{ranked[0].Title, ranked[1].Title, ranked[2].Title})
}

func TestScoreCandidates_Deterministic(t *testing.T) {
	candidates := []RecipeCandidate{
		{Title: "Spicy Chicken Curry"},
		{Title: "Plain Rice"},
		{Title: "Chicken Soup"},
	}

	first := ScoreCandidates("spicy chicken dinner", candidates)
	second := ScoreCandidates("spicy chicken dinner", candidates)

	assert.Equal(t, first, second)
}

func TestFallbackReply_NoMatches(t *testing.T) {
	reply := FallbackReply("quantum physics", []RecipeCandidate{{Title: "Mohinga", ShortDescription: "fish noodle soup"}}, 5)

	assert.Equal(t, noMatchesReply, reply)
}

func TestFallbackReply_EmptyCandidates(t *testing.T) {
	reply := FallbackReply("anything", nil, 5)

	assert.Equal(t, noMatchesReply, reply)
}

func TestFallbackReply_TruncatesToMaxResults(t *testing.T) {
	candidates := []RecipeCandidate{
		{Title: "Chicken Curry"},
		{Title: "Chicken Salad"},
		{Title: "Chicken Soup"},
	}

	reply := FallbackReply("chicken", candidates, 2)

	assert.Contains(t, reply, "Chicken Curry")
	assert.Contains(t, reply, "Chicken Salad")
	assert.False(t, strings.Contains(reply, "Chicken Soup"))
}
