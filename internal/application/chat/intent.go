// Package chat implements the assistant pipeline: intent classification,
// content resolution, reply synthesis, and conversation recording
package chat

import (
	"strings"
)

// IntentFlags marks which categories of help a message asks for.
// Flags are independent; any subset may be set at once.
type IntentFlags struct {
	IsGreeting        bool `json:"is_greeting"`
	WantsRecipe       bool `json:"wants_recipe"`
	WantsNutrition    bool `json:"wants_nutrition"`
	WantsMedia        bool `json:"wants_media"`
	WantsCookingGuide bool `json:"wants_cooking_guide"`
}

// greetingMaxTokens bounds greeting detection so longer sentences that happen
// to contain a greeting word are not misclassified
const greetingMaxTokens = 5

var (
	greetingWords = []string{"hello", "hi", "hey", "greetings", "mingalaba"}

	recipeWords = []string{"recipe", "cook", "dish", "meal", "dinner", "lunch", "breakfast", "ingredient"}

	nutritionWords = []string{"nutrition", "nutrient", "calorie", "healthy", "health", "protein", "vitamin", "diet"}

	mediaWords = []string{"photo", "picture", "image", "video", "watch", "show me"}

	guideWords = []string{"step", "guide", "how to", "how do i", "instruction", "walk me through"}
)

// ClassifyIntent derives intent flags from raw user text. Pure function:
// the same text always yields the same flags. Empty input yields all false.
func ClassifyIntent(text string) IntentFlags {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return IntentFlags{}
	}

	tokens := strings.Fields(lowered)

	return IntentFlags{
		IsGreeting:        len(tokens) <= greetingMaxTokens && matchesGreeting(lowered, tokens),
		WantsRecipe:       containsAny(lowered, recipeWords),
		WantsNutrition:    containsAny(lowered, nutritionWords),
		WantsMedia:        containsAny(lowered, mediaWords),
		WantsCookingGuide: containsAny(lowered, guideWords),
	}
}

// matchesGreeting checks greeting words against whole tokens. Short words
// like "hi" appear inside ordinary words ("chicken"), so substring matching
// would misfire here.
func matchesGreeting(lowered string, tokens []string) bool {
	for _, token := range tokens {
		token = strings.Trim(token, ".,!?")
		for _, word := range greetingWords {
			if token == word {
				return true
			}
		}
	}
	return strings.Contains(lowered, "good morning") || strings.Contains(lowered, "good evening")
}

func containsAny(lowered string, words []string) bool {
	for _, word := range words {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}
