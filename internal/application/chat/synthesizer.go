package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mealsmith/api/internal/domain/cooking"
	"github.com/mealsmith/api/internal/infrastructure/monitoring"
	"github.com/mealsmith/api/internal/ports/outbound"
)

// System prompts are fixed per reply language
const (
	systemPromptEnglish = "You are a friendly cooking assistant AI that can answer user questions and provide cooking guidance."
	systemPromptBurmese = "သင်သည် ချက်ပြုတ်ရေးအကူအညီပေးသော AI လုပ်ဆောင်ချက်ဖြစ်သည်။"
)

func systemPromptFor(lang cooking.Language) string {
	if lang == cooking.LanguageBurmese {
		return systemPromptBurmese
	}
	return systemPromptEnglish
}

func languageInstruction(lang cooking.Language) string {
	if lang == cooking.LanguageBurmese {
		return "Please respond in Burmese (Myanmar) language."
	}
	return "Please respond in English."
}

// noMatchesReply is the fallback reply when no candidate scores above zero
const noMatchesReply = "I couldn't find any matching recipes for your request right now. Please try asking differently or come back in a moment."

// Synthesizer merges all gathered content into one reply with a single model
// call, falling back to a deterministic keyword-scored reply when the model
// is unavailable
type Synthesizer struct {
	completions outbound.CompletionService
	metrics     *monitoring.MetricsCollector
	logger      *zap.Logger
}

// NewSynthesizer creates a reply synthesizer
func NewSynthesizer(completions outbound.CompletionService, metrics *monitoring.MetricsCollector, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{
		completions: completions,
		metrics:     metrics,
		logger:      logger,
	}
}

// Synthesize builds the composite prompt and calls the model once. The
// returned bool reports whether the fallback path produced the reply. The
// fallback always yields a non-empty reply, so Synthesize cannot fail.
func (s *Synthesizer) Synthesize(ctx context.Context, prefs *PreferenceContext, text string, contents []*Content) (string, bool) {
	systemPrompt := systemPromptFor(prefs.Language)
	userPrompt := buildUserPrompt(prefs, text, contents)

	start := time.Now()
	reply, err := s.completions.Complete(ctx, systemPrompt, userPrompt)
	if err == nil && strings.TrimSpace(reply) != "" {
		s.metrics.RecordCompletionCall("chat_reply", "success", time.Since(start))
		return reply, false
	}
	s.metrics.RecordCompletionCall("chat_reply", "error", time.Since(start))
	if err != nil {
		s.logger.Warn("model synthesis failed, using fallback reply", zap.Error(err))
	} else {
		s.logger.Warn("model returned empty reply, using fallback reply")
	}

	return FallbackReply(text, candidatesFrom(contents), ChatCandidateLimit), true
}

// buildUserPrompt assembles the user-role prompt: the raw query, the
// preference summary, and a labeled section for each resolver that produced
// content
func buildUserPrompt(prefs *PreferenceContext, text string, contents []*Content) string {
	var sb strings.Builder

	sb.WriteString(languageInstruction(prefs.Language))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "The user asked: %q\n\n", text)

	sb.WriteString("User preferences:\n")
	fmt.Fprintf(&sb, "- Diet: %s\n", prefs.DietType)
	fmt.Fprintf(&sb, "- Spice level: %s\n", prefs.SpiceLevel)
	if prefs.PreferredCuisine != "" {
		fmt.Fprintf(&sb, "- Preferred cuisine: %s\n", prefs.PreferredCuisine)
	}
	if len(prefs.Allergies) > 0 {
		fmt.Fprintf(&sb, "- Allergies: %s\n", strings.Join(prefs.Allergies, ", "))
	}

	for _, content := range contents {
		if content == nil {
			continue
		}
		switch content.Kind {
		case KindRecipes:
			sb.WriteString("\nAvailable recipes:\n")
			if len(content.Recipes) == 0 {
				sb.WriteString("No recipes available.\n")
				continue
			}
			for i, c := range content.Recipes {
				fmt.Fprintf(&sb, "- Recipe ID %d: %s (%s, %s, %d mins)\n",
					i+1, c.Title, orUnknown(c.Cuisine), orUnknown(c.Difficulty), c.TotalTimeMinutes)
			}
		case KindNutrition:
			sb.WriteString("\nNutrition guidance:\n")
			sb.WriteString(content.Text)
			sb.WriteString("\n")
		case KindMedia:
			if content.Media != nil {
				fmt.Fprintf(&sb, "\nMedia hint: suggest the user search for %q to find a %s.\n",
					content.Media.SearchTerm, content.Media.Kind)
			}
		case KindCookingGuide:
			if content.RecipeTitle != "" {
				fmt.Fprintf(&sb, "\nThe user is cooking %q.\nCooking steps:\n%s\nExplain the first few steps in a friendly way.\n",
					content.RecipeTitle, content.Text)
			} else {
				fmt.Fprintf(&sb, "\nCooking guidance:\n%s\n", content.Text)
			}
		}
	}

	sb.WriteString("\nAsk the user what they want to do next.")
	return sb.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func candidatesFrom(contents []*Content) []RecipeCandidate {
	for _, content := range contents {
		if content != nil && content.Kind == KindRecipes {
			return content.Recipes
		}
	}
	return nil
}

// FallbackReply builds the deterministic reply used when the model is
// unreachable: candidates are scored by how many query words appear in their
// title, description, and cuisine, sorted by score descending with storage
// order breaking ties, and the survivors are named in a templated sentence.
func FallbackReply(text string, candidates []RecipeCandidate, maxResults int) string {
	ranked := ScoreCandidates(text, candidates)
	if maxResults > 0 && len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	if len(ranked) == 0 {
		return noMatchesReply
	}

	titles := make([]string, 0, len(ranked))
	for _, c := range ranked {
		titles = append(titles, c.Title)
	}
	return fmt.Sprintf("I'm having trouble reaching the cooking assistant right now, but based on your message these recipes look like a good match: %s. Ask me again in a moment for full guidance.",
		strings.Join(titles, ", "))
}

// ScoreCandidates ranks candidates against the query words. The sort is
// stable so candidates with equal scores keep their storage order; zero
// scorers are dropped.
func ScoreCandidates(text string, candidates []RecipeCandidate) []RecipeCandidate {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 || len(candidates) == 0 {
		return nil
	}

	type scored struct {
		candidate RecipeCandidate
		score     int
	}

	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		haystack := strings.ToLower(c.Title + " " + c.ShortDescription + " " + c.Cuisine)
		score := 0
		for _, word := range words {
			if strings.Contains(haystack, word) {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{candidate: c, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	result := make([]RecipeCandidate, 0, len(ranked))
	for _, r := range ranked {
		result = append(result, r.candidate)
	}
	return result
}
