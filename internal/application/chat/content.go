package chat

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mealsmith/api/internal/domain/cooking"
	"github.com/mealsmith/api/internal/infrastructure/monitoring"
	"github.com/mealsmith/api/internal/ports/inbound"
	"github.com/mealsmith/api/internal/ports/outbound"
	apperrors "github.com/mealsmith/api/pkg/errors"
)

// Candidate caps for prompt-size and latency control
const (
	ChatCandidateLimit      = 10
	RecommendCandidateLimit = 50
)

// shortDescriptionLen caps candidate descriptions carried into prompts
const shortDescriptionLen = 120

// ContentKind names the category a resolver contributes
type ContentKind string

const (
	KindRecipes      ContentKind = "recipes"
	KindNutrition    ContentKind = "nutrition"
	KindMedia        ContentKind = "media"
	KindCookingGuide ContentKind = "cooking_guide"
)

// RecipeCandidate is the prompt-sized view of a recipe
type RecipeCandidate struct {
	ID               uuid.UUID
	Title            string
	Cuisine          string
	Difficulty       string
	TotalTimeMinutes int
	ShortDescription string
}

// Content is one resolver's contribution. A nil *Content from Resolve means
// the resolver was not asked; a non-nil Content with empty fields means it
// was asked and has nothing to say.
type Content struct {
	Kind        ContentKind
	Recipes     []RecipeCandidate
	Text        string
	Media       *inbound.MediaSuggestion
	RecipeTitle string
}

// ResolverInput carries everything a resolver may consult. Candidates is
// filled in by the orchestrator once the recipe resolver has run, so
// downstream resolvers can reference the same list the prompt will show.
type ResolverInput struct {
	UserID      uuid.UUID
	Preferences *PreferenceContext
	Flags       IntentFlags
	Text        string
	Candidates  []RecipeCandidate
}

// ContentResolver is one unit of the content-gathering stage. Every resolver
// runs on every request and returns (nil, nil) when its intent flag is unset.
type ContentResolver interface {
	Name() string
	Resolve(ctx context.Context, in *ResolverInput) (*Content, error)
}

// dietKeywords maps a diet type to the description keywords that identify
// matching recipes
var dietKeywords = map[string][]string{
	"vegetarian":  {"vegetarian", "veggie"},
	"vegan":       {"vegan"},
	"pescatarian": {"fish", "seafood"},
}

// BuildRecipeFilter translates preferences into candidate query filters:
// diet restricts by description keyword, low spice tolerance excludes spicy
// recipes, preferred cuisine narrows by substring.
func BuildRecipeFilter(prefs *PreferenceContext, limit int) outbound.RecipeFilter {
	filter := outbound.RecipeFilter{
		PublicOnly: true,
		Limit:      limit,
	}

	if keywords, ok := dietKeywords[strings.ToLower(prefs.DietType)]; ok {
		filter.DietKeywords = keywords
	}
	if prefs.SpiceLevel == cooking.SpiceLevelLow {
		filter.ExcludeKeywords = []string{"spicy"}
	}
	filter.Cuisine = prefs.PreferredCuisine

	return filter
}

// CandidateOf trims a recipe down to its prompt-sized view. The description
// is cut at a rune boundary so multi-byte text (Burmese in particular) stays
// valid UTF-8.
func CandidateOf(r *cooking.Recipe) RecipeCandidate {
	return RecipeCandidate{
		ID:               r.ID,
		Title:            r.Title,
		Cuisine:          r.Cuisine,
		Difficulty:       r.Difficulty,
		TotalTimeMinutes: r.TotalTimeMinutes,
		ShortDescription: truncateRunes(r.Description, shortDescriptionLen),
	}
}

// truncateRunes cuts s to at most n runes
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// RecipeCandidateResolver gathers candidate recipes for the prompt
type RecipeCandidateResolver struct {
	recipes outbound.RecipeRepository
}

// NewRecipeCandidateResolver creates the candidate resolver
func NewRecipeCandidateResolver(recipes outbound.RecipeRepository) *RecipeCandidateResolver {
	return &RecipeCandidateResolver{recipes: recipes}
}

func (r *RecipeCandidateResolver) Name() string { return "recipe_candidates" }

// Resolve queries candidates in storage order; ranking happens later, either
// in the model or in the fallback scorer
func (r *RecipeCandidateResolver) Resolve(ctx context.Context, in *ResolverInput) (*Content, error) {
	if !in.Flags.WantsRecipe && !in.Flags.WantsCookingGuide {
		return nil, nil
	}

	filter := BuildRecipeFilter(in.Preferences, ChatCandidateLimit)
	recipes, err := r.recipes.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	candidates := make([]RecipeCandidate, 0, len(recipes))
	for _, recipe := range recipes {
		candidates = append(candidates, CandidateOf(recipe))
	}

	return &Content{
		Kind:    KindRecipes,
		Recipes: candidates,
	}, nil
}

// NutritionAdvisor asks the language model for nutrition guidance. The only
// resolver that calls the model; a failure here degrades to no nutrition
// content rather than aborting the run.
type NutritionAdvisor struct {
	completions outbound.CompletionService
	metrics     *monitoring.MetricsCollector
	logger      *zap.Logger
}

// NewNutritionAdvisor creates the nutrition advisor
func NewNutritionAdvisor(completions outbound.CompletionService, metrics *monitoring.MetricsCollector, logger *zap.Logger) *NutritionAdvisor {
	return &NutritionAdvisor{
		completions: completions,
		metrics:     metrics,
		logger:      logger,
	}
}

func (n *NutritionAdvisor) Name() string { return "nutrition" }

func (n *NutritionAdvisor) Resolve(ctx context.Context, in *ResolverInput) (*Content, error) {
	if !in.Flags.WantsNutrition {
		return nil, nil
	}

	systemPrompt := systemPromptFor(in.Preferences.Language)

	var sb strings.Builder
	sb.WriteString(languageInstruction(in.Preferences.Language))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "The user asked: %q\n\n", in.Text)
	sb.WriteString("Provide nutrition facts, health benefits, and dietary caveats relevant to this question.\n")
	fmt.Fprintf(&sb, "The user follows a %s diet.", in.Preferences.DietType)
	if len(in.Preferences.Allergies) > 0 {
		fmt.Fprintf(&sb, " Known allergies: %s.", strings.Join(in.Preferences.Allergies, ", "))
	}

	start := time.Now()
	advice, err := n.completions.Complete(ctx, systemPrompt, sb.String())
	if err != nil {
		n.metrics.RecordCompletionCall("nutrition", "error", time.Since(start))
		return nil, err
	}
	n.metrics.RecordCompletionCall("nutrition", "success", time.Since(start))

	return &Content{
		Kind: KindNutrition,
		Text: advice,
	}, nil
}

// MediaSuggester produces a search-term hint for recipe media. It never
// fetches actual media or calls a search API.
type MediaSuggester struct{}

// NewMediaSuggester creates the media suggester
func NewMediaSuggester() *MediaSuggester {
	return &MediaSuggester{}
}

func (m *MediaSuggester) Name() string { return "media" }

func (m *MediaSuggester) Resolve(ctx context.Context, in *ResolverInput) (*Content, error) {
	if !in.Flags.WantsMedia {
		return nil, nil
	}

	term := strings.TrimSpace(in.Text)
	if len(in.Candidates) > 0 {
		term = in.Candidates[0].Title
	} else if in.Preferences.PreferredCuisine != "" {
		term = in.Preferences.PreferredCuisine + " " + term
	}

	kind := "image"
	lowered := strings.ToLower(in.Text)
	if strings.Contains(lowered, "video") || strings.Contains(lowered, "watch") {
		kind = "video"
	}

	return &Content{
		Kind: KindMedia,
		Media: &inbound.MediaSuggestion{
			SearchTerm: term,
			Kind:       kind,
		},
	}, nil
}

// Guide placeholders
const (
	askToSpecifyRecipe = "Which recipe would you like to cook? Tell me the recipe id and I can walk you through the steps."
	noStepsAvailable   = "No detailed steps available for this recipe yet."
)

// recipeRefPattern matches an explicit recipe reference, either a candidate
// number from the prompt listing or a full recipe id
var recipeRefPattern = regexp.MustCompile(`(?i)recipe\s*id[:\s]*([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}|\d+)`)

// guideHistoryDepth bounds how far back the guide searches prior replies for
// a recipe mention
const guideHistoryDepth = 10

// CookingStepGuide resolves which recipe the user is cooking and returns its
// ordered steps as text
type CookingStepGuide struct {
	recipes  outbound.RecipeRepository
	messages outbound.MessageRepository
	logger   *zap.Logger
}

// NewCookingStepGuide creates the step guide
func NewCookingStepGuide(recipes outbound.RecipeRepository, messages outbound.MessageRepository, logger *zap.Logger) *CookingStepGuide {
	return &CookingStepGuide{
		recipes:  recipes,
		messages: messages,
		logger:   logger,
	}
}

func (g *CookingStepGuide) Name() string { return "cooking_guide" }

// Resolve finds the target recipe from the user text first, then from the
// most recent replies. When no recipe can be determined it asks the user to
// specify one instead of guessing; a recipe without stored steps yields a
// placeholder, not an error.
func (g *CookingStepGuide) Resolve(ctx context.Context, in *ResolverInput) (*Content, error) {
	if !in.Flags.WantsCookingGuide {
		return nil, nil
	}

	recipe := g.findTarget(ctx, in)
	if recipe == nil {
		return &Content{
			Kind: KindCookingGuide,
			Text: askToSpecifyRecipe,
		}, nil
	}

	steps, err := g.recipes.Steps(ctx, recipe.ID)
	if err != nil {
		return nil, err
	}

	if len(steps) == 0 {
		return &Content{
			Kind:        KindCookingGuide,
			Text:        noStepsAvailable,
			RecipeTitle: recipe.Title,
		}, nil
	}

	lines := make([]string, 0, len(steps))
	for _, step := range steps {
		lines = append(lines, fmt.Sprintf("Step %d: %s", step.StepNumber, step.InstructionText))
	}

	return &Content{
		Kind:        KindCookingGuide,
		Text:        strings.Join(lines, "\n"),
		RecipeTitle: recipe.Title,
	}, nil
}

func (g *CookingStepGuide) findTarget(ctx context.Context, in *ResolverInput) *cooking.Recipe {
	if recipe := g.resolveRef(ctx, in, in.Text); recipe != nil {
		return recipe
	}

	// Fall back to the most recently mentioned recipe in the reply stream
	history, err := g.messages.ListByUser(ctx, in.UserID, guideHistoryDepth)
	if err != nil {
		g.logger.Warn("failed to load history for recipe lookup", zap.Error(err))
		return nil
	}
	for _, msg := range history {
		if recipe := g.resolveRef(ctx, in, msg.AIReply); recipe != nil {
			return recipe
		}
	}
	return nil
}

// resolveRef extracts a recipe reference from text: a full id loads directly,
// a bare number indexes into the current candidate listing (1-based, matching
// the numbering the prompt shows the user)
func (g *CookingStepGuide) resolveRef(ctx context.Context, in *ResolverInput, text string) *cooking.Recipe {
	match := recipeRefPattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	ref := match[1]

	if id, err := uuid.Parse(ref); err == nil {
		recipe, err := g.recipes.FindByID(ctx, id)
		if err != nil {
			if !apperrors.Is(err, apperrors.CodeRecipeNotFound) {
				g.logger.Warn("recipe lookup failed", zap.String("recipe_id", ref), zap.Error(err))
			}
			return nil
		}
		return recipe
	}

	n, err := strconv.Atoi(ref)
	if err != nil || n < 1 || n > len(in.Candidates) {
		return nil
	}
	candidate := in.Candidates[n-1]

	recipe, err := g.recipes.FindByID(ctx, candidate.ID)
	if err != nil {
		return nil
	}
	return recipe
}
