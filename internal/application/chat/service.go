package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mealsmith/api/internal/domain/cooking"
	"github.com/mealsmith/api/internal/infrastructure/monitoring"
	"github.com/mealsmith/api/internal/ports/inbound"
	apperrors "github.com/mealsmith/api/pkg/errors"
)

// Service orchestrates one conversation turn: classify intent, load
// preferences, gather content, synthesize a reply, record the turn. The
// sequence is request-scoped and non-reentrant; the single model call inside
// synthesis is the only blocking network operation.
type Service struct {
	loader      *PreferenceLoader
	resolvers   []ContentResolver
	synthesizer *Synthesizer
	recorder    *Recorder
	metrics     *monitoring.MetricsCollector
	logger      *zap.Logger
}

var _ inbound.ChatService = (*Service)(nil)

// NewService wires the pipeline. Resolvers run in the given order; the
// candidate resolver must come first so its output is visible downstream.
func NewService(
	loader *PreferenceLoader,
	resolvers []ContentResolver,
	synthesizer *Synthesizer,
	recorder *Recorder,
	metrics *monitoring.MetricsCollector,
	logger *zap.Logger,
) *Service {
	return &Service{
		loader:      loader,
		resolvers:   resolvers,
		synthesizer: synthesizer,
		recorder:    recorder,
		metrics:     metrics,
		logger:      logger,
	}
}

// SendMessage runs the full orchestration for one user message. Resolver
// failures degrade to missing content; only an unknown user and a failure to
// record the turn abort the run.
func (s *Service) SendMessage(ctx context.Context, userID uuid.UUID, message string) (*inbound.ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		s.metrics.RecordChatRequest("validation_error")
		return nil, apperrors.NewValidationError("message must not be empty")
	}

	flags := ClassifyIntent(message)

	prefs, err := s.loader.Load(ctx, userID)
	if err != nil {
		s.metrics.RecordChatRequest("user_error")
		return nil, err
	}

	input := &ResolverInput{
		UserID:      userID,
		Preferences: prefs,
		Flags:       flags,
		Text:        message,
	}

	contents := make([]*Content, 0, len(s.resolvers))
	for _, resolver := range s.resolvers {
		content, err := resolver.Resolve(ctx, input)
		if err != nil {
			s.logger.Warn("content resolver failed, continuing without its content",
				zap.String("resolver", resolver.Name()),
				zap.Error(err),
			)
			continue
		}
		if content == nil {
			continue
		}
		contents = append(contents, content)
		if content.Kind == KindRecipes {
			input.Candidates = content.Recipes
		}
	}

	reply, fallback := s.synthesizer.Synthesize(ctx, prefs, message, contents)
	if fallback {
		s.metrics.RecordFallbackReply()
	}

	msg, err := s.recorder.Record(ctx, userID, message, reply)
	if err != nil {
		s.metrics.RecordChatRequest("record_error")
		return nil, err
	}

	s.metrics.RecordChatRequest("success")

	result := &inbound.ChatResult{
		MessageID: msg.ID,
		AIReply:   reply,
		Language:  prefs.Language,
		Fallback:  fallback,
		CreatedAt: msg.CreatedAt,
	}
	for _, content := range contents {
		switch content.Kind {
		case KindNutrition:
			result.HealthNutrition = content.Text
		case KindMedia:
			result.MediaSuggestions = content.Media
		case KindCookingGuide:
			result.CookingRecipe = content.RecipeTitle
		}
	}

	return result, nil
}

// History returns the user's last N turns, oldest first
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]*cooking.Message, error) {
	if _, err := s.loader.Load(ctx, userID); err != nil {
		return nil, err
	}
	return s.recorder.History(ctx, userID, limit)
}
