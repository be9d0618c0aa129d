package chat

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mealsmith/api/internal/domain/cooking"
	"github.com/mealsmith/api/internal/ports/outbound"
)

// PreferenceContext is the per-request view of a user's cooking preferences.
// Built once at the start of an orchestration run and never mutated afterward.
type PreferenceContext struct {
	DisplayName      string
	DietType         string
	SpiceLevel       cooking.SpiceLevel
	PreferredCuisine string
	Language         cooking.Language
	Allergies        []string
	CookingSkill     string
}

// PreferenceLoader resolves a user id into a PreferenceContext
type PreferenceLoader struct {
	users  outbound.UserRepository
	logger *zap.Logger
}

// NewPreferenceLoader creates a preference loader
func NewPreferenceLoader(users outbound.UserRepository, logger *zap.Logger) *PreferenceLoader {
	return &PreferenceLoader{
		users:  users,
		logger: logger,
	}
}

// Load builds the preference context for a user. An unknown user is an error
// and aborts the run; a user without stored preferences gets defaults.
func (l *PreferenceLoader) Load(ctx context.Context, userID uuid.UUID) (*PreferenceContext, error) {
	user, err := l.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pc := &PreferenceContext{
		DisplayName: user.Name,
		DietType:    cooking.DefaultDietType,
		SpiceLevel:  cooking.DefaultSpiceLevel,
		Language:    cooking.DefaultLanguage,
	}
	if pc.DisplayName == "" {
		pc.DisplayName = user.Username
	}

	prefs, err := l.users.PreferencesByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		l.logger.Debug("no stored preferences, using defaults", zap.String("user_id", userID.String()))
		return pc, nil
	}

	if prefs.DietType != "" {
		pc.DietType = prefs.DietType
	}
	if prefs.SpiceLevel != "" {
		pc.SpiceLevel = prefs.SpiceLevel
	}
	if prefs.Language != "" {
		pc.Language = prefs.Language
	}
	pc.PreferredCuisine = prefs.PreferredCuisine
	pc.Allergies = prefs.Allergies
	pc.CookingSkill = prefs.CookingSkill

	return pc, nil
}
