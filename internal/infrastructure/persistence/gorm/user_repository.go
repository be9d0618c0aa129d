package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mealsmith/api/internal/domain/cooking"
	"github.com/mealsmith/api/internal/ports/outbound"
	apperrors "github.com/mealsmith/api/pkg/errors"
	"gorm.io/gorm"
)

// UserRepository implements the user repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) outbound.UserRepository {
	return &UserRepository{db: db}
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*cooking.User, error) {
	var model UserModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewUserNotFoundError(id.String())
		}
		return nil, apperrors.NewDatabaseError("find user", result.Error)
	}

	return modelToUser(&model), nil
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*cooking.User, error) {
	var model UserModel

	result := r.db.WithContext(ctx).First(&model, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewUserNotFoundError(email)
		}
		return nil, apperrors.NewDatabaseError("find user by email", result.Error)
	}

	return modelToUser(&model), nil
}

// PreferencesByUserID returns the user's stored preferences, or (nil, nil)
// when none exist.
func (r *UserRepository) PreferencesByUserID(ctx context.Context, userID uuid.UUID) (*cooking.Preferences, error) {
	var model PreferenceModel

	result := r.db.WithContext(ctx).First(&model, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("find preferences", result.Error)
	}

	return &cooking.Preferences{
		UserID:           model.UserID,
		DietType:         model.DietType,
		SpiceLevel:       cooking.SpiceLevel(model.SpiceLevel),
		PreferredCuisine: model.PreferredCuisine,
		Language:         cooking.Language(model.Language),
		Allergies:        model.Allergies,
		CookingSkill:     model.CookingSkill,
	}, nil
}

func modelToUser(model *UserModel) *cooking.User {
	return &cooking.User{
		ID:           model.ID,
		Username:     model.Username,
		Name:         model.Name,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		IsActive:     model.IsActive,
		CreatedAt:    model.CreatedAt,
	}
}
