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

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db}
}

// FindByID finds a recipe by ID
func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*cooking.Recipe, error) {
	var model RecipeModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewRecipeNotFoundError(id.String())
		}
		return nil, apperrors.NewDatabaseError("find recipe", result.Error)
	}

	return modelToRecipe(&model), nil
}

// FindByIDs finds recipes by a set of IDs. Missing ids are silently skipped;
// callers use this for re-validation of cached references.
func (r *RecipeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*cooking.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []RecipeModel
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewDatabaseError("find recipes by ids", result.Error)
	}

	recipes := make([]*cooking.Recipe, 0, len(models))
	for i := range models {
		recipes = append(recipes, modelToRecipe(&models[i]))
	}
	return recipes, nil
}

// Query returns recipes matching the filter in storage order
func (r *RecipeRepository) Query(ctx context.Context, filter outbound.RecipeFilter) ([]*cooking.Recipe, error) {
	query := r.db.WithContext(ctx).Model(&RecipeModel{})

	for _, kw := range filter.DietKeywords {
		query = query.Where("lower(description) LIKE ?", "%"+kw+"%")
	}
	for _, kw := range filter.ExcludeKeywords {
		query = query.Where("lower(description) NOT LIKE ?", "%"+kw+"%")
	}
	if filter.Cuisine != "" {
		query = query.Where("lower(cuisine) LIKE ?", "%"+filter.Cuisine+"%")
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.MaxTotalTime > 0 {
		query = query.Where("total_time_minutes <= ?", filter.MaxTotalTime)
	}
	if filter.PublicOnly {
		query = query.Where("is_public = ?", true)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var models []RecipeModel
	if result := query.Find(&models); result.Error != nil {
		return nil, apperrors.NewDatabaseError("query recipes", result.Error)
	}

	recipes := make([]*cooking.Recipe, 0, len(models))
	for i := range models {
		recipes = append(recipes, modelToRecipe(&models[i]))
	}
	return recipes, nil
}

// Steps returns a recipe's cooking steps ordered by step number
func (r *RecipeRepository) Steps(ctx context.Context, recipeID uuid.UUID) ([]cooking.CookingStep, error) {
	var models []CookingStepModel

	result := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("step_number ASC").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewDatabaseError("load cooking steps", result.Error)
	}

	steps := make([]cooking.CookingStep, 0, len(models))
	for _, m := range models {
		steps = append(steps, cooking.CookingStep{
			RecipeID:        m.RecipeID,
			StepNumber:      m.StepNumber,
			InstructionText: m.InstructionText,
		})
	}
	return steps, nil
}

func modelToRecipe(model *RecipeModel) *cooking.Recipe {
	return &cooking.Recipe{
		ID:               model.ID,
		Title:            model.Title,
		Description:      model.Description,
		Ingredients:      model.Ingredients,
		Cuisine:          model.Cuisine,
		Difficulty:       model.Difficulty,
		TotalTimeMinutes: model.TotalTimeMinutes,
		IsPublic:         model.IsPublic,
		AuthorID:         model.AuthorID,
		CreatedAt:        model.CreatedAt,
	}
}
