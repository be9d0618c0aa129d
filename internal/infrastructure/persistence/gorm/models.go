// Package gorm provides GORM model definitions and repository implementations
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel represents the GORM model for users
type UserModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Username     string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	IsActive     bool      `gorm:"default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Preference *PreferenceModel `gorm:"foreignKey:UserID"`
	Messages   []MessageModel   `gorm:"foreignKey:UserID"`
}

// TableName overrides the table name
func (UserModel) TableName() string { return "users" }

// PreferenceModel represents the GORM model for user preferences
type PreferenceModel struct {
	ID               uuid.UUID   `gorm:"type:char(36);primaryKey"`
	UserID           uuid.UUID   `gorm:"type:char(36);uniqueIndex;not null"`
	DietType         string      `gorm:"type:varchar(50)"`
	SpiceLevel       string      `gorm:"type:varchar(20)"`
	PreferredCuisine string      `gorm:"type:varchar(100)"`
	Language         string      `gorm:"type:varchar(10);default:'en'"`
	Allergies        StringSlice `gorm:"type:json"`
	CookingSkill     string      `gorm:"type:varchar(50)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName overrides the table name
func (PreferenceModel) TableName() string { return "user_preferences" }

// RecipeModel represents the GORM model for recipes
type RecipeModel struct {
	ID               uuid.UUID `gorm:"type:char(36);primaryKey"`
	Title            string    `gorm:"type:varchar(255);not null;index"`
	Description      string    `gorm:"type:text"`
	Ingredients      string    `gorm:"type:text"`
	Cuisine          string    `gorm:"type:varchar(50);index"`
	Difficulty       string    `gorm:"type:varchar(20);index"`
	TotalTimeMinutes int       `gorm:"column:total_time_minutes;default:0"`
	IsPublic         bool      `gorm:"default:true;index"`
	AuthorID         uuid.UUID `gorm:"type:char(36);index"`
	CreatedAt        time.Time `gorm:"index"`
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`

	Steps []CookingStepModel `gorm:"foreignKey:RecipeID"`
}

// TableName overrides the table name
func (RecipeModel) TableName() string { return "recipes" }

// CookingStepModel represents one ordered cooking instruction
type CookingStepModel struct {
	ID              uuid.UUID `gorm:"type:char(36);primaryKey"`
	RecipeID        uuid.UUID `gorm:"type:char(36);not null;index"`
	StepNumber      int       `gorm:"not null"`
	InstructionText string    `gorm:"type:text;not null"`
}

// TableName overrides the table name
func (CookingStepModel) TableName() string { return "cooking_steps" }

// MessageModel represents one recorded conversation turn
type MessageModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID `gorm:"type:char(36);not null;index"`
	UserMessage string    `gorm:"type:text;not null"`
	AIReply     string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"index"`
}

// TableName overrides the table name
func (MessageModel) TableName() string { return "messages" }

// StringSlice is a JSON-encoded string slice column
type StringSlice []string

// Value implements driver.Valuer
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringSlice: %T", value)
	}

	return json.Unmarshal(data, s)
}

// AutoMigrate runs schema migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&PreferenceModel{},
		&RecipeModel{},
		&CookingStepModel{},
		&MessageModel{},
	)
}
