// Package cooking defines the domain types shared across the assistant pipeline
package cooking

import (
	"time"

	"github.com/google/uuid"
)

// SpiceLevel represents a user's spice tolerance
type SpiceLevel string

const (
	SpiceLevelLow    SpiceLevel = "low"
	SpiceLevelMedium SpiceLevel = "medium"
	SpiceLevelHigh   SpiceLevel = "high"
)

// Language represents a supported reply language
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageBurmese Language = "my"
)

// Default preference values applied when a user has no stored preferences
const (
	DefaultDietType   = "omnivore"
	DefaultSpiceLevel = SpiceLevelMedium
	DefaultLanguage   = LanguageEnglish
)

// User represents a registered user
type User struct {
	ID           uuid.UUID
	Username     string
	Name         string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// Preferences holds a user's stored cooking preferences.
// Any field may be empty; defaults are applied when building a PreferenceContext.
type Preferences struct {
	UserID           uuid.UUID
	DietType         string
	SpiceLevel       SpiceLevel
	PreferredCuisine string
	Language         Language
	Allergies        []string
	CookingSkill     string
}

// Recipe represents a stored recipe
type Recipe struct {
	ID               uuid.UUID
	Title            string
	Description      string
	Ingredients      string
	Cuisine          string
	Difficulty       string
	TotalTimeMinutes int
	IsPublic         bool
	AuthorID         uuid.UUID
	CreatedAt        time.Time
}

// CookingStep is one ordered instruction of a recipe
type CookingStep struct {
	RecipeID        uuid.UUID
	StepNumber      int
	InstructionText string
}

// Message is one recorded conversation turn: the user's message and the
// assistant's reply. Append-only; never mutated after creation.
type Message struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	UserMessage string
	AIReply     string
	CreatedAt   time.Time
}

// NewMessage creates a conversation turn with a generated id
func NewMessage(userID uuid.UUID, userMessage, aiReply string) *Message {
	return &Message{
		ID:          uuid.New(),
		UserID:      userID,
		UserMessage: userMessage,
		AIReply:     aiReply,
		CreatedAt:   time.Now().UTC(),
	}
}
