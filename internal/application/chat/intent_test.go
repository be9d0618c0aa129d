package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntent_Greeting(t *testing.T) {
	flags := ClassifyIntent("hello")

	assert.True(t, flags.IsGreeting)
	assert.False(t, flags.WantsRecipe)
	assert.False(t, flags.WantsNutrition)
	assert.False(t, flags.WantsMedia)
	assert.False(t, flags.WantsCookingGuide)
}

func TestClassifyIntent_GreetingRequiresShortMessage(t *testing.T) {
	// A long sentence containing a greeting word is not a greeting
	flags := ClassifyIntent("hello there I would really love a good chicken curry recipe tonight")

	assert.False(t, flags.IsGreeting)
	assert.True(t, flags.WantsRecipe)
}

func TestClassifyIntent_GreetingWordInsideOtherWord(t *testing.T) {
	// "hi" inside "chicken" must not trigger the greeting flag
	flags := ClassifyIntent("spicy chicken")

	assert.False(t, flags.IsGreeting)
}

func TestClassifyIntent_EmptyInput(t *testing.T) {
	assert.Equal(t, IntentFlags{}, ClassifyIntent(""))
	assert.Equal(t, IntentFlags{}, ClassifyIntent("   "))
}

func TestClassifyIntent_MultipleFlags(t *testing.T) {
	flags := ClassifyIntent("show me a video of how to cook a healthy dinner recipe step by step")

	assert.True(t, flags.WantsRecipe)
	assert.True(t, flags.WantsNutrition)
	assert.True(t, flags.WantsMedia)
	assert.True(t, flags.WantsCookingGuide)
	assert.False(t, flags.IsGreeting)
}

func TestClassifyIntent_CaseInsensitive(t *testing.T) {
	assert.True(t, ClassifyIntent("HELLO").IsGreeting)
	assert.True(t, ClassifyIntent("Any RECIPE ideas?").WantsRecipe)
}

func TestClassifyIntent_IsPure(t *testing.T) {
	inputs := []string{
		"hello",
		"what's a quick spicy chicken recipe I can make",
		"Recipe ID 7, step 1",
		"how many calories in mohinga",
		"",
	}

	for _, input := range inputs {
		first := ClassifyIntent(input)
		// Interleave other calls to show results do not depend on call order
		ClassifyIntent("unrelated text about nothing")
		second := ClassifyIntent(input)

		assert.Equal(t, first, second, "classification of %q changed between calls", input)
	}
}

func TestClassifyIntent_CookingGuide(t *testing.T) {
	flags := ClassifyIntent("Recipe ID 7, step 1")

	assert.True(t, flags.WantsCookingGuide)
	assert.True(t, flags.WantsRecipe)
	assert.False(t, flags.IsGreeting)
}
