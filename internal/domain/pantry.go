package domain

import "time"

// Ingredient is an item in the household pantry.
type Ingredient struct {
	ID    string `json:"id"`
	Name  string `json:"name" binding:"required"`
	Image string `json:"image,omitempty"`
}

// HouseholdSize is the coarse size category chosen during onboarding.
type HouseholdSize string

const (
	HouseholdSingle HouseholdSize = "single"
	HouseholdCouple HouseholdSize = "couple"
	HouseholdFamily HouseholdSize = "family"
)

// UserProfile holds the household settings used for scoring.
type UserProfile struct {
	City        string        `json:"city" binding:"required"`
	Household   HouseholdSize `json:"household"`
	Allergies   []string      `json:"allergies"`
	Preferences []string      `json:"preferences"`
}

// Rating is a 1-5 star review of a recipe.
type Rating struct {
	RecipeID  string    `json:"recipeId" binding:"required"`
	Rating    int       `json:"rating" binding:"required,min=1,max=5"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AverageRating returns the mean rating for a recipe and whether any rating exists.
func AverageRating(ratings []Rating, recipeID string) (float64, bool) {
	sum, n := 0, 0
	for _, r := range ratings {
		if r.RecipeID == recipeID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}
