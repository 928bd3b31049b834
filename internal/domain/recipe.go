package domain

// Difficulty is the estimated effort needed to cook a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Provenance records where a recipe came from.
type Provenance string

const (
	ProvenanceBuiltin   Provenance = "builtin"
	ProvenanceExternal  Provenance = "external"
	ProvenanceGenerated Provenance = "generated"
)

// Recipe is a candidate dish. Built-in recipes use small numeric IDs ("1", "2", ...);
// external and generated recipes use namespaced IDs ("mealdb_52772", "gen_<uuid>").
type Recipe struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Image       string     `json:"image,omitempty"`
	CookingTime int        `json:"cookingTime"` // minutes
	Difficulty  Difficulty `json:"difficulty"`
	Ingredients []string   `json:"ingredients"`
	Steps       []string   `json:"steps"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Weather     []string   `json:"weather,omitempty"` // empty means every condition
	Provenance  Provenance `json:"provenance"`
}

// HasTag reports whether the recipe carries the tag (case-insensitive equality).
func (r *Recipe) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if equalFold(t, tag) {
			return true
		}
	}
	return false
}

// AllowsWeather reports whether the recipe may be served under the given condition.
func (r *Recipe) AllowsWeather(condition string) bool {
	if len(r.Weather) == 0 {
		return true
	}
	for _, w := range r.Weather {
		if w == condition {
			return true
		}
	}
	return false
}

// RankedRecipe pairs a recipe with the score computed for it in a single
// recommendation pass. The score is never written back to the Recipe.
type RankedRecipe struct {
	Recipe
	Score float64 `json:"score"`
}
