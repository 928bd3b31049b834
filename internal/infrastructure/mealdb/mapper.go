package mealdb

import (
	"fmt"
	"strings"

	"github.com/fridgechef/backend/internal/domain"
)

const (
	// maxIngredientSlots is the number of strIngredientN fields on a meal.
	maxIngredientSlots = 20
	// maxCookingTime caps the estimated cooking time in minutes.
	maxCookingTime = 120
	// placeholderStep is used when a meal has no instructions.
	placeholderStep = "레시피 상세 정보를 확인해주세요."
)

// Meal is a raw lookup.php meal object. Values may be null.
type Meal map[string]any

func (m Meal) str(key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// MapToRecipe converts a TheMealDB meal into a Recipe with external provenance.
func MapToRecipe(m Meal) *domain.Recipe {
	ingredients := extractIngredients(m)
	steps := splitInstructions(m.str("strInstructions"))
	if len(steps) == 0 {
		steps = []string{placeholderStep}
	}

	var tags []string
	for _, t := range []string{m.str("strCategory"), m.str("strArea")} {
		if t != "" {
			tags = append(tags, t)
		}
	}
	for _, t := range strings.Split(m.str("strTags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	var description string
	if area := m.str("strArea"); area != "" {
		description = area + " 요리"
	}

	return &domain.Recipe{
		ID:          "mealdb_" + m.str("idMeal"),
		Name:        m.str("strMeal"),
		Image:       m.str("strMealThumb"),
		CookingTime: EstimateCookingTime(len(steps), len(ingredients)),
		Difficulty:  EstimateDifficulty(len(steps), len(ingredients)),
		Ingredients: ingredients,
		Steps:       steps,
		Description: description,
		Tags:        tags,
		Provenance:  domain.ProvenanceExternal,
	}
}

// extractIngredients reads strIngredient1..20, skipping blanks.
func extractIngredients(m Meal) []string {
	ingredients := make([]string, 0, maxIngredientSlots)
	for i := 1; i <= maxIngredientSlots; i++ {
		if v := m.str(fmt.Sprintf("strIngredient%d", i)); v != "" {
			ingredients = append(ingredients, v)
		}
	}
	return ingredients
}

func splitInstructions(text string) []string {
	var steps []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			steps = append(steps, line)
		}
	}
	return steps
}

// EstimateCookingTime derives minutes from recipe size.
func EstimateCookingTime(steps, ingredients int) int {
	return min(15+2*steps+ingredients, maxCookingTime)
}

// EstimateDifficulty buckets a recipe by the combined count of steps and ingredients.
func EstimateDifficulty(steps, ingredients int) domain.Difficulty {
	switch n := steps + ingredients; {
	case n <= 5:
		return domain.DifficultyEasy
	case n <= 10:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyHard
	}
}
