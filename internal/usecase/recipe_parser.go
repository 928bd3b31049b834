package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/fridgechef/backend/internal/domain"
)

const (
	defaultGeneratedCookingTime = 30
	maxGeneratedRecipes         = 3
)

var leadingNumberPattern = regexp.MustCompile(`\d+`)

// generatedRecipe is one entry of a model's {"recipes": [...]} answer.
type generatedRecipe struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CookingTime json.RawMessage `json:"cookingTime"`
	Difficulty  string          `json:"difficulty"`
	Ingredients []string        `json:"ingredients"`
	Steps       []string        `json:"steps"`
}

type generatedRecipes struct {
	Recipes []generatedRecipe `json:"recipes"`
}

// ExtractJSONObject returns the first balanced {...} object in text, skipping braces inside strings.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// parseGeneratedRecipes maps a free-text model answer to generated recipes.
// newID supplies the suffix for each "gen_" identifier.
func parseGeneratedRecipes(text string, newID func() string) ([]domain.Recipe, error) {
	object, ok := ExtractJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in answer", domain.ErrMalformedResponse)
	}

	var parsed generatedRecipes
	if err := json.Unmarshal([]byte(object), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	recipes := make([]domain.Recipe, 0, len(parsed.Recipes))
	for _, g := range parsed.Recipes {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			continue
		}
		recipes = append(recipes, domain.Recipe{
			ID:          "gen_" + newID(),
			Name:        name,
			CookingTime: parseCookingTime(g.CookingTime),
			Difficulty:  ParseDifficulty(g.Difficulty),
			Ingredients: nonEmpty(g.Ingredients),
			Steps:       nonEmpty(g.Steps),
			Description: strings.TrimSpace(g.Description),
			Provenance:  domain.ProvenanceGenerated,
		})
		if len(recipes) == maxGeneratedRecipes {
			break
		}
	}
	return recipes, nil
}

// parseCookingTime accepts 30, "30" or "30분".
func parseCookingTime(raw json.RawMessage) int {
	if len(raw) == 0 {
		return defaultGeneratedCookingTime
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if m := leadingNumberPattern.FindString(s); m != "" {
			if v, err := strconv.Atoi(m); err == nil && v > 0 {
				return v
			}
		}
	}
	return defaultGeneratedCookingTime
}

// ParseDifficulty maps Korean or English labels. Unknown labels are medium.
func ParseDifficulty(label string) domain.Difficulty {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "쉬움", "easy":
		return domain.DifficultyEasy
	case "어려움", "hard":
		return domain.DifficultyHard
	default:
		return domain.DifficultyMedium
	}
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
