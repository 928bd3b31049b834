package usecase

import (
	"sort"
	"strings"

	"github.com/fridgechef/backend/internal/domain"
)

// Fixed scoring terms
const (
	ratingMultiplier = 10.0   // Average star rating x10
	coverageWeight   = 20.0   // Full pantry coverage
	allergyScore     = -100.0 // Forced score for any allergen match
)

// Default tunable weights
const (
	defaultFavoredWeight     = 15.0
	defaultPrimaryCuisineTag = "한식"
	defaultCuisineWeight     = 10.0
	defaultPreferenceWeight  = 5.0
)

// defaultFavoredTerms are dishes households ask for most often.
var defaultFavoredTerms = []string{
	// Soups and stews
	"김치찌개", "된장찌개", "순두부찌개", "부대찌개", "갈비탕", "설렁탕", "미역국",
	// Rice
	"비빔밥", "김치볶음밥", "볶음밥", "주먹밥",
	// Meat
	"불고기", "삼겹살", "갈비", "제육볶음",
	// Quick dishes
	"계란말이", "계란후라이", "계란찜", "두부조림", "나물",
	// Noodles
	"라면", "짜장면", "비빔국수",
	// Snacks
	"떡볶이", "순대", "어묵",
}

// ScoringConfig holds the tunable scoring weights
type ScoringConfig struct {
	FavoredTerms      []string
	FavoredWeight     float64
	PrimaryCuisineTag string
	CuisineWeight     float64
	PreferenceWeight  float64
}

// ScoringInput is the household state a scoring pass reads.
type ScoringInput struct {
	Pantry  []string
	Ratings []domain.Rating
	Profile *domain.UserProfile
}

// Scorer ranks candidates for one recommendation pass
type Scorer struct {
	config ScoringConfig
}

// NewScorer creates a scorer, filling unset weights with defaults
func NewScorer(config ScoringConfig) *Scorer {
	if config.FavoredTerms == nil {
		config.FavoredTerms = defaultFavoredTerms
	}
	if config.FavoredWeight == 0 {
		config.FavoredWeight = defaultFavoredWeight
	}
	if config.PrimaryCuisineTag == "" {
		config.PrimaryCuisineTag = defaultPrimaryCuisineTag
	}
	if config.CuisineWeight == 0 {
		config.CuisineWeight = defaultCuisineWeight
	}
	if config.PreferenceWeight == 0 {
		config.PreferenceWeight = defaultPreferenceWeight
	}
	return &Scorer{config: config}
}

// Score computes one candidate's score. Allergen matches force allergyScore.
func (s *Scorer) Score(recipe *domain.Recipe, in ScoringInput) float64 {
	var allergies, preferences []string
	if in.Profile != nil {
		allergies = nonEmpty(in.Profile.Allergies)
		preferences = nonEmpty(in.Profile.Preferences)
	}

	if HasAllergen(recipe.Ingredients, allergies) {
		return allergyScore
	}

	score := 0.0

	// Rating: average x10, 0 when unrated
	if avg, ok := domain.AverageRating(in.Ratings, recipe.ID); ok {
		score += avg * ratingMultiplier
	}

	// Culturally favored dish names
	if domain.MatchesAny(recipe.Name, nonEmpty(s.config.FavoredTerms)) {
		score += s.config.FavoredWeight
	}

	// Primary cuisine tag
	if recipe.HasTag(s.config.PrimaryCuisineTag) {
		score += s.config.CuisineWeight
	}

	// Each taste preference the recipe also carries as a tag
	for _, p := range preferences {
		if recipe.HasTag(p) {
			score += s.config.PreferenceWeight
		}
	}

	// Pantry coverage
	score += CoverageRatio(recipe.Ingredients, in.Pantry) * coverageWeight

	return score
}

// Rank scores candidates, drops negative scores and sorts descending.
// Ties keep their input order.
func (s *Scorer) Rank(candidates []domain.Recipe, in ScoringInput) []domain.RankedRecipe {
	ranked := make([]domain.RankedRecipe, 0, len(candidates))
	for i := range candidates {
		score := s.Score(&candidates[i], in)
		if score < 0 {
			continue
		}
		ranked = append(ranked, domain.RankedRecipe{Recipe: candidates[i], Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// FilterCandidates keeps recipes that use at least one pantry item and allow the
// current weather condition.
func FilterCandidates(candidates []domain.Recipe, pantry []string, condition string) []domain.Recipe {
	pantry = nonEmpty(pantry)
	out := make([]domain.Recipe, 0, len(candidates))
	for _, r := range candidates {
		if !usesPantry(r.Ingredients, pantry) {
			continue
		}
		if !r.AllowsWeather(condition) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func usesPantry(ingredients, pantry []string) bool {
	for _, ing := range ingredients {
		if domain.MatchesAny(ing, pantry) {
			return true
		}
	}
	return false
}

// CoverageRatio is the share of ingredients found in the pantry, in [0, 1].
// A recipe with no ingredients has coverage 0.
func CoverageRatio(ingredients, pantry []string) float64 {
	if len(ingredients) == 0 {
		return 0
	}
	pantry = nonEmpty(pantry)
	matched := 0
	for _, ing := range ingredients {
		if domain.MatchesAny(ing, pantry) {
			matched++
		}
	}
	return float64(matched) / float64(len(ingredients))
}

// HasAllergen reports whether any ingredient matches any allergy term.
func HasAllergen(ingredients, allergies []string) bool {
	for _, ing := range ingredients {
		if domain.MatchesAny(ing, allergies) {
			return true
		}
	}
	return false
}

// MergeCandidates appends incoming recipes whose names match no name already in
// the pool, checking each against the pool as it grows.
func MergeCandidates(pool, incoming []domain.Recipe) []domain.Recipe {
	names := make([]string, 0, len(pool)+len(incoming))
	for _, r := range pool {
		if strings.TrimSpace(r.Name) != "" {
			names = append(names, r.Name)
		}
	}

	merged := append([]domain.Recipe(nil), pool...)
	for _, r := range incoming {
		if strings.TrimSpace(r.Name) == "" || domain.MatchesAny(r.Name, names) {
			continue
		}
		names = append(names, r.Name)
		merged = append(merged, r)
	}
	return merged
}

// DedupRanked keeps the first occurrence of each name in ranked order.
// Unnamed recipes are kept and never block others.
func DedupRanked(ranked []domain.RankedRecipe) []domain.RankedRecipe {
	kept := make([]domain.RankedRecipe, 0, len(ranked))
	names := make([]string, 0, len(ranked))
	for _, r := range ranked {
		if strings.TrimSpace(r.Name) == "" {
			kept = append(kept, r)
			continue
		}
		if domain.MatchesAny(r.Name, names) {
			continue
		}
		names = append(names, r.Name)
		kept = append(kept, r)
	}
	return kept
}
