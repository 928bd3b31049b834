package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/fridgechef/backend/internal/domain"
)

const (
	frequentMinRating = 4
	frequentLimit     = 5
)

// seasonalIngredients lists what is in season, by month.
var seasonalIngredients = map[int][]string{
	1:  {"무", "배추", "양배추", "당근"},
	2:  {"무", "배추", "양배추", "당근"},
	3:  {"시금치", "대파", "미나리"},
	4:  {"시금치", "대파", "미나리", "새싹채소"},
	5:  {"오이", "토마토", "상추", "시금치"},
	6:  {"오이", "토마토", "상추", "가지"},
	7:  {"오이", "토마토", "상추", "가지", "옥수수"},
	8:  {"오이", "토마토", "상추", "가지", "옥수수"},
	9:  {"고구마", "감자", "배추"},
	10: {"무", "배추", "양배추", "고구마"},
	11: {"무", "배추", "양배추", "당근"},
	12: {"무", "배추", "양배추", "당근"},
}

// SeasonalIngredients returns the in-season ingredients for month (1-12).
func SeasonalIngredients(month int) []string {
	return append([]string(nil), seasonalIngredients[month]...)
}

// ShoppingService builds shopping suggestions from ratings, pantry and season
type ShoppingService struct {
	pantry  domain.PantryStore
	weather *WeatherService
	log     zerolog.Logger
}

// NewShoppingService creates a new shopping service
func NewShoppingService(pantry domain.PantryStore, weather *WeatherService, log zerolog.Logger) *ShoppingService {
	return &ShoppingService{
		pantry:  pantry,
		weather: weather,
		log:     log.With().Str("component", "shopping").Logger(),
	}
}

// Suggestions returns frequently used, missing and seasonal ingredients.
func (s *ShoppingService) Suggestions(ctx context.Context) (*domain.ShoppingSuggestions, error) {
	ingredients, err := s.pantry.Ingredients(ctx)
	if err != nil {
		return nil, fmt.Errorf("read pantry: %w", err)
	}
	ratings, err := s.pantry.Ratings(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ratings: %w", err)
	}

	pantryNames := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		pantryNames = append(pantryNames, ing.Name)
	}
	pantryNames = nonEmpty(pantryNames)

	frequent := FrequentlyUsed(ratings, frequentLimit)
	missing := make([]string, 0, len(frequent))
	for _, ing := range frequent {
		if !domain.MatchesAny(ing, pantryNames) {
			missing = append(missing, ing)
		}
	}

	month := s.weather.CurrentDate().Month
	seasonal := make([]domain.SeasonalIngredient, 0)
	for _, name := range SeasonalIngredients(month) {
		seasonal = append(seasonal, domain.SeasonalIngredient{
			Name:  name,
			Owned: domain.MatchesAny(name, pantryNames),
		})
	}

	s.log.Debug().Int("frequent", len(frequent)).Int("missing", len(missing)).Int("month", month).Msg("built shopping suggestions")
	return &domain.ShoppingSuggestions{
		FrequentlyUsed: frequent,
		Missing:        missing,
		Month:          month,
		Seasonal:       seasonal,
	}, nil
}

// FrequentlyUsed counts ingredients of built-in recipes rated at least 4 stars,
// one count per rating, and returns the top limit. Ties keep first-seen order.
func FrequentlyUsed(ratings []domain.Rating, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, r := range ratings {
		if r.Rating < frequentMinRating {
			continue
		}
		recipe, ok := FindBuiltin(r.RecipeID)
		if !ok {
			continue
		}
		for _, ing := range recipe.Ingredients {
			if counts[ing] == 0 {
				order = append(order, ing)
			}
			counts[ing]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	if order == nil {
		order = []string{}
	}
	return order
}
