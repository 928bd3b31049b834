package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"

	"github.com/fridgechef/backend/internal/domain"
	"github.com/fridgechef/backend/internal/metrics"
)

// RecipeSourceConfig holds configuration for the external recipe source
type RecipeSourceConfig struct {
	SearchTTL            time.Duration
	DetailTTL            time.Duration
	MaxIngredientQueries int
	MaxDetails           int
	QueryTimeout         time.Duration
	SearchTimeout        time.Duration
}

// RecipeSource expands the candidate pool from a generative model and a recipe database.
type RecipeSource struct {
	chat        domain.ChatProvider
	db          domain.RecipeDatabase
	images      *ImageResolver
	searchCache domain.Cache[[]domain.Recipe]
	detailCache domain.Cache[domain.Recipe]
	config      RecipeSourceConfig
	newID       func() string
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

// NewRecipeSource creates a recipe source. chat and db may be nil.
func NewRecipeSource(
	chat domain.ChatProvider,
	db domain.RecipeDatabase,
	images *ImageResolver,
	searchCache domain.Cache[[]domain.Recipe],
	detailCache domain.Cache[domain.Recipe],
	config RecipeSourceConfig,
	m *metrics.Metrics,
	log zerolog.Logger,
) *RecipeSource {
	if config.SearchTTL == 0 {
		config.SearchTTL = 24 * time.Hour
	}
	if config.DetailTTL == 0 {
		config.DetailTTL = 24 * time.Hour
	}
	if config.MaxIngredientQueries <= 0 {
		config.MaxIngredientQueries = 5
	}
	if config.MaxDetails <= 0 {
		config.MaxDetails = 10
	}
	if config.QueryTimeout == 0 {
		config.QueryTimeout = 5 * time.Second
	}
	if config.SearchTimeout == 0 {
		config.SearchTimeout = 5 * time.Second
	}

	return &RecipeSource{
		chat:        chat,
		db:          db,
		images:      images,
		searchCache: searchCache,
		detailCache: detailCache,
		config:      config,
		newID:       uuid.NewString,
		metrics:     m,
		log:         log.With().Str("component", "recipe_source").Logger(),
	}
}

// SearchByIngredients returns recipes that use the given ingredient names.
// Flow: check cache -> generative tier -> database tier -> cache non-empty -> return.
// An error is returned only when every available tier failed. Provider calls
// ignore ctx cancellation and rely on their own timeouts, so a caller that goes
// away cannot leave a partial result in the cache.
func (s *RecipeSource) SearchByIngredients(ctx context.Context, names []string) ([]domain.Recipe, error) {
	names = nonEmpty(names)
	if len(names) == 0 {
		return []domain.Recipe{}, nil
	}
	ctx = context.WithoutCancel(ctx)

	cacheKey := searchCacheKey(names)
	if cached, err := s.searchCache.Get(ctx, cacheKey); err == nil {
		return cloneRecipes(cached), nil
	}

	var tierErrs []error

	recipes, err := s.searchGenerative(ctx, names)
	switch {
	case err == nil && len(recipes) > 0:
		s.store(ctx, cacheKey, recipes)
		return recipes, nil
	case err != nil && !errors.Is(err, domain.ErrProviderNotConfigured):
		s.metrics.ProviderFailed("openai")
		s.logTierError("generative", err)
		tierErrs = append(tierErrs, err)
	}

	recipes, err = s.searchDatabase(ctx, names)
	switch {
	case err == nil:
		s.store(ctx, cacheKey, recipes)
		return recipes, nil
	case !errors.Is(err, domain.ErrProviderNotConfigured):
		s.metrics.ProviderFailed("mealdb")
		s.logTierError("database", err)
		tierErrs = append(tierErrs, err)
	}

	return []domain.Recipe{}, errors.Join(tierErrs...)
}

func (s *RecipeSource) logTierError(tier string, err error) {
	if domain.IsFallbackError(err) {
		s.log.Warn().Err(err).Str("tier", tier).Msg("recipe search tier failed")
		return
	}
	s.log.Error().Err(err).Str("tier", tier).Msg("unexpected recipe search error")
}

// Suggest asks the generative model for extra recipes given the household context.
func (s *RecipeSource) Suggest(ctx context.Context, req SuggestionRequest) ([]domain.Recipe, error) {
	if s.chat == nil || !s.chat.Configured() {
		return nil, domain.ErrProviderNotConfigured
	}

	answer, err := s.chat.Complete(ctx, suggestionSystemPrompt, buildSuggestionPrompt(req))
	if err != nil {
		return nil, err
	}
	return parseGeneratedRecipes(answer, s.newID)
}

func (s *RecipeSource) searchGenerative(ctx context.Context, names []string) ([]domain.Recipe, error) {
	if s.chat == nil || !s.chat.Configured() {
		return nil, domain.ErrProviderNotConfigured
	}

	cctx, cancel := context.WithTimeout(ctx, s.config.SearchTimeout)
	answer, err := s.chat.Complete(cctx, searchSystemPrompt, buildSearchPrompt(names))
	cancel()
	if err != nil {
		return nil, err
	}

	recipes, err := parseGeneratedRecipes(answer, s.newID)
	if err != nil {
		return nil, err
	}

	if s.images != nil {
		recipeNames := make([]string, len(recipes))
		for i, r := range recipes {
			recipeNames[i] = r.Name
		}
		for i, ref := range s.images.ResolveMany(ctx, recipeNames, domain.CategoryRecipe) {
			recipes[i].Image = ref
		}
	}
	return recipes, nil
}

type filterOutcome struct {
	meals []domain.MealSummary
	err   error
}

func (s *RecipeSource) searchDatabase(ctx context.Context, names []string) ([]domain.Recipe, error) {
	if s.db == nil {
		return nil, domain.ErrProviderNotConfigured
	}

	queries := names
	if len(queries) > s.config.MaxIngredientQueries {
		queries = queries[:s.config.MaxIngredientQueries]
	}

	outcomes := iter.Map(queries, func(ingredient *string) filterOutcome {
		qctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
		defer cancel()
		meals, err := s.db.FilterByIngredient(qctx, *ingredient)
		return filterOutcome{meals: meals, err: err}
	})

	// Merge by provider ID, first occurrence wins.
	seen := make(map[string]bool)
	var merged []domain.MealSummary
	var failures []error
	for i, o := range outcomes {
		if o.err != nil {
			s.log.Warn().Err(o.err).Str("ingredient", queries[i]).Msg("ingredient filter failed")
			failures = append(failures, o.err)
			continue
		}
		for _, m := range o.meals {
			if m.ID == "" || seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			merged = append(merged, m)
		}
	}
	if len(failures) == len(queries) {
		return nil, fmt.Errorf("every ingredient query failed: %w", errors.Join(failures...))
	}

	if len(merged) > s.config.MaxDetails {
		merged = merged[:s.config.MaxDetails]
	}

	details := iter.Map(merged, func(m *domain.MealSummary) *domain.Recipe {
		r, err := s.lookupDetail(ctx, m.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("meal_id", m.ID).Msg("meal lookup failed")
			return nil
		}
		if r.Image == "" {
			r.Image = m.Thumb
		}
		return r
	})

	recipes := make([]domain.Recipe, 0, len(details))
	for _, r := range details {
		if r != nil {
			recipes = append(recipes, *r)
		}
	}
	return recipes, nil
}

func (s *RecipeSource) lookupDetail(ctx context.Context, id string) (*domain.Recipe, error) {
	cacheKey := "detail:" + id
	if cached, err := s.detailCache.Get(ctx, cacheKey); err == nil {
		r := cloneRecipe(cached)
		return &r, nil
	}

	qctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	r, err := s.db.Lookup(qctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.detailCache.Set(ctx, cacheKey, *r, s.config.DetailTTL); err != nil {
		s.log.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache meal detail")
	}
	return r, nil
}

func (s *RecipeSource) store(ctx context.Context, key string, recipes []domain.Recipe) {
	if len(recipes) == 0 {
		return
	}
	if err := s.searchCache.Set(ctx, key, cloneRecipes(recipes), s.config.SearchTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache recipe search")
	}
}

// searchCacheKey is order-insensitive over the ingredient set.
func searchCacheKey(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return "search:" + strings.Join(sorted, ",")
}

func cloneRecipes(in []domain.Recipe) []domain.Recipe {
	out := make([]domain.Recipe, len(in))
	for i, r := range in {
		out[i] = cloneRecipe(r)
	}
	return out
}
