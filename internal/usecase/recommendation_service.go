package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/iter"

	"github.com/fridgechef/backend/internal/domain"
	"github.com/fridgechef/backend/internal/metrics"
)

// Enrichment outcomes, used as metric labels.
const (
	enrichmentPublished   = "published"
	enrichmentEmpty       = "empty"
	enrichmentFailed      = "failed"
	enrichmentUnavailable = "unavailable"
)

// RecommendationServiceConfig holds configuration for the recommendation service
type RecommendationServiceConfig struct {
	MaxResults        int
	EnrichmentTimeout time.Duration
	Scoring           ScoringConfig
}

// Recommendation is the result of one synchronous recommendation pass.
type Recommendation struct {
	RequestID string                 `json:"requestId"`
	Recipes   []domain.RankedRecipe  `json:"recommendations"`
	Weather   domain.WeatherSnapshot `json:"weather"`
	Date      domain.DateInfo        `json:"date"`
}

// RecommendationService ranks recipes for the household and optionally enriches
// them asynchronously
type RecommendationService struct {
	pantry     domain.PantryStore
	weather    *WeatherService
	recipes    *RecipeSource
	images     *ImageResolver
	translator *IngredientTranslator
	notifier   domain.RecipeNotifier
	scorer     *Scorer
	config     RecommendationServiceConfig
	newID      func() string
	inflight   sync.WaitGroup
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// NewRecommendationService creates a recommendation service. recipes and notifier may be nil.
func NewRecommendationService(
	pantry domain.PantryStore,
	weather *WeatherService,
	recipes *RecipeSource,
	images *ImageResolver,
	translator *IngredientTranslator,
	notifier domain.RecipeNotifier,
	config RecommendationServiceConfig,
	m *metrics.Metrics,
	log zerolog.Logger,
) *RecommendationService {
	if config.MaxResults <= 0 {
		config.MaxResults = 3
	}
	if config.EnrichmentTimeout == 0 {
		config.EnrichmentTimeout = 30 * time.Second
	}

	return &RecommendationService{
		pantry:     pantry,
		weather:    weather,
		recipes:    recipes,
		images:     images,
		translator: translator,
		notifier:   notifier,
		scorer:     NewScorer(config.Scoring),
		config:     config,
		newID:      uuid.NewString,
		metrics:    m,
		log:        log.With().Str("component", "recommend").Logger(),
	}
}

// GetRecommendations returns the top-ranked recipes for the household.
func (s *RecommendationService) GetRecommendations(ctx context.Context, enableAsyncEnrichment bool) ([]domain.RankedRecipe, error) {
	rec, err := s.Recommend(ctx, enableAsyncEnrichment)
	if err != nil {
		return nil, err
	}
	return rec.Recipes, nil
}

// Recommend runs one recommendation pass.
// Flow: profile -> weather + candidate pool -> images -> filter -> score -> dedup -> top N.
// Only ErrNoUserProfile and pantry read errors are returned; provider failures fall back.
func (s *RecommendationService) Recommend(ctx context.Context, enableAsyncEnrichment bool) (*Recommendation, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRecommendation(time.Since(start).Seconds()) }()

	profile, err := s.pantry.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	if profile == nil {
		return nil, domain.ErrNoUserProfile
	}
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

	// Step 1-2: weather and external candidates in parallel
	var (
		weather  domain.WeatherSnapshot
		external []domain.Recipe
	)
	var wg conc.WaitGroup
	wg.Go(func() {
		weather = s.weather.GetWeather(ctx, profile.City)
	})
	if len(pantryNames) > 0 && s.recipes != nil {
		wg.Go(func() {
			external = s.searchExternal(ctx, pantryNames)
		})
	}
	wg.Wait()

	pool := MergeCandidates(BuiltinCatalog(), external)

	// Step 3: every candidate gets an image
	pool = s.annotateImages(ctx, pool)

	// Step 4-8: filter, score, exclude, sort, dedup
	filtered := FilterCandidates(pool, pantryNames, weather.Condition)
	ranked := DedupRanked(s.scorer.Rank(filtered, ScoringInput{
		Pantry:  pantryNames,
		Ratings: ratings,
		Profile: profile,
	}))

	// Step 9: top N, never an empty image
	if len(ranked) > s.config.MaxResults {
		ranked = ranked[:s.config.MaxResults]
	}
	for i := range ranked {
		if ranked[i].Image == "" {
			ranked[i].Image = s.images.Placeholder(ranked[i].Name, domain.CategoryRecipe)
		}
	}

	rec := &Recommendation{
		RequestID: s.newID(),
		Recipes:   ranked,
		Weather:   weather,
		Date:      s.weather.CurrentDate(),
	}

	s.log.Debug().
		Str("request_id", rec.RequestID).
		Int("pool", len(pool)).
		Int("filtered", len(filtered)).
		Int("returned", len(ranked)).
		Msg("recommendation pass complete")

	// Step 10: best-effort enrichment
	if enableAsyncEnrichment && len(pantryNames) > 0 {
		returned := make([]string, len(ranked))
		for i, r := range ranked {
			returned[i] = r.Name
		}
		s.startEnrichment(ctx, rec.RequestID, SuggestionRequest{
			Ingredients: pantryNames,
			Preferences: profile.Preferences,
			Weather:     weather,
		}, nonEmpty(profile.Allergies), returned)
	}

	return rec, nil
}

// Wait blocks until every in-flight enrichment pass has finished.
func (s *RecommendationService) Wait() {
	s.inflight.Wait()
}

func (s *RecommendationService) searchExternal(ctx context.Context, pantryNames []string) []domain.Recipe {
	names := pantryNames
	if s.translator != nil {
		names = s.translator.TranslateAll(pantryNames)
	}

	recipes, err := s.recipes.SearchByIngredients(ctx, names)
	if err != nil {
		s.log.Warn().Err(err).Msg("external recipe search failed, using built-in catalog only")
	}
	return recipes
}

// annotateImages resolves images for candidates that have none. A failing branch
// gets the placeholder and never affects its siblings.
func (s *RecommendationService) annotateImages(ctx context.Context, pool []domain.Recipe) []domain.Recipe {
	return iter.Map(pool, func(r *domain.Recipe) (out domain.Recipe) {
		out = *r
		if out.Image != "" {
			return out
		}
		defer func() {
			if p := recover(); p != nil {
				s.log.Warn().Interface("panic", p).Str("recipe", out.Name).Msg("image annotation panicked")
				out.Image = s.images.Placeholder(out.Name, domain.CategoryRecipe)
			}
		}()
		out.Image = s.images.Resolve(ctx, out.Name, domain.CategoryRecipe)
		return out
	})
}

func (s *RecommendationService) startEnrichment(
	ctx context.Context,
	requestID string,
	req SuggestionRequest,
	allergies []string,
	returned []string,
) {
	if s.recipes == nil || s.notifier == nil {
		s.metrics.Enrichment(enrichmentUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.EnrichmentTimeout)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()
		defer func() {
			if p := recover(); p != nil {
				s.metrics.Enrichment(enrichmentFailed)
				s.log.Error().Interface("panic", p).Str("request_id", requestID).Msg("enrichment panicked")
			}
		}()
		s.enrich(ctx, requestID, req, allergies, returned)
	}()
}

func (s *RecommendationService) enrich(
	ctx context.Context,
	requestID string,
	req SuggestionRequest,
	allergies []string,
	returned []string,
) {
	log := s.log.With().Str("request_id", requestID).Logger()

	suggestions, err := s.recipes.Suggest(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrProviderNotConfigured) {
			s.metrics.Enrichment(enrichmentUnavailable)
			log.Debug().Msg("enrichment unavailable")
			return
		}
		s.metrics.Enrichment(enrichmentFailed)
		log.Warn().Err(err).Msg("enrichment failed")
		return
	}

	fresh := make([]domain.Recipe, 0, len(suggestions))
	for _, r := range MergeCandidates(nil, suggestions) {
		if HasAllergen(r.Ingredients, allergies) || domain.MatchesAny(r.Name, returned) {
			continue
		}
		fresh = append(fresh, r)
	}
	if len(fresh) == 0 {
		s.metrics.Enrichment(enrichmentEmpty)
		log.Debug().Int("suggested", len(suggestions)).Msg("enrichment produced no new recipes")
		return
	}

	fresh = s.annotateImages(ctx, fresh)

	event := domain.GeneratedRecipesEvent{
		RequestID:   requestID,
		Recipes:     fresh,
		GeneratedAt: time.Now(),
	}
	if err := s.notifier.PublishGenerated(ctx, event); err != nil {
		s.metrics.Enrichment(enrichmentFailed)
		log.Warn().Err(err).Msg("failed to publish generated recipes")
		return
	}

	s.metrics.Enrichment(enrichmentPublished)
	log.Info().Int("recipes", len(fresh)).Msg("published generated recipes")
}
