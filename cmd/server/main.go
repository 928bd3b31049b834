package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/fridgechef/backend/config"
	httpDelivery "github.com/fridgechef/backend/internal/delivery/http"
	"github.com/fridgechef/backend/internal/domain"
	"github.com/fridgechef/backend/internal/infrastructure/cache"
	"github.com/fridgechef/backend/internal/infrastructure/events"
	"github.com/fridgechef/backend/internal/infrastructure/mealdb"
	"github.com/fridgechef/backend/internal/infrastructure/openai"
	"github.com/fridgechef/backend/internal/infrastructure/openweather"
	"github.com/fridgechef/backend/internal/infrastructure/pantry"
	"github.com/fridgechef/backend/internal/infrastructure/photosearch"
	"github.com/fridgechef/backend/internal/infrastructure/probe"
	"github.com/fridgechef/backend/internal/logging"
	"github.com/fridgechef/backend/internal/metrics"
	"github.com/fridgechef/backend/internal/usecase"
)

const (
	eventBuffer     = 16
	limiterIdle     = time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Load configuration (.env, config.yaml, FRIDGECHEF_* env)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Msg("starting fridgechef backend v1.0.0")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

// caches bundles the typed caches used by the core
type caches struct {
	weather domain.Cache[domain.WeatherSnapshot]
	images  domain.Cache[domain.ImageCacheEntry]
	search  domain.Cache[[]domain.Recipe]
	details domain.Cache[domain.Recipe]
	close   func() error
}

func openCaches(cfg config.CacheConfig, log zerolog.Logger) (*caches, error) {
	if cfg.Type == "badger" {
		db, err := cache.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.BadgerPath).Msg("using badger cache")
		return badgerCaches(db), nil
	}

	weather := cache.NewMemoryCache[domain.WeatherSnapshot](nil)
	images := cache.NewMemoryCache[domain.ImageCacheEntry](nil)
	search := cache.NewMemoryCache[[]domain.Recipe](nil)
	details := cache.NewMemoryCache[domain.Recipe](nil)
	return &caches{
		weather: weather,
		images:  images,
		search:  search,
		details: details,
		close: func() error {
			weather.Close()
			images.Close()
			search.Close()
			details.Close()
			return nil
		},
	}, nil
}

func badgerCaches(db *badger.DB) *caches {
	return &caches{
		weather: cache.NewBadgerCache[domain.WeatherSnapshot](db, "weather/"),
		images:  cache.NewBadgerCache[domain.ImageCacheEntry](db, "image/"),
		search:  cache.NewBadgerCache[[]domain.Recipe](db, "recipes/"),
		details: cache.NewBadgerCache[domain.Recipe](db, "recipe/"),
		close:   db.Close,
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Infrastructure
	stores, err := openCaches(cfg.Cache, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.close(); err != nil {
			log.Error().Err(err).Msg("failed to close caches")
		}
	}()

	weatherClient := openweather.NewClient(cfg.Weather.APIKey, cfg.Weather.BaseURL, cfg.Weather.Timeout, log)
	openaiClient := openai.NewClient(openai.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		ChatModel:  cfg.OpenAI.ChatModel,
		ImageModel: cfg.OpenAI.ImageModel,
		Timeout:    cfg.OpenAI.Timeout,
	}, log)
	mealdbClient := mealdb.NewClient(cfg.MealDB.BaseURL, cfg.MealDB.Timeout, log)
	unsplash := photosearch.NewUnsplash(cfg.Photos.UnsplashAccessKey, cfg.Photos.UnsplashBaseURL, cfg.Photos.Timeout, log)
	pixabay := photosearch.NewPixabay(cfg.Photos.PixabayAPIKey, cfg.Photos.PixabayBaseURL, cfg.Photos.Timeout, log)
	prober := probe.New(cfg.Images.ProbeTimeout, log)

	logProvider(log, "openweather", weatherClient.Configured())
	logProvider(log, "openai", openaiClient.Configured())
	logProvider(log, "unsplash", unsplash.Configured())
	logProvider(log, "pixabay", pixabay.Configured())

	bus := events.NewBus(eventBuffer, log)
	defer func() {
		if err := bus.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close event bus")
		}
	}()

	store := pantry.NewMemoryStore()

	// Usecase layer
	weatherService := usecase.NewWeatherService(weatherClient, stores.weather, usecase.WeatherServiceConfig{
		CacheTTL: cfg.Weather.CacheTTL,
		Timeout:  cfg.Weather.Timeout,
	}, m, log)

	images := usecase.NewImageResolver(usecase.ImageResolverConfig{
		Generator:        openaiClient,
		RecipePhotos:     unsplash,
		IngredientPhotos: pixabay,
		Prober:           prober,
		PhotoTimeout:     cfg.Photos.Timeout,
	}, stores.images, m, log)

	recipes := usecase.NewRecipeSource(openaiClient, mealdbClient, images, stores.search, stores.details, usecase.RecipeSourceConfig{
		SearchTTL:            cfg.MealDB.CacheTTL,
		DetailTTL:            cfg.MealDB.CacheTTL,
		MaxIngredientQueries: cfg.MealDB.MaxIngredientQueries,
		MaxDetails:           cfg.MealDB.MaxDetails,
		QueryTimeout:         cfg.MealDB.Timeout,
		SearchTimeout:        cfg.OpenAI.SearchTimeout,
	}, m, log)

	var favored []string
	if len(cfg.Recommend.FavoredTerms) > 0 {
		favored = cfg.Recommend.FavoredTerms
	}
	recommender := usecase.NewRecommendationService(
		store,
		weatherService,
		recipes,
		images,
		usecase.NewIngredientTranslator(log),
		bus,
		usecase.RecommendationServiceConfig{
			MaxResults:        cfg.Recommend.MaxResults,
			EnrichmentTimeout: cfg.Recommend.EnrichmentTimeout,
			Scoring: usecase.ScoringConfig{
				FavoredTerms:      favored,
				FavoredWeight:     cfg.Recommend.FavoredWeight,
				PrimaryCuisineTag: cfg.Recommend.PrimaryCuisineTag,
				CuisineWeight:     cfg.Recommend.CuisineWeight,
				PreferenceWeight:  cfg.Recommend.PreferenceWeight,
			},
		},
		m,
		log,
	)
	shopping := usecase.NewShoppingService(store, weatherService, log)

	// Delivery
	limiter := httpDelivery.NewRateLimiter(cfg.RateLimit.PerIP)
	handler := httpDelivery.NewHandler(recommender, images, weatherService, shopping, store, bus, log)
	router := httpDelivery.SetupRouter(cfg, handler, httpDelivery.RouterOptions{
		Gatherer: registry,
		Limiter:  limiter,
		Log:      log,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go pruneLimiter(ctx, limiter)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	// Let in-flight enrichment publish before the bus closes
	recommender.Wait()
	return nil
}

func pruneLimiter(ctx context.Context, limiter *httpDelivery.RateLimiter) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			limiter.Prune(limiterIdle)
		case <-ctx.Done():
			return
		}
	}
}

func logProvider(log zerolog.Logger, name string, configured bool) {
	if configured {
		log.Info().Str("provider", name).Msg("provider configured")
		return
	}
	log.Warn().Str("provider", name).Msg("provider not configured, falling back")
}
