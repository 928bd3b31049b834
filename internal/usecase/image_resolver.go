package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"

	"github.com/fridgechef/backend/internal/domain"
	"github.com/fridgechef/backend/internal/metrics"
)

// Resolver tier names, used as cache diagnostics and metric labels.
const (
	TierLocal       = "local"
	TierGenerative  = "generative"
	TierPhotoSearch = "photo_search"
	TierDummyImage  = "dummyimage"
	TierPicsum      = "picsum"
	TierTerminal    = "terminal"
	TierCache       = "cache"
)

// placeholderPalette holds the background colours indexed by name hash.
var placeholderPalette = []string{"4CAF50", "2196F3", "FF9800", "9C27B0", "F44336", "00BCD4"}

const placeholderTextColor = "ffffff"

// localAsset is a bundled image for a known subject.
type localAsset struct {
	name string
	path string
}

// localAssets are checked in order: exact name first, then containment.
var localAssets = map[domain.ImageCategory][]localAsset{
	domain.CategoryRecipe: {
		{"계란말이", "/img/계란말이.jpg"},
		{"김치볶음밥", "/img/김치볶음밥.jpg"},
	},
	domain.CategoryIngredient: {
		{"감자", "/img/감자.jpg"},
		{"계란", "/img/계란.jpg"},
		{"당근", "/img/당근.jpg"},
	},
}

// ImageStrategy is one tier of the image resolution chain.
// Attempt returns a usable reference or an error; any error moves on to the next tier.
type ImageStrategy interface {
	Name() string
	Attempt(ctx context.Context, subject string, category domain.ImageCategory) (string, error)
}

// ImageResolverConfig holds the collaborators for each resolver tier. Nil providers skip their tier.
type ImageResolverConfig struct {
	Generator        domain.ImageGenerator
	RecipePhotos     domain.PhotoSearcher
	IngredientPhotos domain.PhotoSearcher
	Prober           domain.ImageProber
	PhotoTimeout     time.Duration
}

// ImageResolver returns an image reference for any subject and never fails
type ImageResolver struct {
	strategies []ImageStrategy
	cache      domain.Cache[domain.ImageCacheEntry]
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// NewImageResolver builds the default chain: local -> generative -> photo search ->
// probed dummyimage -> probed picsum, with the unprobed terminal placeholder after it.
func NewImageResolver(
	config ImageResolverConfig,
	cache domain.Cache[domain.ImageCacheEntry],
	m *metrics.Metrics,
	log zerolog.Logger,
) *ImageResolver {
	photoTimeout := config.PhotoTimeout
	if photoTimeout == 0 {
		photoTimeout = 5 * time.Second
	}

	strategies := []ImageStrategy{localAssetStrategy{}}
	if config.Generator != nil {
		strategies = append(strategies, generativeImageStrategy{generator: config.Generator})
	}
	if config.RecipePhotos != nil || config.IngredientPhotos != nil {
		strategies = append(strategies, photoSearchStrategy{
			recipes:     config.RecipePhotos,
			ingredients: config.IngredientPhotos,
			timeout:     photoTimeout,
		})
	}
	if config.Prober != nil {
		strategies = append(strategies,
			probedPlaceholderStrategy{name: TierDummyImage, build: DummyImageURL, prober: config.Prober},
			probedPlaceholderStrategy{name: TierPicsum, build: PicsumURL, prober: config.Prober},
		)
	}

	return NewImageResolverWithStrategies(strategies, cache, m, log)
}

// NewImageResolverWithStrategies creates a resolver over an explicit strategy list.
func NewImageResolverWithStrategies(
	strategies []ImageStrategy,
	cache domain.Cache[domain.ImageCacheEntry],
	m *metrics.Metrics,
	log zerolog.Logger,
) *ImageResolver {
	return &ImageResolver{
		strategies: strategies,
		cache:      cache,
		metrics:    m,
		log:        log.With().Str("component", "image_resolver").Logger(),
	}
}

// Resolve returns a non-empty image reference for subject.
// Flow: check cache -> each tier in order -> recheck cache -> store -> return.
// When every tier fails the terminal placeholder is returned and nothing is cached.
// Tiers run under their own timeouts and ignore ctx cancellation.
func (r *ImageResolver) Resolve(ctx context.Context, subject string, category domain.ImageCategory) string {
	cacheKey := domain.ImageCacheKey(subject, category)
	ctx = context.WithoutCancel(ctx)

	if entry, err := r.cache.Get(ctx, cacheKey); err == nil && entry.Reference != "" {
		r.metrics.ImageResolved(TierCache)
		return entry.Reference
	}

	for _, strategy := range r.strategies {
		ref, err := r.attempt(ctx, strategy, subject, category)
		if err != nil {
			r.logTierError(strategy.Name(), subject, err)
			continue
		}
		if ref == "" {
			continue
		}

		// Another caller may have resolved the same key while we were waiting.
		if entry, err := r.cache.Get(ctx, cacheKey); err == nil && entry.Reference != "" {
			return entry.Reference
		}

		entry := domain.ImageCacheEntry{Key: cacheKey, Reference: ref, Tier: strategy.Name()}
		if err := r.cache.Set(ctx, cacheKey, entry, 0); err != nil {
			r.log.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache image")
		}
		r.metrics.ImageResolved(strategy.Name())
		return ref
	}

	r.metrics.ImageResolved(TierTerminal)
	return TerminalPlaceholderURL(subject, category)
}

// ResolveMany resolves every subject concurrently, preserving order.
func (r *ImageResolver) ResolveMany(ctx context.Context, subjects []string, category domain.ImageCategory) []string {
	return iter.Map(subjects, func(subject *string) string {
		return r.Resolve(ctx, *subject, category)
	})
}

// Placeholder returns the deterministic hash-coloured placeholder without probing.
func (r *ImageResolver) Placeholder(subject string, category domain.ImageCategory) string {
	return DummyImageURL(subject, category)
}

// attempt runs one tier, turning a panic into a provider failure.
func (r *ImageResolver) attempt(
	ctx context.Context,
	strategy ImageStrategy,
	subject string,
	category domain.ImageCategory,
) (ref string, err error) {
	defer func() {
		if p := recover(); p != nil {
			ref = ""
			err = fmt.Errorf("%w: %s panicked: %v", domain.ErrProviderFailure, strategy.Name(), p)
		}
	}()
	return strategy.Attempt(ctx, subject, category)
}

func (r *ImageResolver) logTierError(tier, subject string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		r.log.Trace().Str("tier", tier).Str("subject", subject).Msg("no image at tier")
	case errors.Is(err, domain.ErrProviderNotConfigured):
		r.log.Debug().Str("tier", tier).Msg("tier unavailable")
	case domain.IsFallbackError(err):
		r.metrics.ProviderFailed(tier)
		r.log.Warn().Err(err).Str("tier", tier).Str("subject", subject).Msg("image tier failed")
	default:
		r.metrics.ProviderFailed(tier)
		r.log.Error().Err(err).Str("tier", tier).Str("subject", subject).Msg("unexpected image tier error")
	}
}

// localAssetStrategy serves bundled images.
type localAssetStrategy struct{}

func (localAssetStrategy) Name() string { return TierLocal }

func (localAssetStrategy) Attempt(_ context.Context, subject string, category domain.ImageCategory) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", domain.ErrNotFound
	}
	if path, ok := FindLocalAsset(subject, category); ok {
		return path, nil
	}
	return "", domain.ErrNotFound
}

// FindLocalAsset looks subject up in the bundled asset table.
func FindLocalAsset(subject string, category domain.ImageCategory) (string, bool) {
	assets := localAssets[category]
	for _, a := range assets {
		if a.name == subject {
			return a.path, true
		}
	}
	for _, a := range assets {
		if domain.Matches(a.name, subject) {
			return a.path, true
		}
	}
	return "", false
}

// generativeImageStrategy asks an image model for a picture.
type generativeImageStrategy struct {
	generator domain.ImageGenerator
}

func (generativeImageStrategy) Name() string { return TierGenerative }

func (s generativeImageStrategy) Attempt(ctx context.Context, subject string, category domain.ImageCategory) (string, error) {
	if !s.generator.Configured() {
		return "", domain.ErrProviderNotConfigured
	}
	return s.generator.GenerateImage(ctx, ImagePrompt(subject, category))
}

// ImagePrompt frames recipes as dish photography and ingredients as product shots.
func ImagePrompt(subject string, category domain.ImageCategory) string {
	if category == domain.CategoryIngredient {
		return fmt.Sprintf("Fresh %s ingredient, Korean food ingredient, clean white background, "+
			"professional product photography, high quality, realistic", subject)
	}
	return fmt.Sprintf("A beautiful, appetizing Korean dish called \"%s\". Professional food photography style, "+
		"well-lit, on a clean plate, high quality, realistic, appetizing", subject)
}

// photoSearchStrategy queries a stock photo provider per category.
type photoSearchStrategy struct {
	recipes     domain.PhotoSearcher
	ingredients domain.PhotoSearcher
	timeout     time.Duration
}

func (photoSearchStrategy) Name() string { return TierPhotoSearch }

func (s photoSearchStrategy) Attempt(ctx context.Context, subject string, category domain.ImageCategory) (string, error) {
	searcher, query := s.recipes, subject+" food korean 요리"
	if category == domain.CategoryIngredient {
		searcher, query = s.ingredients, subject+" food ingredient"
	}
	if searcher == nil || !searcher.Configured() {
		return "", domain.ErrProviderNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	urls, err := searcher.Search(ctx, query)
	if err != nil {
		return "", err
	}
	if len(urls) == 0 {
		return "", domain.ErrNotFound
	}
	return urls[0], nil
}

// probedPlaceholderStrategy builds a placeholder URL and only trusts it if it loads.
type probedPlaceholderStrategy struct {
	name   string
	build  func(subject string, category domain.ImageCategory) string
	prober domain.ImageProber
}

func (s probedPlaceholderStrategy) Name() string { return s.name }

func (s probedPlaceholderStrategy) Attempt(ctx context.Context, subject string, category domain.ImageCategory) (string, error) {
	ref := s.build(subject, category)
	if !s.prober.Probe(ctx, ref) {
		return "", fmt.Errorf("%w: %s probe failed", domain.ErrProviderFailure, s.name)
	}
	return ref, nil
}

// NameHash is a 31-multiplier string hash over UTF-16 code units with 32-bit
// wraparound, returned as a non-negative value.
func NameHash(s string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// PaletteColor picks the placeholder background for a subject.
func PaletteColor(subject string) string {
	return placeholderPalette[NameHash(subject)%int64(len(placeholderPalette))]
}

func placeholderSize(category domain.ImageCategory) (int, int) {
	if category == domain.CategoryIngredient {
		return 200, 200
	}
	return 400, 300
}

func escapeText(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// DummyImageURL is the hash-coloured placeholder with the subject as overlay text.
func DummyImageURL(subject string, category domain.ImageCategory) string {
	w, h := placeholderSize(category)
	return fmt.Sprintf("https://dummyimage.com/%dx%d/%s/%s&text=%s",
		w, h, PaletteColor(subject), placeholderTextColor, escapeText(subject))
}

// PicsumURL is a seeded random photo, stable per subject.
func PicsumURL(subject string, category domain.ImageCategory) string {
	w, h := placeholderSize(category)
	return fmt.Sprintf("https://picsum.photos/seed/%d/%d/%d", NameHash(subject), w, h)
}

// TerminalPlaceholderURL is the last resort and is never probed.
func TerminalPlaceholderURL(subject string, category domain.ImageCategory) string {
	w, h := placeholderSize(category)
	return fmt.Sprintf("https://via.placeholder.com/%dx%d/%s/%s?text=%s",
		w, h, placeholderPalette[0], placeholderTextColor, escapeText(subject))
}
