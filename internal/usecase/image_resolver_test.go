package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fridgechef/backend/internal/domain"
)

func TestNameHash(t *testing.T) {
	tests := []struct {
		subject string
		want    int64
	}{
		{"", 0},
		{"a", 97},
		{"된장찌개", 1424382553},
		{"김치볶음밥", 131451209},
		{"파스타", 53519016},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NameHash(tt.subject), tt.subject)
	}
}

func TestPlaceholderURLs(t *testing.T) {
	assert.Equal(t,
		"https://dummyimage.com/400x300/2196F3/ffffff&text=%EB%90%9C%EC%9E%A5%EC%B0%8C%EA%B0%9C",
		DummyImageURL("된장찌개", domain.CategoryRecipe))
	assert.Equal(t,
		"https://dummyimage.com/200x200/4CAF50/ffffff&text=green%20onion",
		DummyImageURL("green onion", domain.CategoryIngredient))
	assert.Equal(t, "https://picsum.photos/seed/53519016/400/300", PicsumURL("파스타", domain.CategoryRecipe))
	assert.Equal(t,
		"https://via.placeholder.com/200x200/4CAF50/ffffff?text=a%20b",
		TerminalPlaceholderURL("a b", domain.CategoryIngredient))
}

func TestFindLocalAsset(t *testing.T) {
	tests := []struct {
		subject  string
		category domain.ImageCategory
		want     string
		found    bool
	}{
		{"계란말이", domain.CategoryRecipe, "/img/계란말이.jpg", true},
		{"치즈 계란말이", domain.CategoryRecipe, "/img/계란말이.jpg", true},
		{"김치볶음밥", domain.CategoryRecipe, "/img/김치볶음밥.jpg", true},
		{"계란", domain.CategoryIngredient, "/img/계란.jpg", true},
		{"햇감자", domain.CategoryIngredient, "/img/감자.jpg", true},
		{"계란", domain.CategoryRecipe, "/img/계란말이.jpg", true},
		{"된장찌개", domain.CategoryRecipe, "", false},
	}
	for _, tt := range tests {
		got, ok := FindLocalAsset(tt.subject, tt.category)
		assert.Equal(t, tt.found, ok, tt.subject)
		assert.Equal(t, tt.want, got, tt.subject)
	}
}

func TestImageResolver_TierOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("local asset wins and is cached", func(t *testing.T) {
		gen := &MockImageGenerator{configured: true, url: "https://gen/1.png"}
		cache := NewMockCache[domain.ImageCacheEntry]()
		r := NewImageResolver(ImageResolverConfig{Generator: gen}, cache, nil, testLog)

		assert.Equal(t, "/img/계란말이.jpg", r.Resolve(ctx, "계란말이", domain.CategoryRecipe))
		assert.Equal(t, int32(0), gen.calls.Load())

		entry, err := cache.Get(ctx, "recipe:계란말이")
		require.NoError(t, err)
		assert.Equal(t, TierLocal, entry.Tier)
	})

	t.Run("generative before photo search", func(t *testing.T) {
		gen := &MockImageGenerator{configured: true, url: "https://gen/1.png"}
		photos := &MockPhotoSearcher{configured: true, urls: []string{"https://photo/1.jpg"}}
		r := NewImageResolver(ImageResolverConfig{Generator: gen, RecipePhotos: photos}, NewMockCache[domain.ImageCacheEntry](), nil, testLog)

		assert.Equal(t, "https://gen/1.png", r.Resolve(ctx, "된장찌개", domain.CategoryRecipe))
	})

	t.Run("generator failure falls through to photo search", func(t *testing.T) {
		gen := &MockImageGenerator{configured: true, err: domain.ErrProviderFailure}
		photos := &MockPhotoSearcher{configured: true, urls: []string{"https://photo/1.jpg", "https://photo/2.jpg"}}
		r := NewImageResolver(ImageResolverConfig{Generator: gen, RecipePhotos: photos}, NewMockCache[domain.ImageCacheEntry](), nil, testLog)

		assert.Equal(t, "https://photo/1.jpg", r.Resolve(ctx, "된장찌개", domain.CategoryRecipe))
		assert.Equal(t, "된장찌개 food korean 요리", photos.lastQuery.Load())
	})

	t.Run("unexpected generator error falls through", func(t *testing.T) {
		gen := &MockImageGenerator{configured: true, err: errors.New("bad base64")}
		photos := &MockPhotoSearcher{configured: true, urls: []string{"https://photo/1.jpg"}}
		r := NewImageResolver(ImageResolverConfig{Generator: gen, RecipePhotos: photos}, NewMockCache[domain.ImageCacheEntry](), nil, testLog)

		assert.Equal(t, "https://photo/1.jpg", r.Resolve(ctx, "된장찌개", domain.CategoryRecipe))
	})

	t.Run("ingredient uses ingredient searcher", func(t *testing.T) {
		recipes := &MockPhotoSearcher{configured: true, urls: []string{"https://recipe.jpg"}}
		ingredients := &MockPhotoSearcher{configured: true, urls: []string{"https://ingredient.jpg"}}
		r := NewImageResolver(ImageResolverConfig{RecipePhotos: recipes, IngredientPhotos: ingredients}, NewMockCache[domain.ImageCacheEntry](), nil, testLog)

		assert.Equal(t, "https://ingredient.jpg", r.Resolve(ctx, "두부", domain.CategoryIngredient))
		assert.Equal(t, "두부 food ingredient", ingredients.lastQuery.Load())
	})

	t.Run("generator panic is treated as failure", func(t *testing.T) {
		gen := &MockImageGenerator{configured: true, panics: true}
		r := NewImageResolver(ImageResolverConfig{Generator: gen, Prober: proberReaching("https://dummyimage.com")}, NewMockCache[domain.ImageCacheEntry](), nil, testLog)

		assert.Equal(t, DummyImageURL("된장찌개", domain.CategoryRecipe), r.Resolve(ctx, "된장찌개", domain.CategoryRecipe))
	})

	t.Run("dummyimage probe fails then picsum", func(t *testing.T) {
		prober := proberReaching("https://picsum.photos")
		r := NewImageResolver(ImageResolverConfig{Prober: prober}, NewMockCache[domain.ImageCacheEntry](), nil, testLog)

		assert.Equal(t, PicsumURL("된장찌개", domain.CategoryRecipe), r.Resolve(ctx, "된장찌개", domain.CategoryRecipe))
		assert.Len(t, prober.probed, 2)
	})
}

func TestImageResolver_TerminalFallbackIsNotCached(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCache[domain.ImageCacheEntry]()
	prober := proberReaching()
	r := NewImageResolver(ImageResolverConfig{Prober: prober}, cache, nil, testLog)

	got := r.Resolve(ctx, "된장찌개", domain.CategoryRecipe)

	assert.Equal(t, TerminalPlaceholderURL("된장찌개", domain.CategoryRecipe), got)
	assert.Equal(t, 0, cache.Len())

	// Next call retries the tiers.
	r.Resolve(ctx, "된장찌개", domain.CategoryRecipe)
	assert.Len(t, prober.probed, 4)
}

func TestImageResolver_CallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cache := NewMockCache[domain.ImageCacheEntry]()
	gen := &MockImageGenerator{configured: true, url: "https://gen/1.png"}
	r := NewImageResolver(ImageResolverConfig{Generator: gen, Prober: proberReaching()}, cache, nil, testLog)

	assert.Equal(t, "https://gen/1.png", r.Resolve(ctx, "된장찌개", domain.CategoryRecipe))

	entry, err := cache.Get(context.Background(), "recipe:된장찌개")
	require.NoError(t, err)
	assert.Equal(t, TierGenerative, entry.Tier)
}

func TestImageResolver_CacheHit(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCache[domain.ImageCacheEntry]()
	require.NoError(t, cache.Set(ctx, "recipe:된장찌개", domain.ImageCacheEntry{Reference: "https://cached.jpg"}, 0))
	gen := &MockImageGenerator{configured: true, url: "https://gen.png"}
	r := NewImageResolver(ImageResolverConfig{Generator: gen}, cache, nil, testLog)

	assert.Equal(t, "https://cached.jpg", r.Resolve(ctx, "된장찌개", domain.CategoryRecipe))
	assert.Equal(t, int32(0), gen.calls.Load())
}

func TestImageResolver_Totality(t *testing.T) {
	ctx := context.Background()
	subjects := []string{"", "   ", "🍜 라멘 ramen", strings.Repeat("김치", 5000), "a/b?c=d&e"}
	categories := []domain.ImageCategory{domain.CategoryRecipe, domain.CategoryIngredient}

	gen := &MockImageGenerator{configured: true, err: domain.ErrProviderFailure}
	photos := &MockPhotoSearcher{configured: true, block: true}
	r := NewImageResolver(ImageResolverConfig{
		Generator:        gen,
		RecipePhotos:     photos,
		IngredientPhotos: photos,
		Prober:           proberReaching(),
		PhotoTimeout:     20 * time.Millisecond,
	}, NewMockCache[domain.ImageCacheEntry](), nil, testLog)

	for _, category := range categories {
		for _, subject := range subjects {
			got := r.Resolve(ctx, subject, category)
			assert.NotEmpty(t, got)
		}
	}
}

func TestImageResolver_ResolveMany(t *testing.T) {
	r := newTestResolver()

	got := r.ResolveMany(context.Background(), []string{"계란말이", "된장찌개", ""}, domain.CategoryRecipe)

	require.Len(t, got, 3)
	assert.Equal(t, "/img/계란말이.jpg", got[0])
	assert.Equal(t, TerminalPlaceholderURL("된장찌개", domain.CategoryRecipe), got[1])
	assert.NotEmpty(t, got[2])
}

func TestImagePrompt(t *testing.T) {
	assert.Contains(t, ImagePrompt("된장찌개", domain.CategoryRecipe), `Korean dish called "된장찌개"`)
	assert.True(t, strings.HasPrefix(ImagePrompt("두부", domain.CategoryIngredient), "Fresh 두부 ingredient"))
}
