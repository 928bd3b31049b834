package domain

import (
	"context"
	"time"
)

// Cache is a TTL cache for values of a single type.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// PantryStore is the household data owned by the UI layer. The core only reads it.
type PantryStore interface {
	Ingredients(ctx context.Context) ([]Ingredient, error)
	Profile(ctx context.Context) (*UserProfile, error)
	Ratings(ctx context.Context) ([]Rating, error)
}

// WeatherProvider fetches live weather for a city.
type WeatherProvider interface {
	Configured() bool
	Fetch(ctx context.Context, city string) (*ProviderWeather, error)
}

// ChatProvider is a chat-completion endpoint that answers with free text (usually JSON).
type ChatProvider interface {
	Configured() bool
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// ImageGenerator turns a prompt into a generated image URL.
type ImageGenerator interface {
	Configured() bool
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// PhotoSearcher finds stock photos by free text.
type PhotoSearcher interface {
	Configured() bool
	Search(ctx context.Context, query string) ([]string, error)
}

// MealSummary is a row returned by a recipe database ingredient filter.
type MealSummary struct {
	ID    string
	Name  string
	Thumb string
}

// RecipeDatabase is a keyless structured recipe provider.
type RecipeDatabase interface {
	FilterByIngredient(ctx context.Context, ingredient string) ([]MealSummary, error)
	Lookup(ctx context.Context, id string) (*Recipe, error)
}

// ImageProber checks that an image URL actually loads.
type ImageProber interface {
	Probe(ctx context.Context, url string) bool
}

// RecipeNotifier delivers generated recipes to whoever listens.
type RecipeNotifier interface {
	PublishGenerated(ctx context.Context, event GeneratedRecipesEvent) error
}
