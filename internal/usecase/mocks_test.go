package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/fridgechef/backend/internal/domain"
)

// MockCache is a mock implementation of domain.Cache
type MockCache[V any] struct {
	mu       sync.Mutex
	data     map[string]V
	ttls     map[string]time.Duration
	getError error
	setError error
	sets     int
}

func NewMockCache[V any]() *MockCache[V] {
	return &MockCache[V]{
		data: make(map[string]V),
		ttls: make(map[string]time.Duration),
	}
}

func (m *MockCache[V]) Get(ctx context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero V
	if m.getError != nil {
		return zero, m.getError
	}
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return zero, domain.ErrCacheMiss
}

func (m *MockCache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *MockCache[V]) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCache[V]) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MockCache[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// MockPantryStore is a mock implementation of domain.PantryStore
type MockPantryStore struct {
	ingredients []domain.Ingredient
	profile     *domain.UserProfile
	ratings     []domain.Rating
	err         error
}

func (m *MockPantryStore) Ingredients(ctx context.Context) ([]domain.Ingredient, error) {
	return m.ingredients, m.err
}

func (m *MockPantryStore) Profile(ctx context.Context) (*domain.UserProfile, error) {
	return m.profile, m.err
}

func (m *MockPantryStore) Ratings(ctx context.Context) ([]domain.Rating, error) {
	return m.ratings, m.err
}

func pantryOf(names ...string) []domain.Ingredient {
	out := make([]domain.Ingredient, len(names))
	for i, n := range names {
		out[i] = domain.Ingredient{ID: n, Name: n}
	}
	return out
}

// MockWeatherProvider is a mock implementation of domain.WeatherProvider
type MockWeatherProvider struct {
	configured bool
	result     *domain.ProviderWeather
	err        error
	calls      atomic.Int32
}

func (m *MockWeatherProvider) Configured() bool { return m.configured }

func (m *MockWeatherProvider) Fetch(ctx context.Context, city string) (*domain.ProviderWeather, error) {
	m.calls.Add(1)
	if err := ctxFailure(ctx); err != nil {
		return nil, err
	}
	return m.result, m.err
}

// ctxFailure mirrors how the HTTP requester reports a done context.
func ctxFailure(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	return nil
}

// MockChatProvider is a mock implementation of domain.ChatProvider
type MockChatProvider struct {
	configured bool
	respond    func(system, prompt string) (string, error)
	block      bool
	mu         sync.Mutex
	prompts    []string
}

func (m *MockChatProvider) Configured() bool { return m.configured }

func (m *MockChatProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.block && system == searchSystemPrompt {
		<-ctx.Done()
		return "", fmt.Errorf("%w: %v", domain.ErrProviderTimeout, ctx.Err())
	}
	if err := ctxFailure(ctx); err != nil {
		return "", err
	}
	return m.respond(system, prompt)
}

func (m *MockChatProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// MockImageGenerator is a mock implementation of domain.ImageGenerator
type MockImageGenerator struct {
	configured bool
	url        string
	err        error
	panics     bool
	calls      atomic.Int32
}

func (m *MockImageGenerator) Configured() bool { return m.configured }

func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	m.calls.Add(1)
	if m.panics {
		panic("generator exploded")
	}
	if err := ctxFailure(ctx); err != nil {
		return "", err
	}
	return m.url, m.err
}

// MockPhotoSearcher is a mock implementation of domain.PhotoSearcher
type MockPhotoSearcher struct {
	configured bool
	urls       []string
	err        error
	block      bool
	lastQuery  atomic.Value
}

func (m *MockPhotoSearcher) Configured() bool { return m.configured }

func (m *MockPhotoSearcher) Search(ctx context.Context, query string) ([]string, error) {
	m.lastQuery.Store(query)
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.urls, m.err
}

// MockRecipeDatabase is a mock implementation of domain.RecipeDatabase
type MockRecipeDatabase struct {
	meals       map[string][]domain.MealSummary
	filterErrs  map[string]error
	details     map[string]*domain.Recipe
	filterCalls atomic.Int32
	lookupCalls atomic.Int32
}

func (m *MockRecipeDatabase) FilterByIngredient(ctx context.Context, ingredient string) ([]domain.MealSummary, error) {
	m.filterCalls.Add(1)
	if err := ctxFailure(ctx); err != nil {
		return nil, err
	}
	if err := m.filterErrs[ingredient]; err != nil {
		return nil, err
	}
	return m.meals[ingredient], nil
}

func (m *MockRecipeDatabase) Lookup(ctx context.Context, id string) (*domain.Recipe, error) {
	m.lookupCalls.Add(1)
	if err := ctxFailure(ctx); err != nil {
		return nil, err
	}
	r, ok := m.details[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *r
	return &c, nil
}

// MockProber is a mock implementation of domain.ImageProber
type MockProber struct {
	reachable func(url string) bool
	mu        sync.Mutex
	probed    []string
}

func (m *MockProber) Probe(ctx context.Context, url string) bool {
	m.mu.Lock()
	m.probed = append(m.probed, url)
	m.mu.Unlock()
	return m.reachable(url)
}

func proberReaching(prefixes ...string) *MockProber {
	return &MockProber{reachable: func(url string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(url, p) {
				return true
			}
		}
		return false
	}}
}

// MockNotifier is a mock implementation of domain.RecipeNotifier
type MockNotifier struct {
	mu     sync.Mutex
	events []domain.GeneratedRecipesEvent
	err    error
}

func (m *MockNotifier) PublishGenerated(ctx context.Context, event domain.GeneratedRecipesEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MockNotifier) Events() []domain.GeneratedRecipesEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.GeneratedRecipesEvent(nil), m.events...)
}

var testLog = zerolog.Nop()

// newTestResolver builds a resolver whose probes always fail, so unresolved
// subjects land on the terminal placeholder.
func newTestResolver() *ImageResolver {
	return NewImageResolver(ImageResolverConfig{Prober: proberReaching()}, NewMockCache[domain.ImageCacheEntry](), nil, testLog)
}
