package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/domain"
	"github.com/fridgechef/backend/internal/infrastructure/pantry"
	"github.com/fridgechef/backend/internal/metrics"
	"github.com/fridgechef/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeRecommender struct {
	rec        *usecase.Recommendation
	err        error
	lastEnrich *bool
}

func (f *fakeRecommender) Recommend(ctx context.Context, enable bool) (*usecase.Recommendation, error) {
	f.lastEnrich = &enable
	return f.rec, f.err
}

type fakeImages struct {
	calls []string
}

func (f *fakeImages) Resolve(ctx context.Context, subject string, category domain.ImageCategory) string {
	f.calls = append(f.calls, string(category)+":"+subject)
	return "https://img.test/" + string(category) + "/" + subject
}

type fakeWeather struct{}

func (fakeWeather) GetWeather(ctx context.Context, city string) domain.WeatherSnapshot {
	return domain.WeatherSnapshot{Temp: 12, Condition: domain.ConditionRain, Icon: "🌧️"}
}

func (fakeWeather) CurrentDate() domain.DateInfo {
	return domain.DateInfo{Year: 2026, Month: 10, Day: 16, DayOfWeek: "금"}
}

type fakeShopping struct {
	err error
}

func (f fakeShopping) Suggestions(ctx context.Context) (*domain.ShoppingSuggestions, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ShoppingSuggestions{
		FrequentlyUsed: []string{"대파", "계란"},
		Missing:        []string{"계란"},
		Month:          10,
		Seasonal:       []domain.SeasonalIngredient{{Name: "무", Owned: true}},
	}, nil
}

type fakeFeed struct {
	events []domain.GeneratedRecipesEvent
	open   bool
	err    error
}

func (f fakeFeed) SubscribeGenerated(ctx context.Context) (<-chan domain.GeneratedRecipesEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan domain.GeneratedRecipesEvent, len(f.events))
	for _, e := range f.events {
		ch <- e
	}
	if !f.open {
		close(ch)
	}
	return ch, nil
}

type testServer struct {
	router      *gin.Engine
	recommender *fakeRecommender
	images      *fakeImages
	store       *pantry.MemoryStore
}

type serverOption func(*serverDeps)

type serverDeps struct {
	shopping fakeShopping
	feed     fakeFeed
	limiter  *RateLimiter
	registry *prometheus.Registry
}

// setupTestRouter creates a test router backed by fakes and an in-memory pantry
func setupTestRouter(opts ...serverOption) *testServer {
	deps := serverDeps{}
	for _, opt := range opts {
		opt(&deps)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
		RateLimit: config.RateLimitConfig{PerIP: 1000},
		Cache:     config.CacheConfig{Type: "memory"},
	}

	ts := &testServer{
		recommender: &fakeRecommender{rec: &usecase.Recommendation{
			RequestID: "req-1",
			Recipes: []domain.RankedRecipe{
				{Recipe: domain.Recipe{ID: "1", Name: "된장찌개", Image: "https://img.test/1"}, Score: 33},
			},
			Weather: domain.WeatherSnapshot{Temp: 15, Condition: domain.ConditionClear, Icon: "☀️"},
		}},
		images: &fakeImages{},
		store:  pantry.NewMemoryStore(),
	}

	var gatherer prometheus.Gatherer
	if deps.registry != nil {
		gatherer = deps.registry
	}

	handler := NewHandler(ts.recommender, ts.images, fakeWeather{}, deps.shopping, ts.store, deps.feed, zerolog.Nop())
	ts.router = SetupRouter(cfg, handler, RouterOptions{
		Gatherer: gatherer,
		Limiter:  deps.limiter,
		Log:      zerolog.Nop(),
	})
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		w := setupTestRouter().do(http.MethodGet, "/health", "")

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "fridgechef-backend", body["service"])
		assert.NotEmpty(t, body["version"])
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		ts := setupTestRouter()
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
			w := ts.do(method, "/health", "")
			assert.Equal(t, http.StatusNotFound, w.Code, method)
		}
	})
}

func TestRecommendationsEndpoint(t *testing.T) {
	t.Run("returns ranked recipes and weather", func(t *testing.T) {
		ts := setupTestRouter()

		w := ts.do(http.MethodGet, "/api/v1/recommendations", "")

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		recs, ok := body["recommendations"].([]any)
		require.True(t, ok, "recommendations should be a list")
		require.Len(t, recs, 1)
		first := recs[0].(map[string]any)
		assert.Equal(t, "된장찌개", first["name"])
		assert.EqualValues(t, 33, first["score"])
		assert.Equal(t, domain.ConditionClear, body["weather"].(map[string]any)["condition"])
		require.NotNil(t, ts.recommender.lastEnrich)
		assert.True(t, *ts.recommender.lastEnrich, "enrichment defaults to on")
	})

	t.Run("enrich=false disables enrichment", func(t *testing.T) {
		ts := setupTestRouter()

		w := ts.do(http.MethodGet, "/api/v1/recommendations?enrich=false", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, *ts.recommender.lastEnrich)
	})

	t.Run("rejects a malformed enrich flag", func(t *testing.T) {
		w := setupTestRouter().do(http.MethodGet, "/api/v1/recommendations?enrich=maybe", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 412 before onboarding", func(t *testing.T) {
		ts := setupTestRouter()
		ts.recommender.rec, ts.recommender.err = nil, domain.ErrNoUserProfile

		w := ts.do(http.MethodGet, "/api/v1/recommendations", "")

		assert.Equal(t, http.StatusPreconditionFailed, w.Code)
		assert.Equal(t, domain.ErrNoUserProfile.Error(), decodeBody(t, w)["error"])
	})

	t.Run("hides unexpected errors", func(t *testing.T) {
		ts := setupTestRouter()
		ts.recommender.rec, ts.recommender.err = nil, errors.New("store exploded")

		w := ts.do(http.MethodGet, "/api/v1/recommendations", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "exploded")
	})
}

func TestGeneratedRecipesStream(t *testing.T) {
	t.Run("relays events as recipes", func(t *testing.T) {
		event := domain.GeneratedRecipesEvent{
			RequestID:   "req-1",
			Recipes:     []domain.Recipe{{ID: "gen_1", Name: "두부조림"}},
			GeneratedAt: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC),
		}
		ts := setupTestRouter(func(d *serverDeps) { d.feed = fakeFeed{events: []domain.GeneratedRecipesEvent{event}} })

		w := ts.do(http.MethodGet, "/api/v1/recommendations/events", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "event:recipes")
		assert.Contains(t, w.Body.String(), "두부조림")
		assert.Contains(t, w.Body.String(), "req-1")
	})

	t.Run("ends when the client goes away", func(t *testing.T) {
		event := domain.GeneratedRecipesEvent{RequestID: "req-2", Recipes: []domain.Recipe{{ID: "gen_2", Name: "감자조림"}}}
		ts := setupTestRouter(func(d *serverDeps) {
			d.feed = fakeFeed{events: []domain.GeneratedRecipesEvent{event}, open: true}
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/events", nil).WithContext(ctx)
		w := httptest.NewRecorder()

		ts.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	})

	t.Run("fails when subscription fails", func(t *testing.T) {
		ts := setupTestRouter(func(d *serverDeps) { d.feed = fakeFeed{err: errors.New("closed")} })

		w := ts.do(http.MethodGet, "/api/v1/recommendations/events", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestImagesEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantURL    string
	}{
		{"recipe by default", "?name=된장찌개", http.StatusOK, "https://img.test/recipe/된장찌개"},
		{"ingredient category", "?name=두부&category=ingredient", http.StatusOK, "https://img.test/ingredient/두부"},
		{"missing name", "?category=recipe", http.StatusBadRequest, ""},
		{"blank name", "?name=%20%20", http.StatusBadRequest, ""},
		{"unknown category", "?name=두부&category=drink", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := setupTestRouter().do(http.MethodGet, "/api/v1/images"+tt.query, "")

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantURL != "" {
				assert.Equal(t, tt.wantURL, decodeBody(t, w)["url"])
			}
		})
	}
}

func TestWeatherEndpoint(t *testing.T) {
	t.Run("uses the city query", func(t *testing.T) {
		w := setupTestRouter().do(http.MethodGet, "/api/v1/weather?city=부산", "")

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "부산", body["city"])
		assert.Equal(t, domain.ConditionRain, body["weather"].(map[string]any)["condition"])
		assert.NotNil(t, body["date"])
	})

	t.Run("falls back to the profile city", func(t *testing.T) {
		ts := setupTestRouter()
		require.NoError(t, ts.store.SetProfile(context.Background(), domain.UserProfile{City: "대전"}))

		w := ts.do(http.MethodGet, "/api/v1/weather", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "대전", decodeBody(t, w)["city"])
	})

	t.Run("needs a city or a profile", func(t *testing.T) {
		w := setupTestRouter().do(http.MethodGet, "/api/v1/weather", "")

		assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	})
}

func TestShoppingEndpoint(t *testing.T) {
	t.Run("returns suggestions", func(t *testing.T) {
		w := setupTestRouter().do(http.MethodGet, "/api/v1/shopping", "")

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, []any{"대파", "계란"}, body["frequentlyUsed"])
		assert.Equal(t, []any{"계란"}, body["missing"])
		assert.EqualValues(t, 10, body["month"])
	})

	t.Run("returns 500 when the store fails", func(t *testing.T) {
		ts := setupTestRouter(func(d *serverDeps) { d.shopping = fakeShopping{err: errors.New("read failed")} })

		w := ts.do(http.MethodGet, "/api/v1/shopping", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestProfileEndpoints(t *testing.T) {
	ts := setupTestRouter()

	w := ts.do(http.MethodGet, "/api/v1/profile", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPut, "/api/v1/profile", `{"household":"single"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "city is required")

	w = ts.do(http.MethodPut, "/api/v1/profile", `{"city":"서울","household":"couple","allergies":["우유"],"preferences":["매운맛"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/api/v1/profile", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "서울", body["city"])
	assert.Equal(t, []any{"우유"}, body["allergies"])
}

func TestIngredientEndpoints(t *testing.T) {
	ts := setupTestRouter()

	w := ts.do(http.MethodGet, "/api/v1/ingredients", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decodeBody(t, w)["ingredients"])

	w = ts.do(http.MethodPost, "/api/v1/ingredients", `{"name":"두부"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody(t, w)
	id, _ := created["id"].(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, "https://img.test/ingredient/두부", created["image"])
	assert.Equal(t, []string{"ingredient:두부"}, ts.images.calls)

	w = ts.do(http.MethodPost, "/api/v1/ingredients", `{"name":"계란","image":"/img/egg.png"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/img/egg.png", decodeBody(t, w)["image"])
	assert.Len(t, ts.images.calls, 1, "a supplied image is kept")

	w = ts.do(http.MethodPost, "/api/v1/ingredients", `{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/api/v1/ingredients", `{invalid json}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, "/api/v1/ingredients", "")
	assert.Len(t, decodeBody(t, w)["ingredients"], 2)

	w = ts.do(http.MethodDelete, "/api/v1/ingredients/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(http.MethodDelete, "/api/v1/ingredients/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRatingEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid rating", `{"recipeId":"1","rating":5,"comment":"맛있어요"}`, http.StatusCreated},
		{"rating above range", `{"recipeId":"1","rating":6}`, http.StatusBadRequest},
		{"rating below range", `{"recipeId":"1","rating":0}`, http.StatusBadRequest},
		{"missing recipe", `{"rating":3}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestRouter()

			w := ts.do(http.MethodPost, "/api/v1/ratings", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusCreated {
				ratings, err := ts.store.Ratings(context.Background())
				require.NoError(t, err)
				require.Len(t, ratings, 1)
				assert.False(t, ratings[0].CreatedAt.IsZero())
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Run("exposes registered collectors", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		m := metrics.New(registry)
		m.ImageResolved("local")
		ts := setupTestRouter(func(d *serverDeps) { d.registry = registry })

		w := ts.do(http.MethodGet, "/metrics", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `image_resolutions_total{tier="local"} 1`)
	})

	t.Run("is absent without a registry", func(t *testing.T) {
		w := setupTestRouter().do(http.MethodGet, "/metrics", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAPIRateLimit(t *testing.T) {
	ts := setupTestRouter(func(d *serverDeps) { d.limiter = NewRateLimiter(1) })

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/v1/shopping", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, ts.do(http.MethodGet, "/api/v1/shopping", "").Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/health", "").Code, "health is not limited")
}

func TestCORSIntegration(t *testing.T) {
	ts := setupTestRouter()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/recommendations", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()

	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPIVersioning(t *testing.T) {
	ts := setupTestRouter()

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/recommendations", "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/v2/recommendations", "").Code)
}
