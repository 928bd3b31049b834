package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fridgechef/backend/internal/domain"
	"github.com/fridgechef/backend/internal/usecase"
)

// Recommender runs a recommendation pass
type Recommender interface {
	Recommend(ctx context.Context, enableAsyncEnrichment bool) (*usecase.Recommendation, error)
}

// ImageResolver returns a usable image reference for a subject
type ImageResolver interface {
	Resolve(ctx context.Context, subject string, category domain.ImageCategory) string
}

// WeatherReader serves weather and the current date
type WeatherReader interface {
	GetWeather(ctx context.Context, city string) domain.WeatherSnapshot
	CurrentDate() domain.DateInfo
}

// ShoppingAdvisor builds shopping suggestions
type ShoppingAdvisor interface {
	Suggestions(ctx context.Context) (*domain.ShoppingSuggestions, error)
}

// Pantry is the household store as seen by the UI
type Pantry interface {
	domain.PantryStore
	SetProfile(ctx context.Context, profile domain.UserProfile) error
	AddIngredient(ctx context.Context, ing domain.Ingredient) (domain.Ingredient, error)
	RemoveIngredient(ctx context.Context, id string) error
	AddRating(ctx context.Context, r domain.Rating) (domain.Rating, error)
}

// GeneratedRecipesFeed delivers enrichment results
type GeneratedRecipesFeed interface {
	SubscribeGenerated(ctx context.Context) (<-chan domain.GeneratedRecipesEvent, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recommender Recommender
	images      ImageResolver
	weather     WeatherReader
	shopping    ShoppingAdvisor
	pantry      Pantry
	feed        GeneratedRecipesFeed
	log         zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	recommender Recommender,
	images ImageResolver,
	weather WeatherReader,
	shopping ShoppingAdvisor,
	pantry Pantry,
	feed GeneratedRecipesFeed,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		recommender: recommender,
		images:      images,
		weather:     weather,
		shopping:    shopping,
		pantry:      pantry,
		feed:        feed,
		log:         log.With().Str("component", "http").Logger(),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "fridgechef-backend",
		"version": "1.0.0",
	})
}

// GetRecommendations handles GET /api/v1/recommendations?enrich=true|false
func (h *Handler) GetRecommendations(c *gin.Context) {
	enrich := true
	if raw := c.Query("enrich"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "enrich must be true or false"})
			return
		}
		enrich = v
	}

	rec, err := h.recommender.Recommend(c.Request.Context(), enrich)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// StreamGeneratedRecipes relays enrichment results as server-sent events
func (h *Handler) StreamGeneratedRecipes(c *gin.Context) {
	ctx := c.Request.Context()
	events, err := h.feed.SubscribeGenerated(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Status(http.StatusOK)
	c.Writer.Flush()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent("recipes", event)
			c.Writer.Flush()
		case <-ctx.Done():
			return
		}
	}
}

// GetImage handles GET /api/v1/images?name=&category=recipe|ingredient
func (h *Handler) GetImage(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	category := domain.ImageCategory(c.DefaultQuery("category", string(domain.CategoryRecipe)))
	if !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category must be recipe or ingredient"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":     name,
		"category": category,
		"url":      h.images.Resolve(c.Request.Context(), name, category),
	})
}

// GetWeather handles GET /api/v1/weather?city=. Without a city the profile city is used.
func (h *Handler) GetWeather(c *gin.Context) {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		profile, err := h.pantry.Profile(c.Request.Context())
		if err != nil {
			h.writeError(c, err)
			return
		}
		if profile == nil {
			h.writeError(c, domain.ErrNoUserProfile)
			return
		}
		city = profile.City
	}

	c.JSON(http.StatusOK, gin.H{
		"city":    city,
		"weather": h.weather.GetWeather(c.Request.Context(), city),
		"date":    h.weather.CurrentDate(),
	})
}

// GetShopping handles GET /api/v1/shopping
func (h *Handler) GetShopping(c *gin.Context) {
	suggestions, err := h.shopping.Suggestions(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

// GetProfile handles GET /api/v1/profile
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.pantry.Profile(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNoUserProfile.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// PutProfile handles PUT /api/v1/profile
func (h *Handler) PutProfile(c *gin.Context) {
	var profile domain.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.pantry.SetProfile(c.Request.Context(), profile); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListIngredients handles GET /api/v1/ingredients
func (h *Handler) ListIngredients(c *gin.Context) {
	ingredients, err := h.pantry.Ingredients(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if ingredients == nil {
		ingredients = []domain.Ingredient{}
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

// AddIngredient handles POST /api/v1/ingredients. A missing image is resolved before storing.
func (h *Handler) AddIngredient(c *gin.Context) {
	var ing domain.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ing.Image == "" && strings.TrimSpace(ing.Name) != "" {
		ing.Image = h.images.Resolve(c.Request.Context(), strings.TrimSpace(ing.Name), domain.CategoryIngredient)
	}

	stored, err := h.pantry.AddIngredient(c.Request.Context(), ing)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// DeleteIngredient handles DELETE /api/v1/ingredients/:id
func (h *Handler) DeleteIngredient(c *gin.Context) {
	if err := h.pantry.RemoveIngredient(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddRating handles POST /api/v1/ratings
func (h *Handler) AddRating(c *gin.Context) {
	var rating domain.Rating
	if err := c.ShouldBindJSON(&rating); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.pantry.AddRating(c.Request.Context(), rating)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// writeError maps domain errors to status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNoUserProfile):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
