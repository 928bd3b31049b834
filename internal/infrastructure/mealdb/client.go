// Package mealdb is the public recipe database tier backed by TheMealDB.
package mealdb

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/fridgechef/backend/internal/domain"
	"github.com/fridgechef/backend/internal/infrastructure/httpclient"
)

var _ domain.RecipeDatabase = (*Client)(nil)

// filterResponse is the payload of filter.php. Meals is null when nothing matches.
type filterResponse struct {
	Meals []struct {
		ID    string `json:"idMeal"`
		Name  string `json:"strMeal"`
		Thumb string `json:"strMealThumb"`
	} `json:"meals"`
}

// lookupResponse is the payload of lookup.php. Meal objects are flat with
// numbered ingredient fields, so they are kept as raw maps for the mapper.
type lookupResponse struct {
	Meals []Meal `json:"meals"`
}

// Client handles communication with TheMealDB.
type Client struct {
	req     *httpclient.Requester
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a TheMealDB client. The public API needs no key.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	log = log.With().Str("component", "mealdb").Logger()
	return &Client{
		req: httpclient.New(httpclient.Config{
			Name:          "mealdb",
			Timeout:       timeout,
			RatePerSecond: 5,
			Burst:         10,
			Attempts:      2,
		}, log),
		baseURL: baseURL,
		log:     log,
	}
}

// FilterByIngredient lists meals that use the given English ingredient name.
func (c *Client) FilterByIngredient(ctx context.Context, ingredient string) ([]domain.MealSummary, error) {
	params := url.Values{}
	params.Add("i", ingredient)
	reqURL := fmt.Sprintf("%s/filter.php?%s", c.baseURL, params.Encode())

	var resp filterResponse
	if err := c.req.GetJSON(ctx, reqURL, nil, &resp); err != nil {
		return nil, err
	}

	summaries := make([]domain.MealSummary, 0, len(resp.Meals))
	for _, m := range resp.Meals {
		summaries = append(summaries, domain.MealSummary{ID: m.ID, Name: m.Name, Thumb: m.Thumb})
	}

	c.log.Debug().Str("ingredient", ingredient).Int("meals", len(summaries)).Msg("filtered meals")
	return summaries, nil
}

// Lookup fetches the full meal and maps it to a Recipe.
func (c *Client) Lookup(ctx context.Context, id string) (*domain.Recipe, error) {
	params := url.Values{}
	params.Add("i", id)
	reqURL := fmt.Sprintf("%s/lookup.php?%s", c.baseURL, params.Encode())

	var resp lookupResponse
	if err := c.req.GetJSON(ctx, reqURL, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Meals) == 0 {
		return nil, fmt.Errorf("%w: meal %s", domain.ErrNotFound, id)
	}

	return MapToRecipe(resp.Meals[0]), nil
}
