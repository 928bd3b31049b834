// Package openweather is the live weather provider backed by OpenWeatherMap.
package openweather

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/fridgechef/backend/internal/domain"
	"github.com/fridgechef/backend/internal/infrastructure/httpclient"
)

var _ domain.WeatherProvider = (*Client)(nil)

// cityNames maps the Korean city names used in profiles to provider query names.
var cityNames = map[string]string{
	"서울": "Seoul",
	"부산": "Busan",
	"대구": "Daegu",
	"인천": "Incheon",
	"광주": "Gwangju",
	"대전": "Daejeon",
	"울산": "Ulsan",
}

// currentResponse is the subset of /data/2.5/weather we read.
type currentResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

// Client fetches current weather.
type Client struct {
	req     *httpclient.Requester
	apiKey  string
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a weather client. An empty apiKey leaves the client unconfigured.
func NewClient(apiKey, baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	log = log.With().Str("component", "openweather").Logger()
	return &Client{
		req: httpclient.New(httpclient.Config{
			Name:          "openweather",
			Timeout:       timeout,
			RatePerSecond: 1,
			Burst:         5,
		}, log),
		apiKey:  apiKey,
		baseURL: baseURL,
		log:     log,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Fetch returns the current temperature and raw condition label for city.
func (c *Client) Fetch(ctx context.Context, city string) (*domain.ProviderWeather, error) {
	if !c.Configured() {
		return nil, domain.ErrProviderNotConfigured
	}

	name, ok := cityNames[city]
	if !ok {
		name = city
	}

	params := url.Values{}
	params.Add("q", name+",KR")
	params.Add("appid", c.apiKey)
	params.Add("units", "metric")
	params.Add("lang", "kr")
	reqURL := fmt.Sprintf("%s/data/2.5/weather?%s", c.baseURL, params.Encode())

	var resp currentResponse
	if err := c.req.GetJSON(ctx, reqURL, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Weather) == 0 {
		return nil, fmt.Errorf("%w: no weather entries for %s", domain.ErrMalformedResponse, city)
	}

	c.log.Debug().Str("city", city).Str("condition", resp.Weather[0].Main).Msg("fetched weather")
	return &domain.ProviderWeather{
		Temp:           resp.Main.Temp,
		ConditionLabel: resp.Weather[0].Main,
	}, nil
}
