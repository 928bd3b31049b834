package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/fridgechef/backend/internal/domain"
	"github.com/fridgechef/backend/internal/metrics"
)

// conditionGlyph is a condition from the fixed vocabulary plus its icon.
type conditionGlyph struct {
	condition string
	icon      string
}

// providerConditions translates provider labels into the condition vocabulary.
var providerConditions = map[string]conditionGlyph{
	"Clear":        {domain.ConditionClear, "☀️"},
	"Clouds":       {domain.ConditionClouds, "☁️"},
	"Rain":         {domain.ConditionRain, "🌧️"},
	"Drizzle":      {domain.ConditionDrizzle, "🌦️"},
	"Thunderstorm": {domain.ConditionThunderstorm, "⛈️"},
	"Snow":         {domain.ConditionSnow, "❄️"},
	"Mist":         {domain.ConditionFog, "🌫️"},
	"Fog":          {domain.ConditionFog, "🌫️"},
	"Haze":         {domain.ConditionHaze, "🌫️"},
}

// staticWeather is served when no live provider is available.
var staticWeather = map[string]domain.WeatherSnapshot{
	"서울": {Temp: 15, Condition: domain.ConditionClear, Icon: "☀️"},
	"부산": {Temp: 18, Condition: domain.ConditionClouds, Icon: "☁️"},
	"대구": {Temp: 16, Condition: domain.ConditionClear, Icon: "☀️"},
	"인천": {Temp: 14, Condition: domain.ConditionRain, Icon: "🌧️"},
	"광주": {Temp: 17, Condition: domain.ConditionClear, Icon: "☀️"},
	"대전": {Temp: 15, Condition: domain.ConditionClouds, Icon: "☁️"},
	"울산": {Temp: 17, Condition: domain.ConditionClear, Icon: "☀️"},
}

var defaultWeather = domain.WeatherSnapshot{Temp: 15, Condition: domain.ConditionClear, Icon: "☀️"}

var koreanWeekdays = [...]string{"일", "월", "화", "수", "목", "금", "토"}

// WeatherServiceConfig holds configuration for the weather service
type WeatherServiceConfig struct {
	CacheTTL time.Duration
	Timeout  time.Duration
	Clock    func() time.Time
}

// WeatherService resolves current weather per city and never fails.
type WeatherService struct {
	provider domain.WeatherProvider
	cache    domain.Cache[domain.WeatherSnapshot]
	cacheTTL time.Duration
	timeout  time.Duration
	clock    func() time.Time
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewWeatherService creates a weather service. provider may be nil.
func NewWeatherService(
	provider domain.WeatherProvider,
	cache domain.Cache[domain.WeatherSnapshot],
	config WeatherServiceConfig,
	m *metrics.Metrics,
	log zerolog.Logger,
) *WeatherService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 30 * time.Minute
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}

	return &WeatherService{
		provider: provider,
		cache:    cache,
		cacheTTL: cacheTTL,
		timeout:  timeout,
		clock:    clock,
		metrics:  m,
		log:      log.With().Str("component", "weather").Logger(),
	}
}

// GetWeather returns the cached, live or static weather for city.
// Flow: check cache -> live provider -> static table -> cache -> return
// The lookup is detached from ctx cancellation so a caller that goes away
// cannot leave a static fallback in the cache.
func (s *WeatherService) GetWeather(ctx context.Context, city string) domain.WeatherSnapshot {
	cacheKey := "weather:" + city

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		return cached
	}

	snapshot, err := s.fetchLive(ctx, city)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProviderNotConfigured):
			s.log.Debug().Str("city", city).Msg("live weather unavailable, using static table")
		case domain.IsFallbackError(err):
			s.metrics.ProviderFailed("weather")
			s.log.Warn().Err(err).Str("city", city).Msg("live weather failed, using static table")
		default:
			s.metrics.ProviderFailed("weather")
			s.log.Error().Err(err).Str("city", city).Msg("unexpected weather provider error, using static table")
		}
		snapshot = StaticWeather(city)
	}

	if err := s.cache.Set(ctx, cacheKey, snapshot, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache weather")
	}
	return snapshot
}

func (s *WeatherService) fetchLive(ctx context.Context, city string) (domain.WeatherSnapshot, error) {
	if s.provider == nil || !s.provider.Configured() {
		return domain.WeatherSnapshot{}, domain.ErrProviderNotConfigured
	}

	reading, err := s.provider.Fetch(ctx, city)
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}

	condition, icon := TranslateCondition(reading.ConditionLabel)
	return domain.WeatherSnapshot{
		Temp:      int(math.Round(reading.Temp)),
		Condition: condition,
		Icon:      icon,
	}, nil
}

// CurrentDate returns the calendar view of the service clock.
func (s *WeatherService) CurrentDate() domain.DateInfo {
	now := s.clock()
	return domain.DateInfo{
		Year:      now.Year(),
		Month:     int(now.Month()),
		Day:       now.Day(),
		DayOfWeek: koreanWeekdays[now.Weekday()],
		Hour:      now.Hour(),
		Minute:    now.Minute(),
	}
}

// TranslateCondition maps a provider label onto the vocabulary. Unknown labels become 맑음.
func TranslateCondition(label string) (condition, icon string) {
	if g, ok := providerConditions[label]; ok {
		return g.condition, g.icon
	}
	return domain.ConditionClear, "☀️"
}

// StaticWeather returns the fallback table entry for city.
func StaticWeather(city string) domain.WeatherSnapshot {
	if w, ok := staticWeather[city]; ok {
		return w
	}
	return defaultWeather
}
