package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	MealDB    MealDBConfig    `mapstructure:"mealdb"`
	Photos    PhotosConfig    `mapstructure:"photos"`
	Images    ImagesConfig    `mapstructure:"images"`
	Recommend RecommendConfig `mapstructure:"recommend"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type       string `mapstructure:"type"` // "memory" or "badger"
	BadgerPath string `mapstructure:"badger_path"`
}

// WeatherConfig holds OpenWeatherMap configuration
type WeatherConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// OpenAIConfig holds chat and image generation configuration
type OpenAIConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	ChatModel     string        `mapstructure:"chat_model"`
	ImageModel    string        `mapstructure:"image_model"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SearchTimeout time.Duration `mapstructure:"search_timeout"`
}

// MealDBConfig holds TheMealDB configuration
type MealDBConfig struct {
	BaseURL              string        `mapstructure:"base_url"`
	CacheTTL             time.Duration `mapstructure:"cache_ttl"`
	Timeout              time.Duration `mapstructure:"timeout"`
	MaxIngredientQueries int           `mapstructure:"max_ingredient_queries"`
	MaxDetails           int           `mapstructure:"max_details"`
}

// PhotosConfig holds stock photo search configuration
type PhotosConfig struct {
	UnsplashAccessKey string        `mapstructure:"unsplash_access_key"`
	UnsplashBaseURL   string        `mapstructure:"unsplash_base_url"`
	PixabayAPIKey     string        `mapstructure:"pixabay_api_key"`
	PixabayBaseURL    string        `mapstructure:"pixabay_base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// ImagesConfig holds image resolution configuration
type ImagesConfig struct {
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

// RecommendConfig holds recommendation and scoring configuration
type RecommendConfig struct {
	MaxResults        int           `mapstructure:"max_results"`
	FavoredTerms      []string      `mapstructure:"favored_terms"`
	FavoredWeight     float64       `mapstructure:"favored_weight"`
	PrimaryCuisineTag string        `mapstructure:"primary_cuisine_tag"`
	CuisineWeight     float64       `mapstructure:"cuisine_weight"`
	PreferenceWeight  float64       `mapstructure:"preference_weight"`
	EnrichmentTimeout time.Duration `mapstructure:"enrichment_timeout"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/fridgechef/")

	// Environment variable settings: FRIDGECHEF_OPENAI_API_KEY -> openai.api_key
	v.SetEnvPrefix("FRIDGECHEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if config.Log.Format == "" {
		config.Log.Format = "json"
		if config.Server.Environment == "development" {
			config.Log.Format = "console"
		}
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory. A missing file is not an
// error and variables already set in the environment win.
func loadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values. Every key gets a default so
// that AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.badger_path", "")

	// Weather defaults
	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.base_url", "https://api.openweathermap.org")
	v.SetDefault("weather.cache_ttl", "30m")
	v.SetDefault("weather.timeout", "3s")

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.image_model", "dall-e-3")
	v.SetDefault("openai.timeout", "30s")
	v.SetDefault("openai.search_timeout", "5s")

	// MealDB defaults
	v.SetDefault("mealdb.base_url", "https://www.themealdb.com/api/json/v1/1")
	v.SetDefault("mealdb.cache_ttl", "24h")
	v.SetDefault("mealdb.timeout", "5s")
	v.SetDefault("mealdb.max_ingredient_queries", 5)
	v.SetDefault("mealdb.max_details", 10)

	// Photo search defaults
	v.SetDefault("photos.unsplash_access_key", "")
	v.SetDefault("photos.unsplash_base_url", "https://api.unsplash.com")
	v.SetDefault("photos.pixabay_api_key", "")
	v.SetDefault("photos.pixabay_base_url", "https://pixabay.com/api")
	v.SetDefault("photos.timeout", "5s")

	// Image defaults
	v.SetDefault("images.probe_timeout", "2s")

	// Recommendation defaults
	v.SetDefault("recommend.max_results", 3)
	v.SetDefault("recommend.favored_terms", []string{})
	v.SetDefault("recommend.favored_weight", 15)
	v.SetDefault("recommend.primary_cuisine_tag", "한식")
	v.SetDefault("recommend.cuisine_weight", 10)
	v.SetDefault("recommend.preference_weight", 5)
	v.SetDefault("recommend.enrichment_timeout", "30s")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "badger" {
		return fmt.Errorf("cache type must be 'memory' or 'badger', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "badger" && config.Cache.BadgerPath == "" {
		return fmt.Errorf("badger path is required when cache type is 'badger'")
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("ratelimit.per_ip must be positive, got: %d", config.RateLimit.PerIP)
	}

	if config.Recommend.MaxResults <= 0 {
		return fmt.Errorf("recommend.max_results must be positive, got: %d", config.Recommend.MaxResults)
	}

	if config.MealDB.MaxIngredientQueries <= 0 || config.MealDB.MaxDetails <= 0 {
		return fmt.Errorf("mealdb query limits must be positive, got: %d queries, %d details",
			config.MealDB.MaxIngredientQueries, config.MealDB.MaxDetails)
	}

	return nil
}
