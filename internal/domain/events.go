package domain

import "time"

// TopicRecipesGenerated is the notification emitted by the enrichment pass.
const TopicRecipesGenerated = "recipes.generated"

// GeneratedRecipesEvent carries the candidates produced by one enrichment pass.
type GeneratedRecipesEvent struct {
	RequestID   string    `json:"requestId"`
	Recipes     []Recipe  `json:"recipes"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ShoppingSuggestions is the shopping view built from ratings, pantry and season.
type ShoppingSuggestions struct {
	FrequentlyUsed []string             `json:"frequentlyUsed"`
	Missing        []string             `json:"missing"`
	Month          int                  `json:"month"`
	Seasonal       []SeasonalIngredient `json:"seasonal"`
}

// SeasonalIngredient is an in-season ingredient and whether the pantry has it.
type SeasonalIngredient struct {
	Name  string `json:"name"`
	Owned bool   `json:"owned"`
}
