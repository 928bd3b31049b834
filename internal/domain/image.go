package domain

import "fmt"

// ImageCategory distinguishes finished dishes from raw ingredients.
type ImageCategory string

const (
	CategoryRecipe     ImageCategory = "recipe"
	CategoryIngredient ImageCategory = "ingredient"
)

// Valid reports whether c is a known category.
func (c ImageCategory) Valid() bool {
	return c == CategoryRecipe || c == CategoryIngredient
}

// ImageCacheEntry is a resolved image reference. Tier is kept for diagnostics only.
type ImageCacheEntry struct {
	Key       string `json:"key"`
	Reference string `json:"reference"`
	Tier      string `json:"tier"`
}

// ImageCacheKey builds the "category:subject" key shared by every image cache.
func ImageCacheKey(subject string, category ImageCategory) string {
	return fmt.Sprintf("%s:%s", category, subject)
}
