// Package pantry keeps the household's ingredients, profile and ratings.
package pantry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fridgechef/backend/internal/domain"
)

var _ domain.PantryStore = (*MemoryStore)(nil)

// MemoryStore is an in-process PantryStore with the mutators the HTTP layer needs.
// Reads return copies so callers cannot mutate stored state.
type MemoryStore struct {
	mu          sync.RWMutex
	ingredients []domain.Ingredient
	profile     *domain.UserProfile
	ratings     []domain.Rating
	now         func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Ingredients returns the pantry in insertion order.
func (s *MemoryStore) Ingredients(ctx context.Context) ([]domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Ingredient(nil), s.ingredients...), nil
}

// Profile returns the profile, or nil when onboarding has not happened yet.
func (s *MemoryStore) Profile(ctx context.Context) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil, nil
	}
	p := *s.profile
	p.Allergies = append([]string(nil), s.profile.Allergies...)
	p.Preferences = append([]string(nil), s.profile.Preferences...)
	return &p, nil
}

// Ratings returns every rating in insertion order.
func (s *MemoryStore) Ratings(ctx context.Context) ([]domain.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Rating(nil), s.ratings...), nil
}

// SetProfile replaces the profile.
func (s *MemoryStore) SetProfile(ctx context.Context, profile domain.UserProfile) error {
	if strings.TrimSpace(profile.City) == "" {
		return fmt.Errorf("%w: city is required", domain.ErrInvalidRequest)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &profile
	return nil
}

// AddIngredient appends an ingredient, assigning an ID when none is given.
func (s *MemoryStore) AddIngredient(ctx context.Context, ing domain.Ingredient) (domain.Ingredient, error) {
	ing.Name = strings.TrimSpace(ing.Name)
	if ing.Name == "" {
		return domain.Ingredient{}, fmt.Errorf("%w: ingredient name is required", domain.ErrInvalidRequest)
	}
	if ing.ID == "" {
		ing.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingredients = append(s.ingredients, ing)
	return ing, nil
}

// RemoveIngredient deletes the ingredient with the given ID.
func (s *MemoryStore) RemoveIngredient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, ing := range s.ingredients {
		if ing.ID == id {
			s.ingredients = append(s.ingredients[:i], s.ingredients[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: ingredient %s", domain.ErrNotFound, id)
}

// AddRating records a rating, stamping CreatedAt when unset.
func (s *MemoryStore) AddRating(ctx context.Context, r domain.Rating) (domain.Rating, error) {
	if r.RecipeID == "" || r.Rating < 1 || r.Rating > 5 {
		return domain.Rating{}, fmt.Errorf("%w: rating must reference a recipe and be 1-5", domain.ErrInvalidRequest)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings = append(s.ratings, r)
	return r, nil
}
