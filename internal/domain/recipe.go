package domain

import "slices"

// Recipe is a user-owned recipe with tag and ingredient memberships.
// TagIDs and IngredientIDs are unordered sets; the store keeps them sorted.
type Recipe struct {
	Timestamps
	ID            int64   `json:"id"`
	UserID        int64   `json:"user_id"`
	Title         string  `json:"title"`
	TimeMinutes   int     `json:"time_minutes"`
	Price         Price   `json:"price"`
	Link          string  `json:"link,omitempty"`
	Description   string  `json:"description,omitempty"`
	Image         string  `json:"image,omitempty"`
	ImageBlurHash string  `json:"image_blur_hash,omitempty"`
	TagIDs        []int64 `json:"tags"`
	IngredientIDs []int64 `json:"ingredients"`
}

// OwnerID returns the ID of the user who owns the recipe.
func (r *Recipe) OwnerID() int64 { return r.UserID }

// HasAnyTag reports whether the recipe references at least one of ids.
func (r *Recipe) HasAnyTag(ids []int64) bool {
	return containsAny(r.TagIDs, ids)
}

// HasAnyIngredient reports whether the recipe references at least one of ids.
func (r *Recipe) HasAnyIngredient(ids []int64) bool {
	return containsAny(r.IngredientIDs, ids)
}

// HasImage reports whether an image is attached.
func (r *Recipe) HasImage() bool { return r.Image != "" }

func (r *Recipe) String() string { return r.Title }

func containsAny(have, want []int64) bool {
	for _, id := range want {
		if slices.Contains(have, id) {
			return true
		}
	}
	return false
}

// RecipeDetail is a recipe with its tags and ingredients loaded.
type RecipeDetail struct {
	*Recipe
	Tags        []*Tag
	Ingredients []*Ingredient
}
