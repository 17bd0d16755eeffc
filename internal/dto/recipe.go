// Package dto provides the client-facing representations of recipes,
// tags, ingredients and users for API responses and SSE events.
//
// Recipes have three shapes. Which one an endpoint returns is decided
// by its Operation (see Select), never by the handler.
package dto

import (
	"strings"

	"github.com/recipebox/recipebox-server/internal/domain"
)

// RecipeSource is a recipe with whatever related entities the caller
// loaded. Tags and Ingredients are only read by the detail builder.
type RecipeSource = domain.RecipeDetail

// Attribute is a tag or ingredient as nested in a recipe detail.
type Attribute struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RecipeSummary carries tag and ingredient IDs only. Returned by list,
// create and update.
type RecipeSummary struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	TimeMinutes int     `json:"time_minutes"`
	Price       string  `json:"price"`
	Link        string  `json:"link"`
	Description string  `json:"description"`
	Tags        []int64 `json:"tags"`
	Ingredients []int64 `json:"ingredients"`
}

// RecipeDetail nests tags and ingredients and includes the image.
type RecipeDetail struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	TimeMinutes   int         `json:"time_minutes"`
	Price         string      `json:"price"`
	Link          string      `json:"link"`
	Description   string      `json:"description"`
	Tags          []Attribute `json:"tags"`
	Ingredients   []Attribute `json:"ingredients"`
	Image         *string     `json:"image"`
	ImageBlurHash string      `json:"image_blur_hash,omitempty"`
}

// RecipeImage is the upload-image response.
type RecipeImage struct {
	ID    int64   `json:"id"`
	Image *string `json:"image"`
}

// Tag is the client-facing tag.
type Tag = Attribute

// Ingredient is the client-facing ingredient.
type Ingredient = Attribute

// NewTag converts a domain tag.
func NewTag(t *domain.Tag) Tag {
	return Tag{ID: t.ID, Name: t.Name}
}

// NewIngredient converts a domain ingredient.
func NewIngredient(i *domain.Ingredient) Ingredient {
	return Ingredient{ID: i.ID, Name: i.Name}
}

// ImageURL joins mediaURL and a stored image reference. An empty
// reference yields nil.
func ImageURL(mediaURL, ref string) *string {
	if ref == "" {
		return nil
	}
	u := strings.TrimSuffix(mediaURL, "/") + "/" + ref
	return &u
}

// NewRecipeSummary converts a domain recipe to its summary form.
func NewRecipeSummary(r *domain.Recipe) RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.String(),
		Link:        r.Link,
		Description: r.Description,
		Tags:        nonNil(r.TagIDs),
		Ingredients: nonNil(r.IngredientIDs),
	}
}

func buildSummary(r *RecipeSource, _ string) any {
	return NewRecipeSummary(r.Recipe)
}

func buildDetail(r *RecipeSource, mediaURL string) any {
	d := RecipeDetail{
		ID:            r.ID,
		Title:         r.Title,
		TimeMinutes:   r.TimeMinutes,
		Price:         r.Price.String(),
		Link:          r.Link,
		Description:   r.Description,
		Tags:          make([]Attribute, 0, len(r.Tags)),
		Ingredients:   make([]Attribute, 0, len(r.Ingredients)),
		Image:         ImageURL(mediaURL, r.Image),
		ImageBlurHash: r.ImageBlurHash,
	}
	for _, t := range r.Tags {
		d.Tags = append(d.Tags, NewTag(t))
	}
	for _, i := range r.Ingredients {
		d.Ingredients = append(d.Ingredients, NewIngredient(i))
	}
	return d
}

func buildImage(r *RecipeSource, mediaURL string) any {
	return RecipeImage{ID: r.ID, Image: ImageURL(mediaURL, r.Image)}
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
