// Package search provides full-text search over recipes using Bleve.
// Titles, descriptions and the names of a recipe's tags and ingredients
// are indexed; results carry the owner so callers can scope them.
package search

import (
	"strconv"
	"strings"

	"github.com/recipebox/recipebox-server/internal/domain"
	"github.com/recipebox/recipebox-server/internal/textutil"
)

// RecipeDocument is the indexed form of a recipe.
//
// Tag and ingredient names are denormalized into the document so a single
// query matches "curry" whether it appears in the title or as a tag.
type RecipeDocument struct {
	ID          string   `json:"id"` // Decimal recipe ID
	UserID      int64    `json:"user_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"` // Plain text, markup stripped
	Tags        []string `json:"tags,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	CreatedAt   int64    `json:"created_at"` // Unix millis
}

// NewRecipeDocument builds the document for r with the given tag and
// ingredient names.
func NewRecipeDocument(r *domain.Recipe, tags, ingredients []string) *RecipeDocument {
	return &RecipeDocument{
		ID:          DocumentID(r.ID),
		UserID:      r.UserID,
		Title:       r.Title,
		Description: textutil.PlainText(r.Description),
		Tags:        tags,
		Ingredients: ingredients,
		CreatedAt:   r.CreatedAt.UnixMilli(),
	}
}

// DocumentID returns the index key for a recipe ID.
func DocumentID(recipeID int64) string {
	return strconv.FormatInt(recipeID, 10)
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *RecipeDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"user_id":    float64(d.UserID),
		"title":      d.Title,
		"created_at": float64(d.CreatedAt),
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.Tags) > 0 {
		m["tags"] = strings.Join(d.Tags, " ")
	}
	if len(d.Ingredients) > 0 {
		m["ingredients"] = strings.Join(d.Ingredients, " ")
	}
	return m
}
