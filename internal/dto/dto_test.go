package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox-server/internal/domain"
)

func sampleRecipe() *RecipeSource {
	return &RecipeSource{
		Recipe: &domain.Recipe{
			ID:            9,
			UserID:        1,
			Title:         "Vegan Brownies",
			TimeMinutes:   40,
			Price:         550,
			Image:         "uploads/recipe/abc.png",
			ImageBlurHash: "LEHV6nWB2yk8",
			TagIDs:        []int64{2, 3},
			IngredientIDs: []int64{7},
		},
		Tags: []*domain.Tag{
			{ID: 2, UserID: 1, Name: "Vegan"},
			{ID: 3, UserID: 1, Name: "Dessert"},
		},
		Ingredients: []*domain.Ingredient{
			{ID: 7, UserID: 1, Name: "Cocoa"},
		},
	}
}

func TestSelect_TotalOverOperations(t *testing.T) {
	require.Len(t, builders, len(Operations))
	for _, op := range Operations {
		t.Run(op.String(), func(t *testing.T) {
			assert.NotPanics(t, func() { Select(op) })
			assert.NotNil(t, Select(op)(sampleRecipe(), "/media/"))
		})
	}
}

func TestSelect_UnknownPanics(t *testing.T) {
	assert.Panics(t, func() { Select(Operation(0)) })
	assert.Panics(t, func() { Select(OpUploadImage + 1) })
}

func TestRender_Shapes(t *testing.T) {
	tests := []struct {
		op   Operation
		want any
	}{
		{OpList, RecipeSummary{}},
		{OpCreate, RecipeSummary{}},
		{OpUpdate, RecipeSummary{}},
		{OpRetrieve, RecipeDetail{}},
		{OpUploadImage, RecipeImage{}},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.IsType(t, tt.want, Render(tt.op, sampleRecipe(), "/media/"))
		})
	}
}

func TestRender_SummaryCarriesIDs(t *testing.T) {
	got := Render(OpList, sampleRecipe(), "/media/").(RecipeSummary)
	assert.Equal(t, []int64{2, 3}, got.Tags)
	assert.Equal(t, []int64{7}, got.Ingredients)
	assert.Equal(t, "5.50", got.Price)
}

func TestRender_SummaryEmptySets(t *testing.T) {
	r := &RecipeSource{Recipe: &domain.Recipe{ID: 1, Title: "Toast"}}
	got := Render(OpCreate, r, "/media/").(RecipeSummary)
	assert.NotNil(t, got.Tags)
	assert.NotNil(t, got.Ingredients)
	assert.Empty(t, got.Tags)
}

func TestRender_DetailNestsAttributes(t *testing.T) {
	got := Render(OpRetrieve, sampleRecipe(), "/media/").(RecipeDetail)
	assert.Equal(t, []Attribute{{ID: 2, Name: "Vegan"}, {ID: 3, Name: "Dessert"}}, got.Tags)
	assert.Equal(t, []Attribute{{ID: 7, Name: "Cocoa"}}, got.Ingredients)
	require.NotNil(t, got.Image)
	assert.Equal(t, "/media/uploads/recipe/abc.png", *got.Image)
	assert.Equal(t, "LEHV6nWB2yk8", got.ImageBlurHash)
}

func TestRender_ImageOnly(t *testing.T) {
	got := Render(OpUploadImage, sampleRecipe(), "/media").(RecipeImage)
	assert.Equal(t, int64(9), got.ID)
	require.NotNil(t, got.Image)
	assert.Equal(t, "/media/uploads/recipe/abc.png", *got.Image)
}

func TestImageURL_Empty(t *testing.T) {
	assert.Nil(t, ImageURL("/media/", ""))
}

func TestRenderAll(t *testing.T) {
	out := RenderAll(OpList, []*RecipeSource{sampleRecipe(), sampleRecipe()}, "")
	assert.Len(t, out, 2)
	assert.IsType(t, RecipeSummary{}, out[0])
}
