package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox-server/internal/domain"
	"github.com/recipebox/recipebox-server/internal/query"
)

func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	idx, err := NewSearchIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	return idx
}

func recipeDoc(id, userID int64, title, description string, tags, ingredients []string) *RecipeDocument {
	r := &domain.Recipe{ID: id, UserID: userID, Title: title, Description: description}
	r.InitTimestamps()
	return NewRecipeDocument(r, tags, ingredients)
}

func seedIndex(t *testing.T, idx *SearchIndex) {
	t.Helper()
	docs := []*RecipeDocument{
		recipeDoc(1, 1, "Thai Green Curry", "Fragrant and <b>spicy</b>", []string{"Thai"}, []string{"Coconut milk"}),
		recipeDoc(2, 1, "Pancakes", "Fluffy breakfast", []string{"Breakfast"}, []string{"Flour", "Eggs"}),
		recipeDoc(3, 2, "Chicken Curry", "Weeknight staple", []string{"Indian"}, []string{"Chicken"}),
		recipeDoc(4, 2, "Coconut Rice", "", nil, []string{"Rice", "Coconut milk"}),
	}
	require.NoError(t, idx.IndexRecipes(docs))
}

func recipeIDs(hits []Hit) []int64 {
	ids := make([]int64, len(hits))
	for i, h := range hits {
		ids[i] = h.RecipeID
	}
	return ids
}

func TestNewSearchIndex_FreshThenReopened(t *testing.T) {
	dir := t.TempDir()

	idx, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	assert.True(t, idx.Fresh())
	require.NoError(t, idx.IndexRecipe(recipeDoc(1, 1, "Soup", "", nil, nil)))
	require.NoError(t, idx.Close())

	idx, err = NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer idx.Close()
	assert.False(t, idx.Fresh())

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestNewSearchIndex_VersionMismatchRecreates(t *testing.T) {
	dir := t.TempDir()

	idx, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, idx.IndexRecipe(recipeDoc(1, 1, "Soup", "", nil, nil)))
	require.NoError(t, idx.Close())

	require.NoError(t, os.WriteFile(dir+"/recipes.version", []byte("0"), 0o644))

	idx, err = NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer idx.Close()
	assert.True(t, idx.Fresh())

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSearch_MatchesTitle(t *testing.T) {
	idx := setupTestIndex(t)
	seedIndex(t, idx)

	hits, err := idx.Search(context.Background(), SearchParams{Query: "curry"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 3}, recipeIDs(hits))
	for _, h := range hits {
		assert.NotZero(t, h.UserID)
		assert.NotEmpty(t, h.Title)
	}
}

func TestSearch_MatchesIngredientNames(t *testing.T) {
	idx := setupTestIndex(t)
	seedIndex(t, idx)

	hits, err := idx.Search(context.Background(), SearchParams{Query: "coconut"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 4}, recipeIDs(hits))
}

func TestSearch_MatchesTagNames(t *testing.T) {
	idx := setupTestIndex(t)
	seedIndex(t, idx)

	hits, err := idx.Search(context.Background(), SearchParams{Query: "breakfast"})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, int64(2), hits[0].RecipeID)
}

func TestSearch_DescriptionMarkupStripped(t *testing.T) {
	idx := setupTestIndex(t)
	seedIndex(t, idx)

	hits, err := idx.Search(context.Background(), SearchParams{Query: "spicy"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, recipeIDs(hits))
}

func TestSearch_EmptyQuery(t *testing.T) {
	idx := setupTestIndex(t)
	seedIndex(t, idx)

	hits, err := idx.Search(context.Background(), SearchParams{Query: "   "})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_OwnershipFilter(t *testing.T) {
	idx := setupTestIndex(t)
	seedIndex(t, idx)

	hits, err := idx.Search(context.Background(), SearchParams{Query: "curry"})
	require.NoError(t, err)

	owned := query.FilterOwned(hits, 2)
	assert.Equal(t, []int64{3}, recipeIDs(owned))
}

func TestDeleteRecipe(t *testing.T) {
	idx := setupTestIndex(t)
	seedIndex(t, idx)

	require.NoError(t, idx.DeleteRecipe(3))

	hits, err := idx.Search(context.Background(), SearchParams{Query: "curry"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, recipeIDs(hits))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestIndexRecipe_Replaces(t *testing.T) {
	idx := setupTestIndex(t)
	seedIndex(t, idx)

	require.NoError(t, idx.IndexRecipe(recipeDoc(2, 1, "Waffles", "", nil, nil)))

	hits, err := idx.Search(context.Background(), SearchParams{Query: "pancakes"})
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.Search(context.Background(), SearchParams{Query: "waffles"})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, recipeIDs(hits))
}

func TestRebuild(t *testing.T) {
	idx := setupTestIndex(t)
	seedIndex(t, idx)

	require.NoError(t, idx.Rebuild())

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecipeDocument_ToMap(t *testing.T) {
	r := &domain.Recipe{ID: 7, UserID: 3, Title: "Soup"}
	r.CreatedAt = time.UnixMilli(1000)

	m := NewRecipeDocument(r, []string{"Quick", "Vegan"}, nil).ToMap()
	assert.Equal(t, "7", m["id"])
	assert.Equal(t, float64(3), m["user_id"])
	assert.Equal(t, "Quick Vegan", m["tags"])
	assert.NotContains(t, m, "ingredients")
	assert.NotContains(t, m, "description")
}
