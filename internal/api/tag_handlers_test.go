package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attributeNames(t *testing.T, body []byte) []string {
	t.Helper()
	var env testEnvelope[[]attributeData]
	require.NoError(t, json.Unmarshal(body, &env))
	names := make([]string, len(env.Data))
	for i, a := range env.Data {
		names[i] = a.Name
	}
	return names
}

func TestListTags_EmptyInitially(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "cook@example.com")

	resp := ts.api.Get("/api/v1/recipe/tags", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var env testEnvelope[[]attributeData]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.NotNil(t, env.Data)
	assert.Empty(t, env.Data)
}

func TestListTags_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/recipe/tags")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// Auth is checked before the body is validated.
	resp = ts.api.Post("/api/v1/recipe/tags", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestListTags_ScopedAndOrdered(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "cook@example.com")
	other := ts.registerAndLogin(t, "other@example.com")

	ts.createTag(t, token, "Breakfast")
	ts.createTag(t, token, "Vegan")
	ts.createTag(t, other, "Fruity")

	resp := ts.api.Get("/api/v1/recipe/tags", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"Vegan", "Breakfast"}, attributeNames(t, resp.Body.Bytes()))
}

func TestListTags_AssignedOnly(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "cook@example.com")

	breakfast := ts.createTag(t, token, "Breakfast")
	ts.createTag(t, token, "Lunch")
	ts.createRecipe(t, token, "Pancakes", []int64{breakfast}, nil)
	ts.createRecipe(t, token, "Porridge", []int64{breakfast}, nil)

	for _, v := range []string{"1", "true"} {
		resp := ts.api.Get("/api/v1/recipe/tags?assigned_only="+v, bearer(token))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, []string{"Breakfast"}, attributeNames(t, resp.Body.Bytes()), v)
	}

	resp := ts.api.Get("/api/v1/recipe/tags?assigned_only=0", bearer(token))
	assert.Len(t, attributeNames(t, resp.Body.Bytes()), 2)

	resp = ts.api.Get("/api/v1/recipe/tags?assigned_only=maybe", bearer(token))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateTag_NormalizesName(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "cook@example.com")

	resp := ts.api.Post("/api/v1/recipe/tags", bearer(token), map[string]any{"name": "  Quick   Meals "})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var env testEnvelope[attributeData]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, "Quick Meals", env.Data.Name)
}

func TestCreateTag_BlankName(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "cook@example.com")

	resp := ts.api.Post("/api/v1/recipe/tags", bearer(token), map[string]any{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateTag(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "cook@example.com")
	id := ts.createTag(t, token, "Dinner")
	path := fmt.Sprintf("/api/v1/recipe/tags/%d", id)

	resp := ts.api.Patch(path, bearer(token), map[string]any{"name": "Supper"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get(path, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	var env testEnvelope[attributeData]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, "Supper", env.Data.Name)
}

func TestTag_OtherUsersTagIsNotFound(t *testing.T) {
	ts := setupTestServer(t)
	owner := ts.registerAndLogin(t, "owner@example.com")
	intruder := ts.registerAndLogin(t, "intruder@example.com")
	id := ts.createTag(t, owner, "Secret")
	path := fmt.Sprintf("/api/v1/recipe/tags/%d", id)

	assert.Equal(t, http.StatusNotFound, ts.api.Get(path, bearer(intruder)).Code)
	assert.Equal(t, http.StatusNotFound, ts.api.Patch(path, bearer(intruder), map[string]any{"name": "Mine"}).Code)
	assert.Equal(t, http.StatusNotFound, ts.api.Delete(path, bearer(intruder)).Code)

	missing := ts.api.Get("/api/v1/recipe/tags/999999", bearer(intruder))
	assert.Equal(t, http.StatusNotFound, missing.Code)

	// Same response whether the tag is foreign or absent.
	var a, b testEnvelope[any]
	require.NoError(t, json.Unmarshal(ts.api.Get(path, bearer(intruder)).Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(missing.Body.Bytes(), &b))
	assert.Equal(t, a.Message, b.Message)

	resp := ts.api.Get(path, bearer(owner))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestDeleteTag_DetachesFromRecipes(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "cook@example.com")
	tag := ts.createTag(t, token, "Holiday")
	recipeID := ts.createRecipe(t, token, "Roast", []int64{tag}, nil)

	resp := ts.api.Delete(fmt.Sprintf("/api/v1/recipe/tags/%d", tag), bearer(token))
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get(recipePath(recipeID, ""), bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	var env testEnvelope[recipeDetailData]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Empty(t, env.Data.Tags)
}

func TestIngredients_CRUD(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "cook@example.com")

	salt := ts.createIngredient(t, token, "Salt")
	ts.createIngredient(t, token, "Pepper")

	resp := ts.api.Get("/api/v1/recipe/ingredients", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"Salt", "Pepper"}, attributeNames(t, resp.Body.Bytes()))

	path := fmt.Sprintf("/api/v1/recipe/ingredients/%d", salt)
	resp = ts.api.Put(path, bearer(token), map[string]any{"name": "Sea Salt"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Delete(path, bearer(token))
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/recipe/ingredients", bearer(token))
	assert.Equal(t, []string{"Pepper"}, attributeNames(t, resp.Body.Bytes()))
}

func TestIngredients_AssignedOnly(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "cook@example.com")

	eggs := ts.createIngredient(t, token, "Eggs")
	ts.createIngredient(t, token, "Kale")
	ts.createRecipe(t, token, "Omelette", nil, []int64{eggs})
	ts.createRecipe(t, token, "Frittata", nil, []int64{eggs})

	resp := ts.api.Get("/api/v1/recipe/ingredients?assigned_only=1", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"Eggs"}, attributeNames(t, resp.Body.Bytes()))
}

func TestIngredients_OtherUsersIngredientIsNotFound(t *testing.T) {
	ts := setupTestServer(t)
	owner := ts.registerAndLogin(t, "owner@example.com")
	intruder := ts.registerAndLogin(t, "intruder@example.com")
	id := ts.createIngredient(t, owner, "Saffron")

	path := fmt.Sprintf("/api/v1/recipe/ingredients/%d", id)
	assert.Equal(t, http.StatusNotFound, ts.api.Patch(path, bearer(intruder), map[string]any{"name": "Mine"}).Code)
	assert.Equal(t, http.StatusNotFound, ts.api.Delete(path, bearer(intruder)).Code)
}
