package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/recipebox/recipebox-server/internal/domain"
	"github.com/recipebox/recipebox-server/internal/dto"
	"github.com/recipebox/recipebox-server/internal/service"
)

func (s *Server) registerRecipeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipe/recipes",
		Summary:     "List recipes",
		Description: "Returns the current user's recipes, newest first. tags and ingredients are comma-separated ID lists; a recipe matches if it has any listed tag and any listed ingredient.",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createRecipe",
		Method:        http.MethodPost,
		Path:          "/api/v1/recipe/recipes",
		Summary:       "Create recipe",
		Description:   "Creates a recipe. Tags and ingredients must belong to the current user.",
		Tags:          []string{"Recipes"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipe/recipes/search",
		Summary:     "Search recipes",
		Description: "Full-text search over titles, descriptions, tag and ingredient names of the current user's recipes",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipe",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipe/recipes/{id}",
		Summary:     "Get recipe",
		Description: "Returns a recipe with nested tags, ingredients and image",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceRecipe",
		Method:      http.MethodPut,
		Path:        "/api/v1/recipe/recipes/{id}",
		Summary:     "Replace recipe",
		Description: "Full update. Omitted optional fields, tags and ingredients are cleared.",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReplaceRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRecipe",
		Method:      http.MethodPatch,
		Path:        "/api/v1/recipe/recipes/{id}",
		Summary:     "Update recipe",
		Description: "Partial update. Only fields present in the body change.",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteRecipe",
		Method:        http.MethodDelete,
		Path:          "/api/v1/recipe/recipes/{id}",
		Summary:       "Delete recipe",
		Description:   "Deletes a recipe and its image file",
		Tags:          []string{"Recipes"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteRecipeImage",
		Method:        http.MethodDelete,
		Path:          "/api/v1/recipe/recipes/{id}/image",
		Summary:       "Delete recipe image",
		Description:   "Clears the recipe's image and removes the file",
		Tags:          []string{"Recipes"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteRecipeImage)
}

// === DTOs ===

// ListRecipesInput contains parameters for listing recipes.
type ListRecipesInput struct {
	Tags        string `query:"tags" doc:"Comma-separated tag IDs" example:"1,2"`
	Ingredients string `query:"ingredients" doc:"Comma-separated ingredient IDs" example:"3"`
	Limit       int    `query:"limit" minimum:"0" maximum:"500" doc:"Page size, 0 for all"`
	Offset      int    `query:"offset" minimum:"0" doc:"Rows to skip"`
}

// RecipeListOutput wraps recipe summaries for Huma.
type RecipeListOutput struct {
	Body []any
}

// RecipeOutput wraps one recipe representation for Huma. The shape
// depends on the operation (summary or detail).
type RecipeOutput struct {
	Body any
}

// RecipeRequest is the request body for create and full update.
type RecipeRequest struct {
	Title       string  `json:"title" maxLength:"255" doc:"Title"`
	TimeMinutes int     `json:"time_minutes" minimum:"0" doc:"Preparation time in minutes"`
	Price       string  `json:"price" doc:"Price with at most two decimals" example:"5.50"`
	Link        string  `json:"link,omitempty" doc:"Source URL"`
	Description string  `json:"description,omitempty" doc:"Free text"`
	Tags        []int64 `json:"tags,omitempty" doc:"Tag IDs"`
	Ingredients []int64 `json:"ingredients,omitempty" doc:"Ingredient IDs"`
}

func (r RecipeRequest) toService() service.RecipeRequest {
	return service.RecipeRequest{
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Description: r.Description,
		Tags:        r.Tags,
		Ingredients: r.Ingredients,
	}
}

// CreateRecipeInput wraps the create request for Huma.
type CreateRecipeInput struct {
	Body RecipeRequest
}

// RecipeIDInput contains the path ID of a recipe.
type RecipeIDInput struct {
	ID int64 `path:"id" doc:"Recipe ID"`
}

// ReplaceRecipeInput wraps the full update for Huma.
type ReplaceRecipeInput struct {
	ID   int64 `path:"id" doc:"Recipe ID"`
	Body RecipeRequest
}

// RecipePatchRequest is the request body for partial updates.
type RecipePatchRequest struct {
	Title       *string  `json:"title,omitempty" maxLength:"255" doc:"Title"`
	TimeMinutes *int     `json:"time_minutes,omitempty" minimum:"0" doc:"Preparation time in minutes"`
	Price       *string  `json:"price,omitempty" doc:"Price with at most two decimals"`
	Link        *string  `json:"link,omitempty" doc:"Source URL, empty to clear"`
	Description *string  `json:"description,omitempty" doc:"Free text"`
	Tags        *[]int64 `json:"tags,omitempty" doc:"Replaces the tag set; [] clears it"`
	Ingredients *[]int64 `json:"ingredients,omitempty" doc:"Replaces the ingredient set; [] clears it"`
}

// UpdateRecipeInput wraps the partial update for Huma.
type UpdateRecipeInput struct {
	ID   int64 `path:"id" doc:"Recipe ID"`
	Body RecipePatchRequest
}

// SearchRecipesInput contains parameters for recipe search.
type SearchRecipesInput struct {
	Query  string `query:"q" doc:"Search text"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" default:"20" doc:"Maximum results"`
	Offset int    `query:"offset" minimum:"0" doc:"Results to skip"`
}

// === Handlers ===

func (s *Server) handleListRecipes(ctx context.Context, input *ListRecipesInput) (*RecipeListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recipes, err := s.services.Recipe.List(ctx, userID, service.ListParams{
		Tags:        input.Tags,
		Ingredients: input.Ingredients,
		Limit:       input.Limit,
		Offset:      input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &RecipeListOutput{Body: s.renderAll(dto.OpList, recipes)}, nil
}

func (s *Server) handleCreateRecipe(ctx context.Context, input *CreateRecipeInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipe.Create(ctx, userID, input.Body.toService())
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: s.render(dto.OpCreate, recipe)}, nil
}

func (s *Server) handleSearchRecipes(ctx context.Context, input *SearchRecipesInput) (*RecipeListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recipes, err := s.services.Recipe.Search(ctx, userID, input.Query, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}
	return &RecipeListOutput{Body: s.renderAll(dto.OpList, recipes)}, nil
}

func (s *Server) handleGetRecipe(ctx context.Context, input *RecipeIDInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Recipe.GetDetail(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: dto.Render(dto.OpRetrieve, detail, s.opts.MediaURL)}, nil
}

func (s *Server) handleReplaceRecipe(ctx context.Context, input *ReplaceRecipeInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipe.Update(ctx, userID, input.ID, input.Body.toService())
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: s.render(dto.OpUpdate, recipe)}, nil
}

func (s *Server) handleUpdateRecipe(ctx context.Context, input *UpdateRecipeInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	b := input.Body
	recipe, err := s.services.Recipe.Patch(ctx, userID, input.ID, service.RecipePatch{
		Title:       b.Title,
		TimeMinutes: b.TimeMinutes,
		Price:       b.Price,
		Link:        b.Link,
		Description: b.Description,
		Tags:        b.Tags,
		Ingredients: b.Ingredients,
	})
	if err != nil {
		return nil, err
	}
	return &RecipeOutput{Body: s.render(dto.OpUpdate, recipe)}, nil
}

func (s *Server) handleDeleteRecipe(ctx context.Context, input *RecipeIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Recipe.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleDeleteRecipeImage(ctx context.Context, input *RecipeIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Recipe.DeleteImage(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

// === Helpers ===

// render picks the representation for op. Only the detail builder reads
// related entities, so a bare recipe is enough for the others.
func (s *Server) render(op dto.Operation, r *domain.Recipe) any {
	return dto.Render(op, &domain.RecipeDetail{Recipe: r}, s.opts.MediaURL)
}

func (s *Server) renderAll(op dto.Operation, recipes []*domain.Recipe) []any {
	sources := make([]*dto.RecipeSource, len(recipes))
	for i, r := range recipes {
		sources[i] = &domain.RecipeDetail{Recipe: r}
	}
	return dto.RenderAll(op, sources, s.opts.MediaURL)
}
