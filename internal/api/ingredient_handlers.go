package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/recipebox/recipebox-server/internal/dto"
	"github.com/recipebox/recipebox-server/internal/service"
)

func (s *Server) registerIngredientRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listIngredients",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipe/ingredients",
		Summary:     "List ingredients",
		Description: "Returns the current user's ingredients, ordered by name descending",
		Tags:        []string{"Ingredients"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListIngredients)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createIngredient",
		Method:        http.MethodPost,
		Path:          "/api/v1/recipe/ingredients",
		Summary:       "Create ingredient",
		Description:   "Creates a new ingredient",
		Tags:          []string{"Ingredients"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateIngredient)

	huma.Register(s.api, huma.Operation{
		OperationID: "getIngredient",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipe/ingredients/{id}",
		Summary:     "Get ingredient",
		Description: "Returns an ingredient by ID",
		Tags:        []string{"Ingredients"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetIngredient)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateIngredient",
		Method:      http.MethodPatch,
		Path:        "/api/v1/recipe/ingredients/{id}",
		Summary:     "Update ingredient",
		Description: "Renames an ingredient",
		Tags:        []string{"Ingredients"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateIngredient)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceIngredient",
		Method:      http.MethodPut,
		Path:        "/api/v1/recipe/ingredients/{id}",
		Summary:     "Replace ingredient",
		Description: "Renames an ingredient",
		Tags:        []string{"Ingredients"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateIngredient)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteIngredient",
		Method:        http.MethodDelete,
		Path:          "/api/v1/recipe/ingredients/{id}",
		Summary:       "Delete ingredient",
		Description:   "Deletes an ingredient and detaches it from every recipe",
		Tags:          []string{"Ingredients"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteIngredient)
}

func (s *Server) handleListIngredients(ctx context.Context, input *ListAttributesInput) (*ListAttributesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	assignedOnly, err := parseAssignedOnly(input.AssignedOnly)
	if err != nil {
		return nil, err
	}

	ingredients, err := s.services.Ingredient.List(ctx, userID, assignedOnly)
	if err != nil {
		return nil, err
	}

	out := make([]dto.Attribute, 0, len(ingredients))
	for _, i := range ingredients {
		out = append(out, dto.NewIngredient(i))
	}
	return &ListAttributesOutput{Body: out}, nil
}

func (s *Server) handleCreateIngredient(ctx context.Context, input *CreateAttributeInput) (*AttributeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	ing, err := s.services.Ingredient.Create(ctx, userID, service.AttributeRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &AttributeOutput{Body: dto.NewIngredient(ing)}, nil
}

func (s *Server) handleGetIngredient(ctx context.Context, input *AttributeIDInput) (*AttributeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	ing, err := s.services.Ingredient.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &AttributeOutput{Body: dto.NewIngredient(ing)}, nil
}

func (s *Server) handleUpdateIngredient(ctx context.Context, input *UpdateAttributeInput) (*AttributeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	ing, err := s.services.Ingredient.Update(ctx, userID, input.ID, service.AttributeRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &AttributeOutput{Body: dto.NewIngredient(ing)}, nil
}

func (s *Server) handleDeleteIngredient(ctx context.Context, input *AttributeIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Ingredient.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
