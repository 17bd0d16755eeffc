package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/recipebox/recipebox-server/internal/dto"
	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipe/tags",
		Summary:     "List tags",
		Description: "Returns the current user's tags, ordered by name descending",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createTag",
		Method:        http.MethodPost,
		Path:          "/api/v1/recipe/tags",
		Summary:       "Create tag",
		Description:   "Creates a new tag",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipe/tags/{id}",
		Summary:     "Get tag",
		Description: "Returns a tag by ID",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTag",
		Method:      http.MethodPatch,
		Path:        "/api/v1/recipe/tags/{id}",
		Summary:     "Update tag",
		Description: "Renames a tag",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceTag",
		Method:      http.MethodPut,
		Path:        "/api/v1/recipe/tags/{id}",
		Summary:     "Replace tag",
		Description: "Renames a tag",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteTag",
		Method:        http.MethodDelete,
		Path:          "/api/v1/recipe/tags/{id}",
		Summary:       "Delete tag",
		Description:   "Deletes a tag and detaches it from every recipe",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTag)
}

// === DTOs ===
// Tags and ingredients share request and response shapes.

// ListAttributesInput contains parameters for listing tags or ingredients.
type ListAttributesInput struct {
	AssignedOnly string `query:"assigned_only" doc:"When true (or 1), only items used by at least one recipe"`
}

// ListAttributesOutput wraps a list of tags or ingredients for Huma.
type ListAttributesOutput struct {
	Body []dto.Attribute
}

// AttributeRequest is the request body for creating or renaming a tag or ingredient.
type AttributeRequest struct {
	Name string `json:"name" doc:"Name"`
}

// CreateAttributeInput wraps the create request for Huma.
type CreateAttributeInput struct {
	Body AttributeRequest
}

// AttributeOutput wraps a tag or ingredient for Huma.
type AttributeOutput struct {
	Body dto.Attribute
}

// AttributeIDInput contains the path ID of a tag or ingredient.
type AttributeIDInput struct {
	ID int64 `path:"id" doc:"ID"`
}

// UpdateAttributeInput wraps the rename request for Huma.
type UpdateAttributeInput struct {
	ID   int64 `path:"id" doc:"ID"`
	Body AttributeRequest
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *ListAttributesInput) (*ListAttributesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	assignedOnly, err := parseAssignedOnly(input.AssignedOnly)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.List(ctx, userID, assignedOnly)
	if err != nil {
		return nil, err
	}

	out := make([]dto.Attribute, 0, len(tags))
	for _, t := range tags {
		out = append(out, dto.NewTag(t))
	}
	return &ListAttributesOutput{Body: out}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateAttributeInput) (*AttributeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.Create(ctx, userID, service.AttributeRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &AttributeOutput{Body: dto.NewTag(tag)}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *AttributeIDInput) (*AttributeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &AttributeOutput{Body: dto.NewTag(tag)}, nil
}

func (s *Server) handleUpdateTag(ctx context.Context, input *UpdateAttributeInput) (*AttributeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.Update(ctx, userID, input.ID, service.AttributeRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &AttributeOutput{Body: dto.NewTag(tag)}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *AttributeIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tag.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

// parseAssignedOnly accepts an empty value, a boolean, or 0/1.
func parseAssignedOnly(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domainerrors.FieldValidation("assigned_only", "assigned_only must be true, false, 1 or 0")
	}
	return v, nil
}
