package service

import (
	"context"
	"log/slog"

	"github.com/recipebox/recipebox-server/internal/domain"
	"github.com/recipebox/recipebox-server/internal/dto"
	"github.com/recipebox/recipebox-server/internal/query"
	"github.com/recipebox/recipebox-server/internal/sse"
	"github.com/recipebox/recipebox-server/internal/store"
	"github.com/recipebox/recipebox-server/internal/textutil"
	"github.com/recipebox/recipebox-server/internal/validation"
)

// IngredientService manages a user's ingredients.
type IngredientService struct {
	store     store.Store
	indexer   RecipeIndexer
	publisher Publisher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewIngredientService creates a new ingredient service. indexer and publisher may be nil.
func NewIngredientService(st store.Store, indexer RecipeIndexer, publisher Publisher, validator *validation.Validator, logger *slog.Logger) *IngredientService {
	return &IngredientService{
		store:     st,
		indexer:   indexer,
		publisher: publisherOrNop(publisher),
		validator: validator,
		logger:    logger,
	}
}

// List returns the user's ingredients ordered by name descending. With
// assignedOnly, only ingredients used by at least one of the user's recipes.
func (s *IngredientService) List(ctx context.Context, userID int64, assignedOnly bool) ([]*domain.Ingredient, error) {
	ingredients, err := s.store.ListIngredients(ctx, userID, assignedOnly)
	if err != nil {
		return nil, translate(err, "ingredient", "list")
	}
	return query.FilterOwned(ingredients, userID), nil
}

// Get returns one of the user's ingredients.
func (s *IngredientService) Get(ctx context.Context, userID, id int64) (*domain.Ingredient, error) {
	ing, err := s.store.GetIngredient(ctx, id)
	if err != nil {
		return nil, translate(err, "ingredient", "get")
	}
	if err := query.CheckOwned("ingredient", ing, userID); err != nil {
		return nil, err
	}
	return ing, nil
}

// Create creates an ingredient owned by userID.
func (s *IngredientService) Create(ctx context.Context, userID int64, req AttributeRequest) (*domain.Ingredient, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	ing := &domain.Ingredient{UserID: userID, Name: textutil.NormalizeName(req.Name)}
	ing.InitTimestamps()

	if err := s.store.CreateIngredient(ctx, ing); err != nil {
		return nil, translate(err, "ingredient", "create")
	}

	s.publisher.Publish(sse.NewAttributeEvent(sse.EventIngredientCreated, userID, dto.NewIngredient(ing)))
	return ing, nil
}

// Update renames one of the user's ingredients.
func (s *IngredientService) Update(ctx context.Context, userID, id int64, req AttributeRequest) (*domain.Ingredient, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	ing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	previous := ing.Name
	ing.Name = textutil.NormalizeName(req.Name)
	ing.Touch()
	if err := s.store.UpdateIngredient(ctx, ing); err != nil {
		return nil, translate(err, "ingredient", "update")
	}

	if !textutil.SameName(previous, ing.Name) {
		s.reindexUsing(ctx, userID, query.Spec{}.WithIngredients([]int64{id}))
	}
	s.publisher.Publish(sse.NewAttributeEvent(sse.EventIngredientUpdated, userID, dto.NewIngredient(ing)))
	return ing, nil
}

// Delete deletes one of the user's ingredients and its recipe associations.
func (s *IngredientService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	affected := s.recipesUsing(ctx, userID, query.Spec{}.WithIngredients([]int64{id}))

	if err := s.store.DeleteIngredient(ctx, id); err != nil {
		return translate(err, "ingredient", "delete")
	}

	if s.indexer != nil && len(affected) > 0 {
		s.indexer.ReindexRecipes(ctx, affected)
	}
	s.publisher.Publish(sse.NewDeletedEvent(sse.EventIngredientDeleted, userID, id))
	return nil
}

func (s *IngredientService) reindexUsing(ctx context.Context, userID int64, spec query.Spec) {
	if s.indexer == nil {
		return
	}
	if ids := s.recipesUsing(ctx, userID, spec); len(ids) > 0 {
		s.indexer.ReindexRecipes(ctx, ids)
	}
}

func (s *IngredientService) recipesUsing(ctx context.Context, userID int64, spec query.Spec) []int64 {
	return recipeIDsMatching(ctx, s.store, userID, spec, s.logger)
}
