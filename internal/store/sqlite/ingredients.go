package sqlite

import (
	"context"

	"github.com/recipebox/recipebox-server/internal/domain"
)

func ingredientFromRow(a *attrRow) *domain.Ingredient {
	ing := &domain.Ingredient{ID: a.ID, UserID: a.UserID, Name: a.Name}
	ing.CreatedAt, ing.UpdatedAt = a.CreatedAt, a.UpdatedAt
	return ing
}

func ingredientsFromRows(rows []*attrRow) []*domain.Ingredient {
	out := make([]*domain.Ingredient, len(rows))
	for i, a := range rows {
		out[i] = ingredientFromRow(a)
	}
	return out
}

// CreateIngredient inserts an ingredient and assigns its ID.
func (s *Store) CreateIngredient(ctx context.Context, ing *domain.Ingredient) error {
	id, err := s.createAttr(ctx, ingredientTable, &attrRow{
		UserID: ing.UserID, Name: ing.Name, CreatedAt: ing.CreatedAt, UpdatedAt: ing.UpdatedAt,
	})
	if err != nil {
		return err
	}
	ing.ID = id
	return nil
}

// GetIngredient retrieves an ingredient by ID.
// Returns store.ErrNotFound if the ingredient does not exist.
func (s *Store) GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error) {
	a, err := s.getAttr(ctx, ingredientTable, id)
	if err != nil {
		return nil, err
	}
	return ingredientFromRow(a), nil
}

// GetIngredientsByIDs returns the existing ingredients among ids, ordered by ID.
func (s *Store) GetIngredientsByIDs(ctx context.Context, ids []int64) ([]*domain.Ingredient, error) {
	rows, err := s.getAttrsByIDs(ctx, ingredientTable, ids)
	if err != nil {
		return nil, err
	}
	return ingredientsFromRows(rows), nil
}

// ListIngredients returns a user's ingredients ordered by name descending.
func (s *Store) ListIngredients(ctx context.Context, userID int64, assignedOnly bool) ([]*domain.Ingredient, error) {
	rows, err := s.listAttrs(ctx, ingredientTable, userID, assignedOnly)
	if err != nil {
		return nil, err
	}
	return ingredientsFromRows(rows), nil
}

// UpdateIngredient renames an ingredient.
func (s *Store) UpdateIngredient(ctx context.Context, ing *domain.Ingredient) error {
	return s.updateAttr(ctx, ingredientTable, &attrRow{ID: ing.ID, Name: ing.Name, UpdatedAt: ing.UpdatedAt})
}

// DeleteIngredient deletes an ingredient and its recipe associations.
func (s *Store) DeleteIngredient(ctx context.Context, id int64) error {
	return s.deleteAttr(ctx, ingredientTable, id)
}
