package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/recipebox/recipebox-server/internal/domain"
	"github.com/recipebox/recipebox-server/internal/query"
	"github.com/recipebox/recipebox-server/internal/store"
)

// recipeColumns is the ordered list of columns selected in recipe queries.
// Must match the scan order in scanRecipe.
const recipeColumns = `r.id, r.user_id, r.title, r.time_minutes, r.price_cents, r.link,
	r.description, r.image, r.image_blur_hash, r.created_at, r.updated_at`

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanRecipe(row scanner) (*domain.Recipe, error) {
	var (
		r                    domain.Recipe
		price                int64
		createdAt, updatedAt string
	)

	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Title,
		&r.TimeMinutes,
		&price,
		&r.Link,
		&r.Description,
		&r.Image,
		&r.ImageBlurHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Price = domain.Price(price)
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	r.TagIDs = []int64{}
	r.IngredientIDs = []int64{}
	return &r, nil
}

// normalizeIDs returns ids sorted with duplicates removed.
func normalizeIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []int64{}
	}
	return out
}

// CreateRecipe inserts a recipe with its tag and ingredient sets in one
// transaction and assigns its ID.
// Returns store.ErrInvalidInput if a referenced tag or ingredient is missing.
func (s *Store) CreateRecipe(ctx context.Context, r *domain.Recipe) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO recipes (user_id, title, time_minutes, price_cents, link, description,
			image, image_blur_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UserID,
		r.Title,
		r.TimeMinutes,
		r.Price.Cents(),
		r.Link,
		r.Description,
		r.Image,
		r.ImageBlurHash,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	)
	if err != nil {
		return mapConstraintError(err)
	}

	recipeID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("recipe id: %w", err)
	}

	tagIDs, ingredientIDs := normalizeIDs(r.TagIDs), normalizeIDs(r.IngredientIDs)
	if err := replaceMembers(ctx, tx, tagTable, recipeID, tagIDs); err != nil {
		return err
	}
	if err := replaceMembers(ctx, tx, ingredientTable, recipeID, ingredientIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.ID = recipeID
	r.TagIDs, r.IngredientIDs = tagIDs, ingredientIDs
	return nil
}

// replaceMembers replaces all join rows of one kind for a recipe.
func replaceMembers(ctx context.Context, q querier, t attrTable, recipeID int64, ids []int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM `+t.join+` WHERE recipe_id = ?`, recipeID); err != nil {
		return fmt.Errorf("delete %s: %w", t.join, err)
	}
	for _, id := range ids {
		_, err := q.ExecContext(ctx,
			`INSERT INTO `+t.join+` (recipe_id, `+t.column+`) VALUES (?, ?)`, recipeID, id)
		if err != nil {
			return fmt.Errorf("insert %s: %w", t.join, mapConstraintError(err))
		}
	}
	return nil
}

// GetRecipe retrieves a recipe by ID with its tag and ingredient sets.
// Returns store.ErrNotFound if the recipe does not exist.
func (s *Store) GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error) {
	recipes, err := s.queryRecipes(ctx, `SELECT `+recipeColumns+` FROM recipes r WHERE r.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, store.ErrNotFound
	}
	return recipes[0], nil
}

// GetRecipesByIDs returns the existing recipes among ids, in the order of
// ids. Missing IDs are skipped.
func (s *Store) GetRecipesByIDs(ctx context.Context, ids []int64) ([]*domain.Recipe, error) {
	if len(ids) == 0 {
		return []*domain.Recipe{}, nil
	}

	recipes, err := s.queryRecipes(ctx,
		`SELECT `+recipeColumns+` FROM recipes r WHERE r.id IN (`+placeholders(len(ids))+`)`,
		int64Args(ids)...)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}
	out := make([]*domain.Recipe, 0, len(recipes))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
			delete(byID, id)
		}
	}
	return out, nil
}

// ListRecipes returns the recipes matching spec, newest first.
// A spec without an owner is rejected with store.ErrInvalidInput.
func (s *Store) ListRecipes(ctx context.Context, spec query.Spec) ([]*domain.Recipe, error) {
	if _, ok := spec.Owner(); !ok {
		return nil, store.ErrInvalidInput.WithMessage("recipe query must be scoped to an owner")
	}

	where, args := renderSpec(spec)
	q := `SELECT ` + recipeColumns + ` FROM recipes r WHERE ` + where + ` ORDER BY r.id DESC`
	switch {
	case spec.Limit() > 0:
		q += ` LIMIT ? OFFSET ?`
		args = append(args, spec.Limit(), spec.Offset())
	case spec.Offset() > 0:
		q += ` LIMIT -1 OFFSET ?`
		args = append(args, spec.Offset())
	}

	return s.queryRecipes(ctx, q, args...)
}

// renderSpec renders the predicates of spec as a WHERE clause, in order.
func renderSpec(spec query.Spec) (string, []any) {
	preds := spec.Predicates()
	clauses := make([]string, 0, len(preds))
	var args []any

	for _, p := range preds {
		switch p.Kind {
		case query.HasAnyTag:
			clauses = append(clauses, memberClause(tagTable, len(p.IDs)))
			args = append(args, int64Args(p.IDs)...)
		case query.HasAnyIngredient:
			clauses = append(clauses, memberClause(ingredientTable, len(p.IDs)))
			args = append(args, int64Args(p.IDs)...)
		case query.OwnedBy:
			clauses = append(clauses, `r.user_id = ?`)
			args = append(args, p.Owner)
		default:
			clauses = append(clauses, `0 = 1`)
		}
	}

	if len(clauses) == 0 {
		return `1 = 1`, nil
	}
	return strings.Join(clauses, ` AND `), args
}

func memberClause(t attrTable, n int) string {
	if n == 0 {
		return `0 = 1`
	}
	return `EXISTS (SELECT 1 FROM ` + t.join + ` j WHERE j.recipe_id = r.id AND j.` + t.column +
		` IN (` + placeholders(n) + `))`
}

// ListAllRecipes returns every recipe, used to rebuild the search index.
func (s *Store) ListAllRecipes(ctx context.Context) ([]*domain.Recipe, error) {
	return s.queryRecipes(ctx, `SELECT `+recipeColumns+` FROM recipes r ORDER BY r.id ASC`)
}

// UpdateRecipe rewrites a recipe row and replaces its tag and ingredient
// sets in one transaction. The image columns are left alone; see
// SetRecipeImage.
func (s *Store) UpdateRecipe(ctx context.Context, r *domain.Recipe) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE recipes SET
			title = ?,
			time_minutes = ?,
			price_cents = ?,
			link = ?,
			description = ?,
			updated_at = ?
		WHERE id = ?`,
		r.Title,
		r.TimeMinutes,
		r.Price.Cents(),
		r.Link,
		r.Description,
		formatTime(r.UpdatedAt),
		r.ID,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	if err := expectAffected(res.RowsAffected()); err != nil {
		return err
	}

	tagIDs, ingredientIDs := normalizeIDs(r.TagIDs), normalizeIDs(r.IngredientIDs)
	if err := replaceMembers(ctx, tx, tagTable, r.ID, tagIDs); err != nil {
		return err
	}
	if err := replaceMembers(ctx, tx, ingredientTable, r.ID, ingredientIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.TagIDs, r.IngredientIDs = tagIDs, ingredientIDs
	return nil
}

// SetRecipeImage sets or clears (empty image) the image reference.
func (s *Store) SetRecipeImage(ctx context.Context, id int64, image, blurHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE recipes SET image = ?, image_blur_hash = ?, updated_at = ? WHERE id = ?`,
		image, blurHash, formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	return expectAffected(res.RowsAffected())
}

// DeleteRecipe deletes a recipe; join rows cascade.
func (s *Store) DeleteRecipe(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res.RowsAffected())
}

// queryRecipes runs q and loads the tag and ingredient sets of every row.
func (s *Store) queryRecipes(ctx context.Context, q string, args ...any) ([]*domain.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}

	recipes := []*domain.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := s.loadMembers(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// loadMembers fills TagIDs and IngredientIDs for recipes, sorted ascending.
func (s *Store) loadMembers(ctx context.Context, recipes []*domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Recipe, len(recipes))
	ids := make([]int64, len(recipes))
	for i, r := range recipes {
		byID[r.ID] = r
		ids[i] = r.ID
	}

	for _, t := range []attrTable{tagTable, ingredientTable} {
		rows, err := s.db.QueryContext(ctx,
			`SELECT recipe_id, `+t.column+` FROM `+t.join+
				` WHERE recipe_id IN (`+placeholders(len(ids))+`) ORDER BY recipe_id, `+t.column,
			int64Args(ids)...)
		if err != nil {
			return fmt.Errorf("query %s: %w", t.join, err)
		}

		for rows.Next() {
			var recipeID, memberID int64
			if err := rows.Scan(&recipeID, &memberID); err != nil {
				rows.Close()
				return err
			}
			r := byID[recipeID]
			if t == tagTable {
				r.TagIDs = append(r.TagIDs, memberID)
			} else {
				r.IngredientIDs = append(r.IngredientIDs, memberID)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
