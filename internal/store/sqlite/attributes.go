package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/recipebox/recipebox-server/internal/store"
)

// Tags and ingredients share a table shape: a user-owned name that recipes
// reference through a join table. attrTable names the tables for one kind
// and attrRow is the shared row form.
type attrTable struct {
	table  string // tags, ingredients
	join   string // recipe_tags, recipe_ingredients
	column string // tag_id, ingredient_id
}

var (
	tagTable        = attrTable{table: "tags", join: "recipe_tags", column: "tag_id"}
	ingredientTable = attrTable{table: "ingredients", join: "recipe_ingredients", column: "ingredient_id"}
)

type attrRow struct {
	ID        int64
	UserID    int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const attrColumns = `id, user_id, name, created_at, updated_at`

func scanAttr(row scanner) (*attrRow, error) {
	var (
		a                    attrRow
		createdAt, updatedAt string
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &a, nil
}

func (s *Store) createAttr(ctx context.Context, t attrTable, a *attrRow) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO `+t.table+` (user_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		a.UserID, a.Name, formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
	if err != nil {
		return 0, mapConstraintError(err)
	}
	return res.LastInsertId()
}

func (s *Store) getAttr(ctx context.Context, t attrTable, id int64) (*attrRow, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attrColumns+` FROM `+t.table+` WHERE id = ?`, id)
	a, err := scanAttr(row)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// getAttrsByIDs returns the rows that exist among ids, ordered by ID.
// Missing IDs are skipped.
func (s *Store) getAttrsByIDs(ctx context.Context, t attrTable, ids []int64) ([]*attrRow, error) {
	if len(ids) == 0 {
		return []*attrRow{}, nil
	}
	return s.queryAttrs(ctx,
		`SELECT `+attrColumns+` FROM `+t.table+` WHERE id IN (`+placeholders(len(ids))+`) ORDER BY id ASC`,
		int64Args(ids)...)
}

// listAttrs returns a user's rows ordered by name descending. With
// assignedOnly, only rows referenced by at least one recipe are returned;
// EXISTS keeps each row at most once.
func (s *Store) listAttrs(ctx context.Context, t attrTable, userID int64, assignedOnly bool) ([]*attrRow, error) {
	q := `SELECT ` + attrColumns + ` FROM ` + t.table + ` a WHERE a.user_id = ?`
	if assignedOnly {
		q += ` AND EXISTS (SELECT 1 FROM ` + t.join + ` j WHERE j.` + t.column + ` = a.id)`
	}
	q += ` ORDER BY a.name DESC, a.id DESC`
	return s.queryAttrs(ctx, q, userID)
}

func (s *Store) queryAttrs(ctx context.Context, q string, args ...any) ([]*attrRow, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*attrRow{}
	for rows.Next() {
		a, err := scanAttr(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) updateAttr(ctx context.Context, t attrTable, a *attrRow) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+t.table+` SET name = ?, updated_at = ? WHERE id = ?`,
		a.Name, formatTime(a.UpdatedAt), a.ID)
	if err != nil {
		return mapConstraintError(err)
	}
	return expectAffected(res.RowsAffected())
}

// deleteAttr removes a row; the join rows go with it via ON DELETE CASCADE.
func (s *Store) deleteAttr(ctx context.Context, t attrTable, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+t.table+` WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res.RowsAffected())
}

func expectAffected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
