package sqlite

import (
	"context"

	"github.com/recipebox/recipebox-server/internal/domain"
)

func tagFromRow(a *attrRow) *domain.Tag {
	t := &domain.Tag{ID: a.ID, UserID: a.UserID, Name: a.Name}
	t.CreatedAt, t.UpdatedAt = a.CreatedAt, a.UpdatedAt
	return t
}

func tagsFromRows(rows []*attrRow) []*domain.Tag {
	out := make([]*domain.Tag, len(rows))
	for i, a := range rows {
		out[i] = tagFromRow(a)
	}
	return out
}

// CreateTag inserts a tag and assigns its ID.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	id, err := s.createAttr(ctx, tagTable, &attrRow{
		UserID: t.UserID, Name: t.Name, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	})
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// GetTag retrieves a tag by ID.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	a, err := s.getAttr(ctx, tagTable, id)
	if err != nil {
		return nil, err
	}
	return tagFromRow(a), nil
}

// GetTagsByIDs returns the existing tags among ids, ordered by ID.
func (s *Store) GetTagsByIDs(ctx context.Context, ids []int64) ([]*domain.Tag, error) {
	rows, err := s.getAttrsByIDs(ctx, tagTable, ids)
	if err != nil {
		return nil, err
	}
	return tagsFromRows(rows), nil
}

// ListTags returns a user's tags ordered by name descending.
func (s *Store) ListTags(ctx context.Context, userID int64, assignedOnly bool) ([]*domain.Tag, error) {
	rows, err := s.listAttrs(ctx, tagTable, userID, assignedOnly)
	if err != nil {
		return nil, err
	}
	return tagsFromRows(rows), nil
}

// UpdateTag renames a tag.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	return s.updateAttr(ctx, tagTable, &attrRow{ID: t.ID, Name: t.Name, UpdatedAt: t.UpdatedAt})
}

// DeleteTag deletes a tag and its recipe associations.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	return s.deleteAttr(ctx, tagTable, id)
}
