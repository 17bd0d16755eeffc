package query

import (
	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
)

// Owned is implemented by every user-owned entity.
type Owned interface {
	OwnerID() int64
}

// CheckOwned returns a not-found error unless entity belongs to userID.
// A foreign entity is reported exactly like a missing one so callers
// cannot probe for other users' data. entity is a pointer type, so a nil
// *domain.Recipe (or any other entity) is caught as missing.
func CheckOwned[E any, P interface {
	*E
	Owned
}](kind string, entity P, userID int64) error {
	if entity == nil || entity.OwnerID() != userID {
		return domainerrors.NotFound(kind + " not found")
	}
	return nil
}

// FilterOwned returns the items owned by userID, preserving order.
func FilterOwned[T Owned](items []T, userID int64) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item.OwnerID() == userID {
			out = append(out, item)
		}
	}
	return out
}
