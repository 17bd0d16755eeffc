package query

import (
	"slices"

	"github.com/recipebox/recipebox-server/internal/domain"
)

// Kind identifies a recipe predicate.
type Kind int

const (
	// HasAnyTag matches recipes referencing at least one of IDs as a tag.
	HasAnyTag Kind = iota + 1
	// HasAnyIngredient matches recipes referencing at least one of IDs as an ingredient.
	HasAnyIngredient
	// OwnedBy matches recipes whose owner is Owner.
	OwnedBy
)

func (k Kind) String() string {
	switch k {
	case HasAnyTag:
		return "has_any_tag"
	case HasAnyIngredient:
		return "has_any_ingredient"
	case OwnedBy:
		return "owned_by"
	default:
		return "unknown"
	}
}

// Predicate is one restriction in a Spec.
type Predicate struct {
	Kind  Kind
	IDs   []int64 // HasAnyTag, HasAnyIngredient
	Owner int64   // OwnedBy
}

// Match evaluates the predicate against a recipe.
func (p Predicate) Match(r *domain.Recipe) bool {
	switch p.Kind {
	case HasAnyTag:
		return r.HasAnyTag(p.IDs)
	case HasAnyIngredient:
		return r.HasAnyIngredient(p.IDs)
	case OwnedBy:
		return r.UserID == p.Owner
	default:
		return false
	}
}

// Spec is an immutable, ordered conjunction of predicates plus paging.
// Every With method returns a new Spec and leaves the receiver untouched.
type Spec struct {
	preds  []Predicate
	limit  int
	offset int
}

// With returns a copy of s with p appended.
func (s Spec) With(p Predicate) Spec {
	p.IDs = slices.Clone(p.IDs)
	next := s
	next.preds = append(slices.Clip(slices.Clone(s.preds)), p)
	return next
}

// WithTags restricts to recipes tagged with any of ids.
func (s Spec) WithTags(ids []int64) Spec {
	return s.With(Predicate{Kind: HasAnyTag, IDs: ids})
}

// WithIngredients restricts to recipes using any of ids.
func (s Spec) WithIngredients(ids []int64) Spec {
	return s.With(Predicate{Kind: HasAnyIngredient, IDs: ids})
}

// OwnedBy restricts to recipes owned by userID.
func (s Spec) OwnedBy(userID int64) Spec {
	return s.With(Predicate{Kind: OwnedBy, Owner: userID})
}

// WithPage sets the page window. A non-positive limit means unbounded.
func (s Spec) WithPage(limit, offset int) Spec {
	next := s
	next.limit = max(limit, 0)
	next.offset = max(offset, 0)
	return next
}

// Predicates returns a copy of the predicate list in application order.
func (s Spec) Predicates() []Predicate {
	out := make([]Predicate, len(s.preds))
	for i, p := range s.preds {
		p.IDs = slices.Clone(p.IDs)
		out[i] = p
	}
	return out
}

// Limit returns the page size, zero when unbounded.
func (s Spec) Limit() int { return s.limit }

// Offset returns the number of rows to skip.
func (s Spec) Offset() int { return s.offset }

// Owner returns the user the spec is scoped to, if any.
func (s Spec) Owner() (int64, bool) {
	for _, p := range s.preds {
		if p.Kind == OwnedBy {
			return p.Owner, true
		}
	}
	return 0, false
}

// Match reports whether r satisfies every predicate.
func (s Spec) Match(r *domain.Recipe) bool {
	for _, p := range s.preds {
		if !p.Match(r) {
			return false
		}
	}
	return true
}

// Filter returns the recipes matching s, preserving order. Paging is not
// applied.
func (s Spec) Filter(recipes []*domain.Recipe) []*domain.Recipe {
	out := make([]*domain.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if s.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Compose builds the recipe list spec for owner from the raw "tags" and
// "ingredients" query parameters. An empty parameter adds no restriction.
// The ownership predicate is always appended last.
func Compose(owner int64, tagsParam, ingredientsParam string) (Spec, error) {
	var s Spec

	if tagsParam != "" {
		ids, err := parseParam("tags", tagsParam)
		if err != nil {
			return Spec{}, err
		}
		s = s.WithTags(ids)
	}

	if ingredientsParam != "" {
		ids, err := parseParam("ingredients", ingredientsParam)
		if err != nil {
			return Spec{}, err
		}
		s = s.WithIngredients(ids)
	}

	return s.OwnedBy(owner), nil
}
