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

// AttributeRequest is the body for creating or renaming a tag or ingredient.
type AttributeRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

// RecipeIndexer refreshes the search documents of recipes whose
// denormalized tag or ingredient names changed.
type RecipeIndexer interface {
	ReindexRecipes(ctx context.Context, ids []int64)
}

// TagService manages a user's tags.
type TagService struct {
	store     store.Store
	indexer   RecipeIndexer
	publisher Publisher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTagService creates a new tag service. indexer and publisher may be nil.
func NewTagService(st store.Store, indexer RecipeIndexer, publisher Publisher, validator *validation.Validator, logger *slog.Logger) *TagService {
	return &TagService{
		store:     st,
		indexer:   indexer,
		publisher: publisherOrNop(publisher),
		validator: validator,
		logger:    logger,
	}
}

// List returns the user's tags ordered by name descending. With
// assignedOnly, only tags used by at least one of the user's recipes.
func (s *TagService) List(ctx context.Context, userID int64, assignedOnly bool) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx, userID, assignedOnly)
	if err != nil {
		return nil, translate(err, "tag", "list")
	}
	return query.FilterOwned(tags, userID), nil
}

// Get returns one of the user's tags.
func (s *TagService) Get(ctx context.Context, userID, id int64) (*domain.Tag, error) {
	tag, err := s.store.GetTag(ctx, id)
	if err != nil {
		return nil, translate(err, "tag", "get")
	}
	if err := query.CheckOwned("tag", tag, userID); err != nil {
		return nil, err
	}
	return tag, nil
}

// Create creates a tag owned by userID.
func (s *TagService) Create(ctx context.Context, userID int64, req AttributeRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tag := &domain.Tag{UserID: userID, Name: textutil.NormalizeName(req.Name)}
	tag.InitTimestamps()

	if err := s.store.CreateTag(ctx, tag); err != nil {
		return nil, translate(err, "tag", "create")
	}

	s.publisher.Publish(sse.NewAttributeEvent(sse.EventTagCreated, userID, dto.NewTag(tag)))
	return tag, nil
}

// Update renames one of the user's tags.
func (s *TagService) Update(ctx context.Context, userID, id int64, req AttributeRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tag, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	previous := tag.Name
	tag.Name = textutil.NormalizeName(req.Name)
	tag.Touch()
	if err := s.store.UpdateTag(ctx, tag); err != nil {
		return nil, translate(err, "tag", "update")
	}

	// The index analyzer folds case, so case-only renames need no reindex.
	if !textutil.SameName(previous, tag.Name) {
		s.reindexUsing(ctx, userID, query.Spec{}.WithTags([]int64{id}))
	}
	s.publisher.Publish(sse.NewAttributeEvent(sse.EventTagUpdated, userID, dto.NewTag(tag)))
	return tag, nil
}

// Delete deletes one of the user's tags and its recipe associations.
func (s *TagService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	affected := s.recipesUsing(ctx, userID, query.Spec{}.WithTags([]int64{id}))

	if err := s.store.DeleteTag(ctx, id); err != nil {
		return translate(err, "tag", "delete")
	}

	if s.indexer != nil && len(affected) > 0 {
		s.indexer.ReindexRecipes(ctx, affected)
	}
	s.publisher.Publish(sse.NewDeletedEvent(sse.EventTagDeleted, userID, id))
	return nil
}

func (s *TagService) reindexUsing(ctx context.Context, userID int64, spec query.Spec) {
	if s.indexer == nil {
		return
	}
	if ids := s.recipesUsing(ctx, userID, spec); len(ids) > 0 {
		s.indexer.ReindexRecipes(ctx, ids)
	}
}

func (s *TagService) recipesUsing(ctx context.Context, userID int64, spec query.Spec) []int64 {
	return recipeIDsMatching(ctx, s.store, userID, spec, s.logger)
}

// recipeIDsMatching lists the IDs of the user's recipes matching spec.
// Failures are logged; callers treat them as "nothing to reindex".
func recipeIDsMatching(ctx context.Context, recipes store.RecipeStore, userID int64, spec query.Spec, logger *slog.Logger) []int64 {
	list, err := recipes.ListRecipes(ctx, spec.OwnedBy(userID))
	if err != nil {
		logger.Warn("failed to list recipes for reindex", "user_id", userID, "error", err)
		return nil
	}
	ids := make([]int64, len(list))
	for i, r := range list {
		ids[i] = r.ID
	}
	return ids
}
