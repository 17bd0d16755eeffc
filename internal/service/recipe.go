package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/recipebox/recipebox-server/internal/domain"
	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/dto"
	"github.com/recipebox/recipebox-server/internal/media/images"
	"github.com/recipebox/recipebox-server/internal/query"
	"github.com/recipebox/recipebox-server/internal/search"
	"github.com/recipebox/recipebox-server/internal/sse"
	"github.com/recipebox/recipebox-server/internal/store"
	"github.com/recipebox/recipebox-server/internal/textutil"
	"github.com/recipebox/recipebox-server/internal/validation"
)

// searchWindow bounds how many index hits are considered before ownership
// filtering and pagination.
const searchWindow = 500

// RecipeSearcher is the search index as used by RecipeService.
// *search.SearchIndex implements it.
type RecipeSearcher interface {
	IndexRecipe(doc *search.RecipeDocument) error
	IndexRecipes(docs []*search.RecipeDocument) error
	DeleteRecipe(recipeID int64) error
	Search(ctx context.Context, params search.SearchParams) ([]search.Hit, error)
}

// RecipeService manages a user's recipes and their images.
type RecipeService struct {
	store     store.Store
	search    RecipeSearcher
	images    *images.Storage
	publisher Publisher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewRecipeService creates a new recipe service. searcher and publisher may be nil.
func NewRecipeService(
	st store.Store,
	searcher RecipeSearcher,
	storage *images.Storage,
	publisher Publisher,
	validator *validation.Validator,
	logger *slog.Logger,
) *RecipeService {
	return &RecipeService{
		store:     st,
		search:    searcher,
		images:    storage,
		publisher: publisherOrNop(publisher),
		validator: validator,
		logger:    logger,
	}
}

// RecipeRequest is a full recipe body, used by create and full update.
// Omitted optional fields are cleared on update.
type RecipeRequest struct {
	Title       string  `json:"title" validate:"required,notblank,max=255"`
	TimeMinutes int     `json:"time_minutes" validate:"gte=0"`
	Price       string  `json:"price" validate:"required,price"`
	Link        string  `json:"link,omitempty" validate:"omitempty,url,max=255"`
	Description string  `json:"description,omitempty"`
	Tags        []int64 `json:"tags,omitempty"`
	Ingredients []int64 `json:"ingredients,omitempty"`
}

// RecipePatch is a partial update. Only non-nil fields change.
type RecipePatch struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,notblank,max=255"`
	TimeMinutes *int     `json:"time_minutes,omitempty" validate:"omitempty,gte=0"`
	Price       *string  `json:"price,omitempty" validate:"omitempty,price"`
	Link        *string  `json:"link,omitempty" validate:"omitempty,url,max=255"`
	Description *string  `json:"description,omitempty"`
	Tags        *[]int64 `json:"tags,omitempty"`
	Ingredients *[]int64 `json:"ingredients,omitempty"`
}

// ListParams are the raw recipe list query parameters. Tags and
// Ingredients are comma-separated ID lists; empty means no restriction.
type ListParams struct {
	Tags        string
	Ingredients string
	Limit       int
	Offset      int
}

// List returns the user's recipes matching params, newest first.
func (s *RecipeService) List(ctx context.Context, userID int64, params ListParams) ([]*domain.Recipe, error) {
	spec, err := query.Compose(userID, params.Tags, params.Ingredients)
	if err != nil {
		return nil, err
	}
	spec = spec.WithPage(params.Limit, params.Offset)

	recipes, err := s.store.ListRecipes(ctx, spec)
	if err != nil {
		return nil, translate(err, "recipe", "list")
	}
	return recipes, nil
}

// Get returns one of the user's recipes.
func (s *RecipeService) Get(ctx context.Context, userID, id int64) (*domain.Recipe, error) {
	r, err := s.store.GetRecipe(ctx, id)
	if err != nil {
		return nil, translate(err, "recipe", "get")
	}
	if err := query.CheckOwned("recipe", r, userID); err != nil {
		return nil, err
	}
	return r, nil
}

// GetDetail returns one of the user's recipes with tags and ingredients loaded.
func (s *RecipeService) GetDetail(ctx context.Context, userID, id int64) (*domain.RecipeDetail, error) {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.Detail(ctx, r)
}

// Detail loads the tags and ingredients of r.
func (s *RecipeService) Detail(ctx context.Context, r *domain.Recipe) (*domain.RecipeDetail, error) {
	tags, err := s.store.GetTagsByIDs(ctx, r.TagIDs)
	if err != nil {
		return nil, translate(err, "tag", "load")
	}
	ingredients, err := s.store.GetIngredientsByIDs(ctx, r.IngredientIDs)
	if err != nil {
		return nil, translate(err, "ingredient", "load")
	}
	return &domain.RecipeDetail{
		Recipe:      r,
		Tags:        query.FilterOwned(tags, r.UserID),
		Ingredients: query.FilterOwned(ingredients, r.UserID),
	}, nil
}

// Create creates a recipe owned by userID.
func (s *RecipeService) Create(ctx context.Context, userID int64, req RecipeRequest) (*domain.Recipe, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	r := &domain.Recipe{UserID: userID}
	if err := s.applyRequest(r, req); err != nil {
		return nil, err
	}
	if err := s.checkMembers(ctx, userID, r.TagIDs, r.IngredientIDs); err != nil {
		return nil, err
	}
	r.InitTimestamps()

	if err := s.store.CreateRecipe(ctx, r); err != nil {
		return nil, translate(err, "recipe", "create")
	}

	s.index(ctx, r)
	s.publisher.Publish(sse.NewRecipeEvent(sse.EventRecipeCreated, userID, dto.NewRecipeSummary(r)))
	s.logger.Info("Recipe created", "recipe_id", r.ID, "user_id", userID)
	return r, nil
}

// Update replaces every writable field of one of the user's recipes.
func (s *RecipeService) Update(ctx context.Context, userID, id int64, req RecipeRequest) (*domain.Recipe, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyRequest(r, req); err != nil {
		return nil, err
	}
	if err := s.checkMembers(ctx, userID, r.TagIDs, r.IngredientIDs); err != nil {
		return nil, err
	}

	return s.save(ctx, r)
}

// Patch changes the fields present in patch.
func (s *RecipeService) Patch(ctx context.Context, userID, id int64, patch RecipePatch) (*domain.Recipe, error) {
	if err := s.validator.Validate(patch); err != nil {
		return nil, err
	}

	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, domainerrors.FieldValidation("title", "title cannot be blank")
		}
		r.Title = title
	}
	if patch.TimeMinutes != nil {
		r.TimeMinutes = *patch.TimeMinutes
	}
	if patch.Price != nil {
		price, err := domain.ParsePrice(*patch.Price)
		if err != nil {
			return nil, domainerrors.FieldValidation("price", err.Error())
		}
		r.Price = price
	}
	if patch.Link != nil {
		r.Link = strings.TrimSpace(*patch.Link)
	}
	if patch.Description != nil {
		r.Description = textutil.Markdown(*patch.Description)
	}
	if patch.Tags != nil {
		r.TagIDs = slices.Clone(*patch.Tags)
	}
	if patch.Ingredients != nil {
		r.IngredientIDs = slices.Clone(*patch.Ingredients)
	}

	var newTags, newIngredients []int64
	if patch.Tags != nil {
		newTags = r.TagIDs
	}
	if patch.Ingredients != nil {
		newIngredients = r.IngredientIDs
	}
	if err := s.checkMembers(ctx, userID, newTags, newIngredients); err != nil {
		return nil, err
	}

	return s.save(ctx, r)
}

func (s *RecipeService) save(ctx context.Context, r *domain.Recipe) (*domain.Recipe, error) {
	r.Touch()
	if err := s.store.UpdateRecipe(ctx, r); err != nil {
		return nil, translate(err, "recipe", "update")
	}

	s.index(ctx, r)
	s.publisher.Publish(sse.NewRecipeEvent(sse.EventRecipeUpdated, r.UserID, dto.NewRecipeSummary(r)))
	return r, nil
}

// Delete deletes one of the user's recipes and its image file.
func (s *RecipeService) Delete(ctx context.Context, userID, id int64) error {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteRecipe(ctx, id); err != nil {
		return translate(err, "recipe", "delete")
	}

	if r.HasImage() {
		if err := s.images.Delete(r.Image); err != nil {
			s.logger.Warn("failed to delete recipe image", "recipe_id", id, "image", r.Image, "error", err)
		}
	}
	if s.search != nil {
		if err := s.search.DeleteRecipe(id); err != nil {
			s.logger.Warn("failed to remove recipe from search index", "recipe_id", id, "error", err)
		}
	}

	s.publisher.Publish(sse.NewDeletedEvent(sse.EventRecipeDeleted, userID, id))
	s.logger.Info("Recipe deleted", "recipe_id", id, "user_id", userID)
	return nil
}

// UploadImage attaches an image to one of the user's recipes.
//
// The payload must decode as a supported image. It is written under a new
// name before the recipe's reference is updated; if that update fails the
// new file is removed and the recipe keeps its previous image. The
// previous file is left in place.
func (s *RecipeService) UploadImage(ctx context.Context, userID, id int64, filename string, data []byte) (*domain.Recipe, error) {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	format, img, err := images.Detect(data)
	if err != nil {
		return nil, domainerrors.FieldValidation("image",
			"upload a valid image. The file you uploaded was either not an image or a corrupted image").WithCause(err)
	}

	ref := images.RecipeImagePath(filename, format)
	if err := s.images.Save(ref, data); err != nil {
		return nil, fmt.Errorf("save recipe image: %w", err)
	}

	blurHash, err := images.ComputeBlurHash(img)
	if err != nil {
		s.logger.Warn("blurhash unavailable", "recipe_id", id, "error", err)
		blurHash = ""
	}

	if err := s.store.SetRecipeImage(ctx, id, ref, blurHash); err != nil {
		if delErr := s.images.Delete(ref); delErr != nil {
			s.logger.Warn("failed to remove orphaned image", "image", ref, "error", delErr)
		}
		return nil, translate(err, "recipe", "update")
	}

	r.Image, r.ImageBlurHash = ref, blurHash
	r.Touch()

	s.publisher.Publish(sse.NewRecipeEvent(sse.EventRecipeUpdated, userID, dto.NewRecipeSummary(r)))
	s.logger.Info("Recipe image uploaded",
		"recipe_id", id,
		"image", ref,
		"format", format.Name,
		"width", format.Width,
		"height", format.Height,
	)
	return r, nil
}

// DeleteImage clears the image of one of the user's recipes and removes
// the file. A recipe without an image is left as is.
func (s *RecipeService) DeleteImage(ctx context.Context, userID, id int64) error {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if !r.HasImage() {
		return nil
	}

	if err := s.store.SetRecipeImage(ctx, id, "", ""); err != nil {
		return translate(err, "recipe", "update")
	}
	if err := s.images.Delete(r.Image); err != nil {
		s.logger.Warn("failed to delete recipe image", "recipe_id", id, "image", r.Image, "error", err)
	}

	r.Image, r.ImageBlurHash = "", ""
	s.publisher.Publish(sse.NewRecipeEvent(sse.EventRecipeUpdated, userID, dto.NewRecipeSummary(r)))
	return nil
}

// Search runs a full-text query and returns the user's matching recipes,
// best match first. Ownership is applied to the hits before pagination.
func (s *RecipeService) Search(ctx context.Context, userID int64, q string, limit, offset int) ([]*domain.Recipe, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, domainerrors.FieldValidation("q", "q is required")
	}
	if s.search == nil {
		return nil, domainerrors.Internal("search is not available")
	}

	hits, err := s.search.Search(ctx, search.SearchParams{Query: q, Limit: searchWindow})
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	hits = query.FilterOwned(hits, userID)

	offset = min(max(offset, 0), len(hits))
	hits = hits[offset:]
	if limit > 0 && limit < len(hits) {
		hits = hits[:limit]
	}

	ids := make([]int64, len(hits))
	for i, h := range hits {
		ids[i] = h.RecipeID
	}
	recipes, err := s.store.GetRecipesByIDs(ctx, ids)
	if err != nil {
		return nil, translate(err, "recipe", "load")
	}
	return query.FilterOwned(recipes, userID), nil
}

// ReindexRecipes refreshes the search documents of the given recipes.
func (s *RecipeService) ReindexRecipes(ctx context.Context, ids []int64) {
	if s.search == nil || len(ids) == 0 {
		return
	}
	recipes, err := s.store.GetRecipesByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to load recipes for reindex", "error", err)
		return
	}
	if err := s.indexAll(ctx, recipes); err != nil {
		s.logger.Warn("failed to reindex recipes", "count", len(recipes), "error", err)
	}
}

// RebuildIndex indexes every stored recipe.
func (s *RecipeService) RebuildIndex(ctx context.Context) error {
	if s.search == nil {
		return nil
	}
	recipes, err := s.store.ListAllRecipes(ctx)
	if err != nil {
		return translate(err, "recipe", "list")
	}
	if err := s.indexAll(ctx, recipes); err != nil {
		return err
	}
	s.logger.Info("Search index rebuilt", "recipes", len(recipes))
	return nil
}

func (s *RecipeService) applyRequest(r *domain.Recipe, req RecipeRequest) error {
	price, err := domain.ParsePrice(req.Price)
	if err != nil {
		return domainerrors.FieldValidation("price", err.Error())
	}

	r.Title = strings.TrimSpace(req.Title)
	r.TimeMinutes = req.TimeMinutes
	r.Price = price
	r.Link = strings.TrimSpace(req.Link)
	r.Description = textutil.Markdown(req.Description)
	r.TagIDs = slices.Clone(req.Tags)
	r.IngredientIDs = slices.Clone(req.Ingredients)
	return nil
}

// checkMembers rejects tag or ingredient IDs the user does not own. A
// foreign ID is reported exactly like a missing one.
func (s *RecipeService) checkMembers(ctx context.Context, userID int64, tagIDs, ingredientIDs []int64) error {
	if len(tagIDs) > 0 {
		tags, err := s.store.GetTagsByIDs(ctx, tagIDs)
		if err != nil {
			return translate(err, "tag", "load")
		}
		if missing, ok := firstMissing(tagIDs, query.FilterOwned(tags, userID), func(t *domain.Tag) int64 { return t.ID }); ok {
			return domainerrors.FieldValidation("tags", fmt.Sprintf("invalid tag id %d: object does not exist", missing))
		}
	}
	if len(ingredientIDs) > 0 {
		ingredients, err := s.store.GetIngredientsByIDs(ctx, ingredientIDs)
		if err != nil {
			return translate(err, "ingredient", "load")
		}
		if missing, ok := firstMissing(ingredientIDs, query.FilterOwned(ingredients, userID), func(i *domain.Ingredient) int64 { return i.ID }); ok {
			return domainerrors.FieldValidation("ingredients", fmt.Sprintf("invalid ingredient id %d: object does not exist", missing))
		}
	}
	return nil
}

func firstMissing[T any](want []int64, have []T, idOf func(T) int64) (int64, bool) {
	found := make(map[int64]bool, len(have))
	for _, h := range have {
		found[idOf(h)] = true
	}
	for _, id := range want {
		if !found[id] {
			return id, true
		}
	}
	return 0, false
}

func (s *RecipeService) index(ctx context.Context, r *domain.Recipe) {
	if s.search == nil {
		return
	}
	if err := s.indexAll(ctx, []*domain.Recipe{r}); err != nil {
		s.logger.Warn("failed to index recipe", "recipe_id", r.ID, "error", err)
	}
}

// indexAll builds documents for recipes with one tag and one ingredient
// lookup for the whole batch.
func (s *RecipeService) indexAll(ctx context.Context, recipes []*domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	var tagIDs, ingredientIDs []int64
	for _, r := range recipes {
		tagIDs = append(tagIDs, r.TagIDs...)
		ingredientIDs = append(ingredientIDs, r.IngredientIDs...)
	}

	tags, err := s.store.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	ingredients, err := s.store.GetIngredientsByIDs(ctx, ingredientIDs)
	if err != nil {
		return fmt.Errorf("load ingredients: %w", err)
	}

	tagNames := make(map[int64]string, len(tags))
	for _, t := range tags {
		tagNames[t.ID] = t.Name
	}
	ingredientNames := make(map[int64]string, len(ingredients))
	for _, i := range ingredients {
		ingredientNames[i.ID] = i.Name
	}

	docs := make([]*search.RecipeDocument, 0, len(recipes))
	for _, r := range recipes {
		docs = append(docs, search.NewRecipeDocument(r,
			namesOf(r.TagIDs, tagNames),
			namesOf(r.IngredientIDs, ingredientNames),
		))
	}

	if len(docs) == 1 {
		return s.search.IndexRecipe(docs[0])
	}
	return s.search.IndexRecipes(docs)
}

func namesOf(ids []int64, names map[int64]string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := names[id]; ok {
			out = append(out, n)
		}
	}
	return out
}
