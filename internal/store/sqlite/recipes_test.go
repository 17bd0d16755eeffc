package sqlite

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/recipebox/recipebox-server/internal/domain"
	"github.com/recipebox/recipebox-server/internal/query"
	"github.com/recipebox/recipebox-server/internal/store"
)

func makeTestRecipe(t *testing.T, s *Store, userID int64, title string, tagIDs, ingredientIDs []int64) *domain.Recipe {
	t.Helper()
	now := time.Now()
	r := &domain.Recipe{
		UserID:        userID,
		Title:         title,
		TimeMinutes:   10,
		Price:         500,
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	}
	r.CreatedAt, r.UpdatedAt = now, now
	if err := s.CreateRecipe(context.Background(), r); err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}
	return r
}

func titlesOf(rs []*domain.Recipe) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Title
	}
	return out
}

func listFor(t *testing.T, s *Store, owner int64, tags, ingredients string) []string {
	t.Helper()
	spec, err := query.Compose(owner, tags, ingredients)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	rs, err := s.ListRecipes(context.Background(), spec)
	if err != nil {
		t.Fatalf("ListRecipes: %v", err)
	}
	return titlesOf(rs)
}

func TestCreateAndGetRecipe(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "recipes@example.com")
	vegan := makeTestTag(t, s, u.ID, "Vegan")
	kale := makeTestIngredient(t, s, u.ID, "Kale")

	r := &domain.Recipe{
		UserID:        u.ID,
		Title:         "Kale salad",
		TimeMinutes:   5,
		Price:         1250,
		Link:          "https://example.com/kale",
		Description:   "Massage the kale.",
		TagIDs:        []int64{vegan.ID, vegan.ID},
		IngredientIDs: []int64{kale.ID},
	}
	r.InitTimestamps()
	if err := s.CreateRecipe(ctx, r); err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	got, err := s.GetRecipe(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetRecipe: %v", err)
	}
	if got.Title != "Kale salad" || got.Price != 1250 || got.Link != r.Link || got.Description != r.Description {
		t.Errorf("got %+v", got)
	}
	if len(got.TagIDs) != 1 || got.TagIDs[0] != vegan.ID {
		t.Errorf("TagIDs = %v, want [%d]", got.TagIDs, vegan.ID)
	}
	if len(got.IngredientIDs) != 1 || got.IngredientIDs[0] != kale.ID {
		t.Errorf("IngredientIDs = %v", got.IngredientIDs)
	}
}

func TestCreateRecipe_UnknownTagRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "rollback@example.com")

	r := &domain.Recipe{UserID: u.ID, Title: "Ghost", TimeMinutes: 1, TagIDs: []int64{777}}
	r.InitTimestamps()
	err := s.CreateRecipe(ctx, r)
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	if got := listFor(t, s, u.ID, "", ""); len(got) != 0 {
		t.Errorf("recipe row survived rollback: %v", got)
	}
}

func TestListRecipes_NewestFirstAndOwned(t *testing.T) {
	s := newTestStore(t)
	u1 := makeTestUser(t, s, "first@example.com")
	u2 := makeTestUser(t, s, "second@example.com")

	makeTestRecipe(t, s, u1.ID, "Porridge", nil, nil)
	makeTestRecipe(t, s, u2.ID, "Somebody else's", nil, nil)
	makeTestRecipe(t, s, u1.ID, "Pancakes", nil, nil)

	if got, want := listFor(t, s, u1.ID, "", ""), []string{"Pancakes", "Porridge"}; !equalStrings(got, want) {
		t.Errorf("ListRecipes = %v, want %v", got, want)
	}
}

func TestListRecipes_FilterByTags(t *testing.T) {
	s := newTestStore(t)
	u := makeTestUser(t, s, "tagfilter@example.com")
	vegan := makeTestTag(t, s, u.ID, "Vegan")
	vegetarian := makeTestTag(t, s, u.ID, "Vegetarian")

	makeTestRecipe(t, s, u.ID, "Thai vegetable curry", []int64{vegan.ID}, nil)
	makeTestRecipe(t, s, u.ID, "Aubergine with tahini", []int64{vegetarian.ID}, nil)
	makeTestRecipe(t, s, u.ID, "Fish and chips", nil, nil)

	got := listFor(t, s, u.ID, idList(vegan.ID, vegetarian.ID), "")
	if want := []string{"Aubergine with tahini", "Thai vegetable curry"}; !equalStrings(got, want) {
		t.Errorf("ListRecipes(tags) = %v, want %v", got, want)
	}
}

func TestListRecipes_FilterByIngredients(t *testing.T) {
	s := newTestStore(t)
	u := makeTestUser(t, s, "ingfilter@example.com")
	feta := makeTestIngredient(t, s, u.ID, "Feta cheese")
	chicken := makeTestIngredient(t, s, u.ID, "Chicken")

	makeTestRecipe(t, s, u.ID, "Posh beans on toast", nil, []int64{feta.ID})
	makeTestRecipe(t, s, u.ID, "Chicken cacciatore", nil, []int64{chicken.ID})
	makeTestRecipe(t, s, u.ID, "Steak and mushrooms", nil, nil)

	got := listFor(t, s, u.ID, "", idList(feta.ID, chicken.ID))
	if want := []string{"Chicken cacciatore", "Posh beans on toast"}; !equalStrings(got, want) {
		t.Errorf("ListRecipes(ingredients) = %v, want %v", got, want)
	}
}

func TestListRecipes_FiltersIntersect(t *testing.T) {
	s := newTestStore(t)
	u := makeTestUser(t, s, "both@example.com")
	vegan := makeTestTag(t, s, u.ID, "Vegan")
	dessert := makeTestTag(t, s, u.ID, "Dessert")
	tofu := makeTestIngredient(t, s, u.ID, "Tofu")

	makeTestRecipe(t, s, u.ID, "Tofu curry", []int64{vegan.ID}, []int64{tofu.ID})
	makeTestRecipe(t, s, u.ID, "Sorbet", []int64{vegan.ID, dessert.ID}, nil)
	makeTestRecipe(t, s, u.ID, "Tofu scramble", nil, []int64{tofu.ID})

	got := listFor(t, s, u.ID, idList(vegan.ID, dessert.ID), idList(tofu.ID))
	if want := []string{"Tofu curry"}; !equalStrings(got, want) {
		t.Errorf("ListRecipes(both) = %v, want %v", got, want)
	}
}

func TestListRecipes_ForeignTagIDsMatchNothing(t *testing.T) {
	s := newTestStore(t)
	owner := makeTestUser(t, s, "owner@example.com")
	other := makeTestUser(t, s, "other@example.com")
	tag := makeTestTag(t, s, owner.ID, "Secret")
	makeTestRecipe(t, s, owner.ID, "Secret sauce", []int64{tag.ID}, nil)

	if got := listFor(t, s, other.ID, idList(tag.ID), ""); len(got) != 0 {
		t.Errorf("other user saw %v", got)
	}
}

func TestListRecipes_Pagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "pages@example.com")
	for _, title := range []string{"one", "two", "three", "four"} {
		makeTestRecipe(t, s, u.ID, title, nil, nil)
	}

	spec := query.Spec{}.OwnedBy(u.ID).WithPage(2, 1)
	rs, err := s.ListRecipes(ctx, spec)
	if err != nil {
		t.Fatalf("ListRecipes: %v", err)
	}
	if want := []string{"three", "two"}; !equalStrings(titlesOf(rs), want) {
		t.Errorf("page = %v, want %v", titlesOf(rs), want)
	}

	rs, err = s.ListRecipes(ctx, query.Spec{}.OwnedBy(u.ID).WithPage(0, 3))
	if err != nil {
		t.Fatalf("ListRecipes: %v", err)
	}
	if want := []string{"one"}; !equalStrings(titlesOf(rs), want) {
		t.Errorf("offset only = %v, want %v", titlesOf(rs), want)
	}
}

func TestListRecipes_RequiresOwner(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ListRecipes(context.Background(), query.Spec{}.WithTags([]int64{1}))
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRenderSpec_OwnerLast(t *testing.T) {
	spec, err := query.Compose(9, "1,2", "3")
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	where, args := renderSpec(spec)
	want := `EXISTS (SELECT 1 FROM recipe_tags j WHERE j.recipe_id = r.id AND j.tag_id IN (?, ?))` +
		` AND EXISTS (SELECT 1 FROM recipe_ingredients j WHERE j.recipe_id = r.id AND j.ingredient_id IN (?))` +
		` AND r.user_id = ?`
	if where != want {
		t.Errorf("where =\n%s\nwant\n%s", where, want)
	}
	if len(args) != 4 || args[3] != int64(9) {
		t.Errorf("args = %v", args)
	}
}

func TestUpdateRecipe_ReplacesSets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "update-recipe@example.com")
	a := makeTestTag(t, s, u.ID, "A")
	b := makeTestTag(t, s, u.ID, "B")
	r := makeTestRecipe(t, s, u.ID, "Stew", []int64{a.ID}, nil)

	r.Title = "Better stew"
	r.TagIDs = []int64{b.ID}
	r.Link = ""
	if err := s.UpdateRecipe(ctx, r); err != nil {
		t.Fatalf("UpdateRecipe: %v", err)
	}

	got, err := s.GetRecipe(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetRecipe: %v", err)
	}
	if got.Title != "Better stew" {
		t.Errorf("Title = %q", got.Title)
	}
	if len(got.TagIDs) != 1 || got.TagIDs[0] != b.ID {
		t.Errorf("TagIDs = %v, want [%d]", got.TagIDs, b.ID)
	}

	r.TagIDs = nil
	if err := s.UpdateRecipe(ctx, r); err != nil {
		t.Fatalf("UpdateRecipe: %v", err)
	}
	got, _ = s.GetRecipe(ctx, r.ID)
	if len(got.TagIDs) != 0 {
		t.Errorf("TagIDs not cleared: %v", got.TagIDs)
	}

	r.ID = 4242
	if err := s.UpdateRecipe(ctx, r); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetRecipeImage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "image@example.com")
	r := makeTestRecipe(t, s, u.ID, "Photo op", nil, nil)

	if err := s.SetRecipeImage(ctx, r.ID, "uploads/recipe/x.png", "LEHV6nWB2yk8"); err != nil {
		t.Fatalf("SetRecipeImage: %v", err)
	}
	got, _ := s.GetRecipe(ctx, r.ID)
	if got.Image != "uploads/recipe/x.png" || got.ImageBlurHash != "LEHV6nWB2yk8" {
		t.Errorf("image = %q / %q", got.Image, got.ImageBlurHash)
	}

	if err := s.SetRecipeImage(ctx, r.ID, "", ""); err != nil {
		t.Fatalf("clear image: %v", err)
	}
	got, _ = s.GetRecipe(ctx, r.ID)
	if got.HasImage() {
		t.Errorf("image not cleared: %q", got.Image)
	}

	if err := s.SetRecipeImage(ctx, 999, "a", ""); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRecipe(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "delete@example.com")
	tag := makeTestTag(t, s, u.ID, "Keep")
	r := makeTestRecipe(t, s, u.ID, "Gone", []int64{tag.ID}, nil)

	if err := s.DeleteRecipe(ctx, r.ID); err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}
	if _, err := s.GetRecipe(ctx, r.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetTag(ctx, tag.ID); err != nil {
		t.Errorf("tag should survive recipe delete: %v", err)
	}
	if err := s.DeleteRecipe(ctx, r.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestGetRecipesByIDs_PreservesOrder(t *testing.T) {
	s := newTestStore(t)
	u := makeTestUser(t, s, "order@example.com")
	a := makeTestRecipe(t, s, u.ID, "A", nil, nil)
	b := makeTestRecipe(t, s, u.ID, "B", nil, nil)

	rs, err := s.GetRecipesByIDs(context.Background(), []int64{b.ID, 31337, a.ID})
	if err != nil {
		t.Fatalf("GetRecipesByIDs: %v", err)
	}
	if want := []string{"B", "A"}; !equalStrings(titlesOf(rs), want) {
		t.Errorf("GetRecipesByIDs = %v, want %v", titlesOf(rs), want)
	}
}

func idList(ids ...int64) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += strconv.FormatInt(id, 10)
	}
	return out
}
