package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox-server/internal/auth"
	"github.com/recipebox/recipebox-server/internal/domain"
	"github.com/recipebox/recipebox-server/internal/media/images"
	"github.com/recipebox/recipebox-server/internal/search"
	"github.com/recipebox/recipebox-server/internal/sse"
	"github.com/recipebox/recipebox-server/internal/store/kv"
	"github.com/recipebox/recipebox-server/internal/store/sqlite"
	"github.com/recipebox/recipebox-server/internal/validation"
)

// fastArgon2 keeps password hashing cheap in tests.
var fastArgon2 = auth.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type recordingPublisher struct {
	mu     sync.Mutex
	events []sse.Event
}

func (p *recordingPublisher) Publish(e sse.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []sse.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]sse.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	store     *sqlite.Store
	sessions  *kv.Store
	index     *search.SearchIndex
	images    *images.Storage
	publisher *recordingPublisher
	validator *validation.Validator
	logger    *slog.Logger

	tokens      *auth.TokenService
	sessionSvc  *SessionService
	auth        *AuthService
	users       *UserService
	tags        *TagService
	ingredients *IngredientService
	recipes     *RecipeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	sessions, err := kv.Open("", logger, kv.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: filepath.Join(dir, "search"), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	storage, err := images.NewStorage(filepath.Join(dir, "media"))
	require.NoError(t, err)

	key := bytes.Repeat([]byte{7}, 32)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, time.Hour)
	require.NoError(t, err)

	hasher := auth.NewPasswordHasher(fastArgon2)
	v := validation.New()
	pub := &recordingPublisher{}

	env := &testEnv{
		store:     st,
		sessions:  sessions,
		index:     index,
		images:    storage,
		publisher: pub,
		validator: v,
		logger:    logger,
		tokens:    tokens,
	}
	env.sessionSvc = NewSessionService(sessions, st, tokens, logger)
	env.auth = NewAuthService(st, tokens, hasher, env.sessionSvc, v, logger)
	env.users = NewUserService(st, hasher, v, logger)
	env.recipes = NewRecipeService(st, index, storage, pub, v, logger)
	env.tags = NewTagService(st, env.recipes, pub, v, logger)
	env.ingredients = NewIngredientService(st, env.recipes, pub, v, logger)
	return env
}

func (e *testEnv) makeUser(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "testpass123",
		Name:     "Test User",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) makeTag(t *testing.T, userID int64, name string) *domain.Tag {
	t.Helper()
	tag, err := e.tags.Create(context.Background(), userID, AttributeRequest{Name: name})
	require.NoError(t, err)
	return tag
}

func (e *testEnv) makeIngredient(t *testing.T, userID int64, name string) *domain.Ingredient {
	t.Helper()
	ing, err := e.ingredients.Create(context.Background(), userID, AttributeRequest{Name: name})
	require.NoError(t, err)
	return ing
}

func (e *testEnv) makeRecipe(t *testing.T, userID int64, title string, tags, ingredients []int64) *domain.Recipe {
	t.Helper()
	r, err := e.recipes.Create(context.Background(), userID, RecipeRequest{
		Title:       title,
		TimeMinutes: 10,
		Price:       "5.00",
		Tags:        tags,
		Ingredients: ingredients,
	})
	require.NoError(t, err)
	return r
}

// recipeImageFiles lists the files in the recipe image directory.
func (e *testEnv) recipeImageFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(e.images.Root(), filepath.FromSlash(images.RecipeDir)))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for x := range 10 {
		for y := range 10 {
			img.Set(x, y, color.RGBA{R: uint8(x * 20), G: uint8(y * 20), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func recipeIDs(recipes []*domain.Recipe) []int64 {
	ids := make([]int64, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}
	return ids
}
