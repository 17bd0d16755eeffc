package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox-server/internal/auth"
	"github.com/recipebox/recipebox-server/internal/events"
	"github.com/recipebox/recipebox-server/internal/media/images"
	"github.com/recipebox/recipebox-server/internal/search"
	"github.com/recipebox/recipebox-server/internal/service"
	"github.com/recipebox/recipebox-server/internal/sse"
	"github.com/recipebox/recipebox-server/internal/store/kv"
	"github.com/recipebox/recipebox-server/internal/store/sqlite"
	"github.com/recipebox/recipebox-server/internal/validation"
)

// testEnvelope mirrors response.Envelope with a typed payload.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api       humatest.TestAPI
	mediaRoot string
}

// setupTestServer creates a server backed by temp-dir SQLite, in-memory
// Badger and a Bleve index.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithOptions(t, Options{})
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sessions, err := kv.Open("", logger, kv.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: filepath.Join(tmpDir, "search"), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	mediaRoot := filepath.Join(tmpDir, "media")
	storage, err := images.NewStorage(mediaRoot)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(bytes.Repeat([]byte{3}, 32), 15*time.Minute, time.Hour)
	require.NoError(t, err)

	hasher := auth.NewPasswordHasher(auth.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	v := validation.New()

	sseManager := sse.NewManager(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go sseManager.Start(ctx)
	t.Cleanup(cancel)

	bus := events.NewBus(sseManager, nil, logger)

	sessionService := service.NewSessionService(sessions, st, tokenService, logger)
	recipeService := service.NewRecipeService(st, index, storage, bus, v, logger)
	services := &Services{
		Auth:       service.NewAuthService(st, tokenService, hasher, sessionService, v, logger),
		Session:    sessionService,
		User:       service.NewUserService(st, hasher, v, logger),
		Tag:        service.NewTagService(st, recipeService, bus, v, logger),
		Ingredient: service.NewIngredientService(st, recipeService, bus, v, logger),
		Recipe:     recipeService,
	}

	s := NewServer(st, services, storage, index, sseManager, opts, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server:    s,
		api:       humatest.Wrap(t, s.api),
		mediaRoot: mediaRoot,
	}
}

// registerAndLogin creates a user through the API and returns an access token.
func (ts *testServer) registerAndLogin(t *testing.T, email string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/user/create", map[string]any{
		"email":    email,
		"password": "testpass123",
		"name":     "Test User",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/user/token", map[string]any{
		"email":    email,
		"password": "testpass123",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var env testEnvelope[TokenResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	require.NotEmpty(t, env.Data.AccessToken)
	return env.Data.AccessToken
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// createTag creates a tag through the API and returns its ID.
func (ts *testServer) createTag(t *testing.T, token, name string) int64 {
	t.Helper()
	return ts.createAttribute(t, token, "/api/v1/recipe/tags", name)
}

// createIngredient creates an ingredient through the API and returns its ID.
func (ts *testServer) createIngredient(t *testing.T, token, name string) int64 {
	t.Helper()
	return ts.createAttribute(t, token, "/api/v1/recipe/ingredients", name)
}

func (ts *testServer) createAttribute(t *testing.T, token, path, name string) int64 {
	t.Helper()
	resp := ts.api.Post(path, bearer(token), map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var env testEnvelope[attributeData]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return env.Data.ID
}

// attributeData decodes a tag or ingredient.
type attributeData struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// recipeSummaryData decodes the summary representation.
type recipeSummaryData struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	TimeMinutes int     `json:"time_minutes"`
	Price       string  `json:"price"`
	Link        string  `json:"link"`
	Description string  `json:"description"`
	Tags        []int64 `json:"tags"`
	Ingredients []int64 `json:"ingredients"`
}

// createRecipe creates a recipe through the API and returns its ID.
func (ts *testServer) createRecipe(t *testing.T, token, title string, tags, ingredients []int64) int64 {
	t.Helper()

	body := map[string]any{
		"title":        title,
		"time_minutes": 10,
		"price":        "5.00",
	}
	if tags != nil {
		body["tags"] = tags
	}
	if ingredients != nil {
		body["ingredients"] = ingredients
	}

	resp := ts.api.Post("/api/v1/recipe/recipes", bearer(token), body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var env testEnvelope[recipeSummaryData]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	require.NotZero(t, env.Data.ID)
	return env.Data.ID
}

// idList formats ids as a comma-separated query value.
func idList(ids ...int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func recipePath(id int64, suffix string) string {
	return fmt.Sprintf("/api/v1/recipe/recipes/%d%s", id, suffix)
}

// pngBytes returns a small valid PNG.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for x := range 10 {
		for y := range 10 {
			img.Set(x, y, color.RGBA{R: uint8(x * 25), G: uint8(y * 25), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
