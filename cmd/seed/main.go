// Package main provides a tool to create a superuser and, optionally, a set
// of sample tags, ingredients and recipes owned by that user.
//
// Usage:
//
//	DATA_PATH=~/recipebox go run ./cmd/seed -email admin@example.com -password secret
//	DATA_PATH=~/recipebox go run ./cmd/seed -email admin@example.com -password secret -sample
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/recipebox/recipebox-server/internal/auth"
	"github.com/recipebox/recipebox-server/internal/config"
	"github.com/recipebox/recipebox-server/internal/domain"
	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/media/images"
	"github.com/recipebox/recipebox-server/internal/search"
	"github.com/recipebox/recipebox-server/internal/service"
	"github.com/recipebox/recipebox-server/internal/store/sqlite"
	"github.com/recipebox/recipebox-server/internal/validation"
)

var (
	email    = flag.String("email", "", "Superuser email")
	password = flag.String("password", "", "Superuser password")
	name     = flag.String("name", "Admin", "Superuser display name")
	sample   = flag.Bool("sample", false, "Also create sample tags, ingredients and recipes")
)

type sampleRecipe struct {
	title       string
	minutes     int
	price       string
	tags        []string
	ingredients []string
}

var sampleRecipes = []sampleRecipe{
	{"Pancakes", 20, "3.50", []string{"Breakfast", "Vegetarian"}, []string{"Flour", "Eggs", "Milk"}},
	{"Tomato Soup", 35, "4.20", []string{"Vegan", "Dinner"}, []string{"Tomatoes", "Onion", "Garlic"}},
	{"Omelette", 10, "2.75", []string{"Breakfast"}, []string{"Eggs", "Onion"}},
	{"Garlic Bread", 15, "1.80", []string{"Vegetarian"}, []string{"Flour", "Garlic"}},
}

func main() {
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -email EMAIL -password PASSWORD [-name NAME] [-sample]")
		os.Exit(2)
	}

	// Flags belong to this tool; the server config comes from env and .env.
	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	fmt.Printf("Opening database at: %s\n", cfg.Data.DatabasePath())

	st, err := sqlite.Open(cfg.Data.DatabasePath(), logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	v := validation.New()
	hasher := auth.NewPasswordHasher(auth.DefaultArgon2Params)

	// CreateSuperuser needs neither tokens nor sessions.
	authService := service.NewAuthService(st, nil, hasher, nil, v, logger)

	user, err := authService.CreateSuperuser(ctx, *email, *name, *password)
	switch {
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		user, err = st.GetUserByEmail(ctx, domain.NormalizeEmail(*email))
		if err != nil {
			log.Fatalf("Failed to load existing user: %v", err)
		}
		fmt.Printf("User %s already exists (id %d)\n", user.Email, user.ID)
	case err != nil:
		log.Fatalf("Failed to create superuser: %v", err)
	default:
		fmt.Printf("Created superuser %s (id %d)\n", user.Email, user.ID)
	}

	if !*sample {
		return
	}

	index, err := search.NewSearchIndex(search.Options{DataPath: cfg.Data.SearchPath(), Logger: logger})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	storage, err := images.NewStorage(cfg.Data.MediaPath())
	if err != nil {
		log.Fatalf("Failed to open media storage: %v", err)
	}

	recipes := service.NewRecipeService(st, index, storage, nil, v, logger)
	tags := service.NewTagService(st, recipes, nil, v, logger)
	ingredients := service.NewIngredientService(st, recipes, nil, v, logger)

	tagIDs := map[string]int64{}
	ingredientIDs := map[string]int64{}

	for _, r := range sampleRecipes {
		req := service.RecipeRequest{Title: r.title, TimeMinutes: r.minutes, Price: r.price}

		for _, t := range r.tags {
			id, ok := tagIDs[t]
			if !ok {
				tag, err := tags.Create(ctx, user.ID, service.AttributeRequest{Name: t})
				if err != nil {
					log.Fatalf("Failed to create tag %q: %v", t, err)
				}
				id = tag.ID
				tagIDs[t] = id
			}
			req.Tags = append(req.Tags, id)
		}

		for _, in := range r.ingredients {
			id, ok := ingredientIDs[in]
			if !ok {
				ingredient, err := ingredients.Create(ctx, user.ID, service.AttributeRequest{Name: in})
				if err != nil {
					log.Fatalf("Failed to create ingredient %q: %v", in, err)
				}
				id = ingredient.ID
				ingredientIDs[in] = id
			}
			req.Ingredients = append(req.Ingredients, id)
		}

		recipe, err := recipes.Create(ctx, user.ID, req)
		if err != nil {
			log.Fatalf("Failed to create recipe %q: %v", r.title, err)
		}
		fmt.Printf("  recipe %d: %s\n", recipe.ID, recipe.Title)
	}

	fmt.Printf("Seeded %d tags, %d ingredients, %d recipes\n", len(tagIDs), len(ingredientIDs), len(sampleRecipes))
}
