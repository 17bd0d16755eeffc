// Package store defines the persistence contracts for the recipebox server.
// The relational data lives behind Store (see store/sqlite); refresh-token
// sessions live behind SessionStore (see store/kv).
package store

import (
	"context"

	"github.com/recipebox/recipebox-server/internal/domain"
	"github.com/recipebox/recipebox-server/internal/query"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	CountUsers(ctx context.Context) (int, error)
}

// TagStore persists tags. Lookups by ID are not scoped to a user; the
// service layer applies the ownership check.
type TagStore interface {
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTag(ctx context.Context, id int64) (*domain.Tag, error)
	GetTagsByIDs(ctx context.Context, ids []int64) ([]*domain.Tag, error)
	ListTags(ctx context.Context, userID int64, assignedOnly bool) ([]*domain.Tag, error)
	UpdateTag(ctx context.Context, tag *domain.Tag) error
	DeleteTag(ctx context.Context, id int64) error
}

// IngredientStore persists ingredients, mirroring TagStore.
type IngredientStore interface {
	CreateIngredient(ctx context.Context, ing *domain.Ingredient) error
	GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error)
	GetIngredientsByIDs(ctx context.Context, ids []int64) ([]*domain.Ingredient, error)
	ListIngredients(ctx context.Context, userID int64, assignedOnly bool) ([]*domain.Ingredient, error)
	UpdateIngredient(ctx context.Context, ing *domain.Ingredient) error
	DeleteIngredient(ctx context.Context, id int64) error
}

// RecipeStore persists recipes together with their tag and ingredient sets.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, recipe *domain.Recipe) error
	GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error)
	GetRecipesByIDs(ctx context.Context, ids []int64) ([]*domain.Recipe, error)
	ListRecipes(ctx context.Context, spec query.Spec) ([]*domain.Recipe, error)
	ListAllRecipes(ctx context.Context) ([]*domain.Recipe, error)
	UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error
	SetRecipeImage(ctx context.Context, id int64, image, blurHash string) error
	DeleteRecipe(ctx context.Context, id int64) error
}

// Store is the full relational persistence surface.
type Store interface {
	UserStore
	TagStore
	IngredientStore
	RecipeStore

	Close() error
}

// SessionStore persists refresh-token sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	ListUserSessions(ctx context.Context, userID int64) ([]*domain.Session, error)
	DeleteAllUserSessions(ctx context.Context, userID int64) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	Close() error
}
