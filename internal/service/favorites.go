package service

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/olehvasyliv/cooking-corner/internal/data"
)

// Favorites is a thin wrapper over the favorites store. Adding is
// idempotent; removing something never favorited is NotFound.
type Favorites struct {
	stores *Stores
}

// NewFavorites returns a wired Favorites service.
func NewFavorites(stores *Stores) *Favorites {
	return &Favorites{stores: stores}
}

// AddRecipe favorites a recipe for the user.
func (f *Favorites) AddRecipe(ctx context.Context, userID, recipeID bson.ObjectID) error {
	return f.stores.Favorites.AddRecipe(ctx, userID, recipeID)
}

// RemoveRecipe unfavorites a recipe for the user.
func (f *Favorites) RemoveRecipe(ctx context.Context, userID, recipeID bson.ObjectID) error {
	return f.stores.Favorites.RemoveRecipe(ctx, userID, recipeID)
}

// AddAuthor favorites an author for the user.
func (f *Favorites) AddAuthor(ctx context.Context, userID, authorID bson.ObjectID) error {
	return f.stores.Favorites.AddAuthor(ctx, userID, authorID)
}

// RemoveAuthor unfavorites an author for the user.
func (f *Favorites) RemoveAuthor(ctx context.Context, userID, authorID bson.ObjectID) error {
	return f.stores.Favorites.RemoveAuthor(ctx, userID, authorID)
}

// Get returns the user's favorites; empty sets when they have none.
func (f *Favorites) Get(ctx context.Context, userID bson.ObjectID) (*data.Favorite, error) {
	return f.stores.Favorites.Get(ctx, userID)
}
