package data

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
)

// FavoritesStore manages the per-user favorites document (recipe ids and
// author ids). Adds upsert with $addToSet so duplicates are no-ops and
// concurrent first writes resolve in the database, not the application.
type FavoritesStore struct {
	coll *mongo.Collection
}

// NewFavoritesStore returns a FavoritesStore using the provided
// collection.
func NewFavoritesStore(coll *mongo.Collection) *FavoritesStore {
	return &FavoritesStore{coll: coll}
}

// AddRecipe adds a recipe to the user's favorites. Idempotent.
func (s *FavoritesStore) AddRecipe(ctx context.Context, userID, recipeID bson.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"user_id": userID},
		bson.M{"$addToSet": bson.M{"recipe_ids": recipeID}},
		options.UpdateOne().SetUpsert(true))
	return err
}

// RemoveRecipe removes a recipe from the user's favorites. Reports
// NotFound when it was not favorited.
func (s *FavoritesStore) RemoveRecipe(ctx context.Context, userID, recipeID bson.ObjectID) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"user_id": userID},
		bson.M{"$pull": bson.M{"recipe_ids": recipeID}})
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return fmt.Errorf("favorite recipe: %w", apperr.ErrNotFound)
	}
	return nil
}

// AddAuthor adds an author to the user's favorites. Idempotent.
func (s *FavoritesStore) AddAuthor(ctx context.Context, userID, authorID bson.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"user_id": userID},
		bson.M{"$addToSet": bson.M{"author_ids": authorID}},
		options.UpdateOne().SetUpsert(true))
	return err
}

// RemoveAuthor removes an author from the user's favorites. Reports
// NotFound when they were not favorited.
func (s *FavoritesStore) RemoveAuthor(ctx context.Context, userID, authorID bson.ObjectID) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"user_id": userID},
		bson.M{"$pull": bson.M{"author_ids": authorID}})
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return fmt.Errorf("favorite author: %w", apperr.ErrNotFound)
	}
	return nil
}

// Get returns the user's favorites, or an empty document when they have
// never favorited anything.
func (s *FavoritesStore) Get(ctx context.Context, userID bson.ObjectID) (*Favorite, error) {
	var f Favorite
	err := s.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&f)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &Favorite{
				UserID:    userID,
				RecipeIDs: []bson.ObjectID{},
				AuthorIDs: []bson.ObjectID{},
			}, nil
		}
		return nil, err
	}
	if f.RecipeIDs == nil {
		f.RecipeIDs = []bson.ObjectID{}
	}
	if f.AuthorIDs == nil {
		f.AuthorIDs = []bson.ObjectID{}
	}
	return &f, nil
}

// DeleteByUser removes the user's favorites document.
func (s *FavoritesStore) DeleteByUser(ctx context.Context, userID bson.ObjectID) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"user_id": userID})
	return err
}

// PullAuthor strips an author id from every favorites document. Part of
// the account delete cascade.
func (s *FavoritesStore) PullAuthor(ctx context.Context, authorID bson.ObjectID) error {
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"author_ids": authorID},
		bson.M{"$pull": bson.M{"author_ids": authorID}})
	return err
}

// PullRecipes strips the given recipe ids from every favorites document.
func (s *FavoritesStore) PullRecipes(ctx context.Context, recipeIDs []bson.ObjectID) error {
	if len(recipeIDs) == 0 {
		return nil
	}
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"recipe_ids": bson.M{"$in": recipeIDs}},
		bson.M{"$pull": bson.M{"recipe_ids": bson.M{"$in": recipeIDs}}})
	return err
}
