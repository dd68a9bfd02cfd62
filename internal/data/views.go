package data

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CommentViewsStore tracks when recipe authors last viewed the comments
// under their own recipes. One document per user, maintained by upsert.
type CommentViewsStore struct {
	coll *mongo.Collection
}

// NewCommentViewsStore returns a CommentViewsStore using the provided
// collection.
func NewCommentViewsStore(coll *mongo.Collection) *CommentViewsStore {
	return &CommentViewsStore{coll: coll}
}

// ReplaceViewed records a view as remove-then-insert: the entry for the
// recipe is pulled and a fresh one pushed with the new timestamp. Both
// updates upsert so the first view also creates the user's document.
func (s *CommentViewsStore) ReplaceViewed(ctx context.Context, userID, recipeID bson.ObjectID, at time.Time) error {
	upsert := options.UpdateOne().SetUpsert(true)

	_, err := s.coll.UpdateOne(ctx, bson.M{"user_id": userID},
		bson.M{"$pull": bson.M{"viewed_recipes": bson.M{"recipe_id": recipeID}}},
		upsert)
	if err != nil {
		return err
	}

	_, err = s.coll.UpdateOne(ctx, bson.M{"user_id": userID},
		bson.M{"$push": bson.M{"viewed_recipes": ViewedRecipe{
			RecipeID:     recipeID,
			LastViewedAt: at,
		}}},
		upsert)
	return err
}

// Get returns the user's view document, or an empty one when the user
// has never viewed anything.
func (s *CommentViewsStore) Get(ctx context.Context, userID bson.ObjectID) (*CommentView, error) {
	var v CommentView
	err := s.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&v)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &CommentView{UserID: userID, ViewedRecipes: []ViewedRecipe{}}, nil
		}
		return nil, err
	}
	return &v, nil
}

// DeleteByUser removes the user's view document.
func (s *CommentViewsStore) DeleteByUser(ctx context.Context, userID bson.ObjectID) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"user_id": userID})
	return err
}

// PullRecipe strips a recipe's entry from every user's view document.
// Part of the recipe delete cascade.
func (s *CommentViewsStore) PullRecipe(ctx context.Context, recipeID bson.ObjectID) error {
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"viewed_recipes.recipe_id": recipeID},
		bson.M{"$pull": bson.M{"viewed_recipes": bson.M{"recipe_id": recipeID}}})
	return err
}
