package data

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
)

// RecipeFilter selects recipes for List. Each field accepts zero or more
// values; set fields are matched with $in and combine conjunctively.
type RecipeFilter struct {
	AuthorIDs  []bson.ObjectID
	RecipeIDs  []bson.ObjectID
	Categories []string
}

// RecipeUpdate carries the editable recipe fields for Update.
type RecipeUpdate struct {
	Title        string
	Ingredients  string
	Instructions string
	Time         string
	Servings     int
	Category     string
	Photo        string
}

// RecipesStore performs recipe DB operations.
type RecipesStore struct {
	coll *mongo.Collection
}

// NewRecipesStore returns a RecipesStore using the provided collection.
func NewRecipesStore(coll *mongo.Collection) *RecipesStore {
	return &RecipesStore{coll: coll}
}

// Create inserts a recipe document.
func (s *RecipesStore) Create(ctx context.Context, r *Recipe) (*Recipe, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	result, err := s.coll.InsertOne(ctx, r)
	if err != nil {
		return nil, err
	}

	r.ID = result.InsertedID.(bson.ObjectID)
	return r, nil
}

// GetByID finds a recipe by id.
func (s *RecipesStore) GetByID(ctx context.Context, id bson.ObjectID) (*Recipe, error) {
	var r Recipe
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("recipe: %w", apperr.ErrNotFound)
		}
		return nil, err
	}
	return &r, nil
}

// Update overwrites the editable fields of a recipe.
func (s *RecipesStore) Update(ctx context.Context, id bson.ObjectID, u RecipeUpdate) error {
	update := bson.M{"$set": bson.M{
		"title":        u.Title,
		"ingredients":  u.Ingredients,
		"instructions": u.Instructions,
		"time":         u.Time,
		"servings":     u.Servings,
		"category":     u.Category,
		"photo":        u.Photo,
	}}

	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("recipe: %w", apperr.ErrNotFound)
	}
	return nil
}

// Delete removes a recipe document.
func (s *RecipesStore) Delete(ctx context.Context, id bson.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("recipe: %w", apperr.ErrNotFound)
	}
	return nil
}

// List returns recipes matching the filter. An empty filter returns
// every recipe.
func (s *RecipesStore) List(ctx context.Context, f RecipeFilter) ([]*Recipe, error) {
	filter := bson.M{}
	if len(f.AuthorIDs) > 0 {
		filter["author_id"] = inOrEqual(f.AuthorIDs)
	}
	if len(f.RecipeIDs) > 0 {
		filter["_id"] = inOrEqual(f.RecipeIDs)
	}
	if len(f.Categories) > 0 {
		filter["category"] = inOrEqualStrings(f.Categories)
	}

	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var recipes []*Recipe
	if err := cur.All(ctx, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// IDsByAuthor returns the ids of every recipe authored by the user.
// Used to scrub favorites during the account delete cascade.
func (s *RecipesStore) IDsByAuthor(ctx context.Context, authorID bson.ObjectID) ([]bson.ObjectID, error) {
	cur, err := s.coll.Find(ctx, bson.M{"author_id": authorID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []struct {
		ID bson.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]bson.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

// DeleteByAuthor removes every recipe authored by the user.
func (s *RecipesStore) DeleteByAuthor(ctx context.Context, authorID bson.ObjectID) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"author_id": authorID})
	return err
}

// SetLastCommentAt stamps the time a non-author last commented.
func (s *RecipesStore) SetLastCommentAt(ctx context.Context, id bson.ObjectID, at time.Time) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_comment_at": at}})
	return err
}

// LatestSince returns the newest recipe created at or after the cutoff,
// or NotFound when the period has none. Drives the weekly newsletter.
func (s *RecipesStore) LatestSince(ctx context.Context, cutoff time.Time) (*Recipe, error) {
	var r Recipe
	err := s.coll.FindOne(ctx,
		bson.M{"created_at": bson.M{"$gte": cutoff}},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&r)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("recipe: %w", apperr.ErrNotFound)
		}
		return nil, err
	}
	return &r, nil
}

// ListRecent returns up to limit recipes, newest first. Drives the
// sitemap.
func (s *RecipesStore) ListRecent(ctx context.Context, limit int64) ([]*Recipe, error) {
	cur, err := s.coll.Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(limit).
			SetProjection(bson.M{"_id": 1, "created_at": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var recipes []*Recipe
	if err := cur.All(ctx, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// inOrEqual builds either a direct equality value or an $in clause,
// mirroring how the query parameters accept one value or a set.
func inOrEqual(ids []bson.ObjectID) any {
	if len(ids) == 1 {
		return ids[0]
	}
	return bson.M{"$in": ids}
}

func inOrEqualStrings(vals []string) any {
	if len(vals) == 1 {
		return vals[0]
	}
	return bson.M{"$in": vals}
}
