package data

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
)

// CommentsStore performs comment and reply DB operations. Replies live
// embedded in their parent comment's answers array.
type CommentsStore struct {
	coll *mongo.Collection
}

// NewCommentsStore returns a CommentsStore using the provided collection.
func NewCommentsStore(coll *mongo.Collection) *CommentsStore {
	return &CommentsStore{coll: coll}
}

// Insert adds a top-level comment.
func (s *CommentsStore) Insert(ctx context.Context, c *Comment) (*Comment, error) {
	if c.Answers == nil {
		c.Answers = []Reply{}
	}

	result, err := s.coll.InsertOne(ctx, c)
	if err != nil {
		return nil, err
	}

	c.ID = result.InsertedID.(bson.ObjectID)
	return c, nil
}

// GetByID finds a comment by id.
func (s *CommentsStore) GetByID(ctx context.Context, id bson.ObjectID) (*Comment, error) {
	var c Comment
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("comment: %w", apperr.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

// Delete removes a comment and, with it, its embedded replies.
func (s *CommentsStore) Delete(ctx context.Context, id bson.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("comment: %w", apperr.ErrNotFound)
	}
	return nil
}

// DeleteByRecipe removes every comment under a recipe.
func (s *CommentsStore) DeleteByRecipe(ctx context.Context, recipeID bson.ObjectID) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"recipe_id": recipeID})
	return err
}

// DeleteByUser removes every top-level comment authored by the user.
func (s *CommentsStore) DeleteByUser(ctx context.Context, userID bson.ObjectID) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

// ListAll returns every comment. Admin-only surface.
func (s *CommentsStore) ListAll(ctx context.Context) ([]*Comment, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var comments []*Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// ListByRecipe returns a recipe's comments, newest date first.
func (s *CommentsStore) ListByRecipe(ctx context.Context, recipeID bson.ObjectID) ([]*Comment, error) {
	cur, err := s.coll.Find(ctx, bson.M{"recipe_id": recipeID},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var comments []*Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// AppendReply pushes a reply onto a comment's answers array.
func (s *CommentsStore) AppendReply(ctx context.Context, commentID bson.ObjectID, r Reply) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": commentID},
		bson.M{"$push": bson.M{"answers": r}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("comment: %w", apperr.ErrNotFound)
	}
	return nil
}

// PullReply removes one reply by its per-comment id. Reports NotFound
// when nothing was removed (absent or already deleted).
func (s *CommentsStore) PullReply(ctx context.Context, commentID bson.ObjectID, replyID string) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": commentID},
		bson.M{"$pull": bson.M{"answers": bson.M{"id": replyID}}})
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return fmt.Errorf("reply: %w", apperr.ErrNotFound)
	}
	return nil
}

// PullRepliesByUser strips the user's replies from every comment
// system-wide. Reply user ids are stored as hex strings.
func (s *CommentsStore) PullRepliesByUser(ctx context.Context, userID bson.ObjectID) error {
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"answers.user_id": userID.Hex()},
		bson.M{"$pull": bson.M{"answers": bson.M{"user_id": userID.Hex()}}})
	return err
}

// CountByRecipeIDs returns, per recipe, the total of top-level comments
// plus all their replies.
func (s *CommentsStore) CountByRecipeIDs(ctx context.Context, recipeIDs []bson.ObjectID) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"recipe_id": bson.M{"$in": recipeIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$recipe_id",
			"comments_count": bson.M{"$sum": 1},
			"answers_count": bson.M{"$sum": bson.M{
				"$size": bson.M{"$ifNull": bson.A{"$answers", bson.A{}}},
			}},
		}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID            bson.ObjectID `bson:"_id"`
		CommentsCount int64         `bson:"comments_count"`
		AnswersCount  int64         `bson:"answers_count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ID.Hex()] = row.CommentsCount + row.AnswersCount
	}
	return counts, nil
}
