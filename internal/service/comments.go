package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
	"github.com/olehvasyliv/cooking-corner/internal/data"
)

// commentDateLayout is the calendar-day format comments and replies are
// stamped with. No time-of-day component.
const commentDateLayout = "2006-01-02"

// Comments implements comment and reply management plus the per-author
// comment view tracking.
type Comments struct {
	stores *Stores
	logger zerolog.Logger

	now func() time.Time
}

// NewComments returns a wired Comments service.
func NewComments(stores *Stores, logger zerolog.Logger) *Comments {
	return &Comments{
		stores: stores,
		logger: logger.With().Str("component", "comments").Logger(),
		now:    time.Now,
	}
}

// Add creates a top-level comment under a recipe. Commenting on a
// missing recipe is NotFound, never an orphan comment. When someone
// other than the recipe's author comments, the recipe's last-comment
// time is bumped so the author sees there is something new.
func (c *Comments) Add(ctx context.Context, recipeID, userID bson.ObjectID, text string) (*data.Comment, error) {
	if text == "" {
		return nil, fmt.Errorf("comment: %w", apperr.ErrValidation)
	}

	recipe, err := c.stores.Recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	user, err := c.stores.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := c.now()
	comment, err := c.stores.Comments.Insert(ctx, &data.Comment{
		RecipeID: recipeID,
		UserID:   userID,
		UserName: user.Name,
		Date:     now.Format(commentDateLayout),
		Text:     text,
	})
	if err != nil {
		return nil, err
	}

	if recipe.AuthorID != userID {
		if err := c.stores.Recipes.SetLastCommentAt(ctx, recipeID, now); err != nil {
			c.logger.Error().Err(err).Str("recipe_id", recipeID.Hex()).
				Msg("failed to bump last comment time")
		}
	}

	return comment, nil
}

// Delete removes a comment. Allowed for the comment's author and for
// admins.
func (c *Comments) Delete(ctx context.Context, commentID, callerID bson.ObjectID, isAdmin bool) error {
	comment, err := c.stores.Comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if !isAdmin && comment.UserID != callerID {
		return fmt.Errorf("delete comment %s: %w", commentID.Hex(), apperr.ErrForbidden)
	}
	return c.stores.Comments.Delete(ctx, commentID)
}

// AddReply appends a reply to a comment. Reply ids are sequential
// within the parent ("a1", "a2", ...) and deleted ids are never
// reused. Replies always answer the parent comment's author. A reply
// from anyone but the recipe's author bumps the recipe's last-comment
// time.
func (c *Comments) AddReply(ctx context.Context, commentID, userID bson.ObjectID, text string) (*data.Reply, error) {
	if text == "" {
		return nil, fmt.Errorf("reply: %w", apperr.ErrValidation)
	}

	comment, err := c.stores.Comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	user, err := c.stores.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := c.now()
	reply := data.Reply{
		ID:             nextReplyID(comment.Answers),
		UserID:         userID.Hex(),
		UserName:       user.Name,
		Date:           now.Format(commentDateLayout),
		Text:           text,
		AnswerToUserID: comment.UserID.Hex(),
	}

	if err := c.stores.Comments.AppendReply(ctx, commentID, reply); err != nil {
		return nil, err
	}

	recipe, err := c.stores.Recipes.GetByID(ctx, comment.RecipeID)
	if err != nil {
		c.logger.Error().Err(err).Str("comment_id", commentID.Hex()).
			Msg("failed to load recipe for last comment bump")
		return &reply, nil
	}
	if recipe.AuthorID != userID {
		if err := c.stores.Recipes.SetLastCommentAt(ctx, recipe.ID, now); err != nil {
			c.logger.Error().Err(err).Str("recipe_id", recipe.ID.Hex()).
				Msg("failed to bump last comment time")
		}
	}

	return &reply, nil
}

// nextReplyID assigns the next per-comment reply id. The counter only
// moves forward: deleting a reply vacates its slot permanently, so
// after a1..a3 with a2 removed the next id is a4, not a3 again.
func nextReplyID(answers []data.Reply) string {
	max := 0
	for _, a := range answers {
		n, err := strconv.Atoi(strings.TrimPrefix(a.ID, "a"))
		if err == nil && n > max {
			max = n
		}
	}
	return "a" + strconv.Itoa(max+1)
}

// DeleteReply removes one reply. Allowed for the reply's author and for
// admins.
func (c *Comments) DeleteReply(ctx context.Context, commentID bson.ObjectID, replyID string, callerID bson.ObjectID, isAdmin bool) error {
	if !isAdmin {
		comment, err := c.stores.Comments.GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		var owned bool
		for _, a := range comment.Answers {
			if a.ID == replyID && a.UserID == callerID.Hex() {
				owned = true
				break
			}
		}
		if !owned {
			return fmt.Errorf("delete reply %s: %w", replyID, apperr.ErrForbidden)
		}
	}
	return c.stores.Comments.PullReply(ctx, commentID, replyID)
}

// ListForRecipe returns a recipe's comments. When the viewer is the
// recipe's author the view is recorded, so the author's unread marker
// resets.
func (c *Comments) ListForRecipe(ctx context.Context, recipeID bson.ObjectID, viewerID *bson.ObjectID) ([]*data.Comment, error) {
	comments, err := c.stores.Comments.ListByRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		recipe, err := c.stores.Recipes.GetByID(ctx, recipeID)
		if err == nil && recipe.AuthorID == *viewerID {
			if err := c.stores.Views.ReplaceViewed(ctx, *viewerID, recipeID, c.now()); err != nil {
				c.logger.Error().Err(err).Str("recipe_id", recipeID.Hex()).
					Msg("failed to record comment view")
			}
		}
	}

	return comments, nil
}

// CountByAuthor returns, keyed by recipe hex id, the total comment
// count (top-level plus replies) for each of the author's recipes.
// Recipes without comments are absent from the map.
func (c *Comments) CountByAuthor(ctx context.Context, authorID bson.ObjectID) (map[string]int64, error) {
	recipeIDs, err := c.stores.Recipes.IDsByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if len(recipeIDs) == 0 {
		return map[string]int64{}, nil
	}
	return c.stores.Comments.CountByRecipeIDs(ctx, recipeIDs)
}

// ListAll returns every comment. Admin surface.
func (c *Comments) ListAll(ctx context.Context) ([]*data.Comment, error) {
	return c.stores.Comments.ListAll(ctx)
}

// ViewsForUser returns the user's comment view document.
func (c *Comments) ViewsForUser(ctx context.Context, userID bson.ObjectID) (*data.CommentView, error) {
	return c.stores.Views.Get(ctx, userID)
}
