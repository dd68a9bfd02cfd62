package data

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
	"github.com/olehvasyliv/cooking-corner/internal/db"
)

func setupDB(t *testing.T) *db.Client {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri, "cooking_corner_test")
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}

	// ensure clean collections in case previous runs left data
	_ = c.UsersCollection().Drop(ctx)
	_ = c.PendingUsersCollection().Drop(ctx)
	_ = c.ConfirmCodesCollection().Drop(ctx)
	_ = c.BannedEmailsCollection().Drop(ctx)
	_ = c.RecipesCollection().Drop(ctx)
	_ = c.CommentsCollection().Drop(ctx)
	_ = c.CommentViewsCollection().Drop(ctx)
	_ = c.FavoritesCollection().Drop(ctx)
	_ = c.SubscriptionsCollection().Drop(ctx)

	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}

	return c
}

func TestUsersCreateGetDelete(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	users := NewUsersStore(c.UsersCollection())
	ctx := context.Background()

	user, err := users.Create(ctx, &User{
		Name:     "Olena",
		LastName: "Kovalenko",
		Email:    "olena@example.com",
		Password: "hashed",
		Gender:   GenderWoman,
		Image:    "/uploads/default/women.png",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if user.Role != RoleUser {
		t.Fatalf("expected default role %q, got %q", RoleUser, user.Role)
	}

	// duplicate email is a conflict
	_, err = users.Create(ctx, &User{Email: "olena@example.com", Name: "x", LastName: "y"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate create: expected ErrConflict, got %v", err)
	}

	got, err := users.GetByEmail(ctx, "olena@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("GetByEmail returned wrong user")
	}

	deleted, err := users.Delete(ctx, user.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted.Email != "olena@example.com" {
		t.Fatalf("Delete should return the removed user, got %q", deleted.Email)
	}

	_, err = users.GetByID(ctx, user.ID)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPendingUpsertReplaces(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	pending := NewPendingUsersStore(c.PendingUsersCollection())
	ctx := context.Background()

	first := time.Now().Add(-10 * time.Minute).Truncate(time.Millisecond)
	if err := pending.Upsert(ctx, &PendingUser{
		Name: "A", LastName: "B", Email: "p@example.com",
		Password: "h1", CreatedAt: first,
	}); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}

	second := time.Now().Truncate(time.Millisecond)
	if err := pending.Upsert(ctx, &PendingUser{
		Name: "A2", LastName: "B2", Email: "p@example.com",
		Password: "h2", CreatedAt: second,
	}); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, err := pending.Get(ctx, "p@example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Password != "h2" || got.Name != "A2" {
		t.Fatalf("second Upsert should replace fields, got %+v", got)
	}
	if !got.CreatedAt.Equal(second) {
		t.Fatalf("expected created_at restarted to %v, got %v", second, got.CreatedAt)
	}

	expired, err := pending.ListExpired(ctx, time.Now().Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("ListExpired failed: %v", err)
	}
	if len(expired) != 0 {
		t.Fatalf("refreshed row should not be expired, got %d rows", len(expired))
	}
}

func TestConfirmCodesUpsertReplaces(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	codes := NewConfirmCodesStore(c.ConfirmCodesCollection())
	ctx := context.Background()

	if err := codes.Upsert(ctx, "c@example.com", "AAAAAA", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}
	fresh := time.Now().Truncate(time.Millisecond)
	if err := codes.Upsert(ctx, "c@example.com", "BBBBBB", fresh); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, err := codes.Get(ctx, "c@example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Code != "BBBBBB" {
		t.Fatalf("old code should be replaced, got %q", got.Code)
	}
	if !got.CreatedAt.Equal(fresh) {
		t.Fatalf("expected TTL clock restarted to %v, got %v", fresh, got.CreatedAt)
	}
}

func TestBanList(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	banned := NewBanListStore(c.BannedEmailsCollection())
	ctx := context.Background()

	if err := banned.Add(ctx, "bad@example.com"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := banned.Add(ctx, "bad@example.com"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate ban: expected ErrConflict, got %v", err)
	}

	ok, err := banned.Contains(ctx, "bad@example.com")
	if err != nil || !ok {
		t.Fatalf("Contains: ok=%v err=%v", ok, err)
	}

	if err := banned.Remove(ctx, "bad@example.com"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := banned.Remove(ctx, "bad@example.com"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("removing absent ban: expected ErrNotFound, got %v", err)
	}
}

func TestRecipesListFilters(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	recipes := NewRecipesStore(c.RecipesCollection())
	ctx := context.Background()

	authorA := bson.NewObjectID()
	authorB := bson.NewObjectID()

	for _, r := range []*Recipe{
		{Title: "Borshch", AuthorID: authorA, Category: "soups"},
		{Title: "Varenyky", AuthorID: authorA, Category: "main"},
		{Title: "Syrnyky", AuthorID: authorB, Category: "desserts"},
	} {
		if _, err := recipes.Create(ctx, r); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	byAuthor, err := recipes.List(ctx, RecipeFilter{AuthorIDs: []bson.ObjectID{authorA}})
	if err != nil {
		t.Fatalf("List by author failed: %v", err)
	}
	if len(byAuthor) != 2 {
		t.Fatalf("expected 2 recipes by author, got %d", len(byAuthor))
	}

	byCategory, err := recipes.List(ctx, RecipeFilter{Categories: []string{"soups", "desserts"}})
	if err != nil {
		t.Fatalf("List by category failed: %v", err)
	}
	if len(byCategory) != 2 {
		t.Fatalf("expected 2 recipes by category, got %d", len(byCategory))
	}

	ids, err := recipes.IDsByAuthor(ctx, authorA)
	if err != nil {
		t.Fatalf("IDsByAuthor failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}

	if err := recipes.DeleteByAuthor(ctx, authorA); err != nil {
		t.Fatalf("DeleteByAuthor failed: %v", err)
	}
	remaining, err := recipes.List(ctx, RecipeFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].AuthorID != authorB {
		t.Fatalf("DeleteByAuthor should leave only the other author's recipe")
	}
}

func TestCommentsRepliesAndCounts(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	comments := NewCommentsStore(c.CommentsCollection())
	ctx := context.Background()

	recipeID := bson.NewObjectID()
	userID := bson.NewObjectID()

	comment, err := comments.Insert(ctx, &Comment{
		RecipeID: recipeID,
		UserID:   userID,
		UserName: "Olena",
		Date:     "2026-08-30",
		Text:     "Дуже смачно!",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if comment.Answers == nil || len(comment.Answers) != 0 {
		t.Fatalf("new comment should have an empty answers array")
	}

	replier := bson.NewObjectID()
	for i, id := range []string{"a1", "a2"} {
		err := comments.AppendReply(ctx, comment.ID, Reply{
			ID: id, UserID: replier.Hex(), UserName: "Ivan",
			Date: "2026-08-31", Text: "reply", AnswerToUserID: userID.Hex(),
		})
		if err != nil {
			t.Fatalf("AppendReply %d failed: %v", i, err)
		}
	}

	if err := comments.PullReply(ctx, comment.ID, "a1"); err != nil {
		t.Fatalf("PullReply failed: %v", err)
	}
	if err := comments.PullReply(ctx, comment.ID, "a1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("pulling a removed reply: expected ErrNotFound, got %v", err)
	}

	counts, err := comments.CountByRecipeIDs(ctx, []bson.ObjectID{recipeID})
	if err != nil {
		t.Fatalf("CountByRecipeIDs failed: %v", err)
	}
	// 1 top-level comment + 1 surviving reply
	if counts[recipeID.Hex()] != 2 {
		t.Fatalf("expected count 2, got %d", counts[recipeID.Hex()])
	}

	if err := comments.PullRepliesByUser(ctx, replier); err != nil {
		t.Fatalf("PullRepliesByUser failed: %v", err)
	}
	got, err := comments.GetByID(ctx, comment.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Answers) != 0 {
		t.Fatalf("expected all replies stripped, got %d", len(got.Answers))
	}
}

func TestCommentViewsReplace(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	views := NewCommentViewsStore(c.CommentViewsCollection())
	ctx := context.Background()

	userID := bson.NewObjectID()
	recipeID := bson.NewObjectID()

	first := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
	if err := views.ReplaceViewed(ctx, userID, recipeID, first); err != nil {
		t.Fatalf("first ReplaceViewed failed: %v", err)
	}
	second := time.Now().Truncate(time.Millisecond)
	if err := views.ReplaceViewed(ctx, userID, recipeID, second); err != nil {
		t.Fatalf("second ReplaceViewed failed: %v", err)
	}

	got, err := views.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.ViewedRecipes) != 1 {
		t.Fatalf("replacing a view should not duplicate the entry, got %d", len(got.ViewedRecipes))
	}
	if !got.ViewedRecipes[0].LastViewedAt.Equal(second) {
		t.Fatalf("expected timestamp %v, got %v", second, got.ViewedRecipes[0].LastViewedAt)
	}

	// unknown user gets an empty document, not an error
	empty, err := views.Get(ctx, bson.NewObjectID())
	if err != nil {
		t.Fatalf("Get for unknown user failed: %v", err)
	}
	if len(empty.ViewedRecipes) != 0 {
		t.Fatalf("expected empty viewed list")
	}
}

func TestFavoritesSetSemantics(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	favorites := NewFavoritesStore(c.FavoritesCollection())
	ctx := context.Background()

	userID := bson.NewObjectID()
	recipeID := bson.NewObjectID()
	authorID := bson.NewObjectID()

	// first add creates the document, second is a no-op
	if err := favorites.AddRecipe(ctx, userID, recipeID); err != nil {
		t.Fatalf("AddRecipe failed: %v", err)
	}
	if err := favorites.AddRecipe(ctx, userID, recipeID); err != nil {
		t.Fatalf("repeated AddRecipe failed: %v", err)
	}
	if err := favorites.AddAuthor(ctx, userID, authorID); err != nil {
		t.Fatalf("AddAuthor failed: %v", err)
	}

	got, err := favorites.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.RecipeIDs) != 1 || len(got.AuthorIDs) != 1 {
		t.Fatalf("expected 1 recipe and 1 author, got %d/%d", len(got.RecipeIDs), len(got.AuthorIDs))
	}

	if err := favorites.RemoveRecipe(ctx, userID, recipeID); err != nil {
		t.Fatalf("RemoveRecipe failed: %v", err)
	}
	if err := favorites.RemoveRecipe(ctx, userID, recipeID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("removing absent favorite: expected ErrNotFound, got %v", err)
	}

	if err := favorites.PullAuthor(ctx, authorID); err != nil {
		t.Fatalf("PullAuthor failed: %v", err)
	}
	got, err = favorites.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.AuthorIDs) != 0 {
		t.Fatalf("PullAuthor should strip the author everywhere")
	}
}

func TestSubscriptionsUniqueness(t *testing.T) {
	c := setupDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	subs := NewSubscriptionsStore(c.SubscriptionsCollection())
	ctx := context.Background()

	userID := bson.NewObjectID()
	if err := subs.Create(ctx, userID, "s@example.com"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := subs.Create(ctx, userID, "other@example.com"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("second subscription for same user: expected ErrConflict, got %v", err)
	}
	if err := subs.Create(ctx, bson.NewObjectID(), "s@example.com"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("reusing subscribed email: expected ErrConflict, got %v", err)
	}

	ok, err := subs.Exists(ctx, userID)
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}

	if err := subs.Delete(ctx, userID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := subs.Delete(ctx, userID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("deleting absent subscription: expected ErrNotFound, got %v", err)
	}
}
