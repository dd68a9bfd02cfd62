// Package data provides the MongoDB document models and stores.
package data

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Roles a confirmed user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Genders accepted at registration. They only pick the default avatar.
const (
	GenderMan   = "man"
	GenderWoman = "woman"
)

// User maps to the users collection. Image is a site-relative path under
// /uploads.
type User struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string        `bson:"name" json:"name"`
	LastName  string        `bson:"last_name" json:"lastName"`
	Email     string        `bson:"email" json:"email"`
	Password  string        `bson:"password" json:"-"`
	Image     string        `bson:"image" json:"image"`
	Role      string        `bson:"role" json:"role"`
	Gender    string        `bson:"gender" json:"gender"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
}

// PendingUser is a staging copy of registration data keyed by email. It
// lives only between the registration request and confirmation (or until
// the expiry sweep removes it).
type PendingUser struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"-"`
	Name      string        `bson:"name" json:"name"`
	LastName  string        `bson:"last_name" json:"lastName"`
	Email     string        `bson:"email" json:"email"`
	Password  string        `bson:"password" json:"-"`
	Gender    string        `bson:"gender" json:"gender"`
	Image     string        `bson:"image" json:"image"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
}

// ConfirmCode holds the single active confirmation code for an email.
// A new registration request replaces both code and created_at.
type ConfirmCode struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"-"`
	Email     string        `bson:"email" json:"email"`
	Code      string        `bson:"code" json:"-"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
}

// BannedEmail blocks registration and login for an address.
type BannedEmail struct {
	ID       bson.ObjectID `bson:"_id,omitempty" json:"-"`
	Email    string        `bson:"email" json:"email"`
	BannedAt time.Time     `bson:"banned_at" json:"bannedAt"`
}

// Recipe maps to the recipes collection. AuthorName and AuthorPhoto are
// snapshots taken at creation time and never re-synced with the user.
type Recipe struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title         string        `bson:"title" json:"title"`
	AuthorID      bson.ObjectID `bson:"author_id" json:"authorId"`
	AuthorName    string        `bson:"author_name" json:"authorName"`
	AuthorPhoto   string        `bson:"author_photo" json:"authorPhoto"`
	Ingredients   string        `bson:"ingredients" json:"ingredients"`
	Instructions  string        `bson:"instructions" json:"instructions"`
	Time          string        `bson:"time" json:"time"`
	Servings      int           `bson:"servings" json:"servings"`
	Category      string        `bson:"category" json:"category"`
	Photo         string        `bson:"photo" json:"photo"`
	CreatedAt     time.Time     `bson:"created_at" json:"createdAt"`
	LastCommentAt *time.Time    `bson:"last_comment_at" json:"lastCommentAt"`
}

// Reply is embedded in Comment.Answers. ID is sequential within its
// parent comment ("a1", "a2", ...) and is never globally unique.
type Reply struct {
	ID             string `bson:"id" json:"id"`
	UserID         string `bson:"user_id" json:"userId"`
	UserName       string `bson:"user_name" json:"userName"`
	Date           string `bson:"date" json:"date"`
	Text           string `bson:"text" json:"text"`
	AnswerToUserID string `bson:"answer_to_user_id" json:"answerToUserId"`
}

// Comment maps to the comments collection. Date is a calendar-day string
// (YYYY-MM-DD), not a full timestamp.
type Comment struct {
	ID       bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	RecipeID bson.ObjectID `bson:"recipe_id" json:"recipeId"`
	UserID   bson.ObjectID `bson:"user_id" json:"userId"`
	UserName string        `bson:"user_name" json:"userName"`
	Date     string        `bson:"date" json:"date"`
	Text     string        `bson:"text" json:"text"`
	Answers  []Reply       `bson:"answers" json:"answers"`
}

// ViewedRecipe is embedded in CommentView.ViewedRecipes.
type ViewedRecipe struct {
	RecipeID     bson.ObjectID `bson:"recipe_id" json:"recipeId"`
	LastViewedAt time.Time     `bson:"last_viewed_at" json:"lastViewedAt"`
}

// CommentView tracks, per user, when they last viewed the comments of
// recipes they authored. One document per user.
type CommentView struct {
	ID            bson.ObjectID  `bson:"_id,omitempty" json:"-"`
	UserID        bson.ObjectID  `bson:"user_id" json:"userId"`
	ViewedRecipes []ViewedRecipe `bson:"viewed_recipes" json:"viewedRecipes"`
}

// Favorite is the per-user set of favorited recipes and authors. One
// document per user, maintained via upsert.
type Favorite struct {
	ID        bson.ObjectID   `bson:"_id,omitempty" json:"-"`
	UserID    bson.ObjectID   `bson:"user_id" json:"userId"`
	RecipeIDs []bson.ObjectID `bson:"recipe_ids" json:"recipeIds"`
	AuthorIDs []bson.ObjectID `bson:"author_ids" json:"authorIds"`
}

// Subscription maps a user to their newsletter email. Unique on both
// user and email.
type Subscription struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID       bson.ObjectID `bson:"user_id" json:"userId"`
	Email        string        `bson:"email" json:"email"`
	SubscribedAt time.Time     `bson:"subscribed_at" json:"subscribedAt"`
}
