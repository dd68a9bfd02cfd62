// Package service implements the application's lifecycle logic on top of
// the data stores: account registration and deletion, recipe and comment
// management, favorites and newsletter subscriptions.
package service

import (
	"io"

	"github.com/olehvasyliv/cooking-corner/internal/data"
	"github.com/olehvasyliv/cooking-corner/internal/db"
)

// Stores bundles every data store so services can share one wiring point.
type Stores struct {
	Users         *data.UsersStore
	Pending       *data.PendingUsersStore
	Codes         *data.ConfirmCodesStore
	Banned        *data.BanListStore
	Recipes       *data.RecipesStore
	Comments      *data.CommentsStore
	Views         *data.CommentViewsStore
	Favorites     *data.FavoritesStore
	Subscriptions *data.SubscriptionsStore
}

// NewStores builds every store from a db client.
func NewStores(c *db.Client) *Stores {
	return &Stores{
		Users:         data.NewUsersStore(c.UsersCollection()),
		Pending:       data.NewPendingUsersStore(c.PendingUsersCollection()),
		Codes:         data.NewConfirmCodesStore(c.ConfirmCodesCollection()),
		Banned:        data.NewBanListStore(c.BannedEmailsCollection()),
		Recipes:       data.NewRecipesStore(c.RecipesCollection()),
		Comments:      data.NewCommentsStore(c.CommentsCollection()),
		Views:         data.NewCommentViewsStore(c.CommentViewsCollection()),
		Favorites:     data.NewFavoritesStore(c.FavoritesCollection()),
		Subscriptions: data.NewSubscriptionsStore(c.SubscriptionsCollection()),
	}
}

// CodeMailer is the slice of the mailer the account flow needs.
type CodeMailer interface {
	SendConfirmationCode(to, code string) error
}

// Uploads is the slice of the storage layer the services need.
type Uploads interface {
	SaveImage(email string, r io.Reader) (string, error)
	DeleteFile(sitePath string)
	DeleteAccountFolder(email string)
}
