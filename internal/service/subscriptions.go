package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
	"github.com/olehvasyliv/cooking-corner/internal/normalize"
)

// Subscriptions manages newsletter subscriptions.
type Subscriptions struct {
	stores *Stores
}

// NewSubscriptions returns a wired Subscriptions service.
func NewSubscriptions(stores *Stores) *Subscriptions {
	return &Subscriptions{stores: stores}
}

// Subscribe signs a user up for the newsletter. Subscribing twice, or
// reusing an email already subscribed by someone else, is a conflict.
func (s *Subscriptions) Subscribe(ctx context.Context, userID bson.ObjectID, email string) error {
	if email == "" {
		return fmt.Errorf("subscribe: %w", apperr.ErrValidation)
	}
	return s.stores.Subscriptions.Create(ctx, userID, normalize.Email(email))
}

// Unsubscribe removes the user's subscription. NotFound when they were
// not subscribed.
func (s *Subscriptions) Unsubscribe(ctx context.Context, userID bson.ObjectID) error {
	return s.stores.Subscriptions.Delete(ctx, userID)
}

// IsSubscribed reports whether the user has a subscription.
func (s *Subscriptions) IsSubscribed(ctx context.Context, userID bson.ObjectID) (bool, error) {
	return s.stores.Subscriptions.Exists(ctx, userID)
}
