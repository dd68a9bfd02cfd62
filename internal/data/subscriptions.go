package data

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
)

// SubscriptionsStore manages newsletter subscriptions, one per user.
type SubscriptionsStore struct {
	coll *mongo.Collection
}

// NewSubscriptionsStore returns a SubscriptionsStore using the provided
// collection.
func NewSubscriptionsStore(coll *mongo.Collection) *SubscriptionsStore {
	return &SubscriptionsStore{coll: coll}
}

// Create subscribes a user. A second subscription for the same user or
// email is a conflict (unique indexes back this up).
func (s *SubscriptionsStore) Create(ctx context.Context, userID bson.ObjectID, email string) error {
	_, err := s.coll.InsertOne(ctx, &Subscription{
		UserID:       userID,
		Email:        email,
		SubscribedAt: time.Now(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("subscription: %w", apperr.ErrConflict)
		}
		return err
	}
	return nil
}

// Delete unsubscribes a user. Reports NotFound when no subscription
// exists.
func (s *SubscriptionsStore) Delete(ctx context.Context, userID bson.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("subscription: %w", apperr.ErrNotFound)
	}
	return nil
}

// Exists reports whether the user is subscribed.
func (s *SubscriptionsStore) Exists(ctx context.Context, userID bson.ObjectID) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteByUser removes the user's subscription without caring whether it
// existed. Used by the account delete cascade.
func (s *SubscriptionsStore) DeleteByUser(ctx context.Context, userID bson.ObjectID) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"user_id": userID})
	return err
}

// List returns every subscriber, for the newsletter broadcast.
func (s *SubscriptionsStore) List(ctx context.Context) ([]*Subscription, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var subs []*Subscription
	if err := cur.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}
