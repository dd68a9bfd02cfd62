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

// PendingUsersStore manages registrations awaiting email confirmation.
type PendingUsersStore struct {
	coll *mongo.Collection
}

// NewPendingUsersStore returns a PendingUsersStore using the provided
// collection.
func NewPendingUsersStore(coll *mongo.Collection) *PendingUsersStore {
	return &PendingUsersStore{coll: coll}
}

// Upsert stores registration data keyed by email. A repeated request for
// the same address silently replaces the previous one, including its
// created_at, so the expiry clock restarts.
func (s *PendingUsersStore) Upsert(ctx context.Context, p *PendingUser) error {
	update := bson.M{"$set": bson.M{
		"name":       p.Name,
		"last_name":  p.LastName,
		"email":      p.Email,
		"password":   p.Password,
		"gender":     p.Gender,
		"image":      p.Image,
		"created_at": p.CreatedAt,
	}}

	_, err := s.coll.UpdateOne(ctx, bson.M{"email": p.Email}, update,
		options.UpdateOne().SetUpsert(true))
	return err
}

// Get finds the pending registration for an email.
func (s *PendingUsersStore) Get(ctx context.Context, email string) (*PendingUser, error) {
	var p PendingUser
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("pending user: %w", apperr.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// Delete removes the pending registration for an email.
func (s *PendingUsersStore) Delete(ctx context.Context, email string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"email": email})
	return err
}

// ListExpired returns pending registrations created before the cutoff.
// The cleanup sweep deletes them along with their codes and images.
func (s *PendingUsersStore) ListExpired(ctx context.Context, cutoff time.Time) ([]*PendingUser, error) {
	cur, err := s.coll.Find(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var pending []*PendingUser
	if err := cur.All(ctx, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}
