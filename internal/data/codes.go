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

// ConfirmCodesStore manages the single active confirmation code per email.
type ConfirmCodesStore struct {
	coll *mongo.Collection
}

// NewConfirmCodesStore returns a ConfirmCodesStore using the provided
// collection.
func NewConfirmCodesStore(coll *mongo.Collection) *ConfirmCodesStore {
	return &ConfirmCodesStore{coll: coll}
}

// Upsert replaces the code for an email and restarts its TTL clock.
// The previous code stops working immediately.
func (s *ConfirmCodesStore) Upsert(ctx context.Context, email, code string, createdAt time.Time) error {
	update := bson.M{"$set": bson.M{
		"email":      email,
		"code":       code,
		"created_at": createdAt,
	}}

	_, err := s.coll.UpdateOne(ctx, bson.M{"email": email}, update,
		options.UpdateOne().SetUpsert(true))
	return err
}

// Get finds the active code for an email.
func (s *ConfirmCodesStore) Get(ctx context.Context, email string) (*ConfirmCode, error) {
	var c ConfirmCode
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("confirm code: %w", apperr.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

// Delete removes the code for an email.
func (s *ConfirmCodesStore) Delete(ctx context.Context, email string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"email": email})
	return err
}
