package data

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
)

// BanListStore manages banned email addresses.
type BanListStore struct {
	coll *mongo.Collection
}

// NewBanListStore returns a BanListStore using the provided collection.
func NewBanListStore(coll *mongo.Collection) *BanListStore {
	return &BanListStore{coll: coll}
}

// Add bans an email. Banning an already-banned address is a conflict.
func (s *BanListStore) Add(ctx context.Context, email string) error {
	_, err := s.coll.InsertOne(ctx, &BannedEmail{
		Email:    email,
		BannedAt: time.Now(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("ban %s: %w", email, apperr.ErrConflict)
		}
		return err
	}
	return nil
}

// Remove lifts a ban. Removing an address that is not banned reports
// NotFound.
func (s *BanListStore) Remove(ctx context.Context, email string) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("ban list entry: %w", apperr.ErrNotFound)
	}
	return nil
}

// Contains reports whether an email is banned.
func (s *BanListStore) Contains(ctx context.Context, email string) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns every ban entry.
func (s *BanListStore) List(ctx context.Context) ([]*BannedEmail, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var banned []*BannedEmail
	if err := cur.All(ctx, &banned); err != nil {
		return nil, err
	}
	return banned, nil
}

// DeleteOlderThan purges ban entries created before the cutoff and
// returns how many were removed. Bans expire after 30 days.
func (s *BanListStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.coll.DeleteMany(ctx, bson.M{"banned_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
