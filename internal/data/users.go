package data

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/olehvasyliv/cooking-corner/internal/apperr"
)

// UsersStore performs user DB operations.
type UsersStore struct {
	coll *mongo.Collection
}

// NewUsersStore returns a UsersStore using the provided collection.
func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// Create inserts a confirmed user. The password must already be hashed
// and the email normalized.
func (s *UsersStore) Create(ctx context.Context, u *User) (*User, error) {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	result, err := s.coll.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("user %s: %w", u.Email, apperr.ErrConflict)
		}
		return nil, err
	}

	u.ID = result.InsertedID.(bson.ObjectID)
	return u, nil
}

// GetByID finds a user by ObjectID.
func (s *UsersStore) GetByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	var user User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user: %w", apperr.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail finds a user by (normalized) email.
func (s *UsersStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user: %w", apperr.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// Exists checks if a user with the given email exists.
func (s *UsersStore) Exists(ctx context.Context, email string) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes the user document. Returns the deleted user so the
// caller can run the cascade with its email.
func (s *UsersStore) Delete(ctx context.Context, id bson.ObjectID) (*User, error) {
	var user User
	err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user: %w", apperr.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// List returns every user. Admin-only surface.
func (s *UsersStore) List(ctx context.Context) ([]*User, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []*User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListByIDs returns the users matching the given ids, in DB order. Used
// for public author cards.
func (s *UsersStore) ListByIDs(ctx context.Context, ids []bson.ObjectID) ([]*User, error) {
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []*User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
