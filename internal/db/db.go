// Package db manages the MongoDB connection and collection handles.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Client wraps mongo.Client and exposes the application's collections.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB, pings it, and returns a Client bound to the
// named database.
func New(ctx context.Context, mongoURI, dbName string) (*Client, error) {
	opts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

// UsersCollection returns the users collection.
func (c *Client) UsersCollection() *mongo.Collection { return c.db.Collection("users") }

// PendingUsersCollection returns the staging collection for registrations
// awaiting email confirmation.
func (c *Client) PendingUsersCollection() *mongo.Collection {
	return c.db.Collection("pending_users")
}

// ConfirmCodesCollection returns the email confirmation codes collection.
func (c *Client) ConfirmCodesCollection() *mongo.Collection {
	return c.db.Collection("confirm_codes")
}

// BannedEmailsCollection returns the ban list collection.
func (c *Client) BannedEmailsCollection() *mongo.Collection {
	return c.db.Collection("banned_emails")
}

// RecipesCollection returns the recipes collection.
func (c *Client) RecipesCollection() *mongo.Collection { return c.db.Collection("recipes") }

// CommentsCollection returns the comments collection.
func (c *Client) CommentsCollection() *mongo.Collection { return c.db.Collection("comments") }

// CommentViewsCollection returns the per-user "author last viewed
// comments" collection.
func (c *Client) CommentViewsCollection() *mongo.Collection {
	return c.db.Collection("comment_views")
}

// FavoritesCollection returns the per-user favorites collection.
func (c *Client) FavoritesCollection() *mongo.Collection { return c.db.Collection("favorites") }

// SubscriptionsCollection returns the newsletter subscriptions collection.
func (c *Client) SubscriptionsCollection() *mongo.Collection {
	return c.db.Collection("subscriptions")
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// CreateIndexes creates the indexes the stores rely on. Safe to call on
// every startup; MongoDB treats existing identical indexes as a no-op.
func (c *Client) CreateIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	type indexSet struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}

	sets := []indexSet{
		{c.UsersCollection(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		}},
		{c.PendingUsersCollection(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "created_at", Value: 1}}},
		}},
		{c.ConfirmCodesCollection(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		}},
		{c.BannedEmailsCollection(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "banned_at", Value: 1}}},
		}},
		{c.RecipesCollection(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "author_id", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		}},
		{c.CommentsCollection(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "recipe_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		}},
		{c.CommentViewsCollection(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		}},
		{c.FavoritesCollection(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		}},
		{c.SubscriptionsCollection(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		}},
	}

	for _, s := range sets {
		if _, err := s.coll.Indexes().CreateMany(ctx, s.models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", s.coll.Name(), err)
		}
	}

	return nil
}
