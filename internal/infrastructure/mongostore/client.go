package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UsersCollection   = "users"
	PendingCollection = "pendingregistrations"
)

// NewClient connects to MongoDB and verifies the connection.
func NewClient(ctx context.Context, uri string) (*mongo.Client, error) {
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(c, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(c, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func uniqueIndex(field string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true).SetName(field + "_1"),
	}
}

// EnsureIndexes creates the unique indexes backing registration uniqueness.
// A positive pendingTTL also expires pending registrations server-side.
func EnsureIndexes(ctx context.Context, db *mongo.Database, pendingTTL time.Duration) error {
	idx := []mongo.IndexModel{uniqueIndex("email"), uniqueIndex("username"), uniqueIndex("phone")}
	if _, err := db.Collection(UsersCollection).Indexes().CreateMany(ctx, idx); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	pending := append([]mongo.IndexModel{}, idx...)
	if pendingTTL > 0 {
		pending = append(pending, mongo.IndexModel{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("createdAt_ttl").SetExpireAfterSeconds(int32(pendingTTL.Seconds())),
		})
	}
	if _, err := db.Collection(PendingCollection).Indexes().CreateMany(ctx, pending); err != nil {
		return fmt.Errorf("pendingregistrations indexes: %w", err)
	}
	return nil
}
