// File: database/repository/interaction/indexes.go
package interactionRepo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoInteractionRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		// Cooldown lookup: latest rejection per ordered pair.
		{
			Keys: bson.D{
				{Key: "requesterId", Value: 1},
				{Key: "recipientId", Value: 1},
				{Key: "status", Value: 1},
				{Key: "rejectedAt", Value: -1},
			},
		},
		// Inbox and outbox listings, newest first.
		{
			Keys: bson.D{
				{Key: "recipientId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "requesterId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
