// File: database/repository/interaction/queries.go
package interactionRepo

import (
	"fmt"
	"time"

	"meetpoint/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoInteractionRepo) listByParty(field, userID string, limit int64) ([]models.InteractionRequest, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{field: userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests by %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	var requests []models.InteractionRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode requests: %w", err)
	}
	return requests, nil
}

// ListByRecipient returns the newest requests addressed to the user.
func (r *MongoInteractionRepo) ListByRecipient(userID string, limit int64) ([]models.InteractionRequest, error) {
	return r.listByParty("recipientId", userID, limit)
}

// ListByRequester returns the newest requests the user initiated.
func (r *MongoInteractionRepo) ListByRequester(userID string, limit int64) ([]models.InteractionRequest, error) {
	return r.listByParty("requesterId", userID, limit)
}

// HasOpenForPair reports an unresolved request for the ordered pair.
func (r *MongoInteractionRepo) HasOpenForPair(requesterID, recipientID string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"requesterId": requesterID,
		"recipientId": recipientID,
		"status":      bson.M{"$in": openStatuses},
	}
	count, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check open requests for pair: %w", err)
	}
	return count > 0, nil
}

// LatestRejectionForPair returns the most recent rejectedAt for the ordered
// pair, or nil when the pair has no rejected request.
func (r *MongoInteractionRepo) LatestRejectionForPair(requesterID, recipientID string) (*time.Time, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"requesterId": requesterID,
		"recipientId": recipientID,
		"status":      models.RequestRejected,
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "rejectedAt", Value: -1}}).
		SetProjection(bson.M{"rejectedAt": 1})

	var doc struct {
		RejectedAt *time.Time `bson:"rejectedAt"`
	}
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch latest rejection for pair: %w", err)
	}
	return doc.RejectedAt, nil
}
