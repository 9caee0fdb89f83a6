// File: database/repository/interaction/interaction_mongo.go
package interactionRepo

import (
	"context"
	"fmt"
	"time"

	"meetpoint/database"
	"meetpoint/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoInteractionRepo implements InteractionRepository using MongoDB.
// Proposals are embedded in the request document, so every transition is a
// single-document write and the "one pending proposal" invariant is
// enforced by conditional filters rather than cross-document locking.
type MongoInteractionRepo struct {
	coll *mongo.Collection
}

// NewMongoInteractionRepo constructs a new instance of InteractionRepository.
func NewMongoInteractionRepo() InteractionRepository {
	coll := database.MongoClient.Database("meetpoint").Collection("interaction_requests")
	repo := &MongoInteractionRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create interaction indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// openStatuses are the non-terminal request states.
var openStatuses = bson.A{models.RequestPending, models.RequestNegotiating}

// Create persists a new request together with its first proposal in one
// insert; a failed venue resolution upstream therefore leaves no trace.
func (r *MongoInteractionRepo) Create(req *models.InteractionRequest) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to insert interaction request: %w", err)
	}
	return nil
}

// GetByID retrieves a request by its ID. Returns (nil, nil) when absent.
func (r *MongoInteractionRepo) GetByID(id string) (*models.InteractionRequest, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var req models.InteractionRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch request with id %s: %w", id, err)
	}
	return &req, nil
}
