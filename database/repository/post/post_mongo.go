// File: database/repository/post/post_mongo.go
package postRepo

import (
	"context"
	"fmt"
	"time"

	"meetpoint/database"
	"meetpoint/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository resolves the subject a request is anchored to.
type PostRepository interface {
	GetByID(id string) (*models.Post, error)
}

// MongoPostRepo implements PostRepository using MongoDB.
type MongoPostRepo struct {
	coll *mongo.Collection
}

// NewMongoPostRepo creates a new instance of PostRepository using MongoDB.
func NewMongoPostRepo() PostRepository {
	coll := database.MongoClient.Database("meetpoint").Collection("posts")
	repo := &MongoPostRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create post indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoPostRepo) ensureIndexes() error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// GetByID retrieves a post by its ID. Returns (nil, nil) when absent.
func (r *MongoPostRepo) GetByID(id string) (*models.Post, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var post models.Post
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&post); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch post with id %s: %w", id, err)
	}
	return &post, nil
}
