package models

import "time"

// Post is the shared context object a meeting request is anchored to.
// The owner of the post becomes the recipient of the request.
type Post struct {
	ID        string    `bson:"id" json:"id"`
	OwnerID   string    `bson:"ownerId" json:"ownerId"`
	Caption   string    `bson:"caption,omitempty" json:"caption,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
