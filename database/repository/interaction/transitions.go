// File: database/repository/interaction/transitions.go
package interactionRepo

import (
	"fmt"
	"time"

	"meetpoint/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// liveFilter matches the request only while it is still open and the named
// proposal is still its pending one. A MatchedCount of zero is the loser's
// side of a respond/respond race.
func liveFilter(requestID, proposalID string) bson.M {
	return bson.M{
		"id":     requestID,
		"status": bson.M{"$in": openStatuses},
		"proposals": bson.M{
			"$elemMatch": bson.M{
				"id":     proposalID,
				"status": models.ProposalPending,
			},
		},
	}
}

func liveArrayFilter(proposalID string) *options.UpdateOptions {
	return options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{
			"live.id":     proposalID,
			"live.status": models.ProposalPending,
		}},
	})
}

// Reject closes the request and its live proposal, anchoring the pair
// cooldown at the given instant.
func (r *MongoInteractionRepo) Reject(requestID, proposalID string, at time.Time) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"proposals.$[live].status": models.ProposalRejected,
		"status":                   models.RequestRejected,
		"rejectedAt":               at,
		"updatedAt":                at,
	}}

	res, err := r.coll.UpdateOne(ctx, liveFilter(requestID, proposalID), update, liveArrayFilter(proposalID))
	if err != nil {
		return fmt.Errorf("failed to reject request %s: %w", requestID, err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleTransition
	}
	return nil
}

// Accept closes the request, marking the live proposal accepted and copying
// its agreed outcome onto the request.
func (r *MongoInteractionRepo) Accept(requestID, proposalID string, startAt time.Time, durationSec int, venue models.VenueSnapshot, at time.Time) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"proposals.$[live].status": models.ProposalAccepted,
		"status":                   models.RequestAccepted,
		"acceptedStartAt":          startAt,
		"acceptedDurationSec":      durationSec,
		"acceptedVenue":            venue,
		"updatedAt":                at,
	}}

	res, err := r.coll.UpdateOne(ctx, liveFilter(requestID, proposalID), update, liveArrayFilter(proposalID))
	if err != nil {
		return fmt.Errorf("failed to accept request %s: %w", requestID, err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleTransition
	}
	return nil
}

// Counter supersedes the live proposal and appends the new one in a single
// pipeline update, so no reader ever observes zero or two pending proposals.
func (r *MongoInteractionRepo) Counter(requestID, supersededID string, next models.Proposal, at time.Time) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	nextDoc, err := toBson(next)
	if err != nil {
		return fmt.Errorf("failed to encode counter proposal: %w", err)
	}

	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"proposals": bson.M{"$concatArrays": bson.A{
				bson.M{"$map": bson.M{
					"input": "$proposals",
					"as":    "p",
					"in": bson.M{"$cond": bson.M{
						"if": bson.M{"$and": bson.A{
							bson.M{"$eq": bson.A{"$$p.id", supersededID}},
							bson.M{"$eq": bson.A{"$$p.status", models.ProposalPending}},
						}},
						"then": bson.M{"$mergeObjects": bson.A{
							"$$p",
							bson.M{"status": models.ProposalSuperseded},
						}},
						"else": "$$p",
					}},
				}},
				bson.A{nextDoc},
			}},
			"status":    models.RequestNegotiating,
			"updatedAt": at,
		}},
	}

	res, err := r.coll.UpdateOne(ctx, liveFilter(requestID, supersededID), pipeline)
	if err != nil {
		return fmt.Errorf("failed to counter request %s: %w", requestID, err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleTransition
	}
	return nil
}

// Cancel closes an open request without touching its proposal history.
func (r *MongoInteractionRepo) Cancel(requestID string, at time.Time) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": requestID, "status": bson.M{"$in": openStatuses}}
	update := bson.M{"$set": bson.M{
		"status":    models.RequestCancelled,
		"updatedAt": at,
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to cancel request %s: %w", requestID, err)
	}
	if res.MatchedCount == 0 {
		return ErrStaleTransition
	}
	return nil
}

// toBson round-trips a struct into the document form a pipeline stage needs.
func toBson(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
