package interaction

import (
	"context"
	"time"

	"meetpoint/models"
)

// Duration bounds for a proposed meeting, in seconds.
const (
	DefaultDurationSec = 5400 // 90 minutes
	MinDurationSec     = 1800
	MaxDurationSec     = 14400
)

// listLimit bounds inbox and outbox projections.
const listLimit = 50

// CreateInput carries a new request from the initiating party.
type CreateInput struct {
	PostID          string
	ProposedStartAt string
	DurationSec     *int
}

// RespondInput carries the counter-party's action on the live proposal.
type RespondInput struct {
	Action          models.RespondAction
	ProposedStartAt string
	DurationSec     *int
}

// ProposalView is one offer in a request detail, newest-first.
type ProposalView struct {
	ID               string               `json:"id"`
	Status           models.ProposalStatus `json:"status"`
	ProposedStartAt  time.Time            `json:"proposedStartAt"`
	DurationSec      int                  `json:"durationSec"`
	Proposer         models.PublicProfile `json:"proposer"`
	Venue            models.VenueSnapshot `json:"venue"`
	AvailabilityMode string               `json:"availabilityMode"`
	CreatedAt        time.Time            `json:"createdAt"`
}

// RequestSummary is one row of an inbox or outbox listing.
type RequestSummary struct {
	ID        string               `json:"id"`
	Status    models.RequestStatus `json:"status"`
	PostID    string               `json:"postId"`
	Requester models.PublicProfile `json:"requester"`
	Recipient models.PublicProfile `json:"recipient"`
	CreatedAt time.Time            `json:"createdAt"`
}

// RequestDetail is the full projection of a request and its history.
type RequestDetail struct {
	ID                  string                `json:"id"`
	Status              models.RequestStatus  `json:"status"`
	PostID              string                `json:"postId"`
	Requester           models.PublicProfile  `json:"requester"`
	Recipient           models.PublicProfile  `json:"recipient"`
	AcceptedStartAt     *time.Time            `json:"acceptedStartAt,omitempty"`
	AcceptedDurationSec *int                  `json:"acceptedDurationSec,omitempty"`
	AcceptedVenue       *models.VenueSnapshot `json:"acceptedVenue,omitempty"`
	Proposals           []ProposalView        `json:"proposals"`
	CreatedAt           time.Time             `json:"createdAt"`
}

// ReminderScheduler is the deferred-work boundary: after an accept, the
// engine hands off a reminder without caring how it is delivered.
type ReminderScheduler interface {
	ScheduleMeetingReminder(ctx context.Context, req *models.InteractionRequest) error
}

// InteractionService owns the proposal/response lifecycle of two-party
// meeting requests.
type InteractionService interface {
	Create(ctx context.Context, actorID string, in CreateInput) (*RequestDetail, error)
	Respond(ctx context.Context, actorID, requestID string, in RespondInput) (*RequestDetail, error)
	Cancel(ctx context.Context, actorID, requestID string) error
	ListInbox(ctx context.Context, userID string) ([]RequestSummary, error)
	ListOutbox(ctx context.Context, userID string) ([]RequestSummary, error)
	GetRequest(ctx context.Context, userID, requestID string) (*RequestDetail, error)
}
