package interactionRepo

import (
	"errors"
	"time"

	"meetpoint/models"
)

// ErrStaleTransition is returned when a conditional transition matched no
// document: the request was closed, or its live proposal changed, between
// the caller's read and this write.
var ErrStaleTransition = errors.New("request state changed since it was read")

// InteractionRepository is the persistence boundary for negotiation
// requests. Every transition write is conditional on the request still
// being open and the named proposal still being the live one, so two
// concurrent responders cannot both succeed.
type InteractionRepository interface {
	Create(req *models.InteractionRequest) error
	GetByID(id string) (*models.InteractionRequest, error)

	ListByRecipient(userID string, limit int64) ([]models.InteractionRequest, error)
	ListByRequester(userID string, limit int64) ([]models.InteractionRequest, error)

	// HasOpenForPair reports an unresolved (PENDING or NEGOTIATING) request
	// for the ordered (requester, recipient) pair.
	HasOpenForPair(requesterID, recipientID string) (bool, error)
	// LatestRejectionForPair returns the most recent rejection instant for
	// the ordered pair, or nil when none exists.
	LatestRejectionForPair(requesterID, recipientID string) (*time.Time, error)

	Reject(requestID, proposalID string, at time.Time) error
	Accept(requestID, proposalID string, startAt time.Time, durationSec int, venue models.VenueSnapshot, at time.Time) error
	Counter(requestID, supersededID string, next models.Proposal, at time.Time) error
	Cancel(requestID string, at time.Time) error
}
