package models

import "time"

// RequestStatus is the lifecycle state of an InteractionRequest.
type RequestStatus string

const (
	RequestPending     RequestStatus = "PENDING"
	RequestNegotiating RequestStatus = "NEGOTIATING"
	RequestAccepted    RequestStatus = "ACCEPTED"
	RequestRejected    RequestStatus = "REJECTED"
	RequestCancelled   RequestStatus = "CANCELLED"
)

// Terminal reports whether no further transition is permitted.
func (s RequestStatus) Terminal() bool {
	return s == RequestAccepted || s == RequestRejected || s == RequestCancelled
}

// ProposalStatus is the lifecycle state of a single offer within a request.
type ProposalStatus string

const (
	ProposalPending    ProposalStatus = "PENDING"
	ProposalAccepted   ProposalStatus = "ACCEPTED"
	ProposalRejected   ProposalStatus = "REJECTED"
	ProposalSuperseded ProposalStatus = "SUPERSEDED"
)

// RespondAction is the action a counter-party takes on the live proposal.
type RespondAction string

const (
	ActionAccept  RespondAction = "ACCEPT"
	ActionReject  RespondAction = "REJECT"
	ActionCounter RespondAction = "COUNTER"
)

// VenueSnapshot is the resolved venue copied onto a proposal at creation
// time. Venue data is never looked up live afterwards.
type VenueSnapshot struct {
	PlaceID              string  `bson:"placeId" json:"placeId"`
	Name                 string  `bson:"name" json:"name"`
	Address              string  `bson:"address,omitempty" json:"address,omitempty"`
	Lat                  float64 `bson:"lat" json:"lat"`
	Lng                  float64 `bson:"lng" json:"lng"`
	OpenAtProposedTime   bool    `bson:"openAtProposedTime" json:"openAtProposedTime"`
	AvailabilityVerified bool    `bson:"availabilityVerified" json:"availabilityVerified"`
}

// Proposal is one concrete offer (instant + duration + venue) within a
// request. Proposals are embedded in their request document so that a
// transition and the request status change commit in one write.
type Proposal struct {
	ID               string         `bson:"id" json:"id"`
	ProposerID       string         `bson:"proposerId" json:"proposerId"`
	Status           ProposalStatus `bson:"status" json:"status"`
	ProposedStartAt  time.Time      `bson:"proposedStartAt" json:"proposedStartAt"`
	DurationSec      int            `bson:"durationSec" json:"durationSec"`
	Venue            VenueSnapshot  `bson:"venue" json:"venue"`
	AvailabilityMode string         `bson:"availabilityMode" json:"availabilityMode"`
	CreatedAt        time.Time      `bson:"createdAt" json:"createdAt"`
}

// InteractionRequest is one ongoing negotiation between exactly two parties,
// anchored to a post. At most one embedded proposal is PENDING at any time.
type InteractionRequest struct {
	ID          string        `bson:"id" json:"id"`
	RequesterID string        `bson:"requesterId" json:"requesterId"`
	RecipientID string        `bson:"recipientId" json:"recipientId"`
	PostID      string        `bson:"postId" json:"postId"`
	Status      RequestStatus `bson:"status" json:"status"`

	// Set only when the request reaches ACCEPTED.
	AcceptedStartAt     *time.Time     `bson:"acceptedStartAt,omitempty" json:"acceptedStartAt,omitempty"`
	AcceptedDurationSec *int           `bson:"acceptedDurationSec,omitempty" json:"acceptedDurationSec,omitempty"`
	AcceptedVenue       *VenueSnapshot `bson:"acceptedVenue,omitempty" json:"acceptedVenue,omitempty"`

	// Set only when the request reaches REJECTED; anchors the pair cooldown.
	RejectedAt *time.Time `bson:"rejectedAt,omitempty" json:"rejectedAt,omitempty"`

	Proposals []Proposal `bson:"proposals" json:"proposals"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// LiveProposal returns the single PENDING proposal, or nil when the request
// holds none (a structural invariant violation for non-terminal requests).
func (r *InteractionRequest) LiveProposal() *Proposal {
	for i := range r.Proposals {
		if r.Proposals[i].Status == ProposalPending {
			return &r.Proposals[i]
		}
	}
	return nil
}

// IsParty reports whether userID is one of the two bound parties.
func (r *InteractionRequest) IsParty(userID string) bool {
	return r.RequesterID == userID || r.RecipientID == userID
}
