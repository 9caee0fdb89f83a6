// File: services/interaction/listing.go
package interaction

import (
	"context"
	"sort"

	"meetpoint/models"
)

// profileFor falls back to an ID-only projection when the identity system
// no longer knows the user.
func (s *DefaultInteractionService) profileFor(userID string) models.PublicProfile {
	user, err := s.Users.GetByID(userID)
	if err != nil || user == nil {
		return models.PublicProfile{ID: userID}
	}
	return user.Public()
}

func (s *DefaultInteractionService) summaries(requests []models.InteractionRequest) []RequestSummary {
	// Avoid refetching the same profile per row.
	profiles := make(map[string]models.PublicProfile)
	lookup := func(id string) models.PublicProfile {
		if p, ok := profiles[id]; ok {
			return p
		}
		p := s.profileFor(id)
		profiles[id] = p
		return p
	}

	out := make([]RequestSummary, 0, len(requests))
	for _, r := range requests {
		out = append(out, RequestSummary{
			ID:        r.ID,
			Status:    r.Status,
			PostID:    r.PostID,
			Requester: lookup(r.RequesterID),
			Recipient: lookup(r.RecipientID),
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}

// ListInbox returns the newest requests addressed to the user.
func (s *DefaultInteractionService) ListInbox(ctx context.Context, userID string) ([]RequestSummary, error) {
	requests, err := s.Requests.ListByRecipient(userID, listLimit)
	if err != nil {
		return nil, newInternalError(CodeInternal, "failed to list inbox", err)
	}
	return s.summaries(requests), nil
}

// ListOutbox returns the newest requests the user initiated.
func (s *DefaultInteractionService) ListOutbox(ctx context.Context, userID string) ([]RequestSummary, error) {
	requests, err := s.Requests.ListByRequester(userID, listLimit)
	if err != nil {
		return nil, newInternalError(CodeInternal, "failed to list outbox", err)
	}
	return s.summaries(requests), nil
}

// GetRequest returns the full projection; only a bound party may read it.
func (s *DefaultInteractionService) GetRequest(ctx context.Context, userID, requestID string) (*RequestDetail, error) {
	req, err := s.Requests.GetByID(requestID)
	if err != nil {
		return nil, newInternalError(CodeInternal, "failed to load request", err)
	}
	if req == nil {
		return nil, newNotFoundError(CodeRequestNotFound, "Request not found.")
	}
	if !req.IsParty(userID) {
		return nil, newAuthorizationError(CodeForbidden, "Not allowed.")
	}
	return s.buildDetail(req, s.profileFor(req.RequesterID), s.profileFor(req.RecipientID)), nil
}

func (s *DefaultInteractionService) buildDetail(req *models.InteractionRequest, requester, recipient models.PublicProfile) *RequestDetail {
	detail := &RequestDetail{
		ID:                  req.ID,
		Status:              req.Status,
		PostID:              req.PostID,
		Requester:           requester,
		Recipient:           recipient,
		AcceptedStartAt:     req.AcceptedStartAt,
		AcceptedDurationSec: req.AcceptedDurationSec,
		AcceptedVenue:       req.AcceptedVenue,
		CreatedAt:           req.CreatedAt,
	}

	proposals := make([]ProposalView, 0, len(req.Proposals))
	for _, p := range req.Proposals {
		proposer := requester
		if p.ProposerID == recipient.ID {
			proposer = recipient
		}
		proposals = append(proposals, ProposalView{
			ID:               p.ID,
			Status:           p.Status,
			ProposedStartAt:  p.ProposedStartAt,
			DurationSec:      p.DurationSec,
			Proposer:         proposer,
			Venue:            p.Venue,
			AvailabilityMode: p.AvailabilityMode,
			CreatedAt:        p.CreatedAt,
		})
	}
	sort.SliceStable(proposals, func(i, j int) bool {
		return proposals[i].CreatedAt.After(proposals[j].CreatedAt)
	})
	detail.Proposals = proposals
	return detail
}

// detail builds the projection when both parties are already loaded.
func (s *DefaultInteractionService) detail(req *models.InteractionRequest, requester, recipient *models.User) *RequestDetail {
	return s.buildDetail(req, requester.Public(), recipient.Public())
}
