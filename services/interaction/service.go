// File: services/interaction/service.go
package interaction

import (
	"context"
	"errors"
	"time"

	interactionRepo "meetpoint/database/repository/interaction"
	postRepo "meetpoint/database/repository/post"
	userRepo "meetpoint/database/repository/user"
	"meetpoint/models"
	"meetpoint/services/venue"
	"meetpoint/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultInteractionService is the production negotiation engine.
type DefaultInteractionService struct {
	Requests  interactionRepo.InteractionRepository
	Users     userRepo.UserRepository
	Posts     postRepo.PostRepository
	Venues    venue.Selector
	Reminders ReminderScheduler

	// CooldownDays overrides the rejection cooldown window; zero means 30.
	CooldownDays int
	// Now overrides the clock in tests; nil means time.Now.
	Now func() time.Time
}

func (s *DefaultInteractionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultInteractionService) cooldown() time.Duration {
	days := s.CooldownDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

// midpoint is the arithmetic mean of both coordinates. Acceptable at city
// scale; it is not a geodesic midpoint and drifts for distant parties.
func midpoint(aLat, aLng, bLat, bLng float64) (float64, float64) {
	return (aLat + bLat) / 2, (aLng + bLng) / 2
}

func parseInstant(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, newValidationError(CodeInvalidInstant, "proposedStartAt is not a valid RFC 3339 instant.")
	}
	return t, nil
}

func resolveDuration(override *int, fallback int) (int, error) {
	dur := fallback
	if override != nil {
		dur = *override
	}
	if dur < MinDurationSec || dur > MaxDurationSec {
		return 0, newValidationError(CodeInvalidDuration, "durationSec must be between 1800 and 14400 seconds.")
	}
	return dur, nil
}

// mapVenueError translates venue subsystem failures into engine errors. The
// raw provider error stays in the logs; callers see a generic message and
// may retry since nothing was persisted.
func mapVenueError(err error) error {
	logger := utils.GetLogger()

	var upstream *venue.UpstreamError
	if errors.As(err, &upstream) {
		logger.Error("venue directory failure",
			zap.Int("status", upstream.Status),
			zap.String("body", upstream.Body),
			zap.Error(upstream.Err))
		return newUpstreamError(CodeUpstream, "Venue lookup is temporarily unavailable. Please try again.", err)
	}
	if errors.Is(err, venue.ErrNoCandidates) {
		return newUpstreamError(CodeNoCandidates, "No venues were found near your midpoint.", err)
	}
	if errors.Is(err, venue.ErrInvalidInstant) {
		return newValidationError(CodeInvalidInstant, "proposedStartAt is not a valid instant.")
	}
	return newInternalError(CodeInternal, "venue selection failed", err)
}

// resolveVenue runs the selector and builds the proposal snapshot. This is
// the blocking external call; it always runs before any write, so an
// abandoned or failed attempt leaves no state behind.
func (s *DefaultInteractionService) resolveVenue(ctx context.Context, a, b *models.User, startAt time.Time) (models.VenueSnapshot, string, error) {
	midLat, midLng := midpoint(a.Lat, a.Lng, b.Lat, b.Lng)
	sel, err := s.Venues.PickOne(ctx, midLat, midLng, startAt)
	if err != nil {
		return models.VenueSnapshot{}, "", mapVenueError(err)
	}
	return sel.Chosen.Snapshot(), sel.AvailabilityMode, nil
}

// Create opens a new negotiation: the post owner becomes the recipient, and
// the first proposal carries a venue resolved near the pair's midpoint.
func (s *DefaultInteractionService) Create(ctx context.Context, actorID string, in CreateInput) (*RequestDetail, error) {
	actor, err := s.Users.GetByID(actorID)
	if err != nil {
		return nil, newInternalError(CodeInternal, "failed to load requester", err)
	}
	if actor == nil {
		return nil, newValidationError(CodeUserNotFound, "Requester not found.")
	}

	post, err := s.Posts.GetByID(in.PostID)
	if err != nil {
		return nil, newInternalError(CodeInternal, "failed to load post", err)
	}
	if post == nil {
		return nil, newNotFoundError(CodePostNotFound, "Post not found.")
	}

	recipient, err := s.Users.GetByID(post.OwnerID)
	if err != nil {
		return nil, newInternalError(CodeInternal, "failed to load recipient", err)
	}
	if recipient == nil {
		return nil, newValidationError(CodeRecipientNotFound, "Recipient not found.")
	}
	if recipient.ID == actor.ID {
		return nil, newValidationError(CodeSelfRequest, "You cannot request a meeting with yourself.")
	}

	startAt, err := parseInstant(in.ProposedStartAt)
	if err != nil {
		return nil, err
	}
	durationSec, err := resolveDuration(in.DurationSec, DefaultDurationSec)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := validateProposedTime(startAt, now, recipient); err != nil {
		return nil, err
	}

	rejectedAt, err := s.Requests.LatestRejectionForPair(actor.ID, recipient.ID)
	if err != nil {
		return nil, newInternalError(CodeInternal, "failed to check rejection cooldown", err)
	}
	if rejectedAt != nil && now.Sub(*rejectedAt) < s.cooldown() {
		return nil, newConflictError(CodeCooldownActive, "A recent rejection blocks new requests to this user for now.")
	}

	open, err := s.Requests.HasOpenForPair(actor.ID, recipient.ID)
	if err != nil {
		return nil, newInternalError(CodeInternal, "failed to check open requests", err)
	}
	if open {
		return nil, newConflictError(CodeDuplicateOpen, "An open request to this user already exists.")
	}

	snapshot, mode, err := s.resolveVenue(ctx, actor, recipient, startAt)
	if err != nil {
		return nil, err
	}

	req := &models.InteractionRequest{
		ID:          uuid.New().String(),
		RequesterID: actor.ID,
		RecipientID: recipient.ID,
		PostID:      post.ID,
		Status:      models.RequestPending,
		Proposals: []models.Proposal{{
			ID:               uuid.New().String(),
			ProposerID:       actor.ID,
			Status:           models.ProposalPending,
			ProposedStartAt:  startAt,
			DurationSec:      durationSec,
			Venue:            snapshot,
			AvailabilityMode: mode,
			CreatedAt:        now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Requests.Create(req); err != nil {
		return nil, newInternalError(CodeInternal, "failed to persist request", err)
	}
	return s.detail(req, actor, recipient), nil
}

// Respond applies the counter-party's action to the live proposal. The
// repository write is conditional on the proposal still being live, so a
// racing responder loses cleanly.
func (s *DefaultInteractionService) Respond(ctx context.Context, actorID, requestID string, in RespondInput) (*RequestDetail, error) {
	logger := utils.GetLogger()

	req, err := s.Requests.GetByID(requestID)
	if err != nil {
		return nil, newInternalError(CodeInternal, "failed to load request", err)
	}
	if req == nil {
		return nil, newNotFoundError(CodeRequestNotFound, "Request not found.")
	}
	if !req.IsParty(actorID) {
		return nil, newAuthorizationError(CodeForbidden, "Not allowed.")
	}
	if req.Status.Terminal() {
		return nil, newConflictError(CodeRequestClosed, "Request is closed.")
	}

	live := req.LiveProposal()
	if live == nil {
		logger.Error("open request holds no live proposal",
			zap.String("requestID", req.ID),
			zap.String("status", string(req.Status)))
		return nil, newInternalError(CodeNoLiveProposal, "request is in an inconsistent state", nil)
	}
	if live.ProposerID == actorID {
		return nil, newAuthorizationError(CodeNotYourTurn, "Wait for the other party to respond.")
	}

	now := s.now()

	switch in.Action {
	case models.ActionReject:
		if err := s.Requests.Reject(req.ID, live.ID, now); err != nil {
			return nil, mapTransitionError(err)
		}

	case models.ActionAccept:
		if err := s.Requests.Accept(req.ID, live.ID, live.ProposedStartAt, live.DurationSec, live.Venue, now); err != nil {
			return nil, mapTransitionError(err)
		}
		s.scheduleReminder(ctx, req, live)

	case models.ActionCounter:
		if err := s.counter(ctx, req, live, actorID, in, now); err != nil {
			return nil, err
		}

	default:
		return nil, newValidationError(CodeInvalidAction, "action must be ACCEPT, REJECT or COUNTER.")
	}

	return s.GetRequest(ctx, actorID, req.ID)
}

// counter supersedes the live proposal with a fresh one for the new instant,
// resolving a venue for it first. The venue I/O happens before the
// conditional write; if that write loses a race nothing was persisted.
func (s *DefaultInteractionService) counter(ctx context.Context, req *models.InteractionRequest, live *models.Proposal, actorID string, in RespondInput, now time.Time) error {
	if in.ProposedStartAt == "" {
		return newValidationError(CodeInvalidInstant, "proposedStartAt is required for COUNTER.")
	}
	startAt, err := parseInstant(in.ProposedStartAt)
	if err != nil {
		return err
	}
	durationSec, err := resolveDuration(in.DurationSec, live.DurationSec)
	if err != nil {
		return err
	}

	requester, err := s.Users.GetByID(req.RequesterID)
	if err != nil || requester == nil {
		return newInternalError(CodeInternal, "failed to load requester", err)
	}
	recipient, err := s.Users.GetByID(req.RecipientID)
	if err != nil || recipient == nil {
		return newInternalError(CodeInternal, "failed to load recipient", err)
	}

	counterparty := recipient
	if actorID == recipient.ID {
		counterparty = requester
	}
	if err := validateProposedTime(startAt, now, counterparty); err != nil {
		return err
	}

	snapshot, mode, err := s.resolveVenue(ctx, requester, recipient, startAt)
	if err != nil {
		return err
	}

	next := models.Proposal{
		ID:               uuid.New().String(),
		ProposerID:       actorID,
		Status:           models.ProposalPending,
		ProposedStartAt:  startAt,
		DurationSec:      durationSec,
		Venue:            snapshot,
		AvailabilityMode: mode,
		CreatedAt:        now,
	}
	if err := s.Requests.Counter(req.ID, live.ID, next, now); err != nil {
		return mapTransitionError(err)
	}
	return nil
}

// Cancel lets the requester withdraw an open request.
func (s *DefaultInteractionService) Cancel(ctx context.Context, actorID, requestID string) error {
	req, err := s.Requests.GetByID(requestID)
	if err != nil {
		return newInternalError(CodeInternal, "failed to load request", err)
	}
	if req == nil {
		return newNotFoundError(CodeRequestNotFound, "Request not found.")
	}
	if req.RequesterID != actorID {
		return newAuthorizationError(CodeForbidden, "Only the requester may cancel.")
	}
	if req.Status.Terminal() {
		return newConflictError(CodeRequestClosed, "Request is closed.")
	}
	if err := s.Requests.Cancel(req.ID, s.now()); err != nil {
		return mapTransitionError(err)
	}
	return nil
}

func mapTransitionError(err error) error {
	if errors.Is(err, interactionRepo.ErrStaleTransition) {
		return newConflictError(CodeRequestClosed, "Request was closed or its offer changed concurrently.")
	}
	return newInternalError(CodeInternal, "failed to persist transition", err)
}

// scheduleReminder hands the accepted meeting to the deferred-work boundary.
// Best effort: a scheduling failure never unwinds the accept.
func (s *DefaultInteractionService) scheduleReminder(ctx context.Context, req *models.InteractionRequest, live *models.Proposal) {
	if s.Reminders == nil {
		return
	}
	accepted := *req
	accepted.Status = models.RequestAccepted
	startAt := live.ProposedStartAt
	durationSec := live.DurationSec
	venueCopy := live.Venue
	accepted.AcceptedStartAt = &startAt
	accepted.AcceptedDurationSec = &durationSec
	accepted.AcceptedVenue = &venueCopy

	if err := s.Reminders.ScheduleMeetingReminder(ctx, &accepted); err != nil {
		utils.GetLogger().Warn("failed to schedule meeting reminder",
			zap.String("requestID", req.ID), zap.Error(err))
	}
}
