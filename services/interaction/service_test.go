package interaction

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	interactionRepo "meetpoint/database/repository/interaction"
	"meetpoint/models"
	"meetpoint/services/venue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRequestRepo mirrors the conditional-write contract of the Mongo
// repository: transitions only apply while the request is open and the
// named proposal is still the live one.
type memRequestRepo struct {
	requests map[string]*models.InteractionRequest
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{requests: make(map[string]*models.InteractionRequest)}
}

func (m *memRequestRepo) Create(req *models.InteractionRequest) error {
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *memRequestRepo) GetByID(id string) (*models.InteractionRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	cp.Proposals = append([]models.Proposal(nil), req.Proposals...)
	return &cp, nil
}

func (m *memRequestRepo) listBy(match func(*models.InteractionRequest) bool, limit int64) ([]models.InteractionRequest, error) {
	var out []models.InteractionRequest
	for _, req := range m.requests {
		if match(req) {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRequestRepo) ListByRecipient(userID string, limit int64) ([]models.InteractionRequest, error) {
	return m.listBy(func(r *models.InteractionRequest) bool { return r.RecipientID == userID }, limit)
}

func (m *memRequestRepo) ListByRequester(userID string, limit int64) ([]models.InteractionRequest, error) {
	return m.listBy(func(r *models.InteractionRequest) bool { return r.RequesterID == userID }, limit)
}

func (m *memRequestRepo) HasOpenForPair(requesterID, recipientID string) (bool, error) {
	for _, r := range m.requests {
		if r.RequesterID == requesterID && r.RecipientID == recipientID && !r.Status.Terminal() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRequestRepo) LatestRejectionForPair(requesterID, recipientID string) (*time.Time, error) {
	var latest *time.Time
	for _, r := range m.requests {
		if r.RequesterID != requesterID || r.RecipientID != recipientID || r.RejectedAt == nil {
			continue
		}
		if latest == nil || r.RejectedAt.After(*latest) {
			t := *r.RejectedAt
			latest = &t
		}
	}
	return latest, nil
}

// liveFor returns the stored request and its live proposal when the
// conditional-write precondition holds.
func (m *memRequestRepo) liveFor(requestID, proposalID string) (*models.InteractionRequest, *models.Proposal) {
	req, ok := m.requests[requestID]
	if !ok || req.Status.Terminal() {
		return nil, nil
	}
	for i := range req.Proposals {
		p := &req.Proposals[i]
		if p.ID == proposalID && p.Status == models.ProposalPending {
			return req, p
		}
	}
	return nil, nil
}

func (m *memRequestRepo) Reject(requestID, proposalID string, at time.Time) error {
	req, live := m.liveFor(requestID, proposalID)
	if live == nil {
		return interactionRepo.ErrStaleTransition
	}
	live.Status = models.ProposalRejected
	req.Status = models.RequestRejected
	req.RejectedAt = &at
	req.UpdatedAt = at
	return nil
}

func (m *memRequestRepo) Accept(requestID, proposalID string, startAt time.Time, durationSec int, venueSnap models.VenueSnapshot, at time.Time) error {
	req, live := m.liveFor(requestID, proposalID)
	if live == nil {
		return interactionRepo.ErrStaleTransition
	}
	live.Status = models.ProposalAccepted
	req.Status = models.RequestAccepted
	req.AcceptedStartAt = &startAt
	req.AcceptedDurationSec = &durationSec
	req.AcceptedVenue = &venueSnap
	req.UpdatedAt = at
	return nil
}

func (m *memRequestRepo) Counter(requestID, supersededID string, next models.Proposal, at time.Time) error {
	req, live := m.liveFor(requestID, supersededID)
	if live == nil {
		return interactionRepo.ErrStaleTransition
	}
	live.Status = models.ProposalSuperseded
	req.Proposals = append(req.Proposals, next)
	req.Status = models.RequestNegotiating
	req.UpdatedAt = at
	return nil
}

func (m *memRequestRepo) Cancel(requestID string, at time.Time) error {
	req, ok := m.requests[requestID]
	if !ok || req.Status.Terminal() {
		return interactionRepo.ErrStaleTransition
	}
	req.Status = models.RequestCancelled
	req.UpdatedAt = at
	return nil
}

type memUserRepo struct {
	users map[string]*models.User
}

func (m *memUserRepo) GetByID(id string) (*models.User, error) {
	return m.users[id], nil
}

type memPostRepo struct {
	posts map[string]*models.Post
}

func (m *memPostRepo) GetByID(id string) (*models.Post, error) {
	return m.posts[id], nil
}

type fakeSelector struct {
	selection *venue.Selection
	err       error
	calls     int
}

func (f *fakeSelector) PickOne(ctx context.Context, midLat, midLng float64, target time.Time) (*venue.Selection, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	sel := *f.selection
	return &sel, nil
}

type fakeReminders struct {
	scheduled []*models.InteractionRequest
	err       error
}

func (f *fakeReminders) ScheduleMeetingReminder(ctx context.Context, req *models.InteractionRequest) error {
	f.scheduled = append(f.scheduled, req)
	return f.err
}

// fixture wires the engine onto in-memory collaborators with a fixed clock.
type fixture struct {
	svc       *DefaultInteractionService
	requests  *memRequestRepo
	selector  *fakeSelector
	reminders *fakeReminders
	now       time.Time
}

const (
	aliceID = "alice"
	bobID   = "bob"
	postID  = "post-1"
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	// Wednesday 2026-03-04 08:00 server-local time.
	now := time.Date(2026, time.March, 4, 8, 0, 0, 0, time.Local)

	requests := newMemRequestRepo()
	selector := &fakeSelector{selection: &venue.Selection{
		Chosen: models.ResolvedVenue{
			VenueCandidate: models.VenueCandidate{
				PlaceID: "place-1",
				Name:    "Cafe Midpoint",
				Address: "1 Middle Way",
				Lat:     1.0,
				Lng:     1.0,
			},
			OpenAtProposedTime:   true,
			AvailabilityVerified: true,
		},
		AvailabilityMode: models.AvailabilityVerifiedOpen,
	}}
	reminders := &fakeReminders{}

	f := &fixture{
		requests:  requests,
		selector:  selector,
		reminders: reminders,
		now:       now,
	}
	f.svc = &DefaultInteractionService{
		Requests: requests,
		Users: &memUserRepo{users: map[string]*models.User{
			aliceID: {ID: aliceID, FirstName: "Alice", Lat: 0, Lng: 0,
				WeekdaysAvailability: models.SlotMorning},
			bobID: {ID: bobID, FirstName: "Bob", Lat: 2, Lng: 2,
				WeekdaysAvailability: models.SlotMorning},
		}},
		Posts: &memPostRepo{posts: map[string]*models.Post{
			postID: {ID: postID, OwnerID: bobID},
		}},
		Venues:    selector,
		Reminders: reminders,
		Now:       func() time.Time { return f.now },
	}
	return f
}

// at returns an RFC 3339 instant on the fixture's day at the given local hour.
func (f *fixture) at(hour int) string {
	return time.Date(f.now.Year(), f.now.Month(), f.now.Day(), hour, 0, 0, 0, time.Local).Format(time.RFC3339)
}

func (f *fixture) create(t *testing.T) *RequestDetail {
	t.Helper()
	detail, err := f.svc.Create(context.Background(), aliceID, CreateInput{
		PostID:          postID,
		ProposedStartAt: f.at(9),
	})
	require.NoError(t, err)
	return detail
}

func engineErr(t *testing.T, err error) *Error {
	t.Helper()
	var e *Error
	require.ErrorAs(t, err, &e)
	return e
}

func TestCreateHappyPath(t *testing.T) {
	f := newFixture(t)

	detail, err := f.svc.Create(context.Background(), aliceID, CreateInput{
		PostID:          postID,
		ProposedStartAt: f.at(9),
	})
	require.NoError(t, err)

	assert.Equal(t, models.RequestPending, detail.Status)
	assert.Equal(t, aliceID, detail.Requester.ID)
	assert.Equal(t, bobID, detail.Recipient.ID)
	require.Len(t, detail.Proposals, 1)

	p := detail.Proposals[0]
	assert.Equal(t, models.ProposalPending, p.Status)
	assert.Equal(t, aliceID, p.Proposer.ID)
	assert.Equal(t, DefaultDurationSec, p.DurationSec)
	assert.Equal(t, "place-1", p.Venue.PlaceID)
	assert.Equal(t, models.AvailabilityVerifiedOpen, p.AvailabilityMode)
	assert.True(t, p.Venue.OpenAtProposedTime)
}

func TestCreateValidation(t *testing.T) {
	t.Run("unknown post", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(context.Background(), aliceID, CreateInput{
			PostID: "nope", ProposedStartAt: f.at(9),
		})
		e := engineErr(t, err)
		assert.Equal(t, KindNotFound, e.Kind)
		assert.Equal(t, CodePostNotFound, e.Code)
	})

	t.Run("unknown requester", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(context.Background(), "ghost", CreateInput{
			PostID: postID, ProposedStartAt: f.at(9),
		})
		assert.Equal(t, CodeUserNotFound, engineErr(t, err).Code)
	})

	t.Run("own post", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(context.Background(), bobID, CreateInput{
			PostID: postID, ProposedStartAt: f.at(9),
		})
		assert.Equal(t, CodeSelfRequest, engineErr(t, err).Code)
	})

	t.Run("malformed instant", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(context.Background(), aliceID, CreateInput{
			PostID: postID, ProposedStartAt: "tomorrow-ish",
		})
		assert.Equal(t, CodeInvalidInstant, engineErr(t, err).Code)
	})

	t.Run("duration out of bounds", func(t *testing.T) {
		f := newFixture(t)
		for _, dur := range []int{MinDurationSec - 1, MaxDurationSec + 1} {
			d := dur
			_, err := f.svc.Create(context.Background(), aliceID, CreateInput{
				PostID: postID, ProposedStartAt: f.at(9), DurationSec: &d,
			})
			assert.Equal(t, CodeInvalidDuration, engineErr(t, err).Code)
		}
	})

	t.Run("not today", func(t *testing.T) {
		f := newFixture(t)
		tomorrow := f.now.Add(24 * time.Hour).Format(time.RFC3339)
		_, err := f.svc.Create(context.Background(), aliceID, CreateInput{
			PostID: postID, ProposedStartAt: tomorrow,
		})
		assert.Equal(t, CodeNotToday, engineErr(t, err).Code)
	})

	t.Run("outside recipient window", func(t *testing.T) {
		// Bob declared MORNING on weekdays; 14:00 is outside it.
		f := newFixture(t)
		_, err := f.svc.Create(context.Background(), aliceID, CreateInput{
			PostID: postID, ProposedStartAt: f.at(14),
		})
		assert.Equal(t, CodeOutsideAvailability, engineErr(t, err).Code)
		assert.Zero(t, f.selector.calls)
	})
}

func TestCreateDuplicateOpen(t *testing.T) {
	f := newFixture(t)
	f.create(t)

	_, err := f.svc.Create(context.Background(), aliceID, CreateInput{
		PostID: postID, ProposedStartAt: f.at(10),
	})
	e := engineErr(t, err)
	assert.Equal(t, KindConflict, e.Kind)
	assert.Equal(t, CodeDuplicateOpen, e.Code)
}

func TestCreateRejectionCooldown(t *testing.T) {
	f := newFixture(t)
	detail := f.create(t)

	// Bob rejects; Alice is now inside the cooldown window.
	_, err := f.svc.Respond(context.Background(), bobID, detail.ID, RespondInput{Action: models.ActionReject})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), aliceID, CreateInput{
		PostID: postID, ProposedStartAt: f.at(10),
	})
	e := engineErr(t, err)
	assert.Equal(t, KindConflict, e.Kind)
	assert.Equal(t, CodeCooldownActive, e.Code)

	// The block is directional: Bob may still approach Alice. He has no
	// post of hers here, so only the cooldown path is asserted.

	// 31 days later the window has lapsed.
	f.now = f.now.Add(31 * 24 * time.Hour)
	_, err = f.svc.Create(context.Background(), aliceID, CreateInput{
		PostID: postID, ProposedStartAt: f.at(9),
	})
	assert.NoError(t, err)
}

func TestCreateVenueFailuresPersistNothing(t *testing.T) {
	t.Run("no candidates", func(t *testing.T) {
		f := newFixture(t)
		f.selector.err = venue.ErrNoCandidates

		_, err := f.svc.Create(context.Background(), aliceID, CreateInput{
			PostID: postID, ProposedStartAt: f.at(9),
		})
		e := engineErr(t, err)
		assert.Equal(t, KindUpstream, e.Kind)
		assert.Equal(t, CodeNoCandidates, e.Code)
		assert.Empty(t, f.requests.requests)
	})

	t.Run("directory outage", func(t *testing.T) {
		f := newFixture(t)
		f.selector.err = &venue.UpstreamError{Status: 503, Body: "secret diagnostic"}

		_, err := f.svc.Create(context.Background(), aliceID, CreateInput{
			PostID: postID, ProposedStartAt: f.at(9),
		})
		e := engineErr(t, err)
		assert.Equal(t, KindUpstream, e.Kind)
		assert.Equal(t, CodeUpstream, e.Code)
		assert.NotContains(t, e.Message, "secret diagnostic")
		assert.Empty(t, f.requests.requests)
	})
}

func TestRespondAccept(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	detail, err := f.svc.Respond(context.Background(), bobID, created.ID, RespondInput{Action: models.ActionAccept})
	require.NoError(t, err)

	assert.Equal(t, models.RequestAccepted, detail.Status)
	require.NotNil(t, detail.AcceptedStartAt)
	require.NotNil(t, detail.AcceptedDurationSec)
	require.NotNil(t, detail.AcceptedVenue)
	assert.Equal(t, DefaultDurationSec, *detail.AcceptedDurationSec)
	assert.Equal(t, "place-1", detail.AcceptedVenue.PlaceID)
	require.Len(t, detail.Proposals, 1)
	assert.Equal(t, models.ProposalAccepted, detail.Proposals[0].Status)

	// Accept hands the meeting to the reminder boundary.
	require.Len(t, f.reminders.scheduled, 1)
	assert.Equal(t, created.ID, f.reminders.scheduled[0].ID)

	// The request is closed; any further response conflicts.
	_, err = f.svc.Respond(context.Background(), aliceID, created.ID, RespondInput{Action: models.ActionReject})
	e := engineErr(t, err)
	assert.Equal(t, KindConflict, e.Kind)
	assert.Equal(t, CodeRequestClosed, e.Code)
}

func TestRespondReminderFailureDoesNotUnwindAccept(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	f.reminders.err = errors.New("queue down")

	detail, err := f.svc.Respond(context.Background(), bobID, created.ID, RespondInput{Action: models.ActionAccept})
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, detail.Status)
}

func TestRespondReject(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	detail, err := f.svc.Respond(context.Background(), bobID, created.ID, RespondInput{Action: models.ActionReject})
	require.NoError(t, err)

	assert.Equal(t, models.RequestRejected, detail.Status)
	require.Len(t, detail.Proposals, 1)
	assert.Equal(t, models.ProposalRejected, detail.Proposals[0].Status)

	stored, _ := f.requests.GetByID(created.ID)
	require.NotNil(t, stored.RejectedAt)
	assert.True(t, stored.RejectedAt.Equal(f.now))
}

func TestRespondCounter(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	firstID := created.Proposals[0].ID

	f.now = f.now.Add(5 * time.Minute)
	detail, err := f.svc.Respond(context.Background(), bobID, created.ID, RespondInput{
		Action:          models.ActionCounter,
		ProposedStartAt: f.at(10),
	})
	require.NoError(t, err)

	assert.Equal(t, models.RequestNegotiating, detail.Status)
	require.Len(t, detail.Proposals, 2)

	// Newest first: the counter leads, the original is superseded.
	assert.Equal(t, models.ProposalPending, detail.Proposals[0].Status)
	assert.Equal(t, bobID, detail.Proposals[0].Proposer.ID)
	assert.Equal(t, models.ProposalSuperseded, detail.Proposals[1].Status)
	assert.Equal(t, firstID, detail.Proposals[1].ID)

	// The counter inherits the prior offer's duration.
	assert.Equal(t, DefaultDurationSec, detail.Proposals[0].DurationSec)

	// Exactly one live proposal at any time.
	live := 0
	for _, p := range detail.Proposals {
		if p.Status == models.ProposalPending {
			live++
		}
	}
	assert.Equal(t, 1, live)

	// The turn has passed back: Bob may not act on his own offer.
	_, err = f.svc.Respond(context.Background(), bobID, created.ID, RespondInput{Action: models.ActionAccept})
	assert.Equal(t, CodeNotYourTurn, engineErr(t, err).Code)

	// Alice can now accept the counter.
	detail, err = f.svc.Respond(context.Background(), aliceID, created.ID, RespondInput{Action: models.ActionAccept})
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, detail.Status)
}

func TestRespondCounterValidation(t *testing.T) {
	t.Run("missing instant", func(t *testing.T) {
		f := newFixture(t)
		created := f.create(t)
		_, err := f.svc.Respond(context.Background(), bobID, created.ID, RespondInput{
			Action: models.ActionCounter,
		})
		assert.Equal(t, CodeInvalidInstant, engineErr(t, err).Code)
	})

	t.Run("counter checked against requester window", func(t *testing.T) {
		// Bob counters, so Alice is the counterparty. She has MORNING on
		// weekdays; an evening counter must fail.
		f := newFixture(t)
		created := f.create(t)
		_, err := f.svc.Respond(context.Background(), bobID, created.ID, RespondInput{
			Action:          models.ActionCounter,
			ProposedStartAt: f.at(17),
		})
		assert.Equal(t, CodeOutsideAvailability, engineErr(t, err).Code)
	})
}

func TestRespondGuards(t *testing.T) {
	t.Run("unknown request", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Respond(context.Background(), bobID, "nope", RespondInput{Action: models.ActionAccept})
		assert.Equal(t, KindNotFound, engineErr(t, err).Kind)
	})

	t.Run("stranger", func(t *testing.T) {
		f := newFixture(t)
		created := f.create(t)
		_, err := f.svc.Respond(context.Background(), "mallory", created.ID, RespondInput{Action: models.ActionAccept})
		e := engineErr(t, err)
		assert.Equal(t, KindAuthorization, e.Kind)
		assert.Equal(t, CodeForbidden, e.Code)
	})

	t.Run("not your turn", func(t *testing.T) {
		f := newFixture(t)
		created := f.create(t)
		_, err := f.svc.Respond(context.Background(), aliceID, created.ID, RespondInput{Action: models.ActionAccept})
		e := engineErr(t, err)
		assert.Equal(t, KindAuthorization, e.Kind)
		assert.Equal(t, CodeNotYourTurn, e.Code)
	})

	t.Run("unknown action", func(t *testing.T) {
		f := newFixture(t)
		created := f.create(t)
		_, err := f.svc.Respond(context.Background(), bobID, created.ID, RespondInput{Action: "SHRUG"})
		assert.Equal(t, CodeInvalidAction, engineErr(t, err).Code)
	})
}

// staleReadRepo serves a frozen snapshot on reads while writes go to the
// live store, simulating a competing responder who committed in between.
type staleReadRepo struct {
	*memRequestRepo
	snapshot *models.InteractionRequest
}

func (s *staleReadRepo) GetByID(id string) (*models.InteractionRequest, error) {
	cp := *s.snapshot
	cp.Proposals = append([]models.Proposal(nil), s.snapshot.Proposals...)
	return &cp, nil
}

func TestRespondLosesRaceCleanly(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	snapshot, _ := f.requests.GetByID(created.ID)
	live := snapshot.LiveProposal()
	require.NotNil(t, live)

	// A racing accept lands after this caller's read.
	require.NoError(t, f.requests.Accept(created.ID, live.ID, live.ProposedStartAt, live.DurationSec, live.Venue, f.now))
	f.svc.Requests = &staleReadRepo{memRequestRepo: f.requests, snapshot: snapshot}

	// The conditional write matches nothing and surfaces as a conflict.
	_, err := f.svc.Respond(context.Background(), bobID, created.ID, RespondInput{Action: models.ActionReject})
	e := engineErr(t, err)
	assert.Equal(t, KindConflict, e.Kind)
	assert.Equal(t, CodeRequestClosed, e.Code)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	t.Run("recipient may not cancel", func(t *testing.T) {
		err := f.svc.Cancel(context.Background(), bobID, created.ID)
		assert.Equal(t, CodeForbidden, engineErr(t, err).Code)
	})

	t.Run("requester cancels", func(t *testing.T) {
		require.NoError(t, f.svc.Cancel(context.Background(), aliceID, created.ID))
		stored, _ := f.requests.GetByID(created.ID)
		assert.Equal(t, models.RequestCancelled, stored.Status)
	})

	t.Run("closed request conflicts", func(t *testing.T) {
		err := f.svc.Cancel(context.Background(), aliceID, created.ID)
		assert.Equal(t, CodeRequestClosed, engineErr(t, err).Code)
	})
}

func TestCancelledPairMayRetry(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	require.NoError(t, f.svc.Cancel(context.Background(), aliceID, created.ID))

	// A cancellation is not a rejection; no cooldown applies.
	_, err := f.svc.Create(context.Background(), aliceID, CreateInput{
		PostID: postID, ProposedStartAt: f.at(10),
	})
	assert.NoError(t, err)
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	inbox, err := f.svc.ListInbox(context.Background(), bobID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, created.ID, inbox[0].ID)
	assert.Equal(t, "Alice", inbox[0].Requester.FirstName)

	outbox, err := f.svc.ListOutbox(context.Background(), aliceID)
	require.NoError(t, err)
	require.Len(t, outbox, 1)

	empty, err := f.svc.ListInbox(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetRequestPartyOnly(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	detail, err := f.svc.GetRequest(context.Background(), bobID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, detail.ID)

	_, err = f.svc.GetRequest(context.Background(), "mallory", created.ID)
	assert.Equal(t, KindAuthorization, engineErr(t, err).Kind)

	_, err = f.svc.GetRequest(context.Background(), bobID, "nope")
	assert.Equal(t, KindNotFound, engineErr(t, err).Kind)
}
