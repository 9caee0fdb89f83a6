package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meetpoint/config"
	"meetpoint/models"

	"github.com/hibiken/asynq"
)

const TypeMeetingReminder = "meeting:reminder"

// DefaultReminderLead is how long before the agreed start the reminder fires.
const DefaultReminderLead = time.Hour

// MeetingReminderPayload is the task body for one party's reminder.
type MeetingReminderPayload struct {
	RequestID string    `json:"requestId"`
	UserID    string    `json:"userId"`
	VenueName string    `json:"venueName"`
	Address   string    `json:"address,omitempty"`
	StartAt   time.Time `json:"startAt"`
}

// NewMeetingReminderTask builds the deferred task for one payload.
func NewMeetingReminderTask(payload MeetingReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeMeetingReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// AsynqReminderScheduler schedules meeting reminders on the Redis-backed
// queue; it satisfies the engine's ReminderScheduler boundary.
type AsynqReminderScheduler struct {
	Client *asynq.Client
	Lead   time.Duration
}

// NewAsynqReminderScheduler connects a scheduler to the reminder queue DB.
func NewAsynqReminderScheduler() *AsynqReminderScheduler {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	return &AsynqReminderScheduler{Client: client, Lead: DefaultReminderLead}
}

// ScheduleMeetingReminder enqueues one reminder per party, fired ahead of
// the accepted start. A start already inside the lead window fires the
// reminders immediately.
func (s *AsynqReminderScheduler) ScheduleMeetingReminder(ctx context.Context, req *models.InteractionRequest) error {
	if req.AcceptedStartAt == nil || req.AcceptedVenue == nil {
		return fmt.Errorf("request %s has no accepted outcome to remind about", req.ID)
	}

	fireAt := req.AcceptedStartAt.Add(-s.Lead)
	if fireAt.Before(time.Now()) {
		fireAt = time.Now()
	}

	for _, userID := range []string{req.RequesterID, req.RecipientID} {
		payload := MeetingReminderPayload{
			RequestID: req.ID,
			UserID:    userID,
			VenueName: req.AcceptedVenue.Name,
			Address:   req.AcceptedVenue.Address,
			StartAt:   *req.AcceptedStartAt,
		}
		task, opts, err := NewMeetingReminderTask(payload, fireAt)
		if err != nil {
			return fmt.Errorf("failed to build reminder task: %w", err)
		}
		if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
			return fmt.Errorf("failed to enqueue reminder for %s: %w", userID, err)
		}
	}
	return nil
}
