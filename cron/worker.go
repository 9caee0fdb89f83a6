package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meetpoint/config"
	"meetpoint/services/notification"
	"meetpoint/services/tasks"
	"meetpoint/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitReminderWorker runs the async worker in background, draining the
// meeting-reminder queue into the notification boundary.
func InitReminderWorker(notifSvc notification.NotificationService) {
	logger := utils.GetLogger()

	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeMeetingReminder, handleMeetingReminder(notifSvc))

	go func() {
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("reminder worker failed to start",
					zap.Int("attempt", attempts), zap.Error(err))

				if attempts == maxAttempts {
					logger.Fatal("reminder worker: max retry attempts reached")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleMeetingReminder(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload tasks.MeetingReminderPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to decode reminder payload: %w", err)
		}

		body := fmt.Sprintf("You're meeting at %s at %s.",
			payload.VenueName, payload.StartAt.Local().Format("15:04"))

		return notifSvc.SendUserNotification(ctx, payload.UserID,
			"Upcoming meeting", body, map[string]string{
				"requestId": payload.RequestID,
			})
	}
}
