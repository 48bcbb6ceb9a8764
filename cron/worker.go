package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"clinicore/config"
	"clinicore/models"
	"clinicore/services/onboarding"
	"clinicore/services/tasks"
	"clinicore/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitReminderWorker runs the async worker in background. It processes the
// delayed abandonment reminders enqueued at session creation.
func InitReminderWorker(sessions *onboarding.SessionStore, drafts *onboarding.DraftStore) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
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
	mux.HandleFunc(tasks.TypeOnboardingReminder, handleReminderTask(sessions, drafts))

	go monitorRedisConnection()

	go func() {
		log.Println("[ReminderWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// handleReminderTask nudges the admin of a stalled onboarding session. If the
// session is gone by fire time the wizard either finished or expired, and the
// reminder is dropped silently.
func handleReminderTask(sessions *onboarding.SessionStore, drafts *onboarding.DraftStore) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] Invalid payload: %v", err)
			return err
		}

		session, err := sessions.Get(ctx, p.SessionID)
		if err != nil {
			if err == onboarding.ErrSessionNotFound {
				return nil
			}
			return err
		}

		draft, err := drafts.Get(ctx, session.DeviceID)
		if err != nil {
			return err
		}
		phone := session.Answers.PersonalInfo.Phone
		if phone == "" {
			phone = draft.Phone
		}
		if phone == "" {
			log.Printf("[ReminderHandler] No phone on record for session %s, skipping nudge", p.SessionID)
			return nil
		}

		msg := "Your clinic onboarding is almost done. Pick up where you left off to finish registration."
		if err := utils.SendSMSMessage(phone, msg); err != nil {
			log.Printf("[ReminderHandler] Failed to send nudge: %v", err)
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[ReminderWorker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
