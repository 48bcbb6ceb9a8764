package tasks

import (
	"encoding/json"
	"time"

	"clinicore/models"

	"github.com/hibiken/asynq"
)

const TypeOnboardingReminder = "onboarding:reminder"

// NewOnboardingReminderTask builds the delayed task that nudges an abandoned
// onboarding session.
func NewOnboardingReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeOnboardingReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}
