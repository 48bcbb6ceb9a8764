package models

// ReminderPayload is the queued payload for an onboarding abandonment nudge.
type ReminderPayload struct {
	SessionID string `json:"sessionId"`
	FireDate  string `json:"fireDate"`
}
