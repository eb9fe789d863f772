package model

import "time"

// Outcome is the result of one dispatch decision
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Skip reasons recorded in ReminderStatus.Detail
const (
	SkipNoEmail      = "no email address"
	SkipBlocklisted  = "blocklisted"
	SkipUnsubscribed = "unsubscribed"
)

// ReminderStatus is one row per (reminder, recipient, fire date) attempt
type ReminderStatus struct {
	ID         int64     `json:"id"`
	ReminderID int64     `json:"reminderId"`
	ClientID   int64     `json:"clientId"`
	FireDate   time.Time `json:"fireDate"`
	Outcome    Outcome   `json:"outcome"`
	Detail     *string   `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
