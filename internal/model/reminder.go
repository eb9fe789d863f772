package model

import (
	"errors"
	"time"
)

// ErrInvalidReminder is returned for reminder rows that reference neither a
// client nor a client group, or both.
var ErrInvalidReminder = errors.New("reminder must reference exactly one of client or group")

// Audience describes who a reminder is addressed to
type Audience string

const (
	AudienceIndividual Audience = "individual"
	AudienceGroup      Audience = "group"
)

// EmailTemplate is the subject and body rendered for every recipient
type EmailTemplate struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Subject           string   `json:"subject"`
	Body              string   `json:"body"`
	ExternalReference string   `json:"externalReference,omitempty"`
	DataReferences    []string `json:"dataReferences,omitempty"`
}

// ReminderType names a kind of reminder and the template it uses
type ReminderType struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Template EmailTemplate `json:"template"`
}

// Reminder is a scheduled reminder with a deadline and the offsets, in days
// before the deadline, on which it fires.
type Reminder struct {
	ID                 int64        `json:"id"`
	Type               ReminderType `json:"type"`
	Deadline           time.Time    `json:"deadline"`
	DaysBeforeDeadline []int        `json:"daysBeforeDeadline"`
	ClientID           *int64       `json:"clientId,omitempty"`
	GroupID            *int64       `json:"groupId,omitempty"`
}

// Audience returns who the reminder goes to
func (r Reminder) Audience() Audience {
	if r.GroupID != nil {
		return AudienceGroup
	}
	return AudienceIndividual
}

// Validate checks the row invariants enforced at the data access boundary
func (r Reminder) Validate() error {
	if (r.ClientID == nil) == (r.GroupID == nil) {
		return ErrInvalidReminder
	}
	if r.Deadline.IsZero() {
		return errors.New("reminder deadline is required")
	}
	return nil
}

// DaysUntilDeadline returns the number of calendar days from today to the deadline
func (r Reminder) DaysUntilDeadline(today time.Time) int {
	return DaysBetween(today, r.Deadline)
}

// FiresOn reports whether today equals deadline minus one of the offsets
func (r Reminder) FiresOn(today time.Time) bool {
	days := r.DaysUntilDeadline(today)
	if days < 0 {
		return false
	}
	for _, offset := range r.DaysBeforeDeadline {
		if offset == days {
			return true
		}
	}
	return false
}

// Date truncates t to midnight UTC of its calendar date in t's location
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from start to end, ignoring time of day and DST
func DaysBetween(start, end time.Time) int {
	return int(Date(end).Sub(Date(start)).Hours() / 24)
}
