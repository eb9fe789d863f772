package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func int64Ptr(v int64) *int64 { return &v }

func TestReminderFiresOn(t *testing.T) {
	today := day(2024, 1, 3)

	tests := []struct {
		name     string
		deadline time.Time
		offsets  []int
		want     bool
	}{
		{"deadline in 7 days, offsets 7 and 3", today.AddDate(0, 0, 7), []int{7, 3}, true},
		{"deadline in 7 days, offsets 5 and 2", today.AddDate(0, 0, 7), []int{5, 2}, false},
		{"deadline today with zero offset", today, []int{0}, true},
		{"deadline passed", today.AddDate(0, 0, -1), []int{-1, 1}, false},
		{"no offsets", today.AddDate(0, 0, 3), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Reminder{Deadline: tt.deadline, DaysBeforeDeadline: tt.offsets}
			assert.Equal(t, tt.want, r.FiresOn(today))
		})
	}
}

func TestReminderFiresOn_MatchesDeadlineMinusOffset(t *testing.T) {
	deadline := day(2024, 3, 31)
	offsets := []int{30, 14, 7, 1}
	r := Reminder{Deadline: deadline, DaysBeforeDeadline: offsets}

	fireDates := map[time.Time]bool{}
	for _, o := range offsets {
		fireDates[deadline.AddDate(0, 0, -o)] = true
	}

	for d := deadline.AddDate(0, 0, -45); !d.After(deadline.AddDate(0, 0, 5)); d = d.AddDate(0, 0, 1) {
		assert.Equal(t, fireDates[d], r.FiresOn(d), "date %s", d.Format("2006-01-02"))
		if r.FiresOn(d) {
			assert.GreaterOrEqual(t, r.DaysUntilDeadline(d), 0)
		}
	}
}

func TestDaysBetween_IgnoresTimeOfDayAndZone(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skip("tzdata not available")
	}
	lateEvening := time.Date(2024, 1, 3, 23, 30, 0, 0, kolkata)
	deadline := day(2024, 1, 10)

	assert.Equal(t, 7, DaysBetween(lateEvening, deadline))
	assert.Equal(t, -7, DaysBetween(deadline, lateEvening))
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	start := time.Date(2024, 3, 9, 12, 0, 0, 0, ny)
	end := time.Date(2024, 3, 11, 0, 0, 0, 0, ny)
	assert.Equal(t, 2, DaysBetween(start, end))
}

func TestReminderValidate(t *testing.T) {
	deadline := day(2024, 1, 10)

	assert.NoError(t, Reminder{Deadline: deadline, ClientID: int64Ptr(1)}.Validate())
	assert.NoError(t, Reminder{Deadline: deadline, GroupID: int64Ptr(2)}.Validate())
	assert.ErrorIs(t, Reminder{Deadline: deadline}.Validate(), ErrInvalidReminder)
	assert.ErrorIs(t, Reminder{Deadline: deadline, ClientID: int64Ptr(1), GroupID: int64Ptr(2)}.Validate(), ErrInvalidReminder)
	assert.Error(t, Reminder{ClientID: int64Ptr(1)}.Validate())

	assert.Equal(t, AudienceGroup, Reminder{GroupID: int64Ptr(2)}.Audience())
	assert.Equal(t, AudienceIndividual, Reminder{ClientID: int64Ptr(1)}.Audience())
}

func TestClientNames(t *testing.T) {
	c := Client{FirstName: "Asha", LastName: "Rao", CompanyName: "Acme"}
	assert.Equal(t, "Asha Rao", c.FullName())
	assert.Equal(t, "Asha Rao", c.DisplayName())

	company := Client{CompanyName: " Acme Traders "}
	assert.Equal(t, "", company.FullName())
	assert.Equal(t, "Acme Traders", company.DisplayName())
}

func TestClientHasEmail(t *testing.T) {
	assert.True(t, Client{Email: "ops@acme.test"}.HasEmail())
	assert.True(t, Client{Email: "  ops@acme.test "}.HasEmail())
	assert.False(t, Client{}.HasEmail())
	assert.False(t, Client{Email: "   "}.HasEmail())
	assert.False(t, Client{Email: "acme.test"}.HasEmail())
	assert.False(t, Client{Email: "@acme.test"}.HasEmail())
	assert.False(t, Client{Email: "ops@"}.HasEmail())
	assert.False(t, Client{Email: "o ps@acme.test"}.HasEmail())
}
