package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/duedate/reminder/internal/database"
	"github.com/duedate/reminder/internal/model"
	"github.com/lib/pq"
)

// ReminderRepository reads scheduled reminders
type ReminderRepository struct {
	db *database.Postgres
}

// NewReminderRepository creates a new ReminderRepository
func NewReminderRepository(db *database.Postgres) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// FetchDue returns every reminder whose deadline minus one of its offsets is
// today, joined with its type and email template.
func (r *ReminderRepository) FetchDue(ctx context.Context, today time.Time) ([]model.Reminder, error) {
	query := `
		SELECT r.reminder_id, r.deadline, r.days_before_deadline, r.client_id, r.group_id,
		       t.reminder_type_id, t.name,
		       e.template_id, e.name, COALESCE(e.subject, ''), COALESCE(e.body, ''),
		       COALESCE(e.external_reference_info, ''), e.data_references
		FROM reminder_info r
		JOIN reminder_type_info t ON t.reminder_type_id = r.reminder_type_id
		JOIN email_template e ON e.template_id = t.email_template_id
		WHERE r.deadline >= $1::date
		  AND (r.deadline - $1::date) = ANY(r.days_before_deadline)
		ORDER BY r.deadline, r.reminder_id
	`
	rows, err := r.db.QueryContext(ctx, query, sqlDate(today))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due reminders: %w", err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		if err := reminder.Validate(); err != nil {
			return nil, fmt.Errorf("reminder %d: %w", reminder.ID, err)
		}
		reminders = append(reminders, *reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate due reminders: %w", err)
	}
	return reminders, nil
}

// scanReminder scans a single joined reminder row
func scanReminder(rows *sql.Rows) (*model.Reminder, error) {
	var (
		reminder model.Reminder
		offsets  pq.Int64Array
		refs     pq.StringArray
		clientID sql.NullInt64
		groupID  sql.NullInt64
	)
	err := rows.Scan(
		&reminder.ID,
		&reminder.Deadline,
		&offsets,
		&clientID,
		&groupID,
		&reminder.Type.ID,
		&reminder.Type.Name,
		&reminder.Type.Template.ID,
		&reminder.Type.Template.Name,
		&reminder.Type.Template.Subject,
		&reminder.Type.Template.Body,
		&reminder.Type.Template.ExternalReference,
		&refs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan reminder: %w", err)
	}

	reminder.DaysBeforeDeadline = make([]int, len(offsets))
	for i, o := range offsets {
		reminder.DaysBeforeDeadline[i] = int(o)
	}
	reminder.Type.Template.DataReferences = []string(refs)
	if clientID.Valid {
		reminder.ClientID = &clientID.Int64
	}
	if groupID.Valid {
		reminder.GroupID = &groupID.Int64
	}
	return &reminder, nil
}
