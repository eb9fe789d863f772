package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/duedate/reminder/internal/database"
	"github.com/duedate/reminder/internal/model"
)

// StatusRepository handles reminder status persistence
type StatusRepository struct {
	db *database.Postgres
}

// NewStatusRepository creates a new StatusRepository
func NewStatusRepository(db *database.Postgres) *StatusRepository {
	return &StatusRepository{db: db}
}

// Record inserts a new status row and fills in its id and creation time
func (r *StatusRepository) Record(ctx context.Context, status *model.ReminderStatus) error {
	query := `
		INSERT INTO reminder_status (reminder_id, client_id, fire_date, status, error_message)
		VALUES ($1, $2, $3::date, $4, $5)
		RETURNING request_id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		status.ReminderID,
		status.ClientID,
		sqlDate(status.FireDate),
		string(status.Outcome),
		status.Detail,
	).Scan(&status.ID, &status.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record status for reminder %d client %d: %w", status.ReminderID, status.ClientID, err)
	}
	return nil
}

// WasSent reports whether the reminder was already sent to the client for the given fire date
func (r *StatusRepository) WasSent(ctx context.Context, reminderID, clientID int64, fireDate time.Time) (bool, error) {
	return r.HasOutcome(ctx, reminderID, clientID, fireDate, model.OutcomeSent)
}

// HasOutcome reports whether a status row with the outcome exists for the
// reminder, client and fire date
func (r *StatusRepository) HasOutcome(ctx context.Context, reminderID, clientID int64, fireDate time.Time, outcome model.Outcome) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM reminder_status
			WHERE reminder_id = $1 AND client_id = $2 AND fire_date = $3::date AND status = $4
		)
	`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, reminderID, clientID, sqlDate(fireDate), string(outcome)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check %s status: %w", outcome, err)
	}
	return exists, nil
}
