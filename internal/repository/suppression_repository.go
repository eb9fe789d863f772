package repository

import (
	"context"
	"fmt"

	"github.com/duedate/reminder/internal/database"
	"github.com/duedate/reminder/internal/model"
	"github.com/lib/pq"
)

// SuppressionRepository reads the blocklist and unsubscribe tables
type SuppressionRepository struct {
	db *database.Postgres
}

// NewSuppressionRepository creates a new SuppressionRepository
func NewSuppressionRepository(db *database.Postgres) *SuppressionRepository {
	return &SuppressionRepository{db: db}
}

// FetchBlocklisted returns the blocklist entries for the given clients, keyed by client id
func (r *SuppressionRepository) FetchBlocklisted(ctx context.Context, clientIDs []int64) (map[int64]model.BlocklistEntry, error) {
	blocked := make(map[int64]model.BlocklistEntry)
	if len(clientIDs) == 0 {
		return blocked, nil
	}

	query := `
		SELECT client_id, COALESCE(reason, '')
		FROM reminder_blocklist
		WHERE client_id = ANY($1)
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(clientIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blocklist: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry model.BlocklistEntry
		if err := rows.Scan(&entry.ClientID, &entry.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan blocklist entry: %w", err)
		}
		blocked[entry.ClientID] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate blocklist: %w", err)
	}
	return blocked, nil
}

// FetchUnsubscribed returns the clients that unsubscribed from the reminder, keyed by client id
func (r *SuppressionRepository) FetchUnsubscribed(ctx context.Context, reminderID int64, clientIDs []int64) (map[int64]model.Unsubscribe, error) {
	unsubscribed := make(map[int64]model.Unsubscribe)
	if len(clientIDs) == 0 {
		return unsubscribed, nil
	}

	query := `
		SELECT reminder_id, client_id, COALESCE(reason_type, ''), COALESCE(reason, '')
		FROM reminder_unsubscribers
		WHERE reminder_id = $1 AND client_id = ANY($2)
	`
	rows, err := r.db.QueryContext(ctx, query, reminderID, pq.Array(clientIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsubscribers for reminder %d: %w", reminderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var u model.Unsubscribe
		if err := rows.Scan(&u.ReminderID, &u.ClientID, &u.ReasonType, &u.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan unsubscriber: %w", err)
		}
		unsubscribed[u.ClientID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate unsubscribers: %w", err)
	}
	return unsubscribed, nil
}
