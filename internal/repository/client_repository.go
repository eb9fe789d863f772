package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/duedate/reminder/internal/database"
	"github.com/duedate/reminder/internal/model"
)

// ClientRepository resolves reminder recipients
type ClientRepository struct {
	db *database.Postgres
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(db *database.Postgres) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `c.id, COALESCE(c.first_name, ''), COALESCE(c.middle_name, ''), COALESCE(c.last_name, ''),
		       COALESCE(c.company_name, ''), COALESCE(c.company_type, ''), COALESCE(c.email, ''),
		       c.mobile, COALESCE(c.gst_no, ''), COALESCE(c.address, '')`

// FetchRecipients returns the referenced client, or every member of the
// referenced group without duplicates, ordered by id. A missing individual
// client yields ErrNotFound; an empty group yields no clients.
func (r *ClientRepository) FetchRecipients(ctx context.Context, reminder model.Reminder) ([]model.Client, error) {
	if err := reminder.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var (
		query string
		arg   int64
	)
	switch reminder.Audience() {
	case model.AudienceGroup:
		query = `
		SELECT DISTINCT ` + clientColumns + `
		FROM clients c
		JOIN client_group_map m ON m.client_id = c.id
		WHERE m.group_id = $1
		ORDER BY c.id
	`
		arg = *reminder.GroupID
	default:
		query = `
		SELECT ` + clientColumns + `
		FROM clients c
		WHERE c.id = $1
	`
		arg = *reminder.ClientID
	}

	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipients for reminder %d: %w", reminder.ID, err)
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipients: %w", err)
	}
	if len(clients) == 0 && reminder.Audience() == model.AudienceIndividual {
		return nil, fmt.Errorf("client %d: %w", *reminder.ClientID, ErrNotFound)
	}
	return clients, nil
}

// scanClient scans a single client row
func scanClient(rows *sql.Rows) (*model.Client, error) {
	var (
		client model.Client
		mobile sql.NullInt64
	)
	err := rows.Scan(
		&client.ID,
		&client.FirstName,
		&client.MiddleName,
		&client.LastName,
		&client.CompanyName,
		&client.CompanyType,
		&client.Email,
		&mobile,
		&client.GSTNo,
		&client.Address,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	if mobile.Valid {
		client.Mobile = &mobile.Int64
	}
	return &client, nil
}

// Count returns the number of clients, used by the setup check
func (r *ClientRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}
	return n, nil
}
