package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PriorityChangeType captures what changed in a history entry.
type PriorityChangeType string

const (
	ChangePriorityComputed PriorityChangeType = "PRIORITY_COMPUTED"
	ChangeOverrideApplied  PriorityChangeType = "OVERRIDE_APPLIED"
	ChangeOverrideRemoved  PriorityChangeType = "OVERRIDE_REMOVED"
	ChangeStatus           PriorityChangeType = "STATUS_CHANGE"
)

// PriorityHistory is an immutable audit trail entry for priority decisions.
type PriorityHistory struct {
	ID         string
	TicketID   string
	ChangeType PriorityChangeType
	ChangedBy  *string
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}

// PriorityHistoryRepository stores audit entries.
type PriorityHistoryRepository interface {
	Create(ctx context.Context, entry *PriorityHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]PriorityHistory, error)
}

type priorityHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewPriorityHistoryRepository builds the repository.
func NewPriorityHistoryRepository(pool *pgxpool.Pool) PriorityHistoryRepository {
	return &priorityHistoryRepository{pool: pool}
}

func (r *priorityHistoryRepository) Create(ctx context.Context, entry *PriorityHistory) error {
	const query = `
        INSERT INTO priority_history (ticket_id, change_type, changed_by, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.ChangeType,
		entry.ChangedBy,
		entry.OldValue,
		entry.NewValue,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *priorityHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]PriorityHistory, error) {
	const query = `
        SELECT id, ticket_id, change_type, changed_by, old_value, new_value, created_at
        FROM priority_history WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PriorityHistory
	for rows.Next() {
		var entry PriorityHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.ChangeType,
			&entry.ChangedBy,
			&entry.OldValue,
			&entry.NewValue,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
