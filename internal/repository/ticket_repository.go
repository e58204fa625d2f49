package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/prioritization-service/internal/domain"
)

// ErrNotFound marks a missing ticket regardless of the backing store.
var ErrNotFound = errors.New("ticket not found")

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Statuses []domain.TicketStatus
	Limit    int
	Offset   int
}

// TicketRepository encapsulates ticket persistence. Replace carries
// whole-record semantics: the engine reads the current ticket, computes the
// next one, and writes it back in full; concurrent mutations of the same
// ticket are serialized by the store.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Replace(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, text, customer_tier, customer_name, customer_email, customer_account_id,
               sla_hours_remaining, status, llm_signals, priority_score, priority_band,
               priority_breakdown, override, feedback, feedback_by, feedback_at, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, text, customer_tier, customer_name, customer_email, customer_account_id,
            sla_hours_remaining, status, llm_signals, priority_score, priority_band, priority_breakdown,
            override, feedback, feedback_by, feedback_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.Text,
		ticket.CustomerTier,
		ticket.CustomerName,
		ticket.CustomerEmail,
		ticket.CustomerAccountID,
		ticket.SLAHoursRemaining,
		ticket.Status,
		ticket.Signals,
		ticket.PriorityScore,
		ticket.PriorityBand,
		ticket.PriorityBreakdown,
		ticket.Override,
		nullableVerdict(ticket.Feedback),
		nullableString(ticket.FeedbackBy),
		ticket.FeedbackAt,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Replace(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET text=$1, customer_tier=$2, customer_name=$3, customer_email=$4,
            customer_account_id=$5, sla_hours_remaining=$6, status=$7, llm_signals=$8,
            priority_score=$9, priority_band=$10, priority_breakdown=$11, override=$12,
            feedback=$13, feedback_by=$14, feedback_at=$15, updated_at=NOW()
        WHERE id=$16`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Text,
		ticket.CustomerTier,
		ticket.CustomerName,
		ticket.CustomerEmail,
		ticket.CustomerAccountID,
		ticket.SLAHoursRemaining,
		ticket.Status,
		ticket.Signals,
		ticket.PriorityScore,
		ticket.PriorityBand,
		ticket.PriorityBreakdown,
		ticket.Override,
		nullableVerdict(ticket.Feedback),
		nullableString(ticket.FeedbackBy),
		ticket.FeedbackAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at ASC`, base, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, filter.Limit)
	}
	if filter.Offset > 0 {
		query = fmt.Sprintf("%s OFFSET %d", query, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tickets`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner, ticket *domain.Ticket) error {
	var (
		feedback   *string
		feedbackBy *string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Text,
		&ticket.CustomerTier,
		&ticket.CustomerName,
		&ticket.CustomerEmail,
		&ticket.CustomerAccountID,
		&ticket.SLAHoursRemaining,
		&ticket.Status,
		&ticket.Signals,
		&ticket.PriorityScore,
		&ticket.PriorityBand,
		&ticket.PriorityBreakdown,
		&ticket.Override,
		&feedback,
		&feedbackBy,
		&ticket.FeedbackAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return err
	}
	if feedback != nil {
		ticket.Feedback = domain.FeedbackVerdict(*feedback)
	}
	if feedbackBy != nil {
		ticket.FeedbackBy = *feedbackBy
	}
	return nil
}

func nullableVerdict(v domain.FeedbackVerdict) *string {
	if v == "" {
		return nil
	}
	s := string(v)
	return &s
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
