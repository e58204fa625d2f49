package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/prioritization-service/internal/domain"
)

// memoryTicketRepository is a map-backed store used for tests and for
// DSN-less demo runs. The mutex serializes mutations per the whole-record
// replace contract.
type memoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
}

// NewMemoryTicketRepository builds an empty in-memory repository.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{tickets: make(map[string]domain.Ticket)}
}

func (r *memoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = cloneTicket(ticket)
	return nil
}

func (r *memoryTicketRepository) Replace(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return ErrNotFound
	}
	ticket.UpdatedAt = time.Now().UTC()
	r.tickets[ticket.ID] = cloneTicket(ticket)
	return nil
}

func (r *memoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := cloneTicket(&ticket)
	return &copied, nil
}

func (r *memoryTicketRepository) List(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		if len(filter.Statuses) > 0 && !statusMatches(ticket.Status, filter.Statuses) {
			continue
		}
		result = append(result, cloneTicket(&ticket))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []domain.Ticket{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *memoryTicketRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return ErrNotFound
	}
	delete(r.tickets, id)
	return nil
}

func (r *memoryTicketRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets = make(map[string]domain.Ticket)
	return nil
}

func statusMatches(status domain.TicketStatus, statuses []domain.TicketStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

// cloneTicket deep-copies the pointer fields so stored state cannot be
// mutated through a returned value.
func cloneTicket(ticket *domain.Ticket) domain.Ticket {
	copied := *ticket
	if ticket.Signals != nil {
		signals := *ticket.Signals
		if ticket.Signals.Confidence != nil {
			confidence := *ticket.Signals.Confidence
			signals.Confidence = &confidence
		}
		copied.Signals = &signals
	}
	if ticket.PriorityBreakdown != nil {
		breakdown := *ticket.PriorityBreakdown
		copied.PriorityBreakdown = &breakdown
	}
	if ticket.Override != nil {
		override := *ticket.Override
		copied.Override = &override
	}
	if ticket.FeedbackAt != nil {
		at := *ticket.FeedbackAt
		copied.FeedbackAt = &at
	}
	return copied
}
