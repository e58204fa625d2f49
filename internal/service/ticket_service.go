package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/prioritization-service/internal/domain"
	"github.com/spec-kit/prioritization-service/internal/events"
	"github.com/spec-kit/prioritization-service/internal/priority"
	"github.com/spec-kit/prioritization-service/internal/repository"
	"github.com/spec-kit/prioritization-service/internal/signals"
	apperrors "github.com/spec-kit/prioritization-service/pkg/util"
)

// QueueCache caches the queue and statistics read models between ticket
// mutations. Implementations must treat failures as cache misses.
type QueueCache interface {
	GetQueue(ctx context.Context, dest any) bool
	SetQueue(ctx context.Context, value any)
	GetStatistics(ctx context.Context, dest any) bool
	SetStatistics(ctx context.Context, value any)
	Invalidate(ctx context.Context)
}

// noopQueueCache disables caching when no cache is supplied.
type noopQueueCache struct{}

func (noopQueueCache) GetQueue(context.Context, any) bool      { return false }
func (noopQueueCache) SetQueue(context.Context, any)           {}
func (noopQueueCache) GetStatistics(context.Context, any) bool { return false }
func (noopQueueCache) SetStatistics(context.Context, any)      {}
func (noopQueueCache) Invalidate(context.Context)              {}

// TicketService coordinates ticket workflows: creation with analysis and
// scoring, the override lifecycle, queue and statistics reads.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.PriorityHistoryRepository
	analyzer   signals.Analyzer
	engine     *priority.Engine
	queueCache QueueCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service. History,
// cache and dispatcher are optional.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.PriorityHistoryRepository
	Analyzer    signals.Analyzer
	Engine      *priority.Engine
	QueueCache  QueueCache
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Text              string
	CustomerTier      domain.CustomerTier
	CustomerName      string
	CustomerEmail     string
	CustomerAccountID string
	SLAHoursRemaining float64
}

// TicketUpdateInput describes mutable ticket fields.
type TicketUpdateInput struct {
	Status            *domain.TicketStatus
	SLAHoursRemaining *float64
}

// ListFilter describes listing options.
type ListFilter struct {
	Status         *domain.TicketStatus
	SortByPriority bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	queueCache := deps.QueueCache
	if queueCache == nil {
		queueCache = noopQueueCache{}
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		analyzer:   deps.Analyzer,
		engine:     deps.Engine,
		queueCache: queueCache,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateTicket creates a ticket, generates its AI signal, scores it and
// persists the result.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, apperrors.NewValidationError("text required", nil)
	}
	if input.SLAHoursRemaining <= 0 {
		return nil, apperrors.NewValidationError("sla_hours_remaining must be positive", nil)
	}

	ticket := &domain.Ticket{
		ID:                generateTicketID(),
		Text:              strings.TrimSpace(input.Text),
		CustomerTier:      input.CustomerTier,
		CustomerName:      strings.TrimSpace(input.CustomerName),
		CustomerEmail:     strings.TrimSpace(input.CustomerEmail),
		CustomerAccountID: strings.TrimSpace(input.CustomerAccountID),
		SLAHoursRemaining: input.SLAHoursRemaining,
		Status:            domain.TicketStatusOpen,
	}

	ticket.Signals = s.analyzer.Analyze(ctx, ticket.Text, ticket.CustomerTier, ticket.SLAHoursRemaining)
	if err := s.score(ticket); err != nil {
		return nil, err
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.recordHistory(ctx, ticket.ID, repository.ChangePriorityComputed, nil, nil, map[string]any{
		"score": ticket.PriorityScore,
		"band":  ticket.PriorityBand,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			CustomerTier:      ticket.CustomerTier,
			SLAHoursRemaining: ticket.SLAHoursRemaining,
			TextPreview:       textPreview(ticket.Text, 120),
		},
	})
	s.publishPriorityComputed(ctx, ticket)
	s.queueCache.Invalidate(ctx)
	return ticket, nil
}

// ListTickets returns tickets, optionally filtered by status and sorted by
// effective priority.
func (s *TicketService) ListTickets(ctx context.Context, filter ListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{}
	if filter.Status != nil {
		repoFilter.Statuses = []domain.TicketStatus{*filter.Status}
	}
	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	if filter.SortByPriority {
		return priority.SortQueue(tickets), nil
	}
	return tickets, nil
}

// GetTicket fetches a single ticket.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err, id)
	}
	return ticket, nil
}

// UpdateTicket applies mutable field changes. A changed SLA rescores the
// computed layer; an active override keeps governing the effective priority.
func (s *TicketService) UpdateTicket(ctx context.Context, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err, id)
	}

	if input.Status != nil && *input.Status != ticket.Status {
		oldStatus := ticket.Status
		ticket.Status = *input.Status
		s.recordHistory(ctx, ticket.ID, repository.ChangeStatus, nil,
			map[string]any{"status": oldStatus},
			map[string]any{"status": ticket.Status})
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	if input.SLAHoursRemaining != nil && *input.SLAHoursRemaining != ticket.SLAHoursRemaining {
		oldScore := ticket.PriorityScore
		ticket.SLAHoursRemaining = *input.SLAHoursRemaining
		if err := s.score(ticket); err != nil {
			return nil, err
		}
		s.recordHistory(ctx, ticket.ID, repository.ChangePriorityComputed, nil,
			map[string]any{"score": oldScore},
			map[string]any{"score": ticket.PriorityScore, "band": ticket.PriorityBand})
		s.publishPriorityComputed(ctx, ticket)
	}

	if err := s.tickets.Replace(ctx, ticket); err != nil {
		return nil, s.mapNotFound(err, id)
	}
	s.queueCache.Invalidate(ctx)
	return ticket, nil
}

// DeleteTicket removes a ticket.
func (s *TicketService) DeleteTicket(ctx context.Context, id string) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		return s.mapNotFound(err, id)
	}
	s.queueCache.Invalidate(ctx)
	return nil
}

// Queue returns open tickets sorted by effective priority descending, FIFO
// among equal priorities.
func (s *TicketService) Queue(ctx context.Context) ([]domain.Ticket, error) {
	var cached []domain.Ticket
	if s.queueCache.GetQueue(ctx, &cached) {
		return cached, nil
	}
	open, err := s.tickets.List(ctx, repository.TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusOpen},
	})
	if err != nil {
		return nil, err
	}
	queue := priority.SortQueue(open)
	s.queueCache.SetQueue(ctx, queue)
	return queue, nil
}

// Reprioritize re-analyzes and rescores a ticket. Rejected while a manual
// override is active; the override must be removed first.
func (s *TicketService) Reprioritize(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err, id)
	}
	if ticket.ManualOverride() {
		return nil, apperrors.NewConflict("ticket has a manual override; remove it before reprioritizing", nil)
	}

	oldScore := ticket.PriorityScore
	ticket.Signals = s.analyzer.Analyze(ctx, ticket.Text, ticket.CustomerTier, ticket.SLAHoursRemaining)
	if err := s.score(ticket); err != nil {
		return nil, err
	}
	if err := s.tickets.Replace(ctx, ticket); err != nil {
		return nil, s.mapNotFound(err, id)
	}
	s.recordHistory(ctx, ticket.ID, repository.ChangePriorityComputed, nil,
		map[string]any{"score": oldScore},
		map[string]any{"score": ticket.PriorityScore, "band": ticket.PriorityBand})
	s.publishPriorityComputed(ctx, ticket)
	s.queueCache.Invalidate(ctx)
	return ticket, nil
}

// ApplyOverride layers a manual priority over the computed score. The
// rejection cases leave the ticket untouched.
func (s *TicketService) ApplyOverride(ctx context.Context, id string, input priority.OverrideInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err, id)
	}
	if err := s.engine.ApplyOverride(ticket, input); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{
			"override_priority": input.Priority,
		})
	}
	if err := s.tickets.Replace(ctx, ticket); err != nil {
		return nil, s.mapNotFound(err, id)
	}
	s.recordHistory(ctx, ticket.ID, repository.ChangeOverrideApplied, &ticket.Override.By,
		map[string]any{"score": ticket.PriorityScore},
		map[string]any{"override_priority": ticket.Override.Priority, "reason": ticket.Override.Reason})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventOverrideApplied,
		TicketID: ticket.ID,
		Actor:    ticket.Override.By,
		Payload: events.OverrideAppliedPayload{
			OverridePriority: ticket.Override.Priority,
			ComputedScore:    ticket.PriorityScore,
			Reason:           ticket.Override.Reason,
		},
	})
	s.queueCache.Invalidate(ctx)
	return ticket, nil
}

// RemoveOverride clears a manual override, reverting the effective priority
// to the preserved computed score.
func (s *TicketService) RemoveOverride(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err, id)
	}
	removedBy := ""
	if ticket.Override != nil {
		removedBy = ticket.Override.By
	}
	if err := s.engine.RemoveOverride(ticket); err != nil {
		if errors.Is(err, priority.ErrNoOverride) {
			return nil, apperrors.NewConflict("ticket does not have a manual override", nil)
		}
		return nil, err
	}
	if err := s.tickets.Replace(ctx, ticket); err != nil {
		return nil, s.mapNotFound(err, id)
	}
	s.recordHistory(ctx, ticket.ID, repository.ChangeOverrideRemoved, &removedBy, nil,
		map[string]any{"restored_score": ticket.PriorityScore})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventOverrideRemoved,
		TicketID: ticket.ID,
		Payload:  events.OverrideRemovedPayload{RestoredScore: ticket.PriorityScore},
	})
	s.queueCache.Invalidate(ctx)
	return ticket, nil
}

// Explanation renders the human-readable priority account for a ticket.
func (s *TicketService) Explanation(ctx context.Context, id string) (priority.Explanation, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return priority.Explanation{}, s.mapNotFound(err, id)
	}
	return s.engine.Explain(ticket), nil
}

// SubmitFeedback records an agent's verdict on the computed priority.
func (s *TicketService) SubmitFeedback(ctx context.Context, id string, verdict domain.FeedbackVerdict, by string) (*domain.Ticket, error) {
	switch verdict {
	case domain.FeedbackTooHigh, domain.FeedbackCorrect, domain.FeedbackTooLow:
	default:
		return nil, apperrors.NewValidationError("feedback must be too_high, correct or too_low", nil)
	}
	if strings.TrimSpace(by) == "" {
		return nil, apperrors.NewValidationError("feedback_by required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err, id)
	}
	now := time.Now().UTC()
	ticket.Feedback = verdict
	ticket.FeedbackBy = strings.TrimSpace(by)
	ticket.FeedbackAt = &now
	if err := s.tickets.Replace(ctx, ticket); err != nil {
		return nil, s.mapNotFound(err, id)
	}
	s.queueCache.Invalidate(ctx)
	return ticket, nil
}

// Statistics derives aggregate counts from the full ticket set.
func (s *TicketService) Statistics(ctx context.Context) (priority.Statistics, error) {
	var cached priority.Statistics
	if s.queueCache.GetStatistics(ctx, &cached) {
		return cached, nil
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return priority.Statistics{}, err
	}
	stats := priority.ComputeStatistics(tickets)
	s.queueCache.SetStatistics(ctx, stats)
	return stats, nil
}

// AIPerformance compares computed priorities against agent feedback.
type AIPerformance struct {
	TotalTickets         int                            `json:"total_tickets"`
	TicketsWithFeedback  int                            `json:"tickets_with_feedback"`
	FeedbackDistribution map[domain.FeedbackVerdict]int `json:"feedback_distribution"`
	AccuracyRate         float64                        `json:"accuracy_rate"`
}

// AIPerformanceReport aggregates feedback verdicts across all tickets.
func (s *TicketService) AIPerformanceReport(ctx context.Context) (AIPerformance, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return AIPerformance{}, err
	}
	report := AIPerformance{
		TotalTickets: len(tickets),
		FeedbackDistribution: map[domain.FeedbackVerdict]int{
			domain.FeedbackTooHigh: 0,
			domain.FeedbackCorrect: 0,
			domain.FeedbackTooLow:  0,
		},
	}
	for i := range tickets {
		if tickets[i].Feedback == "" {
			continue
		}
		report.TicketsWithFeedback++
		report.FeedbackDistribution[tickets[i].Feedback]++
	}
	if report.TicketsWithFeedback > 0 {
		report.AccuracyRate = float64(report.FeedbackDistribution[domain.FeedbackCorrect]) / float64(report.TicketsWithFeedback)
	}
	return report, nil
}

// History returns the priority audit trail for a ticket.
func (s *TicketService) History(ctx context.Context, id string) ([]repository.PriorityHistory, error) {
	if s.history == nil {
		return []repository.PriorityHistory{}, nil
	}
	if _, err := s.tickets.GetByID(ctx, id); err != nil {
		return nil, s.mapNotFound(err, id)
	}
	return s.history.ListByTicket(ctx, id)
}

// Reset clears the store and reseeds the demo sample tickets.
func (s *TicketService) Reset(ctx context.Context) (int, error) {
	if err := s.tickets.DeleteAll(ctx); err != nil {
		return 0, err
	}
	s.queueCache.Invalidate(ctx)
	samples := SampleTicketInputs()
	for _, sample := range samples {
		if _, err := s.CreateTicket(ctx, sample); err != nil {
			return 0, err
		}
	}
	return len(samples), nil
}

// score runs the engine over the ticket's current inputs and stores the
// computed layer on the ticket. A not-finite score is never persisted.
func (s *TicketService) score(ticket *domain.Ticket) error {
	result, err := s.engine.Compute(ticket.Signals, ticket.SLAHoursRemaining, ticket.CustomerTier)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	for _, anomaly := range result.Anomalies {
		s.logger.Warn("scoring input anomaly",
			zap.String("ticket_id", ticket.ID),
			zap.String("anomaly", anomaly))
	}
	if result.AnalysisUnavailable {
		s.logger.Info("analysis unavailable, urgency degraded to zero",
			zap.String("ticket_id", ticket.ID))
	}
	ticket.PriorityScore = result.Score
	ticket.PriorityBand = result.Band
	breakdown := result.Breakdown
	ticket.PriorityBreakdown = &breakdown
	return nil
}

func (s *TicketService) mapNotFound(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return err
}

func (s *TicketService) recordHistory(ctx context.Context, ticketID string, changeType repository.PriorityChangeType, changedBy *string, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &repository.PriorityHistory{
		TicketID:   ticketID,
		ChangeType: changeType,
		ChangedBy:  changedBy,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record history", zap.Error(err), zap.String("ticket_id", ticketID))
	}
}

func (s *TicketService) publishPriorityComputed(ctx context.Context, ticket *domain.Ticket) {
	s.publishEvent(ctx, events.Event{
		Type:     events.EventPriorityComputed,
		TicketID: ticket.ID,
		Payload: events.PriorityComputedPayload{
			Score:               ticket.PriorityScore,
			Band:                ticket.PriorityBand,
			AnalysisUnavailable: ticket.Signals.State() != domain.SignalPresent,
		},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketID() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// textPreview truncates on rune boundaries so multi-byte text never yields
// an invalid UTF-8 payload.
func textPreview(body string, max int) string {
	runes := []rune(strings.TrimSpace(body))
	if len(runes) <= max {
		return string(runes)
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
