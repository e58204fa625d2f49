package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/prioritization-service/internal/api/dto"
	"github.com/spec-kit/prioritization-service/internal/domain"
	"github.com/spec-kit/prioritization-service/internal/priority"
	"github.com/spec-kit/prioritization-service/internal/repository"
	"github.com/spec-kit/prioritization-service/internal/service"
	apperrors "github.com/spec-kit/prioritization-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Text:              req.Text,
		CustomerTier:      req.CustomerTier,
		CustomerName:      req.CustomerName,
		CustomerEmail:     req.CustomerEmail,
		CustomerAccountID: req.CustomerAccountID,
		SLAHoursRemaining: req.SLAHoursRemaining,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := service.ListFilter{SortByPriority: c.QueryBool("sort_by_priority", true)}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.TicketStatus(statusStr)
		filter.Status = &status
	}
	tickets, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// Queue GET /api/tickets/queue.
func (h *TicketsHandler) Queue(c *fiber.Ctx) error {
	queue, err := h.service.Queue(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(queue)})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateTicket PATCH /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateTicket(c.UserContext(), c.Params("id"), service.TicketUpdateInput{
		Status:            req.Status,
		SLAHoursRemaining: req.SLAHoursRemaining,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Reprioritize POST /api/tickets/:id/reprioritize.
func (h *TicketsHandler) Reprioritize(c *fiber.Ctx) error {
	ticket, err := h.service.Reprioritize(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ApplyOverride POST /api/tickets/:id/override.
func (h *TicketsHandler) ApplyOverride(c *fiber.Ctx) error {
	var req dto.OverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.ApplyOverride(c.UserContext(), c.Params("id"), priority.OverrideInput{
		Priority: req.OverridePriority,
		Reason:   req.OverrideReason,
		By:       req.OverrideBy,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// RemoveOverride DELETE /api/tickets/:id/override.
func (h *TicketsHandler) RemoveOverride(c *fiber.Ctx) error {
	ticket, err := h.service.RemoveOverride(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Explanation GET /api/tickets/:id/explanation.
func (h *TicketsHandler) Explanation(c *fiber.Ctx) error {
	explanation, err := h.service.Explanation(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": explanation})
}

// SubmitFeedback POST /api/tickets/:id/feedback.
func (h *TicketsHandler) SubmitFeedback(c *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.SubmitFeedback(c.UserContext(), c.Params("id"), req.Feedback, req.FeedbackBy)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// History GET /api/tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	entries, err := h.service.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, historyResponse(entry))
	}
	return c.JSON(fiber.Map{"data": items})
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return items
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		TicketID:          ticket.ID,
		Text:              ticket.Text,
		CustomerTier:      ticket.CustomerTier,
		CustomerName:      ticket.CustomerName,
		CustomerEmail:     ticket.CustomerEmail,
		CustomerAccountID: ticket.CustomerAccountID,
		SLAHoursRemaining: ticket.SLAHoursRemaining,
		Status:            ticket.Status,
		PriorityScore:     ticket.PriorityScore,
		PriorityBand:      ticket.PriorityBand,
		PriorityBreakdown: ticket.PriorityBreakdown,
		ManualOverride:    ticket.ManualOverride(),
		EffectivePriority: ticket.EffectivePriority(),
		Feedback:          ticket.Feedback,
		FeedbackBy:        ticket.FeedbackBy,
		FeedbackAt:        ticket.FeedbackAt,
		CreatedAt:         ticket.CreatedAt,
		UpdatedAt:         ticket.UpdatedAt,
	}
	if ticket.Signals != nil {
		resp.LLMSignals = &dto.LLMSignalsResponse{
			Summary:            ticket.Signals.Summary,
			Urgency:            ticket.Signals.Urgency,
			Confidence:         ticket.Signals.Confidence,
			Sentiment:          ticket.Signals.Sentiment,
			SentimentIntensity: ticket.Signals.SentimentIntensity,
			GeneratedAt:        ticket.Signals.GeneratedAt,
			Error:              ticket.Signals.Error,
		}
	}
	if ticket.Override != nil {
		overridePriority := ticket.Override.Priority
		overrideAt := ticket.Override.At
		resp.OverridePriority = &overridePriority
		resp.OverrideReason = ticket.Override.Reason
		resp.OverrideBy = ticket.Override.By
		resp.OverrideAt = &overrideAt
	}
	return resp
}

func historyResponse(entry repository.PriorityHistory) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		ID:         entry.ID,
		ChangeType: string(entry.ChangeType),
		ChangedBy:  entry.ChangedBy,
		OldValue:   entry.OldValue,
		NewValue:   entry.NewValue,
		CreatedAt:  entry.CreatedAt,
	}
}
