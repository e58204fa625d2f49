package events

import (
	"time"

	"github.com/spec-kit/prioritization-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventPriorityComputed    EventType = "priority_computed"
	EventOverrideApplied     EventType = "override_applied"
	EventOverrideRemoved     EventType = "override_removed"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerTier      domain.CustomerTier `json:"customer_tier"`
	SLAHoursRemaining float64             `json:"sla_hours_remaining"`
	TextPreview       string              `json:"text_preview"`
}

// PriorityComputedPayload payload.
type PriorityComputedPayload struct {
	Score               float64             `json:"score"`
	Band                domain.PriorityBand `json:"band"`
	AnalysisUnavailable bool                `json:"analysis_unavailable"`
}

// OverrideAppliedPayload payload.
type OverrideAppliedPayload struct {
	OverridePriority float64 `json:"override_priority"`
	ComputedScore    float64 `json:"computed_score"`
	Reason           string  `json:"reason"`
}

// OverrideRemovedPayload payload.
type OverrideRemovedPayload struct {
	RestoredScore float64 `json:"restored_score"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}
