package dto

import (
	"time"

	"github.com/spec-kit/prioritization-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Text              string              `json:"text"`
	CustomerTier      domain.CustomerTier `json:"customer_tier"`
	CustomerName      string              `json:"customer_name"`
	CustomerEmail     string              `json:"customer_email"`
	CustomerAccountID string              `json:"customer_account_id"`
	SLAHoursRemaining float64             `json:"sla_hours_remaining"`
}

// UpdateTicketRequest payload for PATCH.
type UpdateTicketRequest struct {
	Status            *domain.TicketStatus `json:"status"`
	SLAHoursRemaining *float64             `json:"sla_hours_remaining"`
}

// OverrideRequest payload.
type OverrideRequest struct {
	OverridePriority float64 `json:"override_priority"`
	OverrideReason   string  `json:"override_reason"`
	OverrideBy       string  `json:"override_by"`
}

// FeedbackRequest payload.
type FeedbackRequest struct {
	Feedback   domain.FeedbackVerdict `json:"feedback"`
	FeedbackBy string                 `json:"feedback_by"`
}

// LLMSignalsResponse mirrors the analyzer output attached to a ticket.
type LLMSignalsResponse struct {
	Summary            string              `json:"summary,omitempty"`
	Urgency            domain.UrgencyLevel `json:"urgency,omitempty"`
	Confidence         *float64            `json:"confidence,omitempty"`
	Sentiment          domain.Sentiment    `json:"sentiment,omitempty"`
	SentimentIntensity float64             `json:"sentiment_intensity,omitempty"`
	GeneratedAt        time.Time           `json:"generated_at"`
	Error              string              `json:"error,omitempty"`
}

// TicketResponse is the persisted/transmitted representation of a ticket.
type TicketResponse struct {
	TicketID          string                    `json:"ticket_id"`
	Text              string                    `json:"text"`
	CustomerTier      domain.CustomerTier       `json:"customer_tier"`
	CustomerName      string                    `json:"customer_name,omitempty"`
	CustomerEmail     string                    `json:"customer_email,omitempty"`
	CustomerAccountID string                    `json:"customer_account_id,omitempty"`
	SLAHoursRemaining float64                   `json:"sla_hours_remaining"`
	Status            domain.TicketStatus       `json:"status"`
	PriorityScore     float64                   `json:"priority_score"`
	PriorityBand      domain.PriorityBand       `json:"priority_band"`
	PriorityBreakdown *domain.PriorityBreakdown `json:"priority_breakdown,omitempty"`
	LLMSignals        *LLMSignalsResponse       `json:"llm_signals,omitempty"`
	ManualOverride    bool                      `json:"manual_override"`
	OverridePriority  *float64                  `json:"override_priority,omitempty"`
	OverrideReason    string                    `json:"override_reason,omitempty"`
	OverrideBy        string                    `json:"override_by,omitempty"`
	OverrideAt        *time.Time                `json:"override_at,omitempty"`
	EffectivePriority float64                   `json:"effective_priority"`
	Feedback          domain.FeedbackVerdict    `json:"feedback,omitempty"`
	FeedbackBy        string                    `json:"feedback_by,omitempty"`
	FeedbackAt        *time.Time                `json:"feedback_at,omitempty"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

// HistoryEntryResponse is one priority audit trail entry.
type HistoryEntryResponse struct {
	ID         string         `json:"id"`
	ChangeType string         `json:"change_type"`
	ChangedBy  *string        `json:"changed_by,omitempty"`
	OldValue   map[string]any `json:"old_value,omitempty"`
	NewValue   map[string]any `json:"new_value,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
