package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
)

// CustomerTier enumerates contractual tiers, highest first.
type CustomerTier string

const (
	TierEnterprise CustomerTier = "enterprise"
	TierBusiness   CustomerTier = "business"
	TierStandard   CustomerTier = "standard"
	TierFree       CustomerTier = "free"
)

// PriorityBand is the discrete severity bucket derived from the computed
// score. P0 is the most severe.
type PriorityBand string

const (
	BandP0 PriorityBand = "P0"
	BandP1 PriorityBand = "P1"
	BandP2 PriorityBand = "P2"
	BandP3 PriorityBand = "P3"
)

// FeedbackVerdict is an agent's judgement of the computed priority.
type FeedbackVerdict string

const (
	FeedbackTooHigh FeedbackVerdict = "too_high"
	FeedbackCorrect FeedbackVerdict = "correct"
	FeedbackTooLow  FeedbackVerdict = "too_low"
)

// PriorityBreakdown records every value that influenced a computed score.
// It is always derived from the urgency/SLA/tier formula; override
// operations never touch it.
type PriorityBreakdown struct {
	EffectiveUrgency    float64   `json:"effective_urgency"`
	SLARisk             float64   `json:"sla_risk"`
	CustomerTierWeight  float64   `json:"customer_tier_weight"`
	FinalScore          float64   `json:"final_score"`
	UrgencyContribution float64   `json:"urgency_contribution"`
	SLAContribution     float64   `json:"sla_contribution"`
	TierContribution    float64   `json:"tier_contribution"`
	CalculatedAt        time.Time `json:"calculated_at"`
}

// Override captures a manual priority decision layered on top of the
// computed score. The four fields are set and cleared together.
type Override struct {
	Priority float64   `json:"priority"`
	Reason   string    `json:"reason"`
	By       string    `json:"by"`
	At       time.Time `json:"at"`
}

// Ticket is the aggregate for support requests awaiting prioritization.
type Ticket struct {
	ID                string
	Text              string
	CustomerTier      CustomerTier
	CustomerName      string
	CustomerEmail     string
	CustomerAccountID string
	SLAHoursRemaining float64
	Status            TicketStatus

	Signals *LLMSignals

	PriorityScore     float64
	PriorityBand      PriorityBand
	PriorityBreakdown *PriorityBreakdown

	Override *Override

	Feedback   FeedbackVerdict
	FeedbackBy string
	FeedbackAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ManualOverride reports whether a manual override is active.
func (t *Ticket) ManualOverride() bool {
	return t.Override != nil
}

// EffectivePriority projects the priority used for queue ordering: the
// override value when one is active, otherwise the computed score.
func (t *Ticket) EffectivePriority() float64 {
	if t.Override != nil {
		return t.Override.Priority
	}
	return t.PriorityScore
}
