package priority

import (
	"fmt"
	"time"

	"github.com/spec-kit/prioritization-service/internal/domain"
)

// ExplanationType tags the shape of an explanation.
type ExplanationType string

const (
	ExplanationCalculated    ExplanationType = "calculated"
	ExplanationOverride      ExplanationType = "manual_override"
	ExplanationNotCalculated ExplanationType = "not_calculated"
)

// ExplanationComponent describes one input's share of the score.
type ExplanationComponent struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Details      string  `json:"details"`
}

// SentimentNote surfaces analyzer sentiment for display. Sentiment never
// enters the priority formula.
type SentimentNote struct {
	Type      domain.Sentiment `json:"type"`
	Intensity float64          `json:"intensity"`
	Note      string           `json:"note"`
}

// Explanation is the human-readable account of a ticket's priority.
type Explanation struct {
	Type         ExplanationType        `json:"type"`
	Message      string                 `json:"message,omitempty"`
	FinalScore   float64                `json:"final_score,omitempty"`
	PriorityBand domain.PriorityBand    `json:"priority_band,omitempty"`
	Components   []ExplanationComponent `json:"components,omitempty"`
	Sentiment    *SentimentNote         `json:"sentiment,omitempty"`

	OverridePriority float64    `json:"override_priority,omitempty"`
	OverrideReason   string     `json:"override_reason,omitempty"`
	OverriddenBy     string     `json:"overridden_by,omitempty"`
	OverriddenAt     *time.Time `json:"overridden_at,omitempty"`
	OriginalScore    float64    `json:"original_score,omitempty"`
}

// Explain renders the priority of a ticket for agents. An active override is
// reported as a layer on top of the preserved computed score.
func (e *Engine) Explain(t *domain.Ticket) Explanation {
	if t.Override != nil {
		at := t.Override.At
		return Explanation{
			Type:             ExplanationOverride,
			OverridePriority: t.Override.Priority,
			OverrideReason:   t.Override.Reason,
			OverriddenBy:     t.Override.By,
			OverriddenAt:     &at,
			OriginalScore:    t.PriorityScore,
			Message:          fmt.Sprintf("Priority manually set to %.2f by %s", t.Override.Priority, t.Override.By),
		}
	}

	if t.PriorityBreakdown == nil {
		return Explanation{
			Type:    ExplanationNotCalculated,
			Message: "Priority not yet calculated",
		}
	}

	breakdown := t.PriorityBreakdown
	explanation := Explanation{
		Type:         ExplanationCalculated,
		FinalScore:   breakdown.FinalScore,
		PriorityBand: t.PriorityBand,
	}

	urgencyDetails := "analysis unavailable"
	if t.Signals.State() == domain.SignalPresent {
		confidence := 1.0
		if t.Signals.Confidence != nil {
			confidence = *t.Signals.Confidence
		}
		urgencyDetails = fmt.Sprintf("AI assessed as %q with %.0f%% confidence", t.Signals.Urgency, confidence*100)
	}
	explanation.Components = append(explanation.Components, ExplanationComponent{
		Name:         "AI Urgency Analysis",
		Value:        breakdown.EffectiveUrgency,
		Weight:       WeightUrgency,
		Contribution: breakdown.UrgencyContribution,
		Details:      urgencyDetails,
	})

	slaStatus := "OK"
	if e.HighSLARisk(t.SLAHoursRemaining) {
		slaStatus = "CRITICAL"
	}
	explanation.Components = append(explanation.Components, ExplanationComponent{
		Name:         "SLA Risk",
		Value:        breakdown.SLARisk,
		Weight:       WeightSLA,
		Contribution: breakdown.SLAContribution,
		Details:      fmt.Sprintf("%.1f hours remaining - %s", t.SLAHoursRemaining, slaStatus),
	})

	explanation.Components = append(explanation.Components, ExplanationComponent{
		Name:         "Customer Tier",
		Value:        breakdown.CustomerTierWeight,
		Weight:       WeightCustomerTier,
		Contribution: breakdown.TierContribution,
		Details:      fmt.Sprintf("%s tier customer", t.CustomerTier),
	})

	if t.Signals.State() == domain.SignalPresent && t.Signals.Sentiment != "" {
		explanation.Sentiment = &SentimentNote{
			Type:      t.Signals.Sentiment,
			Intensity: t.Signals.SentimentIntensity,
			Note:      "Sentiment tracked for quality metrics, not used in priority calculation",
		}
	}

	return explanation
}
