package domain

import "time"

// UrgencyLevel is the ordered urgency assessment produced by the analyzer.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

// Sentiment is the customer's emotional tone. Tracked for quality metrics
// only; it never enters the priority formula.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// LLMSignals is the analyzer output attached to a ticket. A non-empty Error
// marks the whole record as unusable for scoring.
type LLMSignals struct {
	Summary            string       `json:"summary,omitempty"`
	Urgency            UrgencyLevel `json:"urgency,omitempty"`
	Confidence         *float64     `json:"confidence,omitempty"`
	Sentiment          Sentiment    `json:"sentiment,omitempty"`
	SentimentIntensity float64      `json:"sentiment_intensity,omitempty"`
	GeneratedAt        time.Time    `json:"generated_at"`
	Error              string       `json:"error,omitempty"`
}

// SignalState classifies a signal record for the normalizer, so callers
// match on one tag instead of probing nil pointers and error markers.
type SignalState int

const (
	SignalUnavailable SignalState = iota
	SignalErrored
	SignalPresent
)

// State returns the variant this record represents.
func (s *LLMSignals) State() SignalState {
	switch {
	case s == nil:
		return SignalUnavailable
	case s.Error != "":
		return SignalErrored
	case s.Urgency == "":
		return SignalUnavailable
	default:
		return SignalPresent
	}
}
