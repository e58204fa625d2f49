// Package signals produces the AI signal attached to tickets at creation.
package signals

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/spec-kit/prioritization-service/internal/domain"
)

// Analyzer generates urgency/sentiment signals for a ticket. Implementations
// must not fail the ticket flow: producer errors are reported inside the
// returned record's Error field.
type Analyzer interface {
	Analyze(ctx context.Context, text string, tier domain.CustomerTier, slaHoursRemaining float64) *domain.LLMSignals
}

// KeywordAnalyzer is a deterministic keyword-heuristic analyzer. It stands
// in for an LLM producer behind the same output contract and is the default
// so the service runs without an upstream model.
type KeywordAnalyzer struct {
	// Now is the clock for GeneratedAt stamps. Overridable in tests.
	Now func() time.Time
}

// NewKeywordAnalyzer constructs the analyzer.
func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{Now: time.Now}
}

var criticalKeywords = []string{
	"down", "outage", "cannot access", "blocking", "production",
	"emergency", "urgent", "critical", "all users", "system down",
	"data loss", "security breach",
}

var highKeywords = []string{
	"slow", "error", "broken", "not working", "bug", "issue",
	"affecting multiple", "team blocked",
}

var lowKeywords = []string{
	"question", "how to", "feature request", "love", "great",
	"thank you", "feedback", "suggestion",
}

var positiveKeywords = []string{
	"thank", "great", "love", "excellent", "perfect",
	"wonderful", "appreciate", "happy",
}

var negativeKeywords = []string{
	"frustrated", "angry", "terrible", "awful", "worst",
	"unacceptable", "disappointed", "horrible", "cannot",
}

// Analyze derives signals from the ticket text and SLA pressure.
func (a *KeywordAnalyzer) Analyze(_ context.Context, text string, _ domain.CustomerTier, slaHoursRemaining float64) *domain.LLMSignals {
	lower := strings.ToLower(text)

	urgency := determineUrgency(lower, slaHoursRemaining)
	sentiment, intensity := determineSentiment(lower)
	confidence := determineConfidence(lower, urgency)

	return &domain.LLMSignals{
		Summary:            summarize(text),
		Urgency:            urgency,
		Confidence:         &confidence,
		Sentiment:          sentiment,
		SentimentIntensity: intensity,
		GeneratedAt:        a.Now().UTC(),
	}
}

func determineUrgency(text string, slaHoursRemaining float64) domain.UrgencyLevel {
	switch {
	case containsAny(text, criticalKeywords):
		return domain.UrgencyCritical
	case slaHoursRemaining < 2:
		return domain.UrgencyHigh
	case containsAny(text, highKeywords):
		return domain.UrgencyHigh
	case containsAny(text, lowKeywords):
		return domain.UrgencyLow
	default:
		return domain.UrgencyMedium
	}
}

func determineSentiment(text string) (domain.Sentiment, float64) {
	positive := countMatches(text, positiveKeywords)
	negative := countMatches(text, negativeKeywords)
	switch {
	case positive > negative:
		return domain.SentimentPositive, math.Min(0.5+float64(positive)*0.15, 1.0)
	case negative > positive:
		return domain.SentimentNegative, math.Min(0.5+float64(negative)*0.15, 1.0)
	default:
		return domain.SentimentNeutral, 0.5
	}
}

func determineConfidence(text string, urgency domain.UrgencyLevel) float64 {
	words := len(strings.Fields(text))
	confidence := 0.6
	switch {
	case words > 50:
		confidence = 0.8
	case words > 20:
		confidence = 0.7
	}
	if urgency == domain.UrgencyCritical && containsAny(text, []string{"down", "outage", "critical"}) {
		confidence = math.Min(confidence+0.15, 0.95)
	}
	return confidence
}

func summarize(text string) string {
	first := text
	if idx := strings.Index(text, "."); idx >= 0 {
		first = text[:idx]
	}
	first = strings.TrimSpace(first)
	if len(first) > 100 {
		return first[:97] + "..."
	}
	return first
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func countMatches(text string, keywords []string) int {
	count := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			count++
		}
	}
	return count
}
