package priority

import (
	"fmt"
	"strings"

	"github.com/spec-kit/prioritization-service/internal/domain"
)

// urgencyScores maps the ordered urgency levels onto a linear [0.25,1] scale.
var urgencyScores = map[domain.UrgencyLevel]float64{
	domain.UrgencyCritical: 1.0,
	domain.UrgencyHigh:     0.75,
	domain.UrgencyMedium:   0.5,
	domain.UrgencyLow:      0.25,
}

// tierWeights maps customer tiers onto a four-step linear scale.
var tierWeights = map[domain.CustomerTier]float64{
	domain.TierEnterprise: 1.0,
	domain.TierBusiness:   0.67,
	domain.TierStandard:   0.33,
	domain.TierFree:       0.0,
}

// normalized holds the three independent [0,1] inputs to the weighted sum.
type normalized struct {
	EffectiveUrgency    float64
	SLARisk             float64
	TierWeight          float64
	AnalysisUnavailable bool
	Anomalies           []string
}

func (e *Engine) normalize(signals *domain.LLMSignals, slaHoursRemaining float64, tier domain.CustomerTier) normalized {
	var norm normalized

	switch signals.State() {
	case domain.SignalPresent:
		score, ok := urgencyScores[domain.UrgencyLevel(strings.ToLower(string(signals.Urgency)))]
		if !ok {
			score = urgencyScores[domain.UrgencyMedium]
			norm.Anomalies = append(norm.Anomalies,
				fmt.Sprintf("unknown urgency %q, defaulted to medium", signals.Urgency))
		}
		confidence := 1.0
		if signals.Confidence != nil {
			confidence = clamp01(*signals.Confidence)
		}
		norm.EffectiveUrgency = score * confidence
	default:
		// Absent or errored signal degrades to zero urgency; the flag lets
		// callers surface "analysis unavailable" instead of a numeric 0.
		norm.AnalysisUnavailable = true
	}

	norm.SLARisk = clamp01(1 - slaHoursRemaining/e.cfg.ReferenceWindowHours)

	weight, ok := tierWeights[domain.CustomerTier(strings.ToLower(string(tier)))]
	if !ok {
		weight = tierWeights[domain.TierStandard]
		norm.Anomalies = append(norm.Anomalies,
			fmt.Sprintf("unknown customer tier %q, defaulted to standard", tier))
	}
	norm.TierWeight = weight

	return norm
}
