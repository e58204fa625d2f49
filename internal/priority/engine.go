// Package priority implements the deterministic scoring engine: it
// normalizes heterogeneous ticket signals, combines them into a bounded
// score with a discrete band, and manages the manual override lifecycle.
package priority

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/spec-kit/prioritization-service/internal/config"
	"github.com/spec-kit/prioritization-service/internal/domain"
)

// Component weights. The split is a design guarantee (AI influence capped at
// 40% regardless of confidence), so these are constants rather than
// configuration. They sum to 1.0, which keeps the final score in [0,1].
const (
	WeightUrgency      = 0.4
	WeightSLA          = 0.4
	WeightCustomerTier = 0.2
)

// ErrScoreNotFinite reports a NaN/Inf final score. This cannot happen for
// boundary-validated inputs; when it does, the result must not be persisted.
var ErrScoreNotFinite = errors.New("priority score is not finite")

// Result is the output of a single scoring pass.
type Result struct {
	Score     float64
	Band      domain.PriorityBand
	Breakdown domain.PriorityBreakdown
	// AnalysisUnavailable is set when the AI signal was absent or errored
	// and the urgency component degraded to zero.
	AnalysisUnavailable bool
	// Anomalies lists non-fatal input fallbacks (unknown tier or urgency
	// strings) for the caller to log.
	Anomalies []string
}

// Engine computes priority scores. It holds no mutable state and performs no
// I/O; every method is safe for concurrent use across tickets.
type Engine struct {
	cfg config.PriorityConfig

	// Now is the clock used for breakdown and override timestamps.
	// Overridable in tests.
	Now func() time.Time
}

// NewEngine constructs an engine, filling in defaults for unset tunables.
func NewEngine(cfg config.PriorityConfig) *Engine {
	if cfg.ReferenceWindowHours <= 0 {
		cfg.ReferenceWindowHours = 24
	}
	if cfg.HighRiskThresholdHours <= 0 {
		cfg.HighRiskThresholdHours = 4
	}
	if cfg.BandP0Threshold <= 0 {
		cfg.BandP0Threshold = 0.8
	}
	if cfg.BandP1Threshold <= 0 {
		cfg.BandP1Threshold = 0.6
	}
	if cfg.BandP2Threshold <= 0 {
		cfg.BandP2Threshold = 0.4
	}
	return &Engine{cfg: cfg, Now: time.Now}
}

// Compute produces the score, band and breakdown for one ticket's inputs.
// Malformed optional inputs degrade to documented defaults and never fail
// the computation; the only error is the not-finite invariant violation.
func (e *Engine) Compute(signals *domain.LLMSignals, slaHoursRemaining float64, tier domain.CustomerTier) (Result, error) {
	norm := e.normalize(signals, slaHoursRemaining, tier)

	urgencyContribution := norm.EffectiveUrgency * WeightUrgency
	slaContribution := norm.SLARisk * WeightSLA
	tierContribution := norm.TierWeight * WeightCustomerTier
	finalScore := urgencyContribution + slaContribution + tierContribution

	if math.IsNaN(finalScore) || math.IsInf(finalScore, 0) {
		return Result{}, fmt.Errorf("%w: urgency=%v sla=%v tier=%v",
			ErrScoreNotFinite, norm.EffectiveUrgency, norm.SLARisk, norm.TierWeight)
	}
	finalScore = clamp01(finalScore)

	return Result{
		Score: finalScore,
		Band:  e.Band(finalScore),
		Breakdown: domain.PriorityBreakdown{
			EffectiveUrgency:    norm.EffectiveUrgency,
			SLARisk:             norm.SLARisk,
			CustomerTierWeight:  norm.TierWeight,
			FinalScore:          finalScore,
			UrgencyContribution: urgencyContribution,
			SLAContribution:     slaContribution,
			TierContribution:    tierContribution,
			CalculatedAt:        e.Now().UTC(),
		},
		AnalysisUnavailable: norm.AnalysisUnavailable,
		Anomalies:           norm.Anomalies,
	}, nil
}

// Band maps a score onto its priority band. Lower bounds are inclusive, so
// the bands partition [0,1] without overlap.
func (e *Engine) Band(score float64) domain.PriorityBand {
	switch {
	case score >= e.cfg.BandP0Threshold:
		return domain.BandP0
	case score >= e.cfg.BandP1Threshold:
		return domain.BandP1
	case score >= e.cfg.BandP2Threshold:
		return domain.BandP2
	default:
		return domain.BandP3
	}
}

// HighSLARisk reports whether the remaining time is under the display
// cutoff. Used for explanation labels, not for scoring.
func (e *Engine) HighSLARisk(slaHoursRemaining float64) bool {
	return slaHoursRemaining < e.cfg.HighRiskThresholdHours
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
