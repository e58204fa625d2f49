package priority_test

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/spec-kit/prioritization-service/internal/config"
	"github.com/spec-kit/prioritization-service/internal/domain"
	"github.com/spec-kit/prioritization-service/internal/priority"
)

func newEngine(t *testing.T) *priority.Engine {
	t.Helper()
	eng := priority.NewEngine(config.PriorityConfig{
		ReferenceWindowHours:   24,
		HighRiskThresholdHours: 4,
		BandP0Threshold:        0.8,
		BandP1Threshold:        0.6,
		BandP2Threshold:        0.4,
	})
	eng.Now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return eng
}

func signalsWith(urgency domain.UrgencyLevel, confidence float64) *domain.LLMSignals {
	return &domain.LLMSignals{
		Summary:    "test",
		Urgency:    urgency,
		Confidence: &confidence,
		Sentiment:  domain.SentimentNeutral,
	}
}

func TestComputeEnterpriseCriticalNearDeadline(t *testing.T) {
	eng := newEngine(t)
	res, err := eng.Compute(signalsWith(domain.UrgencyCritical, 1.0), 1, domain.TierEnterprise)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	wantRisk := 1 - 1.0/24
	if math.Abs(res.Breakdown.SLARisk-wantRisk) > 1e-9 {
		t.Fatalf("sla risk = %v, want %v", res.Breakdown.SLARisk, wantRisk)
	}
	want := 0.4*1.0 + 0.4*wantRisk + 0.2*1.0
	if math.Abs(res.Score-want) > 1e-9 {
		t.Fatalf("score = %v, want %v", res.Score, want)
	}
	if res.Band != domain.BandP0 {
		t.Fatalf("band = %s, want P0", res.Band)
	}
	if res.AnalysisUnavailable {
		t.Fatal("analysis unexpectedly flagged unavailable")
	}
}

func TestComputeFreeTierNoSignalLongSLA(t *testing.T) {
	eng := newEngine(t)
	res, err := eng.Compute(nil, 72, domain.TierFree)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.Score != 0 {
		t.Fatalf("score = %v, want 0", res.Score)
	}
	if res.Band != domain.BandP3 {
		t.Fatalf("band = %s, want P3", res.Band)
	}
	if !res.AnalysisUnavailable {
		t.Fatal("expected analysis unavailable flag")
	}
}

func TestComputeMissingSignalZeroesUrgency(t *testing.T) {
	eng := newEngine(t)
	for name, signals := range map[string]*domain.LLMSignals{
		"nil":     nil,
		"errored": {Error: "upstream timeout"},
		"empty":   {},
	} {
		res, err := eng.Compute(signals, 2, domain.TierEnterprise)
		if err != nil {
			t.Fatalf("%s: compute: %v", name, err)
		}
		if res.Breakdown.EffectiveUrgency != 0 || res.Breakdown.UrgencyContribution != 0 {
			t.Fatalf("%s: urgency=%v contribution=%v, want both 0",
				name, res.Breakdown.EffectiveUrgency, res.Breakdown.UrgencyContribution)
		}
		if !res.AnalysisUnavailable {
			t.Fatalf("%s: expected analysis unavailable flag", name)
		}
	}
}

func TestComputeConfidenceScalesUrgency(t *testing.T) {
	eng := newEngine(t)
	res, err := eng.Compute(signalsWith(domain.UrgencyHigh, 0.5), 24, domain.TierStandard)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if math.Abs(res.Breakdown.EffectiveUrgency-0.375) > 1e-9 {
		t.Fatalf("effective urgency = %v, want 0.375", res.Breakdown.EffectiveUrgency)
	}

	// absent confidence defaults to 1.0
	noConf := &domain.LLMSignals{Urgency: domain.UrgencyHigh}
	res, err = eng.Compute(noConf, 24, domain.TierStandard)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.Breakdown.EffectiveUrgency != 0.75 {
		t.Fatalf("effective urgency = %v, want 0.75", res.Breakdown.EffectiveUrgency)
	}
}

func TestComputeUnknownCategoricalInputs(t *testing.T) {
	eng := newEngine(t)
	res, err := eng.Compute(signalsWith("catastrophic", 1.0), 24, "platinum")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.Breakdown.EffectiveUrgency != 0.5 {
		t.Fatalf("effective urgency = %v, want medium fallback 0.5", res.Breakdown.EffectiveUrgency)
	}
	if res.Breakdown.CustomerTierWeight != 0.33 {
		t.Fatalf("tier weight = %v, want standard fallback 0.33", res.Breakdown.CustomerTierWeight)
	}
	if len(res.Anomalies) != 2 {
		t.Fatalf("anomalies = %v, want 2 entries", res.Anomalies)
	}
}

func TestComputeSLARiskClamping(t *testing.T) {
	eng := newEngine(t)
	cases := []struct {
		hours float64
		want  float64
	}{
		{-3, 1.0},
		{0, 1.0},
		{4, 1 - 4.0/24},
		{24, 0},
		{96, 0},
	}
	for _, tc := range cases {
		res, err := eng.Compute(nil, tc.hours, domain.TierFree)
		if err != nil {
			t.Fatalf("compute(%v): %v", tc.hours, err)
		}
		if math.Abs(res.Breakdown.SLARisk-tc.want) > 1e-9 {
			t.Fatalf("risk(%v hours) = %v, want %v", tc.hours, res.Breakdown.SLARisk, tc.want)
		}
	}
}

func TestComputeScoreBoundedAndContributionsSum(t *testing.T) {
	eng := newEngine(t)
	rng := rand.New(rand.NewSource(1))
	levels := []domain.UrgencyLevel{domain.UrgencyLow, domain.UrgencyMedium, domain.UrgencyHigh, domain.UrgencyCritical}
	tiers := []domain.CustomerTier{domain.TierFree, domain.TierStandard, domain.TierBusiness, domain.TierEnterprise}

	for i := 0; i < 1000; i++ {
		signals := signalsWith(levels[rng.Intn(len(levels))], rng.Float64())
		hours := rng.Float64()*96 - 8
		res, err := eng.Compute(signals, hours, tiers[rng.Intn(len(tiers))])
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		if res.Score < 0 || res.Score > 1 {
			t.Fatalf("score %v out of [0,1]", res.Score)
		}
		b := res.Breakdown
		sum := b.UrgencyContribution + b.SLAContribution + b.TierContribution
		if math.Abs(sum-b.FinalScore) > 1e-9 {
			t.Fatalf("contribution sum %v != final score %v", sum, b.FinalScore)
		}
		if b.FinalScore != res.Score {
			t.Fatalf("breakdown final score %v != result score %v", b.FinalScore, res.Score)
		}
	}
}

func TestBandPartition(t *testing.T) {
	eng := newEngine(t)
	cases := []struct {
		score float64
		want  domain.PriorityBand
	}{
		{0, domain.BandP3},
		{0.399999, domain.BandP3},
		{0.4, domain.BandP2},
		{0.599999, domain.BandP2},
		{0.6, domain.BandP1},
		{0.799999, domain.BandP1},
		{0.8, domain.BandP0},
		{1.0, domain.BandP0},
	}
	for _, tc := range cases {
		if got := eng.Band(tc.score); got != tc.want {
			t.Fatalf("Band(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestBandThresholdsConfigurable(t *testing.T) {
	eng := priority.NewEngine(config.PriorityConfig{
		ReferenceWindowHours: 24,
		BandP0Threshold:      0.9,
		BandP1Threshold:      0.5,
		BandP2Threshold:      0.25,
	})
	if got := eng.Band(0.85); got != domain.BandP1 {
		t.Fatalf("Band(0.85) = %s, want P1 with raised threshold", got)
	}
	if got := eng.Band(0.3); got != domain.BandP2 {
		t.Fatalf("Band(0.3) = %s, want P2 with lowered threshold", got)
	}
}

func TestReferenceWindowConfigurable(t *testing.T) {
	eng := priority.NewEngine(config.PriorityConfig{ReferenceWindowHours: 48})
	res, err := eng.Compute(nil, 24, domain.TierFree)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if math.Abs(res.Breakdown.SLARisk-0.5) > 1e-9 {
		t.Fatalf("risk = %v, want 0.5 with 48h window", res.Breakdown.SLARisk)
	}
}

func TestComputeRejectsNonFiniteInputs(t *testing.T) {
	eng := newEngine(t)
	if _, err := eng.Compute(nil, math.NaN(), domain.TierStandard); err == nil {
		t.Fatal("expected not-finite rejection for NaN SLA hours")
	}
	conf := math.NaN()
	bad := &domain.LLMSignals{Urgency: domain.UrgencyHigh, Confidence: &conf}
	if _, err := eng.Compute(bad, 10, domain.TierStandard); err == nil {
		t.Fatal("expected not-finite rejection for NaN confidence")
	}
}
