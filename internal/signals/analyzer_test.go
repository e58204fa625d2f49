package signals_test

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/prioritization-service/internal/domain"
	"github.com/spec-kit/prioritization-service/internal/signals"
)

func newAnalyzer() *signals.KeywordAnalyzer {
	a := signals.NewKeywordAnalyzer()
	a.Now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestAnalyzeUrgency(t *testing.T) {
	a := newAnalyzer()
	cases := []struct {
		name  string
		text  string
		hours float64
		want  domain.UrgencyLevel
	}{
		{"production outage", "URGENT: Production system is down! All customers affected.", 24, domain.UrgencyCritical},
		{"tight sla", "Please review my invoice when you get a chance.", 1, domain.UrgencyHigh},
		{"degradation", "Dashboard loading is very slow since the update.", 24, domain.UrgencyHigh},
		{"question", "Quick question - how to export data to CSV?", 48, domain.UrgencyLow},
		{"neutral", "The report totals changed after the migration.", 24, domain.UrgencyMedium},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := a.Analyze(context.Background(), tc.text, domain.TierStandard, tc.hours)
			if got.Urgency != tc.want {
				t.Fatalf("urgency = %s, want %s", got.Urgency, tc.want)
			}
			if got.State() != domain.SignalPresent {
				t.Fatalf("state = %v, want present", got.State())
			}
			if got.Confidence == nil {
				t.Fatal("confidence missing")
			}
		})
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	a := newAnalyzer()
	positive := a.Analyze(context.Background(), "Love the new UI, great work, thank you!", domain.TierBusiness, 72)
	if positive.Sentiment != domain.SentimentPositive {
		t.Fatalf("sentiment = %s, want positive", positive.Sentiment)
	}
	if positive.SentimentIntensity <= 0.5 {
		t.Fatalf("intensity = %v, want > 0.5", positive.SentimentIntensity)
	}

	negative := a.Analyze(context.Background(), "This is unacceptable, I am frustrated and angry.", domain.TierBusiness, 24)
	if negative.Sentiment != domain.SentimentNegative {
		t.Fatalf("sentiment = %s, want negative", negative.Sentiment)
	}

	neutral := a.Analyze(context.Background(), "The export finished at noon.", domain.TierBusiness, 24)
	if neutral.Sentiment != domain.SentimentNeutral || neutral.SentimentIntensity != 0.5 {
		t.Fatalf("sentiment = %s/%v, want neutral/0.5", neutral.Sentiment, neutral.SentimentIntensity)
	}
}

func TestAnalyzeSummaryTruncation(t *testing.T) {
	a := newAnalyzer()
	long := "word word word word word word word word word word word word word word word word word word word word word and more"
	got := a.Analyze(context.Background(), long, domain.TierFree, 24)
	if len(got.Summary) > 100 {
		t.Fatalf("summary too long: %d chars", len(got.Summary))
	}

	short := a.Analyze(context.Background(), "Login fails. After password reset.", domain.TierFree, 24)
	if short.Summary != "Login fails" {
		t.Fatalf("summary = %q, want first sentence", short.Summary)
	}
}

func TestAnalyzeConfidenceBumpsForClearCritical(t *testing.T) {
	a := newAnalyzer()
	vague := a.Analyze(context.Background(), "Something seems off.", domain.TierStandard, 24)
	clear := a.Analyze(context.Background(), "Production outage, system down, critical for all users right now.", domain.TierStandard, 24)
	if *clear.Confidence <= *vague.Confidence {
		t.Fatalf("clear confidence %v not above vague %v", *clear.Confidence, *vague.Confidence)
	}
}
