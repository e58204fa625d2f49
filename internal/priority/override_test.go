package priority_test

import (
	"errors"
	"math"
	"testing"

	"github.com/spec-kit/prioritization-service/internal/domain"
	"github.com/spec-kit/prioritization-service/internal/priority"
)

func scoredTicket(t *testing.T, eng *priority.Engine) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		ID:                "TKT-TEST0001",
		Text:              "dashboard is slow",
		CustomerTier:      domain.TierBusiness,
		SLAHoursRemaining: 20,
		Status:            domain.TicketStatusOpen,
		Signals:           signalsWith(domain.UrgencyLow, 0.9),
	}
	res, err := eng.Compute(ticket.Signals, ticket.SLAHoursRemaining, ticket.CustomerTier)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	ticket.PriorityScore = res.Score
	ticket.PriorityBand = res.Band
	breakdown := res.Breakdown
	ticket.PriorityBreakdown = &breakdown
	return ticket
}

func TestApplyOverrideReplacesEffectivePriority(t *testing.T) {
	eng := newEngine(t)
	ticket := scoredTicket(t, eng)
	computed := ticket.PriorityScore
	bandBefore := ticket.PriorityBand

	err := eng.ApplyOverride(ticket, priority.OverrideInput{Priority: 0.9, Reason: "VIP escalation", By: "agent-7"})
	if err != nil {
		t.Fatalf("apply override: %v", err)
	}
	if !ticket.ManualOverride() {
		t.Fatal("expected manual override active")
	}
	if got := ticket.EffectivePriority(); got != 0.9 {
		t.Fatalf("effective priority = %v, want 0.9", got)
	}
	if ticket.PriorityScore != computed {
		t.Fatalf("computed score changed: %v -> %v", computed, ticket.PriorityScore)
	}
	if ticket.PriorityBand != bandBefore {
		t.Fatalf("band changed on override: %s -> %s", bandBefore, ticket.PriorityBand)
	}
	if ticket.Override.At.IsZero() {
		t.Fatal("override timestamp not set")
	}
}

func TestOverrideRoundTripRestoresComputedScore(t *testing.T) {
	eng := newEngine(t)
	ticket := scoredTicket(t, eng)
	computed := ticket.PriorityScore
	breakdownBefore := *ticket.PriorityBreakdown

	if err := eng.ApplyOverride(ticket, priority.OverrideInput{Priority: 0.95, Reason: "exec request", By: "agent-1"}); err != nil {
		t.Fatalf("apply override: %v", err)
	}
	if err := eng.RemoveOverride(ticket); err != nil {
		t.Fatalf("remove override: %v", err)
	}
	if ticket.ManualOverride() {
		t.Fatal("override still active after removal")
	}
	if got := ticket.EffectivePriority(); got != computed {
		t.Fatalf("effective priority = %v, want computed %v", got, computed)
	}
	if *ticket.PriorityBreakdown != breakdownBefore {
		t.Fatalf("breakdown mutated by override round trip:\nbefore %+v\nafter  %+v",
			breakdownBefore, *ticket.PriorityBreakdown)
	}
}

func TestApplyOverrideRejections(t *testing.T) {
	eng := newEngine(t)
	cases := []struct {
		name  string
		input priority.OverrideInput
		want  error
	}{
		{"negative priority", priority.OverrideInput{Priority: -0.1, Reason: "r", By: "a"}, priority.ErrOverrideOutOfRange},
		{"priority above one", priority.OverrideInput{Priority: 1.5, Reason: "r", By: "a"}, priority.ErrOverrideOutOfRange},
		{"not a number", priority.OverrideInput{Priority: math.NaN(), Reason: "fat-fingered value", By: "agent-9"}, priority.ErrOverrideOutOfRange},
		{"empty reason", priority.OverrideInput{Priority: 0.5, Reason: "  ", By: "a"}, priority.ErrOverrideEmptyReason},
		{"empty agent", priority.OverrideInput{Priority: 0.5, Reason: "r", By: ""}, priority.ErrOverrideEmptyAgent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ticket := scoredTicket(t, eng)
			before := *ticket
			err := eng.ApplyOverride(ticket, tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if ticket.ManualOverride() {
				t.Fatal("override applied despite rejection")
			}
			if ticket.PriorityScore != before.PriorityScore || ticket.UpdatedAt != before.UpdatedAt {
				t.Fatal("ticket mutated by rejected override")
			}
		})
	}
}

func TestRemoveOverrideWithoutOverride(t *testing.T) {
	eng := newEngine(t)
	ticket := scoredTicket(t, eng)
	if err := eng.RemoveOverride(ticket); !errors.Is(err, priority.ErrNoOverride) {
		t.Fatalf("err = %v, want ErrNoOverride", err)
	}
}
