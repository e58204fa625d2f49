package priority_test

import (
	"testing"
	"time"

	"github.com/spec-kit/prioritization-service/internal/domain"
	"github.com/spec-kit/prioritization-service/internal/priority"
)

func queueTicket(id string, score float64, createdAt time.Time) domain.Ticket {
	return domain.Ticket{
		ID:            id,
		Status:        domain.TicketStatusOpen,
		PriorityScore: score,
		PriorityBand:  domain.BandP2,
		CustomerTier:  domain.TierStandard,
		CreatedAt:     createdAt,
	}
}

func TestSortQueueDescendingByEffectivePriority(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		queueTicket("low", 0.2, base),
		queueTicket("high", 0.9, base.Add(time.Hour)),
		queueTicket("mid", 0.5, base.Add(2*time.Hour)),
	}
	queue := priority.SortQueue(tickets)
	want := []string{"high", "mid", "low"}
	for i, id := range want {
		if queue[i].ID != id {
			t.Fatalf("queue[%d] = %s, want %s", i, queue[i].ID, id)
		}
	}
	// input order untouched
	if tickets[0].ID != "low" {
		t.Fatal("SortQueue mutated its input")
	}
}

func TestSortQueueFIFOAmongEqualPriorities(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		queueTicket("third", 0.5, base.Add(2*time.Hour)),
		queueTicket("first", 0.5, base),
		queueTicket("second", 0.5, base.Add(time.Hour)),
	}
	queue := priority.SortQueue(tickets)
	want := []string{"first", "second", "third"}
	for i, id := range want {
		if queue[i].ID != id {
			t.Fatalf("queue[%d] = %s, want %s", i, queue[i].ID, id)
		}
	}
}

func TestSortQueueOverrideMovesOnlyThatTicket(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		queueTicket("a", 0.8, base),
		queueTicket("b", 0.6, base.Add(time.Hour)),
		queueTicket("c", 0.3, base.Add(2*time.Hour)),
		queueTicket("d", 0.1, base.Add(3*time.Hour)),
	}
	// computed score 0.3, overridden to the top
	tickets[2].Override = &domain.Override{Priority: 0.9, Reason: "vip", By: "agent", At: base}

	queue := priority.SortQueue(tickets)
	want := []string{"c", "a", "b", "d"}
	for i, id := range want {
		if queue[i].ID != id {
			t.Fatalf("queue[%d] = %s, want %s", i, queue[i].ID, id)
		}
	}
	if queue[0].PriorityBand != domain.BandP2 {
		t.Fatalf("override changed band: %s", queue[0].PriorityBand)
	}
}

func TestComputeStatistics(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	open1 := queueTicket("o1", 0.85, base)
	open1.PriorityBand = domain.BandP0
	open1.CustomerTier = domain.TierEnterprise
	open2 := queueTicket("o2", 0.2, base)
	open2.PriorityBand = domain.BandP3
	open2.Override = &domain.Override{Priority: 0.7, Reason: "r", By: "a", At: base}
	progressed := queueTicket("p1", 0.5, base)
	progressed.Status = domain.TicketStatusInProgress
	resolved := queueTicket("r1", 0.5, base)
	resolved.Status = domain.TicketStatusResolved

	stats := priority.ComputeStatistics([]domain.Ticket{open1, open2, progressed, resolved})

	if stats.TotalTickets != 4 || stats.OpenTickets != 2 || stats.InProgress != 1 || stats.Resolved != 1 {
		t.Fatalf("status counts wrong: %+v", stats)
	}
	if stats.PriorityDistribution[domain.BandP0] != 1 || stats.PriorityDistribution[domain.BandP3] != 1 {
		t.Fatalf("band distribution wrong: %v", stats.PriorityDistribution)
	}
	if stats.OverrideCount != 1 {
		t.Fatalf("override count = %d, want 1", stats.OverrideCount)
	}
	if stats.OverrideRate != 0.25 {
		t.Fatalf("override rate = %v, want 0.25", stats.OverrideRate)
	}
	if stats.TierDistribution[domain.TierEnterprise] != 1 || stats.TierDistribution[domain.TierStandard] != 1 {
		t.Fatalf("tier distribution wrong: %v", stats.TierDistribution)
	}
}

func TestComputeStatisticsEmpty(t *testing.T) {
	stats := priority.ComputeStatistics(nil)
	if stats.TotalTickets != 0 || stats.OverrideRate != 0 {
		t.Fatalf("empty stats wrong: %+v", stats)
	}
}
