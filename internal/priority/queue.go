package priority

import (
	"sort"

	"github.com/spec-kit/prioritization-service/internal/domain"
)

// SortQueue orders a snapshot of tickets by effective priority descending,
// with FIFO ordering (created_at ascending) among equal priorities. The
// input slice is not modified; the sort is stable, so changing one ticket's
// override only moves that ticket.
func SortQueue(tickets []domain.Ticket) []domain.Ticket {
	queue := make([]domain.Ticket, len(tickets))
	copy(queue, tickets)
	sort.SliceStable(queue, func(i, j int) bool {
		pi, pj := queue[i].EffectivePriority(), queue[j].EffectivePriority()
		if pi != pj {
			return pi > pj
		}
		return queue[i].CreatedAt.Before(queue[j].CreatedAt)
	})
	return queue
}

// Statistics aggregates the observable state of a ticket set. Everything
// here is recomputable from the tickets at any time; nothing is persisted.
type Statistics struct {
	TotalTickets         int                         `json:"total_tickets"`
	OpenTickets          int                         `json:"open_tickets"`
	InProgress           int                         `json:"in_progress"`
	Resolved             int                         `json:"resolved"`
	PriorityDistribution map[domain.PriorityBand]int `json:"priority_distribution"`
	OverrideCount        int                         `json:"override_count"`
	OverrideRate         float64                     `json:"override_rate"`
	TierDistribution     map[domain.CustomerTier]int `json:"tier_distribution"`
}

// ComputeStatistics derives aggregate counts from a ticket snapshot. Band
// and tier distributions cover open tickets; override counts cover all.
func ComputeStatistics(tickets []domain.Ticket) Statistics {
	stats := Statistics{
		TotalTickets: len(tickets),
		PriorityDistribution: map[domain.PriorityBand]int{
			domain.BandP0: 0, domain.BandP1: 0, domain.BandP2: 0, domain.BandP3: 0,
		},
		TierDistribution: map[domain.CustomerTier]int{},
	}
	for i := range tickets {
		t := &tickets[i]
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.OpenTickets++
			stats.PriorityDistribution[t.PriorityBand]++
			stats.TierDistribution[t.CustomerTier]++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusResolved:
			stats.Resolved++
		}
		if t.ManualOverride() {
			stats.OverrideCount++
		}
	}
	if stats.TotalTickets > 0 {
		stats.OverrideRate = float64(stats.OverrideCount) / float64(stats.TotalTickets)
	}
	return stats
}
