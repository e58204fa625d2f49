package priority

import (
	"errors"
	"math"
	"strings"

	"github.com/spec-kit/prioritization-service/internal/domain"
)

// Override validation failures. Each names the single violated constraint so
// callers can surface it in a structured rejection.
var (
	ErrOverrideOutOfRange  = errors.New("override priority must be between 0 and 1")
	ErrOverrideEmptyReason = errors.New("override reason must not be empty")
	ErrOverrideEmptyAgent  = errors.New("override agent must not be empty")
	ErrNoOverride          = errors.New("ticket has no manual override")
)

// OverrideInput is a requested manual override.
type OverrideInput struct {
	Priority float64
	Reason   string
	By       string
}

// Validate checks the input constraints without touching any ticket state.
// NaN compares false against both bounds, so it is rejected explicitly to
// keep the effective priority finite.
func (in OverrideInput) Validate() error {
	if math.IsNaN(in.Priority) || in.Priority < 0 || in.Priority > 1 {
		return ErrOverrideOutOfRange
	}
	if strings.TrimSpace(in.Reason) == "" {
		return ErrOverrideEmptyReason
	}
	if strings.TrimSpace(in.By) == "" {
		return ErrOverrideEmptyAgent
	}
	return nil
}

// ApplyOverride validates the input and, only if valid, sets the override
// fields atomically. A rejected call leaves the ticket unchanged. The
// computed score, band and breakdown stay intact for audit; the override
// replaces the effective priority, it never blends with the score.
func (e *Engine) ApplyOverride(t *domain.Ticket, in OverrideInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	now := e.Now().UTC()
	t.Override = &domain.Override{
		Priority: in.Priority,
		Reason:   strings.TrimSpace(in.Reason),
		By:       strings.TrimSpace(in.By),
		At:       now,
	}
	t.UpdatedAt = now
	return nil
}

// RemoveOverride clears the override, reverting the effective priority to
// the last computed score without recomputing it.
func (e *Engine) RemoveOverride(t *domain.Ticket) error {
	if t.Override == nil {
		return ErrNoOverride
	}
	t.Override = nil
	t.UpdatedAt = e.Now().UTC()
	return nil
}
