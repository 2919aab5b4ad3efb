package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrResolutionRequired is returned when closing without a resolution message.
	ErrResolutionRequired = errors.New("resolution message is required to close a ticket")
	// ErrUnexpectedResolution is returned when a resolution message accompanies a non-closing change.
	ErrUnexpectedResolution = errors.New("resolution message is only accepted when closing a ticket")
)

// InvalidTransitionError describes a rejected status change.
type InvalidTransitionError struct {
	From TicketStatus
	To   TicketStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition ticket from %s to %s", e.From, e.To)
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusClosed},
	TicketStatusInProgress: {TicketStatusOpen, TicketStatusClosed},
	TicketStatusClosed:     {},
}

// CanTransition reports whether current may move to next.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Transition is a validated status change ready to persist.
type Transition struct {
	From       TicketStatus
	To         TicketStatus
	Resolution string
}

// NoOp reports whether the transition leaves the status unchanged.
func (t Transition) NoOp() bool {
	return t.From == t.To
}

// Closes reports whether the transition creates a resolution.
func (t Transition) Closes() bool {
	return !t.NoOp() && t.To == TicketStatusClosed
}

// PlanTransition validates moving a ticket from current to next. Resubmitting
// the current status yields a no-op transition without further checks.
func PlanTransition(current, next TicketStatus, resolution string) (Transition, error) {
	resolution = strings.TrimSpace(resolution)
	plan := Transition{From: current, To: next}
	if current == next {
		return plan, nil
	}
	if !CanTransition(current, next) {
		return Transition{}, &InvalidTransitionError{From: current, To: next}
	}
	if next == TicketStatusClosed {
		if resolution == "" {
			return Transition{}, ErrResolutionRequired
		}
		plan.Resolution = resolution
		return plan, nil
	}
	if resolution != "" {
		return Transition{}, ErrUnexpectedResolution
	}
	return plan, nil
}
