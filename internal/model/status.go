package model

import "fmt"

// Status enumerates the lifecycle states of a booking. A booking holds
// exactly one status at any time and moves between them only through
// Transition below.
type Status string

const (
	StatusPending   Status = "pending_confirmation" // initial state after creation
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed" // terminal
	StatusCancelled Status = "cancelled" // terminal
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s has no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// transitions is the legal-transition table. Any (from, to) pair not
// listed here is illegal, including self-transitions and anything out
// of a terminal state.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether moving from one status to another is
// permitted by the lifecycle table.
func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// IllegalTransitionError is returned when a caller attempts a status
// change that the lifecycle table does not permit. It is a programming
// or UI error rather than a user error, so handlers log it distinctly.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

// Transition validates a status change against the lifecycle table.
// It returns an *IllegalTransitionError before any persistence work
// happens; callers must not write the new status when an error is
// returned.
func Transition(from, to Status) error {
	if !CanTransition(from, to) {
		return &IllegalTransitionError{From: from, To: to}
	}
	return nil
}

// EventForStatus maps a target status to the outbox event published
// when a booking enters it.
func EventForStatus(to Status) string {
	switch to {
	case StatusConfirmed:
		return EventBookingConfirmed
	case StatusCompleted:
		return EventBookingCompleted
	case StatusCancelled:
		return EventBookingCancelled
	}
	return ""
}
