package models

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned for any transition outside ValidReturnTransitions
var ErrInvalidTransition = errors.New("invalid status transition")

// ValidReturnTransitions defines valid state transitions for ReturnStatus
// Flow: pending → approved → completed, or pending → rejected
var ValidReturnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnStatusPending:   {ReturnStatusApproved, ReturnStatusRejected},
	ReturnStatusApproved:  {ReturnStatusCompleted},
	ReturnStatusRejected:  {}, // Terminal state
	ReturnStatusCompleted: {}, // Terminal state
}

// CanTransitionReturnStatus checks if a transition from one return status to another is valid
func CanTransitionReturnStatus(from, to ReturnStatus) bool {
	validTransitions, exists := ValidReturnTransitions[from]
	if !exists {
		return false
	}
	for _, validTo := range validTransitions {
		if validTo == to {
			return true
		}
	}
	return false
}

// GetValidReturnTransitions returns the statuses reachable from the current one
func GetValidReturnTransitions(from ReturnStatus) []ReturnStatus {
	if transitions, exists := ValidReturnTransitions[from]; exists {
		return transitions
	}
	return []ReturnStatus{}
}

// ValidateReturnTransition validates a return status transition and returns an error if invalid
func ValidateReturnTransition(from, to ReturnStatus) error {
	if !CanTransitionReturnStatus(from, to) {
		return fmt.Errorf("%w: from %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// IsTerminalReturnStatus checks if a return status is terminal
func IsTerminalReturnStatus(status ReturnStatus) bool {
	transitions, exists := ValidReturnTransitions[status]
	return exists && len(transitions) == 0
}

// IsNotifiableReturnStatus reports whether customers are emailed on entering the status
func IsNotifiableReturnStatus(status ReturnStatus) bool {
	return status == ReturnStatusApproved || status == ReturnStatusRejected || status == ReturnStatusCompleted
}
