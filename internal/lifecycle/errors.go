package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/straye-as/salesflow-api/internal/domain"
)

var (
	// ErrInvalidTransition is returned when the target is not in AllowedNext of the current stage
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrNotFound is returned when the sale does not exist
	ErrNotFound = errors.New("sale not found")

	// ErrConflict is returned when the compare-and-swap kept losing to concurrent writers
	ErrConflict = errors.New("concurrent lifecycle update")

	// ErrSideEffectFailed is returned alongside a committed transition whose side effect could not be dispatched
	ErrSideEffectFailed = errors.New("side effect dispatch failed")

	// ErrUnknownStage is returned when a stage is not part of the transition table
	ErrUnknownStage = errors.New("unknown lifecycle stage")

	// errCASMiss marks a lost compare-and-swap that may be retried
	errCASMiss = errors.New("compare-and-swap miss")
)

// InvalidTransitionError names the rejected target and what would have been accepted.
// UnknownFrom is set when the sale's stored stage is not part of the table.
type InvalidTransitionError struct {
	From        domain.SaleStage
	Target      domain.SaleStage
	Allowed     []domain.SaleStage
	UnknownFrom bool
}

func (e *InvalidTransitionError) Error() string {
	if e.UnknownFrom {
		return fmt.Sprintf("%s: current stage %q is not a known lifecycle stage, cannot move to %q",
			ErrInvalidTransition, e.From, e.Target)
	}
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("%s: %q has no outgoing transitions, cannot move to %q", ErrInvalidTransition, e.From, e.Target)
	}
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("%s: cannot move from %q to %q (allowed: %s)",
		ErrInvalidTransition, e.From, e.Target, strings.Join(allowed, ", "))
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
