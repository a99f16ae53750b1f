package planner

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrCatalogMustBeSet     = errors.New("catalog must be set")
	ErrTargetsMustBeSet     = errors.New("at least one target must be set")
	ErrInvalidOption        = errors.New("invalid planner option")
	ErrGraphUnavailable     = errors.New("graph unavailable")
	ErrUnsatisfiableTarget  = errors.New("unsatisfiable target")
	ErrEmptyScope           = errors.New("no tool in scope")
	ErrRepairBudgetExceeded = errors.New("too many missing tools to repair")
	ErrToolNotFound         = errors.New("tool not found")
)

// UnsatisfiableError reports a target that no valid pipeline reaches.
// Missing lists the states the target needs and that the preloading lacks.
type UnsatisfiableError struct {
	Target  string
	Missing []string
	// Err is the underlying cause, ErrEmptyScope or ErrToolNotFound, if any.
	Err error
}

func (e *UnsatisfiableError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrUnsatisfiableTarget, e.Target)
	if len(e.Missing) > 0 {
		msg += " requires " + strings.Join(e.Missing, ", ")
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *UnsatisfiableError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnsatisfiableTarget}
	}

	return []error{ErrUnsatisfiableTarget, e.Err}
}

type unavailableError struct {
	op  string
	err error
}

func (e *unavailableError) Error() string {
	return ErrGraphUnavailable.Error() + ": " + e.op + ": " + e.err.Error()
}

func (e *unavailableError) Unwrap() []error {
	return []error{ErrGraphUnavailable, e.err}
}
