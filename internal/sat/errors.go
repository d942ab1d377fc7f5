package sat

import "github.com/pkg/errors"

// Sentinel errors returned by the core solver. Callers should compare with
// errors.Is; every sentinel is wrapped with a stack trace via pkg/errors at
// the point it is first returned.
var (
	// ErrUnsat names a problem that is unconditionally falsified at the root
	// level. No function in this package returns it: AddClause reports that
	// case through its bool result, and Solve through StatusUnsatisfiable.
	ErrUnsat = errors.New("sat: problem is unsatisfiable at the root level")

	// ErrUnknownVariable names a reference to a variable id that was never
	// produced by AddVariable. No function in this package returns it;
	// variable ids are not range-checked.
	ErrUnknownVariable = errors.New("sat: unknown variable")

	// ErrInterrupted is returned by Solve when Interrupt was called before
	// the search reached a conclusive result.
	ErrInterrupted = errors.New("sat: search interrupted")

	// ErrBudgetExceeded is returned by Solve when a configured conflict,
	// propagation, or wall-clock budget was exhausted before the search
	// reached a conclusive result.
	ErrBudgetExceeded = errors.New("sat: resource budget exceeded")
)
