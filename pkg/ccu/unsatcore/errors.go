package unsatcore

import "errors"

// ErrNoActiveSubProblems is returned by Extract when the problem has no
// active sub-problems at all: there is no core to find.
var ErrNoActiveSubProblems = errors.New("unsatcore: no active sub-problems to extract a core from")

// ErrCoreNotFound is returned by Extract when every growing prefix,
// including the full active set, reported SAT. That can only happen if
// Extract was called without first confirming the full set UNSAT.
var ErrCoreNotFound = errors.New("unsatcore: full active set reported sat, no unsat core exists")
