package table

import "errors"

// ErrIterationLimit is returned by Solver.Solve when maxRounds rounds
// elapsed without the oracle ever reporting a verified model or an
// unfoldable-further UNSAT. As with pkg/ccu/lazy's ErrIterationLimit, a
// well-formed finite problem terminates well before any reasonable bound:
// each round either grows at least one table or verifies the goal.
var ErrIterationLimit = errors.New("table: iteration limit reached before a solution or unsat proof")
