package lazy

import "errors"

// ErrIterationLimit is returned by Solve when maxIterations guesses were
// exhausted without the oracle ever reporting UNSAT or a verified model.
// It should only ever surface on a misconfigured or pathological problem:
// the loop makes monotonic progress (each iteration adds at least one new
// permanent clause), so a well-formed finite problem terminates well before
// any reasonable limit.
var ErrIterationLimit = errors.New("lazy: iteration limit reached before a solution or unsat proof")
