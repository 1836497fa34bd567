// Package oracle adapts the incremental SAT solver consumed by the CCU
// engine to a small literal-level contract: alloc, add a permanent clause,
// assume a set of literals for the next call only, ask for satisfiability,
// read back a model bit, and read the failed assumptions behind an UNSAT
// result.
//
// Literals are plain non-zero ints, DIMACS style: a positive int names a
// variable's positive literal, its negation the negative literal. Variable
// ids start at 1.
package oracle

// Oracle is the interface every solver package in ccu depends on. It
// describes the SAT oracle's operations at the literal-id level rather
// than at gini's z.Lit level, so that nothing outside this package needs
// to import gini.
type Oracle interface {
	// Alloc returns the first of n fresh, contiguous variable ids.
	Alloc(n int) int
	// AddClause adds a permanent disjunctive clause over the given
	// literals. It returns an error when the clause is a unit clause that
	// conflicts with another unit clause already present; any other
	// contradiction is not detected here and shows up as an UNSAT result
	// from IsSatisfiable.
	AddClause(lits ...int) error
	// Assume registers literals that must hold in the next call to
	// IsSatisfiable only; they are forgotten afterwards whether or not
	// that call succeeds.
	Assume(lits ...int)
	// IsSatisfiable runs the oracle under the clause database and any
	// pending assumptions.
	IsSatisfiable() (bool, error)
	// Model returns the truth value of v in the most recent
	// satisfiable result. Its value is undefined otherwise.
	Model(v int) bool
	// Why returns a minimized set of the most recent Assume literals
	// sufficient to explain the most recent UNSAT result.
	Why() []int
	// SetTimeoutMs hands the oracle a time budget in milliseconds for
	// calls to IsSatisfiable. The gini-backed oracle returned by NewGini
	// ignores it: its IsSatisfiable runs until the solver finishes.
	SetTimeoutMs(ms int)
}

// ErrContradiction is returned by AddClause when the added unit clause
// contradicts a unit clause added earlier, independent of any assumption.
// No unit propagation is run to find other contradictions.
type ErrContradiction struct {
	Lits []int
}

func (e *ErrContradiction) Error() string {
	return "oracle: clause addition raised a contradiction"
}
