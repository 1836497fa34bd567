// Package gate implements a small Tseitin translator directly against
// literal ids, mirroring the three- and one-clause CNF shapes gini's own
// logic.C.ToCnf emits for AND nodes. And, Or and Iff return an output bit
// logically equivalent to the named combination of inputs; Not returns the
// negated literal without allocating, and GateFalse pins an existing bit
// false.
package gate

import "github.com/ccu-solve/ccu/pkg/ccu/oracle"

// Allocator hands out contiguous blocks of fresh variable ids and pins the
// two reserved constants every column and every gate computation needs:
// OneBit, unit-true, and ZeroBit, unit-false.
type Allocator struct {
	oracle  oracle.Oracle
	OneBit  int
	ZeroBit int
}

// NewAllocator pins OneBit and ZeroBit as the first two variables handed
// out by o and returns an Allocator ready to hand out further ids.
func NewAllocator(o oracle.Oracle) (*Allocator, error) {
	ids := o.Alloc(2)
	a := &Allocator{oracle: o, OneBit: ids, ZeroBit: ids + 1}
	if err := o.AddClause(a.OneBit); err != nil {
		return nil, err
	}
	if err := o.AddClause(-a.ZeroBit); err != nil {
		return nil, err
	}
	return a, nil
}

// Alloc returns the first of n fresh variable ids.
func (a *Allocator) Alloc(n int) int {
	return a.oracle.Alloc(n)
}

// Translator emits Tseitin clauses over an Allocator's oracle.
type Translator struct {
	oracle oracle.Oracle
	alloc  *Allocator
}

// NewTranslator returns a Translator that allocates its output bits from
// alloc and adds clauses to the oracle alloc was built from.
func NewTranslator(o oracle.Oracle, alloc *Allocator) *Translator {
	return &Translator{oracle: o, alloc: alloc}
}

// And allocates and returns a fresh bit y with y <-> (x1 AND x2 AND ...).
// An empty input list returns OneBit (the identity of AND), and a single
// input is returned as is, with no new bit.
func (t *Translator) And(xs ...int) (int, error) {
	if len(xs) == 0 {
		return t.alloc.OneBit, nil
	}
	if len(xs) == 1 {
		return xs[0], nil
	}
	y := t.alloc.Alloc(1)
	for _, x := range xs {
		if err := t.oracle.AddClause(-y, x); err != nil {
			return 0, err
		}
	}
	lits := make([]int, 0, len(xs)+1)
	lits = append(lits, y)
	for _, x := range xs {
		lits = append(lits, -x)
	}
	if err := t.oracle.AddClause(lits...); err != nil {
		return 0, err
	}
	return y, nil
}

// Or allocates and returns a fresh bit y with y <-> (x1 OR x2 OR ...). An
// empty input list returns ZeroBit (the identity of OR), and a single input
// is returned as is, with no new bit.
func (t *Translator) Or(xs ...int) (int, error) {
	if len(xs) == 0 {
		return t.alloc.ZeroBit, nil
	}
	if len(xs) == 1 {
		return xs[0], nil
	}
	y := t.alloc.Alloc(1)
	for _, x := range xs {
		if err := t.oracle.AddClause(y, -x); err != nil {
			return 0, err
		}
	}
	lits := make([]int, 0, len(xs)+1)
	lits = append(lits, -y)
	lits = append(lits, xs...)
	if err := t.oracle.AddClause(lits...); err != nil {
		return 0, err
	}
	return y, nil
}

// Not returns the literal negation of x. It never allocates: negation
// needs no fresh gate, only a sign flip.
func (t *Translator) Not(x int) int {
	return -x
}

// Iff allocates and returns a fresh bit y with y <-> (a <-> b).
func (t *Translator) Iff(a, b int) (int, error) {
	y := t.alloc.Alloc(1)
	if err := t.oracle.AddClause(-y, -a, b); err != nil {
		return 0, err
	}
	if err := t.oracle.AddClause(-y, a, -b); err != nil {
		return 0, err
	}
	if err := t.oracle.AddClause(y, a, b); err != nil {
		return 0, err
	}
	if err := t.oracle.AddClause(y, -a, -b); err != nil {
		return 0, err
	}
	return y, nil
}

// GateFalse forces y false via the unit clause {-y}. Used to pin an
// already-allocated bit (e.g. a column's high-order padding bit) rather
// than allocate a fresh one.
func (t *Translator) GateFalse(y int) error {
	return t.oracle.AddClause(-y)
}
