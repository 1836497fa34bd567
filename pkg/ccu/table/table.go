// Package table implements bounded congruence-closure unfolding: a growing
// sequence of columns over one sub-problem's terms, where column 0 is the
// input assignment and each later column propagates one round of the
// functionality axiom directly into SAT clauses, plus the goal and V-set
// push/pop assumptions that drive the main solve loop.
package table

import (
	"github.com/ccu-solve/ccu/pkg/ccu/bitenc"
	"github.com/ccu-solve/ccu/pkg/ccu/dq"
	"github.com/ccu-solve/ccu/pkg/ccu/gate"
	"github.com/ccu-solve/ccu/pkg/ccu/oracle"
	"github.com/ccu-solve/ccu/pkg/ccu/problem"
)

// Column is one row of the table: every term's bits-wide value vector at a
// given unfolding step.
type Column map[problem.TermId][]int

type pairKey struct{ s, t problem.TermId }

func key(a, b problem.TermId) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{s: a, t: b}
}

// Table is the per-sub-problem unfolding state: a fresh table progresses
// through column 0, column 1, and onward as derived columns are added,
// until its V-set saturates. This progression is observable here as
// len(columns) and the emptiness of lastVBits after a derived column,
// rather than as an explicit enum; there is no transition that isn't
// implied by one of those two.
type Table struct {
	oracle oracle.Oracle
	alloc  *gate.Allocator
	tr     *gate.Translator

	terms   []problem.TermId
	index   map[problem.TermId]int
	bits    int
	domains map[problem.TermId][]problem.TermId
	funEqs  []problem.FunEq
	dq      *dq.Matrix

	columns   []Column
	lastVBits []int
}

// New builds a Table sharing o/alloc/tr with every other table and with the
// lazy solver, if both strategies are ever driven against the same oracle
// instance.
func New(o oracle.Oracle, alloc *gate.Allocator, tr *gate.Translator, terms []problem.TermId, bits int, domains map[problem.TermId][]problem.TermId, funEqs []problem.FunEq) *Table {
	index := make(map[problem.TermId]int, len(terms))
	for i, t := range terms {
		index[t] = i
	}
	m := dq.New(terms, domains, funEqs)
	m.Check()
	return &Table{
		oracle:  o,
		alloc:   alloc,
		tr:      tr,
		terms:   terms,
		index:   index,
		bits:    bits,
		domains: domains,
		funEqs:  funEqs,
		dq:      m,
	}
}

// NumColumns reports how many columns have been added, including column 0.
func (tb *Table) NumColumns() int { return len(tb.columns) }

// CurrentColumn returns the most recently added column.
func (tb *Table) CurrentColumn() Column { return tb.columns[len(tb.columns)-1] }

// Column returns the i-th column, 0 being the input assignment.
func (tb *Table) Column(i int) Column { return tb.columns[i] }

// LastVBits returns the V-set bits allocated while deriving the current
// column. Empty for column 0, since no functionality round has run yet.
func (tb *Table) LastVBits() []int { return tb.lastVBits }

// SeedColumn0 installs col as column 0 directly, without allocating fresh
// bits or asserting domain constraints. Used when a table is instantiated
// against an assignment vector a driver already allocated and constrained
// globally: Solver shares one assignment across every sub-problem's
// table, so the simultaneous-goal invariant holds across all of them at
// once, not just within any one table.
func (tb *Table) SeedColumn0(col Column) {
	tb.columns = append(tb.columns, col)
}

// AddInitialColumn allocates column 0's bit vectors and permanently
// constrains each term's value to its domain. Column 0 is the input
// assignment vector.
func (tb *Table) AddInitialColumn() error {
	col := make(Column, len(tb.terms))
	for _, t := range tb.terms {
		vec := make([]int, tb.bits)
		for k := range vec {
			vec[k] = tb.alloc.Alloc(1)
		}
		col[t] = vec
	}
	tb.columns = append(tb.columns, col)

	for _, t := range tb.terms {
		dom := tb.domains[t]
		ors := make([]int, 0, len(dom))
		for _, d := range dom {
			e, err := bitenc.TermEqInt(tb.tr, col[t], tb.index[d])
			if err != nil {
				return err
			}
			ors = append(ors, e)
		}
		orBit, err := tb.tr.Or(ors...)
		if err != nil {
			return err
		}
		if err := tb.oracle.AddClause(orBit); err != nil {
			return err
		}
	}
	return nil
}

func (tb *Table) addConditionalEq(cond int, x, y []int) error {
	for k := range x {
		if err := tb.oracle.AddClause(-cond, -x[k], y[k]); err != nil {
			return err
		}
		if err := tb.oracle.AddClause(-cond, x[k], -y[k]); err != nil {
			return err
		}
	}
	return nil
}

type vCandidate struct {
	r1, r2 problem.TermId
	vBit   int
}

// AddDerivedColumn allocates a fresh column and emits the derived-column
// clauses 1-5 relating it to the current (soon to be previous) column.
func (tb *Table) AddDerivedColumn() error {
	prev := tb.CurrentColumn()
	curr := make(Column, len(tb.terms))
	for _, t := range tb.terms {
		vec := make([]int, tb.bits)
		for k := range vec {
			vec[k] = tb.alloc.Alloc(1)
		}
		curr[t] = vec
	}

	repBit := make(map[problem.TermId]int, len(tb.terms))
	for _, t := range tb.terms {
		e, err := bitenc.TermEqInt(tb.tr, prev[t], tb.index[t])
		if err != nil {
			return err
		}
		repBit[t] = e
	}

	// 1. Non-representative carry.
	for _, t := range tb.terms {
		for k := 0; k < tb.bits; k++ {
			if err := tb.oracle.AddClause(repBit[t], -curr[t][k], prev[t][k]); err != nil {
				return err
			}
			if err := tb.oracle.AddClause(repBit[t], curr[t][k], -prev[t][k]); err != nil {
				return err
			}
		}
	}

	// 2. Equivalence carry, restricted to pairs the static DQ matrix still
	// allows to unify: pairs it has already ruled out can never need a
	// chained lookup.
	for _, t := range tb.terms {
		for _, u := range tb.terms {
			if t == u || !tb.dq.Eq(t, u) {
				continue
			}
			pointsTo, err := bitenc.TermEqInt(tb.tr, prev[t], tb.index[u])
			if err != nil {
				return err
			}
			if err := tb.addConditionalEq(pointsTo, curr[t], curr[u]); err != nil {
				return err
			}
		}
	}

	// 3. Functionality-triggered updates (the V-set).
	eqMemo := make(map[pairKey]int)
	var candidates []vCandidate
	for i := range tb.funEqs {
		for j := range tb.funEqs {
			if i == j {
				continue
			}
			a, b := tb.funEqs[i], tb.funEqs[j]
			if a.Symbol != b.Symbol || len(a.Args) != len(b.Args) || a.Result == b.Result {
				continue
			}
			unifiable := true
			for k := range a.Args {
				if !tb.dq.Eq(a.Args[k], b.Args[k]) {
					unifiable = false
					break
				}
			}
			if !unifiable {
				continue
			}

			var argBit int
			if len(a.Args) == 0 {
				argBit = tb.alloc.OneBit
			} else {
				ands := make([]int, len(a.Args))
				for k := range a.Args {
					pk := key(a.Args[k], b.Args[k])
					e, ok := eqMemo[pk]
					if !ok {
						var err error
						e, err = bitenc.TermEqTerm(tb.tr, tb.alloc, prev[a.Args[k]], prev[b.Args[k]])
						if err != nil {
							return err
						}
						eqMemo[pk] = e
					}
					ands[k] = e
				}
				var err error
				argBit, err = tb.tr.And(ands...)
				if err != nil {
					return err
				}
			}

			gtBit, err := bitenc.TermGtTerm(tb.tr, tb.alloc, prev[a.Result], prev[b.Result])
			if err != nil {
				return err
			}
			vBit, err := tb.tr.And(argBit, gtBit)
			if err != nil {
				return err
			}
			candidates = append(candidates, vCandidate{r1: a.Result, r2: b.Result, vBit: vBit})
		}
	}

	tb.lastVBits = make([]int, len(candidates))
	for i, c := range candidates {
		tb.lastVBits[i] = c.vBit
	}

	// 4/5. Representative commitment, with a canonical-order tiebreak
	// among competing rewrites on the same row (symmetry-breaking): a
	// later-allocated candidate firing on a row forces every
	// earlier-allocated candidate firing on that same row to be false.
	for _, t := range tb.terms {
		var fireGates []int
		for _, c := range candidates {
			rowCond, err := bitenc.TermEqInt(tb.tr, prev[c.r1], tb.index[t])
			if err != nil {
				return err
			}
			fireGate, err := tb.tr.And(c.vBit, rowCond)
			if err != nil {
				return err
			}
			if err := tb.addConditionalEq(fireGate, curr[t], curr[c.r2]); err != nil {
				return err
			}
			for _, earlier := range fireGates {
				if err := tb.oracle.AddClause(-fireGate, -earlier); err != nil {
					return err
				}
			}
			fireGates = append(fireGates, fireGate)
		}

		idBit, err := bitenc.TermEqInt(tb.tr, curr[t], tb.index[t])
		if err != nil {
			return err
		}
		funcBit, err := tb.tr.Or(fireGates...)
		if err != nil {
			return err
		}
		composite, err := tb.tr.Or(idBit, funcBit)
		if err != nil {
			return err
		}
		if err := tb.oracle.AddClause(-repBit[t], composite); err != nil {
			return err
		}
	}

	tb.columns = append(tb.columns, curr)
	return nil
}

// GoalBit builds, over the current column, the disjunction of sub-goal
// conjunctions that makes up the goal constraint. The caller must Assume
// the returned bit (never AddClause it): it is a per-call pushed
// assumption, not a permanent constraint, matching the oracle's own
// "Assume is forgotten after the next IsSatisfiable" contract.
func (tb *Table) GoalBit(goal problem.Goal) (int, error) {
	curr := tb.CurrentColumn()
	ors := make([]int, 0, len(goal))
	for _, sg := range goal {
		ands := make([]int, 0, len(sg))
		for _, pr := range sg {
			e, err := bitenc.TermEqTerm(tb.tr, tb.alloc, curr[pr.S], curr[pr.T])
			if err != nil {
				return 0, err
			}
			ands = append(ands, e)
		}
		andBit, err := tb.tr.And(ands...)
		if err != nil {
			return 0, err
		}
		ors = append(ors, andBit)
	}
	return tb.tr.Or(ors...)
}

// VBit returns the disjunction of the current column's V-set bits: the
// saturation check. If assuming this bit is UNSAT, no functionality step
// can change anything further and the table has reached a fixed point.
func (tb *Table) VBit() (int, error) {
	return tb.tr.Or(tb.lastVBits...)
}
