package table

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ccu-solve/ccu/pkg/ccu/bitenc"
	"github.com/ccu-solve/ccu/pkg/ccu/cc"
	"github.com/ccu-solve/ccu/pkg/ccu/gate"
	"github.com/ccu-solve/ccu/pkg/ccu/oracle"
	"github.com/ccu-solve/ccu/pkg/ccu/problem"
)

// Solver drives the table strategy across a whole Problem: one shared
// assignment vector, with every active sub-problem's domain constraint
// conjoined onto it up front, and a table lazily instantiated only for the
// sub-problems an initial, table-free probe's decoded model fails to
// verify.
type Solver struct {
	oracle oracle.Oracle
	alloc  *gate.Allocator
	tr     *gate.Translator
	log    logrus.FieldLogger

	bits map[problem.TermId][]int

	tables     map[int]*Table
	tableOrder []int

	// LastCore records, in instantiation order, the sub-problem indices a
	// table was ever built for. It doubles as the solve-time hint handed
	// to pkg/ccu/unsatcore: a first guess at which sub-problems matter,
	// always re-verified there rather than trusted outright.
	LastCore []int
}

// NewSolver builds a Solver against a fresh oracle.
func NewSolver(o oracle.Oracle, log logrus.FieldLogger) (*Solver, error) {
	alloc, err := gate.NewAllocator(o)
	if err != nil {
		return nil, err
	}
	return &Solver{
		oracle: o,
		alloc:  alloc,
		tr:     gate.NewTranslator(o, alloc),
		log:    log,
		bits:   make(map[problem.TermId][]int),
		tables: make(map[int]*Table),
	}, nil
}

func (s *Solver) allocateAssignment(p *problem.Problem) {
	for _, t := range p.Terms {
		vec := make([]int, p.Bits)
		for k := range vec {
			vec[k] = s.alloc.Alloc(1)
		}
		s.bits[t] = vec
	}
}

// encodeDomains asserts every active sub-problem's domain constraint over
// the one shared assignment vector, so a term common to several
// sub-problems is pinned to their domains' intersection. This is the same
// invariant pkg/ccu/lazy's encodeDomains maintains, here shared by every
// table a sub-problem's verification failure later instantiates.
func (s *Solver) encodeDomains(p *problem.Problem) error {
	for _, idx := range p.ActiveIndices() {
		sp := p.SubProblems[idx]
		for _, t := range p.Terms {
			dom := sp.Domains[t]
			ors := make([]int, 0, len(dom))
			for _, d := range dom {
				e, err := bitenc.TermEqInt(s.tr, s.bits[t], p.IndexOf(d))
				if err != nil {
					return err
				}
				ors = append(ors, e)
			}
			orBit, err := s.tr.Or(ors...)
			if err != nil {
				return err
			}
			if err := s.oracle.AddClause(orBit); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Solver) column0() Column {
	col := make(Column, len(s.bits))
	for t, vec := range s.bits {
		col[t] = vec
	}
	return col
}

func (s *Solver) decodeAssignment(p *problem.Problem) map[problem.TermId]problem.TermId {
	intAss := make(map[problem.TermId]problem.TermId, len(p.Terms))
	for _, t := range p.Terms {
		v := 0
		for k, b := range s.bits[t] {
			if s.oracle.Model(b) {
				v |= 1 << uint(k)
			}
		}
		intAss[t] = p.Terms[v]
	}
	return intAss
}

// advance grows the table already tracking sub-problem idx by one column,
// or instantiates a fresh one seeded from the shared assignment and
// immediately grown to column 1, for a newly-failing sub-problem.
func (s *Solver) advance(p *problem.Problem, idx int) error {
	if tb, ok := s.tables[idx]; ok {
		return tb.AddDerivedColumn()
	}
	sp := p.SubProblems[idx]
	tb := New(s.oracle, s.alloc, s.tr, p.Terms, p.Bits, sp.Domains, sp.FunEqs)
	tb.SeedColumn0(s.column0())
	if err := tb.AddDerivedColumn(); err != nil {
		return err
	}
	s.tables[idx] = tb
	s.tableOrder = append(s.tableOrder, idx)
	s.LastCore = append(s.LastCore, idx)
	return nil
}

// growSaturatedTables checks every instantiated table's V-constraint and
// grows whichever one still has a functionality step available, reporting
// whether any did. A false return is a genuine fixed point: every
// instantiated table is saturated, so the current UNSAT is final, not an
// artifact of insufficient unfolding.
func (s *Solver) growSaturatedTables() (bool, error) {
	grew := false
	for _, idx := range s.tableOrder {
		tb := s.tables[idx]
		vBit, err := tb.VBit()
		if err != nil {
			return false, err
		}
		s.oracle.Assume(vBit)
		vsat, err := s.oracle.IsSatisfiable()
		if err != nil {
			return false, err
		}
		if vsat {
			if err := tb.AddDerivedColumn(); err != nil {
				return false, err
			}
			grew = true
		}
	}
	return grew, nil
}

// Solve runs the table strategy to completion, to ctx's cancellation, or to
// maxRounds iterations, whichever comes first.
func (s *Solver) Solve(ctx context.Context, p *problem.Problem, maxRounds int) (problem.Result, error) {
	s.allocateAssignment(p)
	if err := s.encodeDomains(p); err != nil {
		if _, ok := err.(*oracle.ErrContradiction); ok {
			p.Result = problem.UNSAT
			return problem.UNSAT, nil
		}
		return problem.Unknown, err
	}

	for round := 0; maxRounds <= 0 || round < maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return problem.Unknown, err
		}

		assumeLits := make([]int, 0, len(s.tableOrder))
		for _, idx := range s.tableOrder {
			g, err := s.tables[idx].GoalBit(p.SubProblems[idx].Goal)
			if err != nil {
				return problem.Unknown, err
			}
			assumeLits = append(assumeLits, g)
		}
		s.oracle.Assume(assumeLits...)
		sat, err := s.oracle.IsSatisfiable()
		if err != nil {
			return problem.Unknown, err
		}

		if !sat {
			grew, err := s.growSaturatedTables()
			if err != nil {
				return problem.Unknown, err
			}
			if !grew {
				p.Result = problem.UNSAT
				s.log.WithField("round", round).Debug("table: every instantiated table saturated, no model satisfies every goal constraint")
				return problem.UNSAT, nil
			}
			continue
		}

		intAss := s.decodeAssignment(p)
		failing := -1
		for _, idx := range p.ActiveIndices() {
			sp := p.SubProblems[idx]
			if cc.Verify(p.Terms, sp.FunEqs, intAss, sp.Goal) {
				continue
			}
			failing = idx
			break
		}
		if failing < 0 {
			p.Result = problem.SAT
			p.IntAss = intAss
			s.log.WithField("round", round).Debug("table: decoded model verified every active sub-problem")
			return problem.SAT, nil
		}

		if err := s.advance(p, failing); err != nil {
			if _, ok := err.(*oracle.ErrContradiction); ok {
				p.Result = problem.UNSAT
				return problem.UNSAT, nil
			}
			return problem.Unknown, err
		}
	}
	return problem.Unknown, ErrIterationLimit
}
