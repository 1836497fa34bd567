// Package lazy implements a guess-verify-block (CEGAR) solver: encode each
// term's assignment as a bit vector constrained to its active sub-problems'
// domains, ask the oracle for a model, verify every active sub-problem's
// goal against the decoded assignment under congruence closure, and on the
// first failure add a blocking clause ruling out exactly the disequalities
// a minimised DQ run says are necessary, then ask again.
package lazy

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ccu-solve/ccu/pkg/ccu/bitenc"
	"github.com/ccu-solve/ccu/pkg/ccu/cc"
	"github.com/ccu-solve/ccu/pkg/ccu/dq"
	"github.com/ccu-solve/ccu/pkg/ccu/gate"
	"github.com/ccu-solve/ccu/pkg/ccu/oracle"
	"github.com/ccu-solve/ccu/pkg/ccu/problem"
)

// pairKey canonicalises an unordered term pair for the equality-bit memo.
type pairKey struct{ s, t problem.TermId }

func key(a, b problem.TermId) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{s: a, t: b}
}

// Solver runs the CEGAR loop against a single oracle instance. A Solver is
// built fresh per Problem; it is not meant to outlive the problem it was
// built for.
type Solver struct {
	oracle oracle.Oracle
	alloc  *gate.Allocator
	tr     *gate.Translator
	log    logrus.FieldLogger

	bits   map[problem.TermId][]int
	eqMemo map[pairKey]int

	// LastCore holds the indices of the sub-problems that contributed at
	// least one blocking clause during the most recent Solve call. It is
	// the lazy strategy's approximation of an unsat core: every
	// sub-problem that ever forced a model out is necessarily implicated
	// in the final UNSAT, even though, unlike the table strategy, the
	// lazy loop never proves any of them individually sufficient.
	LastCore []int

	coreSeen map[int]bool
}

// New builds a Solver against a fresh oracle. It pins ONEBIT/ZEROBIT as the
// oracle's first two variables.
func New(o oracle.Oracle, log logrus.FieldLogger) (*Solver, error) {
	alloc, err := gate.NewAllocator(o)
	if err != nil {
		return nil, err
	}
	return &Solver{
		oracle:   o,
		alloc:    alloc,
		tr:       gate.NewTranslator(o, alloc),
		log:      log,
		bits:     make(map[problem.TermId][]int),
		eqMemo:   make(map[pairKey]int),
		coreSeen: make(map[int]bool),
	}, nil
}

// eqBit returns the memoised TermEqTerm bit for the unordered pair (s, t),
// allocating it on first use. Without memoisation the same equality bit
// would be re-allocated, and re-asserted, on every blocking clause that
// happens to mention the same pair again.
func (s *Solver) eqBit(a, b problem.TermId) (int, error) {
	k := key(a, b)
	if e, ok := s.eqMemo[k]; ok {
		return e, nil
	}
	e, err := bitenc.TermEqTerm(s.tr, s.alloc, s.bits[a], s.bits[b])
	if err != nil {
		return 0, err
	}
	s.eqMemo[k] = e
	return e, nil
}

// allocateAssignment gives every term in p.Terms a fresh p.Bits-wide bit
// vector, shared across every sub-problem's verification.
func (s *Solver) allocateAssignment(p *problem.Problem) {
	for _, t := range p.Terms {
		vec := make([]int, p.Bits)
		for k := range vec {
			vec[k] = s.alloc.Alloc(1)
		}
		s.bits[t] = vec
	}
}

// encodeDomains adds, for every active sub-problem and every term, the
// disjunctive domain constraint OR_{d in domain(t)} termEqInt(bits(t),
// index(d)). Because every active sub-problem's constraint is conjoined
// independently, a term shared across sub-problems with different domains
// ends up restricted to their intersection.
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

func (s *Solver) markCore(idx int) {
	if s.coreSeen[idx] {
		return
	}
	s.coreSeen[idx] = true
	s.LastCore = append(s.LastCore, idx)
}

// Solve runs the CEGAR loop to completion, to ctx's cancellation, or to
// maxIterations guesses, whichever comes first.
func (s *Solver) Solve(ctx context.Context, p *problem.Problem, maxIterations int) (problem.Result, error) {
	s.allocateAssignment(p)
	if err := s.encodeDomains(p); err != nil {
		if _, ok := err.(*oracle.ErrContradiction); ok {
			p.Result = problem.UNSAT
			return problem.UNSAT, nil
		}
		return problem.Unknown, err
	}

	for iter := 0; maxIterations <= 0 || iter < maxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return problem.Unknown, err
		}

		sat, err := s.oracle.IsSatisfiable()
		if err != nil {
			return problem.Unknown, err
		}
		if !sat {
			p.Result = problem.UNSAT
			s.log.WithField("iteration", iter).Debug("lazy: oracle unsat, blocking clauses exhausted")
			return problem.UNSAT, nil
		}

		intAss := s.decodeAssignment(p)
		failing := -1
		var failingSp *problem.SubProblem
		for _, idx := range p.ActiveIndices() {
			sp := p.SubProblems[idx]
			if cc.Verify(p.Terms, sp.FunEqs, intAss, sp.Goal) {
				continue
			}
			failing, failingSp = idx, sp
			break
		}
		if failing < 0 {
			p.Result = problem.SAT
			p.IntAss = intAss
			s.log.WithField("iteration", iter).Debug("lazy: model verified every active sub-problem")
			return problem.SAT, nil
		}

		if err := s.block(ctx, p, failing, failingSp, intAss); err != nil {
			if ce, ok := err.(*oracle.ErrContradiction); ok {
				_ = ce
				s.log.WithField("subproblem", failing).Warn("lazy: blocking clause contradicted the clause database")
				s.markCore(failing)
				p.Result = problem.UNSAT
				return problem.UNSAT, nil
			}
			return problem.Unknown, err
		}
		s.markCore(failing)
	}
	return problem.Unknown, ErrIterationLimit
}

// block builds and adds the blocking clause for failingSp's verification
// failure under intAss: the minimised, base-subtracted disequalities DQ
// says are responsible.
func (s *Solver) block(ctx context.Context, p *problem.Problem, idx int, sp *problem.SubProblem, intAss map[problem.TermId]problem.TermId) error {
	m := dq.New(p.Terms, sp.Domains, sp.FunEqs)

	uf := cc.Close(p.Terms, sp.FunEqs, intAss)
	classes := cc.Classes(uf, p.Terms)
	for _, members := range classes {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				m.CascadeRemove(members[i], members[j])
			}
		}
	}

	m.Minimise(sp.Goal, func() bool { return ctx.Err() != nil })

	base := make(map[pairKey]bool)
	for _, pr := range m.BaseINEQ() {
		base[key(pr.S, pr.T)] = true
	}

	var lits []int
	for _, pr := range m.INEQ() {
		if base[key(pr.S, pr.T)] {
			continue
		}
		e, err := s.eqBit(pr.S, pr.T)
		if err != nil {
			return err
		}
		lits = append(lits, e)
	}

	if len(lits) == 0 {
		// Minimise returned an empty hitting set: some domain-permitted
		// collapse unrelated to any pair intAss actually chose already
		// makes the sub-problem abstractly reachable. Fall back to ruling
		// out exactly the model just seen.
		return s.oracle.AddClause(s.blockExactModel(p, intAss)...)
	}
	return s.oracle.AddClause(lits...)
}

// blockExactModel returns the literal-level clause excluding precisely the
// current oracle model: the negation of every decision bit's current
// value, one disjunct per bit. Adding it rules out exactly this assignment
// and nothing else, so it can never discard a correct model.
func (s *Solver) blockExactModel(p *problem.Problem, intAss map[problem.TermId]problem.TermId) []int {
	var lits []int
	for _, t := range p.Terms {
		for _, b := range s.bits[t] {
			if s.oracle.Model(b) {
				lits = append(lits, -b)
			} else {
				lits = append(lits, b)
			}
		}
	}
	return lits
}
