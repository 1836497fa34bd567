// Package dq implements a disequality propagator: a symmetric boolean
// matrix over a sub-problem's terms recording which pairs may still be
// equal, a fixed-point functionality/transitivity closure, cascade removal
// driven by a concrete model, and a goal-driven minimisation that shrinks
// the remaining disequalities to a hitting set.
package dq

import "github.com/ccu-solve/ccu/pkg/ccu/problem"

// Matrix holds eq[s][t]: true means s and t may still be equal; false means
// a disequality is currently enforced between them.
type Matrix struct {
	terms   []problem.TermId
	pos     map[problem.TermId]int
	eq      [][]bool
	base    [][]bool // domain-only matrix, fixed at construction
	blocked [][]bool
	funEqs  []problem.FunEq
}

// New builds the initial matrix: eq[s][t] = 1 iff t is in s's domain and s
// is in t's domain, else 0. funEqs is retained for later calls to Check and
// CascadeRemove.
func New(terms []problem.TermId, domains map[problem.TermId][]problem.TermId, funEqs []problem.FunEq) *Matrix {
	pos := make(map[problem.TermId]int, len(terms))
	for i, t := range terms {
		pos[t] = i
	}
	n := len(terms)
	eq := newBoolMatrix(n)
	for _, s := range terms {
		sDom := make(map[problem.TermId]bool, len(domains[s]))
		for _, d := range domains[s] {
			sDom[d] = true
		}
		for _, t := range terms {
			if sDom[t] {
				tDom := domains[t]
				for _, d := range tDom {
					if d == s {
						eq[pos[s]][pos[t]] = true
						break
					}
				}
			}
		}
	}
	base := cloneBoolMatrix(eq)
	return &Matrix{
		terms:   terms,
		pos:     pos,
		eq:      eq,
		base:    base,
		blocked: newBoolMatrix(n),
		funEqs:  funEqs,
	}
}

func newBoolMatrix(n int) [][]bool {
	m := make([][]bool, n)
	for i := range m {
		m[i] = make([]bool, n)
	}
	return m
}

func cloneBoolMatrix(src [][]bool) [][]bool {
	m := make([][]bool, len(src))
	for i, row := range src {
		m[i] = append([]bool(nil), row...)
	}
	return m
}

func (m *Matrix) idx(t problem.TermId) int { return m.pos[t] }

// Eq reports whether s and t may currently be equal.
func (m *Matrix) Eq(s, t problem.TermId) bool {
	return m.eq[m.idx(s)][m.idx(t)]
}

func (m *Matrix) set(s, t int, v bool) {
	m.eq[s][t] = v
	m.eq[t][s] = v
}

// Check runs a fixed point: for every pair of function-equations with
// matching arity and symbol whose arguments are all pairwise eq = 1, mark
// their results eq = 1, then connect every neighbour of the first result
// to every neighbour of the second. This is transitivity through the two
// results, not a full transitive closure over the whole matrix: a
// deliberately weaker, cheaper, but still sound bound.
func (m *Matrix) Check() {
	for {
		changed := false
		for i := 0; i < len(m.funEqs); i++ {
			for j := i + 1; j < len(m.funEqs); j++ {
				a, b := m.funEqs[i], m.funEqs[j]
				if a.Symbol != b.Symbol || len(a.Args) != len(b.Args) {
					continue
				}
				if m.fire(a, b) {
					changed = true
				}
			}
		}
		if !changed {
			return
		}
	}
}

func (m *Matrix) fire(a, b problem.FunEq) bool {
	for k := range a.Args {
		if !m.Eq(a.Args[k], b.Args[k]) {
			return false
		}
	}
	r1, r2 := m.idx(a.Result), m.idx(b.Result)
	changed := false
	if !m.blocked[r1][r2] && !m.eq[r1][r2] {
		m.set(r1, r2, true)
		changed = true
	}
	for i, v := range m.eq[r1] {
		if !v {
			continue
		}
		for j, w := range m.eq[r2] {
			if !w {
				continue
			}
			if !m.blocked[i][j] && !m.eq[i][j] {
				m.set(i, j, true)
				changed = true
			}
		}
	}
	return changed
}

// CascadeRemove forces eq[s][t] := 0 permanently (it can never be set back
// to 1 by a later Check) and re-derives the matrix from the domain-only
// base, skipping every permanently-blocked pair, so that any prior
// functionality consequence that depended on (s,t) being allowed is
// retracted along with it.
func (m *Matrix) CascadeRemove(s, t problem.TermId) {
	si, ti := m.idx(s), m.idx(t)
	m.blocked[si][ti] = true
	m.blocked[ti][si] = true

	for i := range m.eq {
		for j := range m.eq[i] {
			m.eq[i][j] = m.base[i][j] && !m.blocked[i][j]
		}
	}
	m.Check()
}

// INEQ returns the set of unordered pairs currently disequal (eq = 0).
func (m *Matrix) INEQ() []problem.Pair {
	var out []problem.Pair
	for i := 0; i < len(m.terms); i++ {
		for j := i + 1; j < len(m.terms); j++ {
			if !m.eq[i][j] {
				out = append(out, problem.Pair{S: m.terms[i], T: m.terms[j]})
			}
		}
	}
	return out
}

// BaseINEQ returns the disequalities present purely from domain
// restriction, before any Check or CascadeRemove. These are unchanging
// across the search.
func (m *Matrix) BaseINEQ() []problem.Pair {
	var out []problem.Pair
	for i := 0; i < len(m.terms); i++ {
		for j := i + 1; j < len(m.terms); j++ {
			if !m.base[i][j] {
				out = append(out, problem.Pair{S: m.terms[i], T: m.terms[j]})
			}
		}
	}
	return out
}

// goalHolds reports whether every pair of some sub-goal is currently eq=1.
func (m *Matrix) goalHolds(goal problem.Goal) bool {
	for _, sg := range goal {
		ok := true
		for _, pr := range sg {
			if !m.Eq(pr.S, pr.T) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// Minimise shrinks the current disequality set to an inclusion-minimal
// hitting set over goal's sub-goals: repeatedly, for each remaining
// disequality, tentatively allow it (and whatever Check derives from
// that), and if doing so still leaves every sub-goal underivable, keep the
// relaxation; otherwise revert it. Iterates to a fixed point so the order
// pairs are tried in cannot strand a later-enabled removal.
//
// cancel is polled at the top of every outer pass. Stopping early is
// always sound, since every committed removal up to that point already
// preserved "every sub-goal underivable"; it just leaves a possibly
// non-minimal, but still valid, hitting set. A nil cancel runs to
// completion.
func (m *Matrix) Minimise(goal problem.Goal, cancel func() bool) {
	for {
		if cancel != nil && cancel() {
			return
		}
		progress := false
		for _, pr := range m.INEQ() {
			snapshot := cloneBoolMatrix(m.eq)
			m.set(m.idx(pr.S), m.idx(pr.T), true)
			m.Check()
			if m.goalHolds(goal) {
				m.eq = snapshot
				continue
			}
			progress = true
		}
		if !progress {
			return
		}
	}
}
