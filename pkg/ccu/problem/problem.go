// Package problem holds the CCU data model: terms, finite domains, ground
// function-equations, disjunctive goals, and the multi-sub-problem
// container that the lazy and table solvers both consume.
package problem

import (
	"fmt"

	"github.com/pkg/errors"
)

// TermId is a non-negative integer uniquely identifying a term within a
// Problem. The canonical ordering of terms is the index into the Problem's
// Terms slice.
type TermId int

// FunEq is a ground function-equation f(a1, ..., an) = r. Duplicates are
// allowed within a SubProblem's FunEqs; they carry no additional semantic
// weight.
type FunEq struct {
	Symbol string
	Args   []TermId
	Result TermId
}

// Pair is an equality pair (S, T) appearing in a sub-goal.
type Pair struct {
	S, T TermId
}

// SubGoal is a conjunction of equality pairs. An empty SubGoal is
// vacuously satisfied.
type SubGoal []Pair

// Goal is a disjunction of sub-goals. An empty Goal is UNSAT for its
// sub-problem.
type Goal []SubGoal

// SubProblem is one independent unit of a Problem: a finite domain per
// term, a sequence of function-equations, and a disjunctive goal.
type SubProblem struct {
	Domains map[TermId][]TermId
	FunEqs  []FunEq
	Goal    Goal

	active bool
}

// Active reports whether the sub-problem currently participates in
// solving. Inactive sub-problems contribute no clauses and no
// verification obligation.
func (s *SubProblem) Active() bool { return s.active }

// Problem is an ordered sequence of sub-problems sharing a common term
// universe and bit width.
type Problem struct {
	Terms []TermId
	Bits  int

	SubProblems []*SubProblem

	Result Result
	IntAss map[TermId]TermId
}

// Result is the outcome of a solve call.
type Result int

const (
	// Unknown means no solve has completed for the current problem.
	Unknown Result = iota
	SAT
	UNSAT
)

// InputError reports malformed input rejected by NewProblem or
// AddSubProblem.
type InputError struct {
	cause error
}

func (e *InputError) Error() string { return e.cause.Error() }
func (e *InputError) Unwrap() error { return e.cause }

func inputError(format string, args ...interface{}) error {
	return &InputError{cause: fmt.Errorf(format, args...)}
}

// bitsFor returns ceil(log2(n)) + 1, the bit width assigned to a term
// universe of size n.
func bitsFor(n int) int {
	bits := 1
	for (1 << uint(bits-1)) < n {
		bits++
	}
	return bits
}

// NewProblem validates terms and constructs an empty Problem over them.
// Sub-problems are added afterwards with AddSubProblem.
func NewProblem(terms []TermId) (*Problem, error) {
	if len(terms) == 0 {
		return nil, inputError("ccu: problem must have at least one term")
	}
	seen := make(map[TermId]bool, len(terms))
	for i, t := range terms {
		if t < 0 {
			return nil, inputError("ccu: term id %d (at index %d) is negative", t, i)
		}
		if seen[t] {
			return nil, inputError("ccu: term id %d appears more than once in terms", t)
		}
		seen[t] = true
	}
	return &Problem{
		Terms: terms,
		Bits:  bitsFor(len(terms)),
	}, nil
}

// AddSubProblem validates domains and funEqs against p.Terms and appends a
// new, active sub-problem. The invariant t in domains(t) is enforced here
// rather than assumed.
func (p *Problem) AddSubProblem(domains map[TermId][]TermId, funEqs []FunEq, goal Goal) (*SubProblem, error) {
	known := make(map[TermId]bool, len(p.Terms))
	for _, t := range p.Terms {
		known[t] = true
	}

	dcopy := make(map[TermId][]TermId, len(domains))
	for t, dom := range domains {
		if !known[t] {
			return nil, errors.Wrapf(inputError("ccu: domain given for unknown term %d", t), "AddSubProblem")
		}
		self := false
		out := make([]TermId, 0, len(dom))
		for _, d := range dom {
			if !known[d] {
				return nil, errors.Wrapf(inputError("ccu: domain of term %d references unknown term %d", t, d), "AddSubProblem")
			}
			out = append(out, d)
			if d == t {
				self = true
			}
		}
		if !self {
			return nil, errors.Wrapf(inputError("ccu: domain of term %d does not contain itself", t), "AddSubProblem")
		}
		dcopy[t] = out
	}
	for _, t := range p.Terms {
		if _, ok := dcopy[t]; !ok {
			dcopy[t] = []TermId{t}
		}
	}

	for _, fe := range funEqs {
		for _, a := range fe.Args {
			if !known[a] {
				return nil, errors.Wrapf(inputError("ccu: function-equation %q references unknown argument term %d", fe.Symbol, a), "AddSubProblem")
			}
		}
		if !known[fe.Result] {
			return nil, errors.Wrapf(inputError("ccu: function-equation %q references unknown result term %d", fe.Symbol, fe.Result), "AddSubProblem")
		}
	}

	for _, sg := range goal {
		for _, pr := range sg {
			if !known[pr.S] || !known[pr.T] {
				return nil, errors.Wrapf(inputError("ccu: goal references unknown term"), "AddSubProblem")
			}
		}
	}

	sp := &SubProblem{
		Domains: dcopy,
		FunEqs:  append([]FunEq(nil), funEqs...),
		Goal:    append(Goal(nil), goal...),
		active:  true,
	}
	p.SubProblems = append(p.SubProblems, sp)
	return sp, nil
}

// Activate toggles a sub-problem to participate in solving.
func (p *Problem) Activate(i int) { p.SubProblems[i].active = true }

// Deactivate toggles a sub-problem out of solving.
func (p *Problem) Deactivate(i int) { p.SubProblems[i].active = false }

// ActiveIndices returns the indices of currently active sub-problems, in
// input order.
func (p *Problem) ActiveIndices() []int {
	var out []int
	for i, sp := range p.SubProblems {
		if sp.active {
			out = append(out, i)
		}
	}
	return out
}

// IndexOf returns the position of t in p.Terms. Callers control term
// allocation so this is always present for any TermId drawn from p.Terms.
func (p *Problem) IndexOf(t TermId) int {
	for i, u := range p.Terms {
		if u == t {
			return i
		}
	}
	return -1
}

// Reset discards cached solve state, leaving the declared sub-problems and
// activation flags untouched.
func (p *Problem) Reset() {
	p.Result = Unknown
	p.IntAss = nil
}
