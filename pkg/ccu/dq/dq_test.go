package dq

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccu-solve/ccu/pkg/ccu/problem"
)

func ids(vs ...int) []problem.TermId {
	out := make([]problem.TermId, len(vs))
	for i, v := range vs {
		out[i] = problem.TermId(v)
	}
	return out
}

func TestNewMatrixFromDomains(t *testing.T) {
	a, b, c := problem.TermId(0), problem.TermId(1), problem.TermId(2)
	terms := []problem.TermId{a, b, c}
	domains := map[problem.TermId][]problem.TermId{
		a: {a, b},
		b: {a, b},
		c: {c},
	}
	m := New(terms, domains, nil)
	assert.True(t, m.Eq(a, b))
	assert.False(t, m.Eq(a, c))
	assert.False(t, m.Eq(b, c))
}

func TestCheckFunctionalityPropagates(t *testing.T) {
	a, b, c, d := problem.TermId(0), problem.TermId(1), problem.TermId(2), problem.TermId(3)
	terms := []problem.TermId{a, b, c, d}
	domains := map[problem.TermId][]problem.TermId{
		a: {a, b}, b: {a, b}, c: {c}, d: {d},
	}
	funEqs := []problem.FunEq{
		{Symbol: "f", Args: ids(0), Result: c},
		{Symbol: "f", Args: ids(1), Result: d},
	}
	m := New(terms, domains, funEqs)
	assert.False(t, m.Eq(c, d))
	m.Check()
	assert.True(t, m.Eq(c, d))
}

func TestCheckDoesNotFireOnMismatchedSymbol(t *testing.T) {
	a, b, c, d := problem.TermId(0), problem.TermId(1), problem.TermId(2), problem.TermId(3)
	terms := []problem.TermId{a, b, c, d}
	domains := map[problem.TermId][]problem.TermId{
		a: {a, b}, b: {a, b}, c: {c}, d: {d},
	}
	funEqs := []problem.FunEq{
		{Symbol: "f", Args: ids(0), Result: c},
		{Symbol: "g", Args: ids(1), Result: d},
	}
	m := New(terms, domains, funEqs)
	m.Check()
	assert.False(t, m.Eq(c, d))
}

func TestCascadeRemoveRetractsDerivedConsequence(t *testing.T) {
	a, b, c, d := problem.TermId(0), problem.TermId(1), problem.TermId(2), problem.TermId(3)
	terms := []problem.TermId{a, b, c, d}
	domains := map[problem.TermId][]problem.TermId{
		a: {a, b}, b: {a, b}, c: {c}, d: {d},
	}
	funEqs := []problem.FunEq{
		{Symbol: "f", Args: ids(0), Result: c},
		{Symbol: "f", Args: ids(1), Result: d},
	}
	m := New(terms, domains, funEqs)
	m.Check()
	assert.True(t, m.Eq(c, d))

	m.CascadeRemove(a, b)
	assert.False(t, m.Eq(a, b))
	assert.False(t, m.Eq(c, d), "c=d should be retracted once a=b is forced impossible")
}

func TestINEQAndBaseINEQ(t *testing.T) {
	a, b, c := problem.TermId(0), problem.TermId(1), problem.TermId(2)
	terms := []problem.TermId{a, b, c}
	domains := map[problem.TermId][]problem.TermId{
		a: {a, b}, b: {a, b}, c: {c},
	}
	m := New(terms, domains, nil)
	ineq := m.INEQ()
	assert.Len(t, ineq, 2) // (a,c) and (b,c)
	assert.ElementsMatch(t, ineq, m.BaseINEQ())
}

func TestMinimiseKeepsOnlyNecessaryDisequalities(t *testing.T) {
	s1, s2, s3, s4 := problem.TermId(0), problem.TermId(1), problem.TermId(2), problem.TermId(3)
	terms := []problem.TermId{s1, s2, s3, s4}
	// Every term's domain is just itself: every pair starts disequal.
	domains := map[problem.TermId][]problem.TermId{
		s1: {s1}, s2: {s2}, s3: {s3}, s4: {s4},
	}
	m := New(terms, domains, nil)
	// Satisfying the subgoal needs BOTH s1=s3 and s2=s4; either pair
	// alone staying disequal is enough to block it, so the minimal
	// hitting set keeps exactly one of the two.
	goal := problem.Goal{{{S: s1, T: s3}, {S: s2, T: s4}}}
	m.Minimise(goal, nil)

	ineq := m.INEQ()
	assert.Len(t, ineq, 1)
	assert.False(t, m.goalHolds(goal))
}

func TestMinimiseIsIdempotent(t *testing.T) {
	a, b, c, d := problem.TermId(0), problem.TermId(1), problem.TermId(2), problem.TermId(3)
	terms := []problem.TermId{a, b, c, d}
	domains := map[problem.TermId][]problem.TermId{
		a: {a, b}, b: {a, b}, c: {c}, d: {d},
	}
	funEqs := []problem.FunEq{
		{Symbol: "f", Args: ids(0), Result: c},
		{Symbol: "f", Args: ids(1), Result: d},
	}
	m := New(terms, domains, funEqs)
	m.Check()
	goal := problem.Goal{{{S: c, T: d}}}
	m.Minimise(goal, nil)
	first := m.INEQ()
	m.Minimise(goal, nil)
	second := m.INEQ()
	assert.ElementsMatch(t, first, second)
}
