package table

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccu-solve/ccu/pkg/ccu/cc"
	"github.com/ccu-solve/ccu/pkg/ccu/oracle"
	"github.com/ccu-solve/ccu/pkg/ccu/problem"
)

func newSolverFixture(t *testing.T) *Solver {
	o := oracle.NewGini()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	s, err := NewSolver(o, log)
	require.NoError(t, err)
	return s
}

// TestSolverDirectEquality covers a goal that holds on the very first
// round, purely from the domain constraint, so no table is ever
// instantiated.
func TestSolverDirectEquality(t *testing.T) {
	a, b, c := problem.TermId(0), problem.TermId(1), problem.TermId(2)
	p, err := problem.NewProblem([]problem.TermId{a, b, c})
	require.NoError(t, err)
	_, err = p.AddSubProblem(
		map[problem.TermId][]problem.TermId{a: {a, b, c}, b: {a, b, c}, c: {a, b, c}},
		nil,
		problem.Goal{{{S: a, T: b}}},
	)
	require.NoError(t, err)

	s := newSolverFixture(t)
	res, err := s.Solve(context.Background(), p, 0)
	require.NoError(t, err)
	assert.Equal(t, problem.SAT, res)
	assert.Empty(t, s.LastCore)
	assert.True(t, cc.Verify(p.Terms, nil, p.IntAss, problem.Goal{{{S: a, T: b}}}))
}

// TestSolverFunctionalityPropagation covers a case where the naive probe
// fails, so sub-problem 0's table is instantiated and grown one column,
// at which point a model collapsing a and b makes c and d collapse too.
func TestSolverFunctionalityPropagation(t *testing.T) {
	a, b, c, d := problem.TermId(0), problem.TermId(1), problem.TermId(2), problem.TermId(3)
	p, err := problem.NewProblem([]problem.TermId{a, b, c, d})
	require.NoError(t, err)
	funEqs := []problem.FunEq{
		{Symbol: "f", Args: []problem.TermId{a}, Result: c},
		{Symbol: "f", Args: []problem.TermId{b}, Result: d},
	}
	_, err = p.AddSubProblem(
		map[problem.TermId][]problem.TermId{a: {a, b}, b: {a, b}, c: {c}, d: {d}},
		funEqs,
		problem.Goal{{{S: c, T: d}}},
	)
	require.NoError(t, err)

	s := newSolverFixture(t)
	res, err := s.Solve(context.Background(), p, 1000)
	require.NoError(t, err)
	assert.Equal(t, problem.SAT, res)
	assert.Equal(t, []int{0}, s.LastCore)
	assert.True(t, cc.Verify(p.Terms, funEqs, p.IntAss, problem.Goal{{{S: c, T: d}}}))
}

// TestSolverUnsatAcrossSubProblems covers the case where, once the two
// sub-problems' domains intersect down to singletons, sub-problem 0's
// table has no function-equations to propagate through, its V-set is
// permanently empty, and growing it further can never help. The UNSAT is
// a genuine fixed point, not a shallow unfolding.
func TestSolverUnsatAcrossSubProblems(t *testing.T) {
	a, b := problem.TermId(0), problem.TermId(1)
	p, err := problem.NewProblem([]problem.TermId{a, b})
	require.NoError(t, err)
	_, err = p.AddSubProblem(
		map[problem.TermId][]problem.TermId{a: {a, b}, b: {a, b}},
		nil,
		problem.Goal{{{S: a, T: b}}},
	)
	require.NoError(t, err)
	_, err = p.AddSubProblem(
		map[problem.TermId][]problem.TermId{a: {a}, b: {b}},
		nil,
		problem.Goal{{{S: a, T: b}}},
	)
	require.NoError(t, err)

	s := newSolverFixture(t)
	res, err := s.Solve(context.Background(), p, 1000)
	require.NoError(t, err)
	assert.Equal(t, problem.UNSAT, res)
	assert.Equal(t, []int{0}, s.LastCore)
}

// TestSolverSkipsInactiveSubProblems mirrors pkg/ccu/lazy's test of the
// same name: an inactive sub-problem contributes no domain constraint and
// no verification obligation.
func TestSolverSkipsInactiveSubProblems(t *testing.T) {
	a, b := problem.TermId(0), problem.TermId(1)
	p, err := problem.NewProblem([]problem.TermId{a, b})
	require.NoError(t, err)
	_, err = p.AddSubProblem(
		map[problem.TermId][]problem.TermId{a: {a, b}, b: {a, b}},
		nil,
		problem.Goal{{{S: a, T: b}}},
	)
	require.NoError(t, err)
	_, err = p.AddSubProblem(
		map[problem.TermId][]problem.TermId{a: {a}, b: {b}},
		nil,
		problem.Goal{{{S: a, T: b}}},
	)
	require.NoError(t, err)
	p.Deactivate(1)

	s := newSolverFixture(t)
	res, err := s.Solve(context.Background(), p, 1000)
	require.NoError(t, err)
	assert.Equal(t, problem.SAT, res)
}

func TestSolverEmptyGoalIsUnsat(t *testing.T) {
	a := problem.TermId(0)
	p, err := problem.NewProblem([]problem.TermId{a})
	require.NoError(t, err)
	_, err = p.AddSubProblem(nil, nil, problem.Goal{})
	require.NoError(t, err)

	s := newSolverFixture(t)
	res, err := s.Solve(context.Background(), p, 1000)
	require.NoError(t, err)
	assert.Equal(t, problem.UNSAT, res)
}

func TestSolverEmptySubGoalIsTriviallySat(t *testing.T) {
	a, b := problem.TermId(0), problem.TermId(1)
	p, err := problem.NewProblem([]problem.TermId{a, b})
	require.NoError(t, err)
	_, err = p.AddSubProblem(nil, nil, problem.Goal{{}})
	require.NoError(t, err)

	s := newSolverFixture(t)
	res, err := s.Solve(context.Background(), p, 1000)
	require.NoError(t, err)
	assert.Equal(t, problem.SAT, res)
	assert.Empty(t, s.LastCore)
}

func TestSolverRespectsCancelledContext(t *testing.T) {
	a := problem.TermId(0)
	p, err := problem.NewProblem([]problem.TermId{a})
	require.NoError(t, err)
	_, err = p.AddSubProblem(nil, nil, problem.Goal{{}})
	require.NoError(t, err)

	s := newSolverFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Solve(ctx, p, 1000)
	assert.Error(t, err)
}
