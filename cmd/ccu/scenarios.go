package main

import (
	"sort"

	"github.com/ccu-solve/ccu/pkg/ccu/problem"
)

// scenarios holds a handful of canned problems so ccu's behavior can be
// observed from the command line without writing a Go program against the
// library.
var scenarios = map[string]func() *problem.Problem{
	"direct-equality":         buildDirectEquality,
	"functionality":           buildFunctionalityPropagation,
	"conflicting-subproblems": buildConflictingSubProblems,
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mustProblem(p *problem.Problem, err error) *problem.Problem {
	if err != nil {
		panic(err)
	}
	return p
}

// buildDirectEquality builds a problem where an unconstrained shared
// domain lets any two terms collapse.
func buildDirectEquality() *problem.Problem {
	a, b, c := problem.TermId(0), problem.TermId(1), problem.TermId(2)
	p := mustProblem(problem.NewProblem([]problem.TermId{a, b, c}))
	if _, err := p.AddSubProblem(
		map[problem.TermId][]problem.TermId{a: {a, b, c}, b: {a, b, c}, c: {a, b, c}},
		nil,
		problem.Goal{{{S: a, T: b}}},
	); err != nil {
		panic(err)
	}
	return p
}

// buildFunctionalityPropagation builds a problem where the domain lets a
// collapse into b, and that collapse alone makes c=d derivable via
// functionality.
func buildFunctionalityPropagation() *problem.Problem {
	a, b, c, d := problem.TermId(0), problem.TermId(1), problem.TermId(2), problem.TermId(3)
	p := mustProblem(problem.NewProblem([]problem.TermId{a, b, c, d}))
	if _, err := p.AddSubProblem(
		map[problem.TermId][]problem.TermId{a: {a, b}, b: {a, b}, c: {c}, d: {d}},
		[]problem.FunEq{
			{Symbol: "f", Args: []problem.TermId{a}, Result: c},
			{Symbol: "f", Args: []problem.TermId{b}, Result: d},
		},
		problem.Goal{{{S: c, T: d}}},
	); err != nil {
		panic(err)
	}
	return p
}

// buildConflictingSubProblems builds a problem where two active
// sub-problems must simultaneously hold, and no assignment can satisfy
// both.
func buildConflictingSubProblems() *problem.Problem {
	a, b := problem.TermId(0), problem.TermId(1)
	p := mustProblem(problem.NewProblem([]problem.TermId{a, b}))
	if _, err := p.AddSubProblem(
		map[problem.TermId][]problem.TermId{a: {a, b}, b: {a, b}},
		nil,
		problem.Goal{{{S: a, T: b}}},
	); err != nil {
		panic(err)
	}
	if _, err := p.AddSubProblem(
		map[problem.TermId][]problem.TermId{a: {a}, b: {b}},
		nil,
		problem.Goal{{{S: a, T: b}}},
	); err != nil {
		panic(err)
	}
	return p
}
