// Package unsatcore implements incremental unsat core extraction: grow a
// candidate set of sub-problems one at a time, in activation order,
// re-solving the table strategy from scratch against exactly that
// candidate each time, until the candidate itself is unsatisfiable. The
// table strategy's own saturation check already guarantees any UNSAT it
// reports is a genuine fixed point, so this package trusts that result
// directly rather than re-deriving it.
package unsatcore

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ccu-solve/ccu/pkg/ccu/oracle"
	"github.com/ccu-solve/ccu/pkg/ccu/problem"
	"github.com/ccu-solve/ccu/pkg/ccu/table"
)

// Extractor runs the incremental core search against a Problem. It mutates
// and restores the problem's sub-problem activation flags and Result/IntAss
// while it runs.
type Extractor struct {
	log logrus.FieldLogger
}

// New builds an Extractor.
func New(log logrus.FieldLogger) *Extractor {
	return &Extractor{log: log}
}

// Extract returns, in activation order, the shortest prefix of p's
// currently active sub-problems that is itself jointly unsatisfiable.
// Precondition: the full active set is unsatisfiable (Extract is only
// meaningful to call after a Solve call already reported UNSAT).
//
// hint, if non-empty, is tried first in its entirety and returned as is if
// it is UNSAT: the solve-time LastCore of pkg/ccu/table.Solver (the
// sub-problems a table was built for) or of pkg/ccu/lazy.Solver (the
// sub-problems that produced a blocking clause).
// Extract always re-verifies it by actually solving a fresh candidate, so
// a stale or wrong hint only costs an extra trial, never correctness.
func (e *Extractor) Extract(ctx context.Context, p *problem.Problem, hint []int) ([]int, error) {
	active := p.ActiveIndices()
	if len(active) == 0 {
		return nil, ErrNoActiveSubProblems
	}

	restore := make(map[int]bool, len(p.SubProblems))
	for i := range p.SubProblems {
		restore[i] = p.SubProblems[i].Active()
	}
	origResult, origIntAss := p.Result, p.IntAss
	defer func() {
		for i, wasActive := range restore {
			if wasActive {
				p.Activate(i)
			} else {
				p.Deactivate(i)
			}
		}
		p.Result, p.IntAss = origResult, origIntAss
	}()

	if len(hint) > 0 {
		res, err := e.trial(ctx, p, active, hint)
		if err != nil {
			return nil, err
		}
		if res == problem.UNSAT {
			return append([]int(nil), hint...), nil
		}
	}

	for i := 1; i <= len(active); i++ {
		candidate := active[:i]
		res, err := e.trial(ctx, p, active, candidate)
		if err != nil {
			return nil, err
		}
		if res == problem.UNSAT {
			out := append([]int(nil), candidate...)
			return out, nil
		}
	}

	// Every prefix, including the full active set, reported SAT: the
	// caller's precondition that the full set is UNSAT did not hold.
	return nil, ErrCoreNotFound
}

// trial deactivates every currently-active sub-problem, activates exactly
// candidate, and solves a fresh table strategy against a fresh oracle.
func (e *Extractor) trial(ctx context.Context, p *problem.Problem, active, candidate []int) (problem.Result, error) {
	for _, i := range active {
		p.Deactivate(i)
	}
	for _, i := range candidate {
		p.Activate(i)
	}
	p.Reset()

	o := oracle.NewGini()
	s, err := table.NewSolver(o, e.log)
	if err != nil {
		return problem.Unknown, err
	}
	return s.Solve(ctx, p, 0)
}
