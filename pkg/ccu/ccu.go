// Package ccu is the public entry point for the simultaneous
// congruence-closure unification engine: pick a strategy, build or attach
// a Problem, solve it, and read back a model or an unsat core. It owns no
// algorithm of its own; it dispatches to pkg/ccu/lazy, pkg/ccu/table, and
// pkg/ccu/unsatcore.
package ccu

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/ccu-solve/ccu/pkg/ccu/config"
	"github.com/ccu-solve/ccu/pkg/ccu/lazy"
	"github.com/ccu-solve/ccu/pkg/ccu/oracle"
	"github.com/ccu-solve/ccu/pkg/ccu/problem"
	"github.com/ccu-solve/ccu/pkg/ccu/table"
	"github.com/ccu-solve/ccu/pkg/ccu/unsatcore"
)

// Strategy selects which algorithm Solve dispatches to.
type Strategy int

const (
	// Lazy is the guess-verify-block CEGAR strategy (pkg/ccu/lazy).
	Lazy Strategy = iota
	// Table is the bounded congruence-closure unfolding strategy
	// (pkg/ccu/table).
	Table
)

// ParseStrategy maps a config string onto a Strategy. cmd/ccu calls this
// before building the problem, so a bad --strategy value is rejected before
// any solving starts, not silently defaulted.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "lazy":
		return Lazy, nil
	case "table":
		return Table, nil
	default:
		return Lazy, errors.New("ccu: unknown strategy " + s + " (want \"lazy\" or \"table\")")
	}
}

// Solver is the public handle: one Strategy, one Problem, one log sink.
type Solver struct {
	strategy Strategy
	log      logrus.FieldLogger
	cfg      config.Config

	problem      *problem.Problem
	lastCoreHint []int
}

// NewSolver builds a Solver. A nil log falls back to logrus's standard
// logger when no FieldLogger is injected.
func NewSolver(strategy Strategy, log logrus.FieldLogger, cfg config.Config) *Solver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Solver{strategy: strategy, log: log, cfg: cfg}
}

// CreateProblem builds a fresh, empty Problem over terms and attaches it.
// Callers add sub-problems with the returned Problem's own AddSubProblem;
// Solver only needs the pointer, not a copy of the data.
func (s *Solver) CreateProblem(terms []problem.TermId) (*problem.Problem, error) {
	p, err := problem.NewProblem(terms)
	if err != nil {
		return nil, err
	}
	s.problem = p
	return p, nil
}

// Attach points the Solver at an already-built Problem, e.g. one
// constructed directly via the problem package's own API.
func (s *Solver) Attach(p *problem.Problem) {
	s.problem = p
}

func (s *Solver) requireProblem() {
	if s.problem == nil {
		panic(&ProgrammerError{Reason: "no problem attached, call CreateProblem or Attach first"})
	}
}

// ActivateProblem and DeactivateProblem toggle one sub-problem's
// participation in solving. See problem.Problem.Activate/Deactivate.
func (s *Solver) ActivateProblem(i int)   { s.requireProblem(); s.problem.Activate(i) }
func (s *Solver) DeactivateProblem(i int) { s.requireProblem(); s.problem.Deactivate(i) }

// Solve dispatches to the configured strategy against a fresh oracle
// instance, then normalises its iteration-limit and cancellation errors
// into ErrTimeout.
func (s *Solver) Solve(ctx context.Context) (problem.Result, error) {
	s.requireProblem()

	o := oracle.NewGini()
	o.SetTimeoutMs(s.cfg.SatTimeoutMs)

	var res problem.Result
	var err error
	switch s.strategy {
	case Table:
		var ts *table.Solver
		ts, err = table.NewSolver(o, s.log)
		if err == nil {
			res, err = ts.Solve(ctx, s.problem, s.cfg.MaxIterations)
			s.lastCoreHint = ts.LastCore
		}
	default:
		var ls *lazy.Solver
		ls, err = lazy.New(o, s.log)
		if err == nil {
			res, err = ls.Solve(ctx, s.problem, s.cfg.MaxIterations)
			s.lastCoreHint = ls.LastCore
		}
	}
	return s.normalize(res, err)
}

func (s *Solver) normalize(res problem.Result, err error) (problem.Result, error) {
	if err == nil {
		return res, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, lazy.ErrIterationLimit) || errors.Is(err, table.ErrIterationLimit) {
		return problem.Unknown, ErrTimeout
	}
	return problem.Unknown, err
}

// Model returns the winning assignment from the most recent Solve call.
func (s *Solver) Model() (map[problem.TermId]problem.TermId, error) {
	s.requireProblem()
	if s.problem.Result != problem.SAT {
		return nil, &UnsatError{Indices: s.lastCoreHint}
	}
	return s.problem.IntAss, nil
}

// UnsatCore finds a jointly unsatisfiable set of active sub-problems for
// the most recent UNSAT result: the solve-time core hint if re-solving it
// alone is UNSAT, otherwise the shortest growing prefix of active
// sub-problems. Calling it without an UNSAT result is a caller contract
// violation, not a solver outcome.
func (s *Solver) UnsatCore(ctx context.Context) ([]int, error) {
	s.requireProblem()
	if s.problem.Result != problem.UNSAT {
		panic(&ProgrammerError{Reason: "UnsatCore called without a prior UNSAT result"})
	}
	ex := unsatcore.New(s.log)
	return ex.Extract(ctx, s.problem, s.lastCoreHint)
}

// SolveAgain clears the previous Solve's cached result and runs Solve
// once more against the same sub-problems and activation flags. Useful
// after ActivateProblem/DeactivateProblem changed which sub-problems
// participate.
func (s *Solver) SolveAgain(ctx context.Context) (bool, error) {
	s.requireProblem()
	s.problem.Reset()
	res, err := s.Solve(ctx)
	if err != nil {
		return false, err
	}
	return res == problem.SAT, nil
}

// Reset discards cached solve state without touching the declared
// sub-problems or their activation flags.
func (s *Solver) Reset() {
	if s.problem != nil {
		s.problem.Reset()
	}
	s.lastCoreHint = nil
}
