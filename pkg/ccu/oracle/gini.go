package oracle

import (
	"errors"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

var errTimeout = errors.New("oracle: solve cancelled before a result was available")

// giniOracle implements Oracle against a real github.com/go-air/gini
// solver instance.
type giniOracle struct {
	g       *gini.Gini
	nextVar int
	units   map[int]bool // variable id -> pinned polarity, for contradiction detection
}

// NewGini returns an Oracle backed by a fresh gini solver.
func NewGini() Oracle {
	return &giniOracle{
		g:       gini.New(),
		nextVar: 1,
		units:   make(map[int]bool),
	}
}

func lit(v int) z.Lit {
	if v > 0 {
		return z.Var(v).Pos()
	}
	return z.Var(-v).Neg()
}

func (o *giniOracle) Alloc(n int) int {
	first := o.nextVar
	o.nextVar += n
	return first
}

func (o *giniOracle) AddClause(lits ...int) error {
	if len(lits) == 1 {
		v := lits[0]
		want := v > 0
		id := v
		if id < 0 {
			id = -id
		}
		if have, ok := o.units[id]; ok && have != want {
			return &ErrContradiction{Lits: lits}
		}
		o.units[id] = want
	}
	for _, l := range lits {
		o.g.Add(lit(l))
	}
	o.g.Add(z.LitNull)
	return nil
}

func (o *giniOracle) Assume(lits ...int) {
	ms := make([]z.Lit, len(lits))
	for i, l := range lits {
		ms[i] = lit(l)
	}
	o.g.Assume(ms...)
}

func (o *giniOracle) IsSatisfiable() (bool, error) {
	switch o.g.Solve() {
	case 1:
		return true, nil
	case -1:
		return false, nil
	default:
		return false, errTimeout
	}
}

func (o *giniOracle) Model(v int) bool {
	return o.g.Value(lit(v))
}

func (o *giniOracle) Why() []int {
	ms := o.g.Why(nil)
	out := make([]int, len(ms))
	for i, m := range ms {
		if m.IsPos() {
			out[i] = int(m.Var())
		} else {
			out[i] = -int(m.Var())
		}
	}
	return out
}

func (o *giniOracle) SetTimeoutMs(ms int) {
	// gini's Gini.Solve has no direct per-call timeout knob. Cancellation
	// in this engine flows through the timeout checker passed to the
	// solve driver, not through the oracle, so this is a no-op.
	_ = ms
}
