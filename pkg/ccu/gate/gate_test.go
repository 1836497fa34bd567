package gate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccu-solve/ccu/pkg/ccu/oracle"
)

func newFixture(t *testing.T) (oracle.Oracle, *Allocator, *Translator) {
	o := oracle.NewGini()
	a, err := NewAllocator(o)
	require.NoError(t, err)
	tr := NewTranslator(o, a)
	return o, a, tr
}

// assertEquiv checks that fixing gate to want forces every combination of
// inputs consistent with want, and rejects every combination that isn't,
// by brute-force enumeration over the small input space.
func assertEquiv(t *testing.T, o oracle.Oracle, y int, inputs []int, rel func(vals []int) bool) {
	n := len(inputs)
	for mask := 0; mask < (1 << n); mask++ {
		vals := make([]int, n)
		assumes := make([]int, 0, n+1)
		for i := 0; i < n; i++ {
			bit := (mask >> i) & 1
			vals[i] = bit
			if bit == 1 {
				assumes = append(assumes, inputs[i])
			} else {
				assumes = append(assumes, -inputs[i])
			}
		}
		want := rel(vals)
		if want {
			assumes = append(assumes, y)
		} else {
			assumes = append(assumes, -y)
		}
		o.Assume(assumes...)
		sat, err := o.IsSatisfiable()
		require.NoError(t, err)
		require.True(t, sat, "mask=%d want=%v", mask, want)

		assumes[len(assumes)-1] = -assumes[len(assumes)-1]
		o.Assume(assumes...)
		sat, err = o.IsSatisfiable()
		require.NoError(t, err)
		require.False(t, sat, "mask=%d want=%v", mask, want)
	}
}

func TestAndGate(t *testing.T) {
	o, a, tr := newFixture(t)
	x1 := a.Alloc(1)
	x2 := a.Alloc(1)
	x3 := a.Alloc(1)
	y, err := tr.And(x1, x2, x3)
	require.NoError(t, err)

	assertEquiv(t, o, y, []int{x1, x2, x3}, func(v []int) bool {
		return v[0] == 1 && v[1] == 1 && v[2] == 1
	})
}

func TestOrGate(t *testing.T) {
	o, a, tr := newFixture(t)
	x1 := a.Alloc(1)
	x2 := a.Alloc(1)
	y, err := tr.Or(x1, x2)
	require.NoError(t, err)

	assertEquiv(t, o, y, []int{x1, x2}, func(v []int) bool {
		return v[0] == 1 || v[1] == 1
	})
}

func TestIffGate(t *testing.T) {
	o, a, tr := newFixture(t)
	x1 := a.Alloc(1)
	x2 := a.Alloc(1)
	y, err := tr.Iff(x1, x2)
	require.NoError(t, err)

	assertEquiv(t, o, y, []int{x1, x2}, func(v []int) bool {
		return v[0] == v[1]
	})
}

func TestNotGateIsJustNegation(t *testing.T) {
	_, a, tr := newFixture(t)
	x := a.Alloc(1)
	require.Equal(t, -x, tr.Not(x))
}

func TestGateFalsePinsUnitFalse(t *testing.T) {
	o, a, _ := newFixture(t)
	x := a.Alloc(1)
	tr := NewTranslator(o, a)
	require.NoError(t, tr.GateFalse(x))

	o.Assume(x)
	sat, err := o.IsSatisfiable()
	require.NoError(t, err)
	require.False(t, sat)
}

func TestPinnedBits(t *testing.T) {
	o, a, _ := newFixture(t)
	sat, err := o.IsSatisfiable()
	require.NoError(t, err)
	require.True(t, sat)
	require.True(t, o.Model(a.OneBit))
	require.False(t, o.Model(a.ZeroBit))
}
