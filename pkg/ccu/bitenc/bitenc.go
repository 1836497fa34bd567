// Package bitenc implements three bit-encoding primitives: TermEqInt,
// TermEqTerm, TermGtTerm. All three are pure Tseitin emitters over
// little-endian bit vectors of variable ids; none memoises its own output,
// since memoisation is a performance property that belongs to the
// column/table layer that owns term identity, not to these primitives.
package bitenc

import "github.com/ccu-solve/ccu/pkg/ccu/gate"

// TermEqInt returns a fresh bit e with e <-> (value(bits) = index), where
// value(bits) is the little-endian unsigned integer bits encodes and index
// is the target integer. For each bit position, the corresponding input
// bit (or its negation, depending on index's binary expansion) is
// conjoined.
func TermEqInt(tr *gate.Translator, bits []int, index int) (int, error) {
	lits := make([]int, len(bits))
	for k, b := range bits {
		if (index>>uint(k))&1 == 1 {
			lits[k] = b
		} else {
			lits[k] = tr.Not(b)
		}
	}
	return tr.And(lits...)
}

// pad extends the shorter of a, b on the high side with alloc.ZeroBit so
// both have the same length.
func pad(alloc *gate.Allocator, a, b []int) ([]int, []int) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	pa := make([]int, n)
	pb := make([]int, n)
	for i := 0; i < n; i++ {
		if i < len(a) {
			pa[i] = a[i]
		} else {
			pa[i] = alloc.ZeroBit
		}
		if i < len(b) {
			pb[i] = b[i]
		} else {
			pb[i] = alloc.ZeroBit
		}
	}
	return pa, pb
}

// TermEqTerm returns a fresh bit e with e <-> AND_i (bit_i(a) <-> bit_i(b)).
func TermEqTerm(tr *gate.Translator, alloc *gate.Allocator, a, b []int) (int, error) {
	pa, pb := pad(alloc, a, b)
	iffs := make([]int, len(pa))
	for i := range pa {
		iff, err := tr.Iff(pa[i], pb[i])
		if err != nil {
			return 0, err
		}
		iffs[i] = iff
	}
	return tr.And(iffs...)
}

// TermGtTerm returns a fresh bit e with e <-> (value(a) > value(b)) as
// unsigned integers, processed high-to-low with two rolling chains:
// eBits[k] ("top k+1 bits, high-to-low, are equal") and mBits[k] ("left is
// already strictly greater considering only the top k+1 bits"). The
// topmost bit's prefix-equal condition is vacuously true (ONEBIT), so the
// base case folds into the general recurrence rather than being
// special-cased.
func TermGtTerm(tr *gate.Translator, alloc *gate.Allocator, a, b []int) (int, error) {
	pa, pb := pad(alloc, a, b)
	n := len(pa)

	eBits := alloc.OneBit
	mBits := alloc.ZeroBit
	for k := n - 1; k >= 0; k-- {
		left, right := pa[k], pb[k]

		bitGt, err := tr.And(left, tr.Not(right))
		if err != nil {
			return 0, err
		}
		prefixGt, err := tr.And(eBits, bitGt)
		if err != nil {
			return 0, err
		}
		mBits, err = tr.Or(prefixGt, mBits)
		if err != nil {
			return 0, err
		}

		bitEq, err := tr.Iff(left, right)
		if err != nil {
			return 0, err
		}
		eBits, err = tr.And(eBits, bitEq)
		if err != nil {
			return 0, err
		}
	}
	return mBits, nil
}
