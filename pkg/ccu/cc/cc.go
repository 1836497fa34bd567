// Package cc is the reference congruence-closure verifier used by the lazy
// solver to check a candidate integer assignment against a sub-problem's
// function-equations and goal, and used by the table solver to decide
// whether a decoded model already satisfies every sub-problem.
package cc

import "github.com/ccu-solve/ccu/pkg/ccu/problem"

// unionFind is a path-compressed, union-by-size disjoint-set structure
// over problem.TermId.
type unionFind struct {
	parent map[problem.TermId]problem.TermId
	size   map[problem.TermId]int
}

func newUnionFind(terms []problem.TermId) *unionFind {
	uf := &unionFind{
		parent: make(map[problem.TermId]problem.TermId, len(terms)),
		size:   make(map[problem.TermId]int, len(terms)),
	}
	for _, t := range terms {
		uf.parent[t] = t
		uf.size[t] = 1
	}
	return uf
}

func (uf *unionFind) find(t problem.TermId) problem.TermId {
	root := t
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[t] != root {
		next := uf.parent[t]
		uf.parent[t] = root
		t = next
	}
	return root
}

func (uf *unionFind) union(a, b problem.TermId) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}

// Close builds the union-find over terms, unions every term with its
// assignment, then repeatedly applies the functionality axiom
// (find(ai) = find(bi) for all i => union(r1, r2)) to a fixed point.
func Close(terms []problem.TermId, funEqs []problem.FunEq, intAss map[problem.TermId]problem.TermId) *unionFind {
	uf := newUnionFind(terms)
	for _, t := range terms {
		if d, ok := intAss[t]; ok {
			uf.union(t, d)
		}
	}
	for {
		changed := false
		for i := range funEqs {
			for j := i + 1; j < len(funEqs); j++ {
				a, b := funEqs[i], funEqs[j]
				if a.Symbol != b.Symbol || len(a.Args) != len(b.Args) {
					continue
				}
				match := true
				for k := range a.Args {
					if uf.find(a.Args[k]) != uf.find(b.Args[k]) {
						match = false
						break
					}
				}
				if !match {
					continue
				}
				if uf.find(a.Result) != uf.find(b.Result) {
					uf.union(a.Result, b.Result)
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return uf
}

// Verify reports whether intAss, closed under funEqs' functionality axiom,
// makes at least one sub-goal of goal hold.
func Verify(terms []problem.TermId, funEqs []problem.FunEq, intAss map[problem.TermId]problem.TermId, goal problem.Goal) bool {
	if len(goal) == 0 {
		return false
	}
	uf := Close(terms, funEqs, intAss)
	for _, sg := range goal {
		if subGoalHolds(uf, sg) {
			return true
		}
	}
	return false
}

func subGoalHolds(uf *unionFind, sg problem.SubGoal) bool {
	for _, pr := range sg {
		if uf.find(pr.S) != uf.find(pr.T) {
			return false
		}
	}
	return true
}

// Classes returns, given a closed union-find, the equivalence classes as a
// map from representative to members. Used by callers that need the full
// partition rather than pairwise queries.
func Classes(uf *unionFind, terms []problem.TermId) map[problem.TermId][]problem.TermId {
	out := make(map[problem.TermId][]problem.TermId)
	for _, t := range terms {
		r := uf.find(t)
		out[r] = append(out[r], t)
	}
	return out
}
