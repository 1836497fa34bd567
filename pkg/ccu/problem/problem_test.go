package problem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProblemRejectsEmpty(t *testing.T) {
	_, err := NewProblem(nil)
	require.Error(t, err)
}

func TestNewProblemRejectsNegativeId(t *testing.T) {
	_, err := NewProblem([]TermId{0, -1, 2})
	require.Error(t, err)
}

func TestNewProblemRejectsDuplicateId(t *testing.T) {
	_, err := NewProblem([]TermId{0, 1, 1})
	require.Error(t, err)
}

func TestBitsForTermCount(t *testing.T) {
	cases := []struct {
		n, want int
	}{
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 3},
		{5, 4},
		{8, 4},
		{9, 5},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, bitsFor(c.n), "n=%d", c.n)
	}
}

func TestAddSubProblemFillsSelfDomain(t *testing.T) {
	p, err := NewProblem([]TermId{0, 1, 2})
	require.NoError(t, err)

	sp, err := p.AddSubProblem(map[TermId][]TermId{0: {0, 1}}, nil, Goal{{{0, 1}}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []TermId{1, 2}, sp.Domains[1])
	assert.ElementsMatch(t, []TermId{2}, sp.Domains[2])
	assert.True(t, sp.Active())
}

func TestAddSubProblemRejectsDomainWithoutSelf(t *testing.T) {
	p, err := NewProblem([]TermId{0, 1, 2})
	require.NoError(t, err)

	_, err = p.AddSubProblem(map[TermId][]TermId{0: {1, 2}}, nil, nil)
	require.Error(t, err)
}

func TestAddSubProblemRejectsUnknownTerm(t *testing.T) {
	p, err := NewProblem([]TermId{0, 1})
	require.NoError(t, err)

	_, err = p.AddSubProblem(nil, []FunEq{{Symbol: "f", Args: []TermId{5}, Result: 0}}, nil)
	require.Error(t, err)
}

func TestActivateDeactivate(t *testing.T) {
	p, err := NewProblem([]TermId{0, 1})
	require.NoError(t, err)
	_, err = p.AddSubProblem(nil, nil, Goal{{}})
	require.NoError(t, err)
	_, err = p.AddSubProblem(nil, nil, Goal{{}})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, p.ActiveIndices())
	p.Deactivate(0)
	assert.Equal(t, []int{1}, p.ActiveIndices())
	p.Activate(0)
	assert.Equal(t, []int{0, 1}, p.ActiveIndices())
}

func TestResetClearsCachedResult(t *testing.T) {
	p, err := NewProblem([]TermId{0, 1})
	require.NoError(t, err)
	p.Result = SAT
	p.IntAss = map[TermId]TermId{0: 0}
	p.Reset()
	assert.Equal(t, Unknown, p.Result)
	assert.Nil(t, p.IntAss)
}
