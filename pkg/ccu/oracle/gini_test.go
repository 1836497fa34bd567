package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiniOracleBasicClause(t *testing.T) {
	o := NewGini()
	a := o.Alloc(1)
	b := o.Alloc(1)

	require.NoError(t, o.AddClause(a, b))
	require.NoError(t, o.AddClause(-a))

	sat, err := o.IsSatisfiable()
	require.NoError(t, err)
	assert.True(t, sat)
	assert.False(t, o.Model(a))
	assert.True(t, o.Model(b))
}

func TestGiniOracleUnitContradiction(t *testing.T) {
	o := NewGini()
	a := o.Alloc(1)

	require.NoError(t, o.AddClause(a))
	err := o.AddClause(-a)
	var ce *ErrContradiction
	require.ErrorAs(t, err, &ce)
}

func TestGiniOracleAssumeIsForgotten(t *testing.T) {
	o := NewGini()
	a := o.Alloc(1)
	require.NoError(t, o.AddClause(a, -a)) // tautology, keeps a "used"

	o.Assume(a)
	sat, err := o.IsSatisfiable()
	require.NoError(t, err)
	assert.True(t, sat)

	o.Assume(-a)
	sat, err = o.IsSatisfiable()
	require.NoError(t, err)
	assert.True(t, sat)
}

func TestGiniOracleUnsatWhy(t *testing.T) {
	o := NewGini()
	a := o.Alloc(1)
	require.NoError(t, o.AddClause(a, a))

	o.Assume(-a)
	sat, err := o.IsSatisfiable()
	require.NoError(t, err)
	assert.False(t, sat)
	assert.NotEmpty(t, o.Why())
}
