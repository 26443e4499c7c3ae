package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
)

func cubicCrystal() *crystal.Crystal {
	m := linalg.Diag(10, 10, 10)
	return crystal.New(m, nil)
}

func TestExpandAtomFarFromAnyFaceHasNoDuplicates(t *testing.T) {
	c := cubicCrystal()
	c.AddAtom(1, linalg.Vector3{X: 0.5, Y: 0.5, Z: 0.5})

	exp := Expand(c, 0.5)
	assert.Len(t, exp.Atoms, 1)
	assert.Empty(t, exp.Duplicates)
}

func TestExpandFaceAtomGetsOneDuplicate(t *testing.T) {
	c := cubicCrystal()
	c.AddAtom(1, linalg.Vector3{X: 0.01, Y: 0.5, Z: 0.5})

	exp := Expand(c, 0.5)
	require.Len(t, exp.Atoms, 2)
	rng, ok := exp.Duplicates[0]
	require.True(t, ok)
	assert.Equal(t, Range{First: 1, Last: 1}, rng)
	assert.InDelta(t, 1.01, exp.Atoms[1].Frac.X, 1e-9)
}

func TestExpandEdgeAtomGetsThreeDuplicates(t *testing.T) {
	c := cubicCrystal()
	c.AddAtom(1, linalg.Vector3{X: 0.01, Y: 0.01, Z: 0.5})

	exp := Expand(c, 0.5)
	require.Len(t, exp.Atoms, 4)
	rng, ok := exp.Duplicates[0]
	require.True(t, ok)
	assert.Equal(t, Range{First: 1, Last: 3}, rng)
}

func TestExpandCornerAtomGetsSevenDuplicates(t *testing.T) {
	c := cubicCrystal()
	c.AddAtom(1, linalg.Vector3{X: 0.01, Y: 0.01, Z: 0.01})

	exp := Expand(c, 0.5)
	require.Len(t, exp.Atoms, 8)
	rng, ok := exp.Duplicates[0]
	require.True(t, ok)
	assert.Equal(t, Range{First: 1, Last: 7}, rng)
}

func TestExpandMultipleAtomsIndexPreimagesIndependently(t *testing.T) {
	c := cubicCrystal()
	c.AddAtom(1, linalg.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
	c.AddAtom(2, linalg.Vector3{X: 0.01, Y: 0.5, Z: 0.5})

	exp := Expand(c, 0.5)
	_, farHasDup := exp.Duplicates[0]
	assert.False(t, farHasDup)
	rng, ok := exp.Duplicates[1]
	require.True(t, ok)
	assert.Equal(t, Range{First: 2, Last: 2}, rng)
}
