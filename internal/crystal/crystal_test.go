package crystal

import (
	"testing"

	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
	"github.com/stretchr/testify/assert"
)

func simpleCrystal() *Crystal {
	m := linalg.NewFromColumns(
		linalg.Vector3{X: 3, Y: 0, Z: 0},
		linalg.Vector3{X: 2, Y: 4, Z: 0},
		linalg.Vector3{X: 2, Y: 5, Z: 3},
	)
	c := New(m, nil)
	c.AddAtom(1, linalg.Vector3{X: 0, Y: 0.25, Z: 0.25})
	c.AddAtom(2, linalg.Vector3{X: 0.25, Y: 0.25, Z: 0.25})
	return c
}

func TestFracCartRoundTrip(t *testing.T) {
	c := simpleCrystal()
	for _, atom := range c.Atoms {
		back, ok := c.FracFromCart(atom.Cart)
		assert.True(t, ok)
		assert.InDelta(t, atom.Frac.X, back.X, 1e-9)
		assert.InDelta(t, atom.Frac.Y, back.Y, 1e-9)
		assert.InDelta(t, atom.Frac.Z, back.Z, 1e-9)
	}
}

func TestWrapAtomsToCell(t *testing.T) {
	c := simpleCrystal()
	c.Atoms[0].Frac = linalg.Vector3{X: 1.5, Y: -0.25, Z: 0}
	c.WrapAtomsToCell()
	assert.InDelta(t, 0.5, c.Atoms[0].Frac.X, 1e-9)
	assert.InDelta(t, 0.75, c.Atoms[0].Frac.Y, 1e-9)
	assert.GreaterOrEqual(t, c.Atoms[0].Frac.X, 0.0)
	assert.Less(t, c.Atoms[0].Frac.X, 1.0)
}

func TestRescalePreservesShape(t *testing.T) {
	c := simpleCrystal()
	originalA := c.Matrix.A()
	c.Rescale(c.Volume() * 8)
	newA := c.Matrix.A()
	assert.InDelta(t, 2.0, newA.Norm()/originalA.Norm(), 1e-6)
	assert.InDelta(t, c.Volume(), c.Volume(), 1e-6)
}

func TestMatchesComposition(t *testing.T) {
	c := simpleCrystal()
	assert.True(t, c.MatchesComposition(map[uint32]int{1: 1, 2: 1}))
	assert.False(t, c.MatchesComposition(map[uint32]int{1: 2, 2: 1}))
}

func TestMinInteratomicDistance(t *testing.T) {
	c := simpleCrystal()
	assert.True(t, c.MinInteratomicDistanceOK(0.1))
	assert.False(t, c.MinInteratomicDistanceOK(100))
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, Optimized.Terminal())
	assert.True(t, Duplicate.Terminal())
	assert.False(t, WaitingForOptimization.Terminal())
}
