package tolerance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLtGtEq(t *testing.T) {
	assert.True(t, Lt(1.0, 1.0001, 1e-5))
	assert.False(t, Lt(1.0, 1.0000001, 1e-5))
	assert.True(t, Eq(1.0, 1.0000001, 1e-5))
	assert.True(t, Gt(1.0001, 1.0, 1e-5))
}

func TestEqIsNeitherLtNorGt(t *testing.T) {
	for _, tc := range []struct{ v1, v2, prec float64 }{
		{1.0, 1.0, 1e-5},
		{-2.0, -2.0 + 1e-7, 1e-5},
		{0.0, 0.0, 1e-5},
	} {
		assert.True(t, Eq(tc.v1, tc.v2, tc.prec))
		assert.False(t, Lt(tc.v1, tc.v2, tc.prec))
		assert.False(t, Gt(tc.v1, tc.v2, tc.prec))
	}
}

func TestSignTreatsZeroAsPositive(t *testing.T) {
	assert.Equal(t, 1.0, Sign(0))
	assert.Equal(t, 1.0, Sign(3.2))
	assert.Equal(t, -1.0, Sign(-0.001))
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 1.23, Round(1.225, 2))
	assert.Equal(t, -1.23, Round(-1.225, 2))
	assert.Equal(t, 2.0, Round(1.5, 0))
	assert.Equal(t, -2.0, Round(-1.5, 0))
}

func TestCmpWrapsPrecision(t *testing.T) {
	c := New(0.01)
	assert.True(t, c.Eq(1.0, 1.005))
	assert.False(t, c.Eq(1.0, 1.02))

	def := New(0)
	assert.Equal(t, Default, def.Prec)
}
