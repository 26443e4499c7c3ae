package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
)

func basicLimits() Limits {
	return Limits{
		A:                    ParamLimits{Min: 1, Max: 20},
		B:                    ParamLimits{Min: 1, Max: 20},
		C:                    ParamLimits{Min: 1, Max: 20},
		Alpha:                ParamLimits{Min: 60, Max: 120},
		Beta:                 ParamLimits{Min: 60, Max: 120},
		Gamma:                ParamLimits{Min: 60, Max: 120},
		VolMin:               10,
		VolMax:               500,
		TargetComposition:    map[uint32]int{11: 1, 17: 1},
		FixAnglesMaxAttempts: 20,
	}
}

func saltCrystal() *crystal.Crystal {
	c := crystal.New(linalg.Diag(5, 5, 5), nil)
	c.AddAtom(11, linalg.Vector3{X: 0, Y: 0, Z: 0})
	c.AddAtom(17, linalg.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
	return c
}

func TestAcceptValidCrystal(t *testing.T) {
	c := saltCrystal()
	assert.True(t, Accept(c, basicLimits()))
}

func TestAcceptRejectsWrongComposition(t *testing.T) {
	c := crystal.New(linalg.Diag(5, 5, 5), nil)
	c.AddAtom(11, linalg.Vector3{X: 0, Y: 0, Z: 0})
	c.AddAtom(11, linalg.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
	assert.False(t, Accept(c, basicLimits()))
}

func TestAcceptRescalesOutOfRangeVolume(t *testing.T) {
	c := saltCrystal()
	c.Rescale(0.01)
	limits := basicLimits()
	// The shrunken cell's edges (~0.215) must pass the length check so
	// that the volume step is the one under test.
	limits.A.Min, limits.B.Min, limits.C.Min = 0.1, 0.1, 0.1
	ok := Accept(c, limits)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, c.Volume(), limits.VolMin)
	assert.LessOrEqual(t, c.Volume(), limits.VolMax)
}

func TestAcceptFixedVolumeAlwaysRescales(t *testing.T) {
	c := saltCrystal()
	limits := basicLimits()
	limits.UsingFixedVolume = true
	limits.VolFixed = 200
	assert.True(t, Accept(c, limits))
	assert.InDelta(t, 200, c.Volume(), 1e-6)
}

func TestAcceptRejectsMinIAD(t *testing.T) {
	c := saltCrystal()
	limits := basicLimits()
	limits.UsingMinIAD = true
	limits.IADMin = 100
	assert.False(t, Accept(c, limits))
}
