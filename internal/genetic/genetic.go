// Package genetic implements the cell-aware genetic operators of spec.md
// §4.7: crossover, stripple, and permustrain. Every operator returns a
// candidate crystal with its atoms already wrapped into the cell; it
// still needs Niggli reduction and the validity filter of spec.md §4.9 —
// callers apply those, typically the search scheduler.
package genetic

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
)

// lerpMatrix linearly interpolates between two cell matrices column by
// column: (1-f)*a + f*b.
func lerpMatrix(a, b linalg.Matrix3, f float64) linalg.Matrix3 {
	cols := make([]linalg.Vector3, 3)
	ca := []linalg.Vector3{a.A(), a.B(), a.C()}
	cb := []linalg.Vector3{b.A(), b.B(), b.C()}
	for i := 0; i < 3; i++ {
		cols[i] = ca[i].Scale(1 - f).Add(cb[i].Scale(f))
	}
	return linalg.NewFromColumns(cols[0], cols[1], cols[2])
}

// strainMatrix returns I + S where S is a symmetric matrix with
// independent entries drawn from N(0, sigma), the shared strain-matrix
// construction stripple and permustrain both apply to a cell before their
// operator-specific step (spec.md §4.7).
func strainMatrix(sigma float64, rng *rand.Rand) linalg.Matrix3 {
	s := [3][3]float64{}
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			v := rng.NormFloat64() * sigma
			s[i][j] = v
			s[j][i] = v
		}
	}
	strain := linalg.NewFromRows(
		linalg.Vector3{X: 1 + s[0][0], Y: s[0][1], Z: s[0][2]},
		linalg.Vector3{X: s[1][0], Y: 1 + s[1][1], Z: s[1][2]},
		linalg.Vector3{X: s[2][0], Y: s[2][1], Z: 1 + s[2][2]},
	)
	return strain
}

// randSigma picks a uniform sigma in [min, max], defaulting to min when
// the range is degenerate or inverted.
func randSigma(min, max float64, rng *rand.Rand) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}

func finalizeCandidate(c *crystal.Crystal, lineage crystal.Lineage) *crystal.Crystal {
	c.Lineage = lineage
	c.Status = crystal.Empty
	c.HasEnthalpy = false
	c.HasEnergy = false
	c.HasJobID = false
	c.CurrentStep = 0
	c.FailCount = 0
	c.WrapAtomsToCell()
	return c
}

func describeF(op string, f float64, parents ...int) string {
	return fmt.Sprintf("%s(%v) f=%.3f", op, parents, f)
}

func describeStrain(op string, sigma float64, parent int) string {
	return fmt.Sprintf("%s(%d) sigma=%.4f", op, parent, sigma)
}

func axisUnit(m linalg.Matrix3, axis int) linalg.Vector3 {
	var v linalg.Vector3
	switch axis {
	case 0:
		v = m.A()
	case 1:
		v = m.B()
	default:
		v = m.C()
	}
	n := v.Norm()
	if n == 0 {
		return linalg.Vector3{}
	}
	return v.Scale(1 / n)
}

func fracComponent(v linalg.Vector3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// rippleDisplacement computes the sum-of-two-cosines wave amplitude at
// fractional position u, per spec.md §4.7's stripple contract.
func rippleDisplacement(amplitude float64, p1, p2 int, u float64) float64 {
	return amplitude * (math.Cos(2*math.Pi*float64(p1)*u) + math.Cos(2*math.Pi*float64(p2)*u))
}
