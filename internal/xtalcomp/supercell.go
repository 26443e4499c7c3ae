package xtalcomp

import (
	"math"

	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
	"github.com/sarat-asymmetrica/xtalforge/internal/tolerance"
)

// needsLargerSuperCell reports whether building the pivot super-lattice
// requires a 3x3x3 replication rather than 2x2x2, per spec.md §4.5: true
// when the cell's body diagonal matches some lattice vector's length, or
// when the cell is hexagonal (two vectors of equal length meeting at 60
// degrees).
func needsLargerSuperCell(m linalg.Matrix3, cartTol, angleTol float64) bool {
	a, b, c := m.A(), m.B(), m.C()
	diag := a.Add(b).Add(c).Norm()
	lens := [3]float64{a.Norm(), b.Norm(), c.Norm()}
	for _, l := range lens {
		if math.Abs(diag-l) <= cartTol {
			return true
		}
	}

	pairs := [][2]linalg.Vector3{{a, b}, {a, c}, {b, c}}
	const sixty = math.Pi / 3
	for _, p := range pairs {
		if tolerance.Eq(p[0].Norm(), p[1].Norm(), cartTol) &&
			math.Abs(linalg.AngleRad(p[0], p[1])-sixty) <= angleTol {
			return true
		}
	}
	return false
}

// superCellOffsets returns the integer cell offsets to replicate across:
// {0, 1} per axis for 2x2x2, or {-1, 0, 1} per axis (centered on the
// origin cell) for 3x3x3.
func superCellOffsets(large bool) [][3]int {
	var r []int
	if large {
		r = []int{-1, 0, 1}
	} else {
		r = []int{0, 1}
	}
	out := make([][3]int, 0, len(r)*len(r)*len(r))
	for _, x := range r {
		for _, y := range r {
			for _, z := range r {
				out = append(out, [3]int{x, y, z})
			}
		}
	}
	return out
}
