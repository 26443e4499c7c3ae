package reduce

import (
	"math"

	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
)

// standardOrientation computes the canonical lower-triangular-like cell
// matrix S for a (Niggli-reduced) basis a, b, c: the first vector along
// +x, the second in the xy-plane, and positive second/third diagonal
// entries, per spec.md §4.3.
func standardOrientation(a, b, c linalg.Vector3) linalg.Matrix3 {
	lenA := a.Norm()

	col0 := linalg.Vector3{X: lenA}

	abDot := a.Dot(b)
	x1 := abDot / lenA
	y1 := math.Sqrt(math.Max(0, b.Norm2()-x1*x1))
	col1 := linalg.Vector3{X: x1, Y: y1}

	acDot := a.Dot(c)
	bcDot := b.Dot(c)
	x2 := acDot / lenA
	y2 := (bcDot - x1*x2) / y1
	z2 := math.Sqrt(math.Max(0, c.Norm2()-x2*x2-y2*y2))
	col2 := linalg.Vector3{X: x2, Y: y2, Z: z2}

	return linalg.NewFromColumns(col0, col1, col2)
}

// Result is the outcome of Canonicalize: the reduced cell matrix in
// standard orientation, and the rotation (no translation) that carried the
// original reduced basis into it — callers that canonicalize a crystal use
// Rotation to transform atom Cartesian coordinates.
type Result struct {
	Matrix   linalg.Matrix3
	Rotation linalg.Matrix3
}

// Canonicalize runs the full pipeline of spec.md §4.3 on a cell matrix:
// Niggli-reduce its basis vectors, then rotate into standard orientation.
// It does not touch atoms; callers apply Result.Rotation to Cartesian atom
// coordinates themselves (see crystal.Crystal via the reduce-level helper
// in canonicalize.go).
func Canonicalize(m linalg.Matrix3) (Result, error) {
	volume := m.Volume()
	tau := NiggliTolerance(volume)

	a, b, c, err := reduceVectors(m.A(), m.B(), m.C(), tau)
	if err != nil {
		return Result{}, err
	}

	reduced := linalg.NewFromColumns(a, b, c)
	s := standardOrientation(a, b, c)

	inv, ok := reduced.Inverse()
	if !ok {
		return Result{}, ErrLatticeIllConditioned
	}
	rotation := s.Mul(inv)

	return Result{Matrix: s, Rotation: rotation}, nil
}
