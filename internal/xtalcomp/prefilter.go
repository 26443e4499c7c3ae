package xtalcomp

import (
	"math"
	"sort"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
)

// prefilterReject runs the fail-fast checks of spec.md §4.5 against the
// two crystals' canonicalized (reduced, standard-orientation) matrices,
// returning true as soon as one check proves the crystals cannot match.
func prefilterReject(c1, c2 *crystal.Crystal, m1, m2 linalg.Matrix3, cartTol, angleTol float64) bool {
	if len(c1.Atoms) != len(c2.Atoms) {
		return true
	}
	if !sameElementMultiset(c1, c2) {
		return true
	}

	v1, v2 := m1.Volume(), m2.Volume()
	mean := (v1 + v2) / 2
	if mean > 0 && math.Abs(v1-v2) > 0.01*mean {
		return true
	}

	l1 := [3]float64{m1.A().Norm2(), m1.B().Norm2(), m1.C().Norm2()}
	l2 := [3]float64{m2.A().Norm2(), m2.B().Norm2(), m2.C().Norm2()}
	var sumSq float64
	for i := 0; i < 3; i++ {
		sumSq += l1[i]
	}
	lenTol := 4 * math.Sqrt(sumSq/6) * cartTol
	for i := 0; i < 3; i++ {
		if math.Abs(l1[i]-l2[i]) > lenTol {
			return true
		}
	}

	pairs1 := foldedAnglePairs(m1)
	pairs2 := foldedAnglePairs(m2)
	for i := 0; i < 3; i++ {
		if math.Abs(pairs1[i]-pairs2[i]) > angleTol {
			return true
		}
	}

	return false
}

func foldedAnglePairs(m linalg.Matrix3) [3]float64 {
	a, b, c := m.A(), m.B(), m.C()
	return [3]float64{
		linalg.FoldedAngle(b, c),
		linalg.FoldedAngle(a, c),
		linalg.FoldedAngle(a, b),
	}
}

func sameElementMultiset(c1, c2 *crystal.Crystal) bool {
	comp1 := c1.Composition()
	comp2 := c2.Composition()
	if len(comp1) != len(comp2) {
		return false
	}
	var z1, z2 []uint32
	for z := range comp1 {
		z1 = append(z1, z)
	}
	for z := range comp2 {
		z2 = append(z2, z)
	}
	sort.Slice(z1, func(i, j int) bool { return z1[i] < z1[j] })
	sort.Slice(z2, func(i, j int) bool { return z2[i] < z2[j] })
	for i := range z1 {
		if z1[i] != z2[i] || comp1[z1[i]] != comp2[z2[i]] {
			return false
		}
	}
	return true
}
