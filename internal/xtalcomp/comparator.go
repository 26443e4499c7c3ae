// Package xtalcomp implements the crystal-equivalence comparator of
// spec.md §4.5: two crystals describe the same periodic structure if some
// lattice re-indexing, rigid rotation/reflection, and fractional
// translation carries one onto the other.
package xtalcomp

import (
	"math"

	"github.com/pkg/errors"

	"github.com/sarat-asymmetrica/xtalforge/internal/boundary"
	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
	"github.com/sarat-asymmetrica/xtalforge/internal/reduce"
)

// pivotAtom is one pivot-type atom in a super-cell replication, carrying
// its Cartesian position in crystal 2's frame.
type pivotAtom struct {
	cart linalg.Vector3
}

// Compare reports whether c1 and c2 describe the same periodic structure,
// and if so, one transform (translation then rotation) that carries
// crystal 2's frame onto crystal 1's. Canonicalization failure on either
// input is reported as ErrComparisonFailed, which callers should treat as
// "not matched" rather than a hard error.
func Compare(c1, c2 *crystal.Crystal, cartTol, angleTol float64) (bool, *linalg.Transform, error) {
	r1 := c1.Clone()
	r2 := c2.Clone()

	if err := reduce.CanonicalizeCrystal(r1); err != nil {
		return false, nil, errors.Wrap(ErrComparisonFailed, err.Error())
	}
	if err := reduce.CanonicalizeCrystal(r2); err != nil {
		return false, nil, errors.Wrap(ErrComparisonFailed, err.Error())
	}

	if prefilterReject(r1, r2, r1.Matrix, r2.Matrix, cartTol, angleTol) {
		return false, nil, nil
	}

	pivotType := leastFrequentType(r1.Composition())

	pivotIdx1 := -1
	for i, atom := range r1.Atoms {
		if atom.AtomicNumber == pivotType {
			pivotIdx1 = i
			break
		}
	}
	if pivotIdx1 < 0 {
		return false, nil, nil
	}
	origin1 := r1.Atoms[pivotIdx1].Cart
	for i := range r1.Atoms {
		r1.Atoms[i].Cart = r1.Atoms[i].Cart.Sub(origin1)
	}
	r1.SyncFracFromCart()

	// Expand wraps the shifted atoms back into the cell before adding
	// boundary duplicates, matching the wrap applied to crystal 2's atoms.
	expansion := boundary.Expand(r1, cartTol)
	atoms1 := make([]crystal.Atom, len(expansion.Atoms))
	for i, a := range expansion.Atoms {
		atoms1[i] = crystal.Atom{
			AtomicNumber: a.AtomicNumber,
			Cart:         a.Cart,
		}
	}

	v1, v2, v3 := r1.Matrix.A(), r1.Matrix.B(), r1.Matrix.C()
	refLens2 := [3]float64{v1.Norm2(), v2.Norm2(), v3.Norm2()}
	refPairAngles := [3]float64{
		linalg.FoldedAngle(v2, v3),
		linalg.FoldedAngle(v1, v3),
		linalg.FoldedAngle(v1, v2),
	}
	refMatrix := linalg.NewFromColumns(v1, v2, v3)

	large := needsLargerSuperCell(r2.Matrix, cartTol, angleTol)
	offsets := superCellOffsets(large)

	var pivots []pivotAtom
	for _, atom := range r2.Atoms {
		if atom.AtomicNumber != pivotType {
			continue
		}
		for _, off := range offsets {
			offsetVec := linalg.Vector3{X: float64(off[0]), Y: float64(off[1]), Z: float64(off[2])}
			cart := atom.Cart.Add(r2.Matrix.MulVec(offsetVec))
			pivots = append(pivots, pivotAtom{cart: cart})
		}
	}

	for _, o := range pivots {
		buckets := [3][]linalg.Vector3{}
		for _, p := range pivots {
			t := p.cart.Sub(o.cart)
			if t.Norm2() < 1e-12 {
				continue
			}
			for k := 0; k < 3; k++ {
				if math.Abs(t.Norm2()-refLens2[k]) < cartTol*cartTol {
					buckets[k] = append(buckets[k], t)
				}
			}
		}
		if len(buckets[0]) == 0 || len(buckets[1]) == 0 || len(buckets[2]) == 0 {
			continue
		}

		for _, t1 := range buckets[0] {
			for _, t2 := range buckets[1] {
				if math.Abs(linalg.FoldedAngle(t1, t2)-refPairAngles[2]) > angleTol {
					continue
				}
				for _, t3 := range buckets[2] {
					if math.Abs(linalg.FoldedAngle(t1, t3)-refPairAngles[1]) > angleTol {
						continue
					}
					if math.Abs(linalg.FoldedAngle(t2, t3)-refPairAngles[0]) > angleTol {
						continue
					}

					candidate := linalg.NewFromColumns(t1, t2, t3)
					tInv, ok := candidate.Inverse()
					if !ok {
						continue
					}
					rot := refMatrix.Mul(tInv)
					transform := linalg.Transform{
						Rotation:    rot,
						Translation: rot.MulVec(o.cart.Neg()),
					}

					if matchTransform(transform, r2.Atoms, atoms1, expansion.Duplicates, r1.Matrix, cartTol) {
						return true, &transform, nil
					}
				}
			}
		}
	}

	return false, nil, nil
}

// matchTransform applies transform to atoms2 and checks whether every
// transformed atom finds a distinct, unconsumed match in atoms1, wrapping
// each candidate back into crystal 1's cell and honoring duplicate-group
// consumption so matching any boundary duplicate counts as matching its
// preimage (spec.md §4.5 step 3).
func matchTransform(transform linalg.Transform, atoms2, atoms1 []crystal.Atom, dupMap map[int]boundary.Range, m1 linalg.Matrix3, cartTol float64) bool {
	inv, ok := m1.Inverse()
	if !ok {
		return false
	}

	consumed := make([]bool, len(atoms1))
	tol2 := cartTol * cartTol

	for _, a2 := range atoms2 {
		moved := transform.Apply(a2.Cart)
		frac := crystal.WrapFrac(inv.MulVec(moved))
		wrapped := m1.MulVec(frac)

		matchIdx := -1
		for i, a1 := range atoms1 {
			if consumed[i] || a1.AtomicNumber != a2.AtomicNumber {
				continue
			}
			if wrapped.DistSquared(a1.Cart) <= tol2 {
				matchIdx = i
				break
			}
		}
		if matchIdx < 0 {
			return false
		}
		consumeGroup(consumed, matchIdx, dupMap)
	}
	return true
}

// consumeGroup marks idx consumed, and if idx participates in a
// preimage-to-duplicates range, consumes the whole range.
func consumeGroup(consumed []bool, idx int, dupMap map[int]boundary.Range) {
	consumed[idx] = true
	if rng, ok := dupMap[idx]; ok {
		for i := rng.First; i <= rng.Last; i++ {
			consumed[i] = true
		}
		return
	}
	for preimage, rng := range dupMap {
		if idx >= rng.First && idx <= rng.Last {
			consumed[preimage] = true
			for i := rng.First; i <= rng.Last; i++ {
				consumed[i] = true
			}
			return
		}
	}
}

func leastFrequentType(composition map[uint32]int) uint32 {
	var best uint32
	bestCount := math.MaxInt
	first := true
	for z, n := range composition {
		if first || n < bestCount || (n == bestCount && z < best) {
			best, bestCount, first = z, n, false
		}
	}
	return best
}
