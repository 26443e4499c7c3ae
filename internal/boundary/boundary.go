// Package boundary implements the cell-boundary ghost-atom expansion of
// spec.md §4.4: atoms near a cell face get translated duplicates at the
// opposite face, with corner and edge duplicates generated together when
// an atom sits near more than one plane at once.
package boundary

import (
	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
)

// Range is an inclusive [First, Last] span of duplicate-atom indices that
// a single preimage atom produced.
type Range struct {
	First, Last int
}

// Expansion is the result of Expand: the crystal's original atoms plus
// every boundary duplicate appended after them, and the map from each
// preimage index to the range of indices it generated (absent from the
// map if it generated no duplicates).
type Expansion struct {
	Atoms      []crystal.Atom
	Duplicates map[int]Range
}

// axisOffset returns the translation direction along one axis for an atom
// whose fractional coordinate is frac: +1 if it sits within cartTol of the
// x=0 face (so its duplicate appears one cell over, at the x=1 side), -1
// if it sits within cartTol of the x=1 face, 0 if it is near neither.
// latticeVectorLen is the length of the cell's lattice vector along this
// axis, used to convert the fractional tolerance comparison to Cartesian
// distance as the contract requires.
func axisOffset(frac, latticeVectorLen, cartTol float64) int {
	if latticeVectorLen <= 0 {
		return 0
	}
	distToZero := frac * latticeVectorLen
	distToOne := (1 - frac) * latticeVectorLen
	switch {
	case distToZero <= cartTol:
		return 1
	case distToOne <= cartTol:
		return -1
	default:
		return 0
	}
}

// Expand wraps every atom into [0,1) and appends boundary duplicates,
// matching an atom to the corner, edge, or face class implied by how many
// of its three axes sit near a plane — first class to match wins, per
// spec.md §4.4's no-cascading-additions rule.
func Expand(c *crystal.Crystal, cartTol float64) Expansion {
	c.WrapAtomsToCell()

	a, b, cc := c.Matrix.A(), c.Matrix.B(), c.Matrix.C()
	lens := [3]float64{a.Norm(), b.Norm(), cc.Norm()}

	out := make([]crystal.Atom, len(c.Atoms))
	copy(out, c.Atoms)

	dups := make(map[int]Range)

	for i, atom := range c.Atoms {
		offsets := [3]int{
			axisOffset(atom.Frac.X, lens[0], cartTol),
			axisOffset(atom.Frac.Y, lens[1], cartTol),
			axisOffset(atom.Frac.Z, lens[2], cartTol),
		}

		combos := combosFor(offsets)
		if len(combos) == 0 {
			continue
		}

		first := len(out)
		for _, combo := range combos {
			dupFrac := linalg.Vector3{
				X: atom.Frac.X + float64(combo[0]),
				Y: atom.Frac.Y + float64(combo[1]),
				Z: atom.Frac.Z + float64(combo[2]),
			}
			dupCart := c.Matrix.MulVec(dupFrac)
			out = append(out, crystal.Atom{
				AtomicNumber: atom.AtomicNumber,
				Frac:         dupFrac,
				Cart:         dupCart,
			})
		}
		dups[i] = Range{First: first, Last: len(out) - 1}
	}

	return Expansion{Atoms: out, Duplicates: dups}
}

// combosFor enumerates the non-zero offset combinations for an atom's
// near-axis offsets, in a fixed order: axis 0 varies fastest. An atom near
// all three planes (a corner) yields all 7 non-zero combinations; near
// exactly two (an edge) yields 3; near exactly one (a face) yields 1; near
// none yields none. This is the corner/edge/face class selection of
// spec.md §4.4 — the class is implied directly by the near-axis count, so
// there is no separate cascading step.
func combosFor(offsets [3]int) [][3]int {
	nearAxes := make([]int, 0, 3)
	for axis, o := range offsets {
		if o != 0 {
			nearAxes = append(nearAxes, axis)
		}
	}
	n := len(nearAxes)
	if n == 0 {
		return nil
	}

	combos := make([][3]int, 0, (1<<n)-1)
	for mask := 1; mask < (1 << n); mask++ {
		var combo [3]int
		for bit, axis := range nearAxes {
			if mask&(1<<bit) != 0 {
				combo[axis] = offsets[axis]
			}
		}
		combos = append(combos, combo)
	}
	return combos
}
