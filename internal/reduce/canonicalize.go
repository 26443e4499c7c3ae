package reduce

import (
	"github.com/pkg/errors"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
	"github.com/sarat-asymmetrica/xtalforge/internal/tolerance"
)

// CanonicalizeCrystal replaces c's cell matrix with its Niggli-reduced,
// standard-orientation form and rotates every atom's Cartesian coordinate
// to match, per spec.md §4.3. Fractional coordinates are provably
// invariant under the pure rotation applied here, so they are recomputed
// from the rotated Cartesian coordinates rather than carried forward, and
// then wrapped into [0, 1) to guard against drift.
func CanonicalizeCrystal(c *crystal.Crystal) error {
	result, err := Canonicalize(c.Matrix)
	if err != nil {
		return errors.Wrapf(err, "canonicalize crystal %d (generation %d)", c.ID, c.Generation)
	}

	for i := range c.Atoms {
		c.Atoms[i].Cart = result.Rotation.MulVec(c.Atoms[i].Cart)
	}
	c.Matrix = result.Matrix

	if ok := c.SyncFracFromCart(); !ok {
		return errors.Wrapf(ErrLatticeIllConditioned, "crystal %d: reduced matrix is singular", c.ID)
	}
	c.WrapAtomsToCell()
	return nil
}

// IsReduced reports whether a, b, c already satisfy the Buerger conditions
// a Niggli-reduced basis must hold, at tolerance tau = (V/3)*spec.md's
// stable-comparison tolerance: the cell is type-I (xi, eta, zeta all
// strictly positive) or type-II (all non-positive), with the ordering and
// shear-free conditions of steps 1-2 and 5-7 already satisfied. It is a
// pure post-condition check; it performs no reduction itself.
func IsReduced(m linalg.Matrix3) bool {
	a, b, c := m.A(), m.B(), m.C()
	ch := characteristicOf(a, b, c)
	tau := m.Volume() / 3 * tolerance.Default

	cmp := tolerance.New(tau)
	if cmp.Gt(ch.A, ch.B) || cmp.Gt(ch.B, ch.C) {
		return false
	}

	typeI := ch.Xi > tau && ch.Eta > tau && ch.Zeta > tau
	typeII := ch.Xi <= tau && ch.Eta <= tau && ch.Zeta <= tau &&
		ch.Xi*ch.Eta*ch.Zeta <= tau*tau*tau
	if !typeI && !typeII {
		return false
	}

	if trigger5(ch, tau) || trigger6(ch, tau) || trigger7(ch, tau) {
		return false
	}
	return true
}
