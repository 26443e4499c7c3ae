// Package reduce implements the reduced-cell engine of spec.md §4.3: Niggli
// reduction of a cell's basis vectors, followed by rotation into a standard
// orientation and a wrap of every atom into [0, 1).
//
// Grounded on the classical Krivy-Gruber (1976) step sequence as described
// in spec.md; the iteration only ever touches the three abstract lattice
// vectors (a, b, c), never atom positions — a change of basis describes the
// same physical lattice points under a different cell choice, so atom
// Cartesian coordinates are untouched until the final standard-orientation
// rotation is known and applied once.
package reduce

import (
	"math"

	"github.com/pkg/errors"

	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
	"github.com/sarat-asymmetrica/xtalforge/internal/tolerance"
)

// MaxIterations bounds the Niggli step loop (spec.md §4.3).
const MaxIterations = 1000

// characteristic holds (A, B, C, xi, eta, zeta) for a basis triple.
type characteristic struct {
	A, B, C, Xi, Eta, Zeta float64
}

func characteristicOf(a, b, c linalg.Vector3) characteristic {
	return characteristic{
		A:    a.Norm2(),
		B:    b.Norm2(),
		C:    c.Norm2(),
		Xi:   2 * b.Dot(c),
		Eta:  2 * a.Dot(c),
		Zeta: 2 * a.Dot(b),
	}
}

// NiggliTolerance returns the tau = 1e-5 * V^(1/3) scale used throughout
// the reducer's comparisons, per spec.md §4.3.
func NiggliTolerance(volume float64) float64 {
	return tolerance.Default * math.Cbrt(math.Abs(volume))
}

// reduceVectors runs the Krivy-Gruber steps 1-8 on a, b, c, returning the
// reduced triple. It never looks at atoms.
func reduceVectors(a, b, c linalg.Vector3, tau float64) (linalg.Vector3, linalg.Vector3, linalg.Vector3, error) {
	cmp := tolerance.New(tau)

	for iter := 0; iter < MaxIterations; iter++ {
		ch := characteristicOf(a, b, c)

		// Step 1.
		if cmp.Gt(ch.A, ch.B) || (cmp.Eq(ch.A, ch.B) && math.Abs(ch.Xi) > math.Abs(ch.Eta)) {
			a, b = b, a
			continue
		}
		// Step 2 (symmetric on B, C).
		if cmp.Gt(ch.B, ch.C) || (cmp.Eq(ch.B, ch.C) && math.Abs(ch.Eta) > math.Abs(ch.Zeta)) {
			b, c = c, b
			continue
		}
		// Step 3: xi*eta*zeta > 0 (exact comparison, per spec.md §4.3).
		if ch.Xi*ch.Eta*ch.Zeta > 0 {
			i := tolerance.Sign(ch.Xi)
			j := tolerance.Sign(ch.Eta)
			k := tolerance.Sign(ch.Zeta)
			a, b, c = a.Scale(i), b.Scale(j), c.Scale(k)
		} else {
			// Step 4: else branch.
			i, j, k, fixed := signTriple(ch.Xi, ch.Eta, ch.Zeta, tau)
			if !fixed {
				return a, b, c, errors.WithStack(ErrLatticeIllConditioned)
			}
			a, b, c = a.Scale(i), b.Scale(j), c.Scale(k)
		}

		// Steps 3 and 4 only normalize signs (A, B, C are unchanged);
		// fall through to the shear steps on the updated characteristic.
		ch = characteristicOf(a, b, c)

		// Step 5: |xi| vs B, shearing c against b.
		if trigger5(ch, tau) {
			c = c.Sub(b.Scale(tolerance.Sign(ch.Xi)))
			continue
		}
		// Step 6: |eta| vs A, shearing c against a.
		if trigger6(ch, tau) {
			c = c.Sub(a.Scale(tolerance.Sign(ch.Eta)))
			continue
		}
		// Step 7: |zeta| vs A, shearing b against a.
		if trigger7(ch, tau) {
			b = b.Sub(a.Scale(tolerance.Sign(ch.Zeta)))
			continue
		}
		// Step 8.
		sum := ch.A + ch.B + ch.Xi + ch.Eta + ch.Zeta
		if cmp.Lt(sum, 0) || (cmp.Eq(sum, 0) && 2*(ch.A+ch.Eta)+ch.Zeta > 0) {
			c = c.Add(a).Add(b)
			continue
		}

		// No step fired: converged.
		return a, b, c, nil
	}
	return a, b, c, errors.WithStack(ErrLatticeNotReduced)
}

func trigger5(ch characteristic, tau float64) bool {
	return math.Abs(ch.Xi) > ch.B ||
		(tolerance.Eq(ch.Xi, ch.B, tau) && 2*ch.Eta < ch.Zeta) ||
		(tolerance.Eq(ch.Xi, -ch.B, tau) && ch.Zeta < 0)
}

func trigger6(ch characteristic, tau float64) bool {
	return math.Abs(ch.Eta) > ch.A ||
		(tolerance.Eq(ch.Eta, ch.A, tau) && 2*ch.Xi < ch.Zeta) ||
		(tolerance.Eq(ch.Eta, -ch.A, tau) && ch.Zeta < 0)
}

func trigger7(ch characteristic, tau float64) bool {
	return math.Abs(ch.Zeta) > ch.A ||
		(tolerance.Eq(ch.Zeta, ch.A, tau) && 2*ch.Xi < ch.Eta) ||
		(tolerance.Eq(ch.Zeta, -ch.A, tau) && ch.Eta < 0)
}

// signTriple implements spec.md §4.3 step 4: find i,j,k in {-1,+1} with
// i*j*k = -1 such that applying diag(i,j,k) sends (xi,eta,zeta) to
// (-|xi|,-|eta|,-|zeta|). The natural per-axis sign (zero counts as
// non-negative) already yields i*j*k=-1 whenever the parity works out; the
// remaining degree of freedom — the sign attached to an exactly-zero axis —
// corrects the parity when it doesn't. ok is false only when the parity is
// wrong and no axis is exactly zero to pin down: the pathological case of
// spec.md §4.3 step 4.
func signTriple(xi, eta, zeta, tau float64) (i, j, k float64, ok bool) {
	sign := func(v float64) float64 {
		if v < 0 {
			return -1
		}
		return 1
	}
	i, j, k = sign(xi), sign(eta), sign(zeta)
	if i*j*k < 0 {
		return i, j, k, true
	}
	isZero := func(v float64) bool { return math.Abs(v) <= tau }
	switch {
	case isZero(xi):
		return -i, j, k, true
	case isZero(eta):
		return i, -j, k, true
	case isZero(zeta):
		return i, j, -k, true
	}
	return 0, 0, 0, false
}
