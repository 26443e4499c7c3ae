package crystal

import (
	"math"

	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
)

// FixAngles forces every lattice angle into [60, 120] degrees by a
// sequence of lattice-vector substitutions (b += n*a style moves that
// preserve the lattice but reduce the angle), matching the bounded-attempt
// contract of spec.md §4.6 / original_source's Xtal::fixAngles. It reports
// whether all three angles ended up in range within the attempt budget.
func (c *Crystal) FixAngles(maxAttempts int) bool {
	if maxAttempts <= 0 {
		maxAttempts = 20
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		a, b, cc := c.Matrix.A(), c.Matrix.B(), c.Matrix.C()
		fixed := true

		if deg := linalg.AngleRad(b, cc) * 180 / math.Pi; deg < 60 || deg > 120 {
			cc = substituteTowardRightAngle(b, cc)
			fixed = false
		}
		if deg := linalg.AngleRad(a, cc) * 180 / math.Pi; deg < 60 || deg > 120 {
			cc = substituteTowardRightAngle(a, cc)
			fixed = false
		}
		if deg := linalg.AngleRad(a, b) * 180 / math.Pi; deg < 60 || deg > 120 {
			b = substituteTowardRightAngle(a, b)
			fixed = false
		}

		c.Matrix = linalg.NewFromColumns(a, b, cc)
		if fixed {
			c.SyncCartFromFrac()
			return true
		}
	}
	c.SyncCartFromFrac()
	a, b, cc := c.Matrix.A(), c.Matrix.B(), c.Matrix.C()
	return inRange60120(linalg.AngleRad(b, cc)) &&
		inRange60120(linalg.AngleRad(a, cc)) &&
		inRange60120(linalg.AngleRad(a, b))
}

func inRange60120(rad float64) bool {
	deg := rad * 180 / math.Pi
	return deg >= 60 && deg <= 120
}

// substituteTowardRightAngle replaces v with v - round(v.u / u.u) * u,
// the classic Niggli-style lattice substitution that shortens v and pushes
// the angle it forms with u toward 90 degrees without changing the lattice.
func substituteTowardRightAngle(u, v linalg.Vector3) linalg.Vector3 {
	denom := u.Dot(u)
	if denom == 0 {
		return v
	}
	n := math.Round(v.Dot(u) / denom)
	if n == 0 {
		// nudge by one unit so a degenerate loop always makes progress
		n = 1
	}
	return v.Sub(u.Scale(n))
}

// MinInteratomicDistanceOK reports whether every pair of atoms (including
// an atom and its own periodic images, but not an atom against itself at
// zero offset) is at least iadMin apart in Cartesian space, searching the
// 3x3x3 block of neighboring cell images. See spec.md §4.9 step 4.
func (c *Crystal) MinInteratomicDistanceOK(iadMin float64) bool {
	if iadMin <= 0 {
		return true
	}
	min2 := iadMin * iadMin
	a, b, cc := c.Matrix.A(), c.Matrix.B(), c.Matrix.C()
	n := len(c.Atoms)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					for dz := -1; dz <= 1; dz++ {
						if i == j && dx == 0 && dy == 0 && dz == 0 {
							continue
						}
						offset := a.Scale(float64(dx)).Add(b.Scale(float64(dy))).Add(cc.Scale(float64(dz)))
						d2 := c.Atoms[i].Cart.DistSquared(c.Atoms[j].Cart.Add(offset))
						if d2 < min2 {
							return false
						}
					}
				}
			}
		}
	}
	return true
}
