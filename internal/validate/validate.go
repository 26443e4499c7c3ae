// Package validate implements the candidate validity filter of spec.md
// §4.9: a short-circuiting sequence of checks every freshly generated
// crystal must pass before it enters the scheduler's population.
package validate

import (
	"math"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
)

// ParamLimits bounds one lattice parameter (lengths in the cell's length
// unit, angles in degrees). Min == Max means the parameter is fixed: its
// range check is skipped and the candidate's value is left as it is; it
// is not snapped to that value.
type ParamLimits struct {
	Min, Max float64
}

func (l ParamLimits) fixed() bool { return l.Min == l.Max }

func (l ParamLimits) inRange(v float64) bool {
	return v >= l.Min-1e-9 && v <= l.Max+1e-9
}

// Limits bounds an entire candidate: lattice parameters, volume policy,
// minimum interatomic distance, and target composition, per spec.md §4.9.
type Limits struct {
	A, B, C                ParamLimits
	Alpha, Beta, Gamma     ParamLimits
	VolMin, VolMax         float64
	UsingFixedVolume       bool
	VolFixed               float64
	UsingMinIAD            bool
	IADMin                 float64
	TargetComposition      map[uint32]int
	FixAnglesMaxAttempts   int
}

// Accept runs the ordered, short-circuiting checks of spec.md §4.9
// against c, mutating it in place (fixing angles, rescaling volume) where
// the spec calls for a repair rather than an outright rejection. Fixed
// lattice parameters are not range-checked and are not changed. It
// returns false at the first check that cannot be repaired.
func Accept(c *crystal.Crystal, limits Limits) bool {
	if !snapLatticeParams(c, limits) {
		return false
	}
	if !c.FixAngles(limits.FixAnglesMaxAttempts) {
		return false
	}
	if !repairVolume(c, limits) {
		return false
	}
	if limits.UsingMinIAD && !c.MinInteratomicDistanceOK(limits.IADMin) {
		return false
	}
	if limits.TargetComposition != nil && !c.MatchesComposition(limits.TargetComposition) {
		return false
	}
	return true
}

func snapLatticeParams(c *crystal.Crystal, limits Limits) bool {
	a, b, cc, alpha, beta, gamma := c.CellParams()
	checks := []struct {
		val    float64
		limits ParamLimits
	}{
		{a, limits.A}, {b, limits.B}, {cc, limits.C},
		{alpha * 180 / math.Pi, limits.Alpha}, {beta * 180 / math.Pi, limits.Beta}, {gamma * 180 / math.Pi, limits.Gamma},
	}
	for _, check := range checks {
		if check.limits.fixed() {
			continue
		}
		if check.limits.Max > check.limits.Min && !check.limits.inRange(check.val) {
			return false
		}
	}
	return true
}

// repairVolume enforces the volume policy of spec.md §4.9 step 3: fixed
// volume always rescales; otherwise an out-of-range volume gets one
// deterministic rescale attempt (the pseudo-random factor is derived from
// fmod(volume, 1), matching the source's reproducible-without-an-RNG
// convention) before being rejected.
func repairVolume(c *crystal.Crystal, limits Limits) bool {
	if limits.UsingFixedVolume {
		c.Rescale(limits.VolFixed)
		return true
	}
	v := c.Volume()
	if v >= limits.VolMin && v <= limits.VolMax {
		return true
	}
	frac := math.Mod(v, 1.0)
	target := limits.VolMin + frac*(limits.VolMax-limits.VolMin)
	c.Rescale(target)
	v = c.Volume()
	return v >= limits.VolMin && v <= limits.VolMax
}
