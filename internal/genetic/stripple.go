package genetic

import (
	"fmt"
	"math/rand"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
)

// StrippleConfig bounds the random draws of the stripple operator
// (spec.md §4.7): a strain sigma and a ripple amplitude, each sampled
// uniformly from its [min, max] range, plus the two user-selected
// integer wave periods.
type StrippleConfig struct {
	SigmaMin, SigmaMax         float64
	AmplitudeMin, AmplitudeMax float64
	Period1, Period2           int
}

// Stripple applies a random strain matrix to parent's cell, then displaces
// every atom along a randomly chosen lattice direction by the sum of two
// cosine waves evaluated at the atom's fractional position along that same
// direction.
func Stripple(parent *crystal.Crystal, cfg StrippleConfig, rng *rand.Rand) *crystal.Crystal {
	sigma := randSigma(cfg.SigmaMin, cfg.SigmaMax, rng)
	amplitude := randSigma(cfg.AmplitudeMin, cfg.AmplitudeMax, rng)
	axis := rng.Intn(3)

	strain := strainMatrix(sigma, rng)
	newMatrix := strain.Mul(parent.Matrix)

	out := crystal.New(newMatrix, nil)
	dir := axisUnit(newMatrix, axis)
	for _, atom := range parent.Atoms {
		u := fracComponent(atom.Frac, axis)
		disp := rippleDisplacement(amplitude, cfg.Period1, cfg.Period2, u)
		cart := newMatrix.MulVec(atom.Frac).Add(dir.Scale(disp))
		out.Atoms = append(out.Atoms, crystal.Atom{AtomicNumber: atom.AtomicNumber, Cart: cart})
	}
	out.SyncFracFromCart()

	return finalizeCandidate(out, crystal.Lineage{
		Operator:    "stripple",
		ParentIDs:   []int{parent.ID},
		Description: describeStrain("stripple", sigma, parent.ID) + fmt.Sprintf(" A=%.4f", amplitude),
	})
}
