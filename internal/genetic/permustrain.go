package genetic

import (
	"math/rand"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
)

// PermustrainConfig bounds the random draws of the permustrain operator
// (spec.md §4.7): a strain sigma range, and the number of same-position
// species swaps to perform.
type PermustrainConfig struct {
	SigmaMin, SigmaMax float64
	Exchanges          int
}

// Permustrain applies a random strain matrix to parent's cell, then
// performs up to Exchanges random same-position swaps between atoms of
// different species — the atomic numbers trade places, the fractional
// positions do not move. It draws at most 10*Exchanges random pairs, so
// fewer swaps are made when few drawn pairs differ in species.
func Permustrain(parent *crystal.Crystal, cfg PermustrainConfig, rng *rand.Rand) *crystal.Crystal {
	sigma := randSigma(cfg.SigmaMin, cfg.SigmaMax, rng)
	strain := strainMatrix(sigma, rng)
	newMatrix := strain.Mul(parent.Matrix)

	out := crystal.New(newMatrix, nil)
	for _, atom := range parent.Atoms {
		out.AddAtom(atom.AtomicNumber, atom.Frac)
	}

	performed := 0
	for attempt := 0; attempt < cfg.Exchanges*10 && performed < cfg.Exchanges; attempt++ {
		if len(out.Atoms) < 2 {
			break
		}
		i := rng.Intn(len(out.Atoms))
		j := rng.Intn(len(out.Atoms))
		if i == j || out.Atoms[i].AtomicNumber == out.Atoms[j].AtomicNumber {
			continue
		}
		out.Atoms[i].AtomicNumber, out.Atoms[j].AtomicNumber = out.Atoms[j].AtomicNumber, out.Atoms[i].AtomicNumber
		performed++
	}

	return finalizeCandidate(out, crystal.Lineage{
		Operator:    "permustrain",
		ParentIDs:   []int{parent.ID},
		Description: describeStrain("permustrain", sigma, parent.ID),
	})
}
