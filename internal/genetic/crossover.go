package genetic

import (
	"math"
	"math/rand"
	"sort"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
)

type slabAtom struct {
	atom      crystal.Atom
	distToCut float64
	fromA     bool
}

// Crossover implements spec.md §4.7's crossover operator: a fractional
// slab [0, f) from parent a and [f, 1) from parent b, along a randomly
// chosen lattice direction, with f constrained to
// [minContribution, 1-minContribution]. Composition is then repaired
// against target: surplus species lose atoms nearest the cut plane first,
// deficit species gain atoms from the pooled excluded regions of both
// parents, nearest the cut plane first.
func Crossover(a, b *crystal.Crystal, target map[uint32]int, minContribution float64, rng *rand.Rand) *crystal.Crystal {
	if minContribution < 0 {
		minContribution = 0
	}
	if minContribution > 0.5 {
		minContribution = 0.5
	}
	axis := rng.Intn(3)
	f := minContribution + rng.Float64()*(1-2*minContribution)

	newMatrix := lerpMatrix(a.Matrix, b.Matrix, f)

	var kept []slabAtom
	var excludedA, excludedB []slabAtom

	for _, atom := range a.Atoms {
		u := fracComponent(atom.Frac, axis)
		sa := slabAtom{atom: atom, distToCut: math.Abs(u - f), fromA: true}
		if u < f {
			kept = append(kept, sa)
		} else {
			excludedA = append(excludedA, sa)
		}
	}
	for _, atom := range b.Atoms {
		u := fracComponent(atom.Frac, axis)
		sb := slabAtom{atom: atom, distToCut: math.Abs(u - f), fromA: false}
		if u >= f {
			kept = append(kept, sb)
		} else {
			excludedB = append(excludedB, sb)
		}
	}

	kept = repairComposition(kept, excludedA, excludedB, target)

	out := crystal.New(newMatrix, nil)
	for _, sa := range kept {
		out.AddAtom(sa.atom.AtomicNumber, sa.atom.Frac)
	}

	return finalizeCandidate(out, crystal.Lineage{
		Operator:    "crossover",
		ParentIDs:   []int{a.ID, b.ID},
		Description: describeF("crossover", f, a.ID, b.ID),
	})
}

// repairComposition enforces target stoichiometry on kept, pulling
// replacement atoms from the excluded pools when a species is short and
// trimming the closest-to-cut atoms when a species is in surplus.
func repairComposition(kept []slabAtom, excludedA, excludedB []slabAtom, target map[uint32]int) []slabAtom {
	counts := make(map[uint32]int)
	for _, sa := range kept {
		counts[sa.atom.AtomicNumber]++
	}

	for species, want := range target {
		have := counts[species]
		switch {
		case have > want:
			kept = trimSpecies(kept, species, have-want)
		case have < want:
			pool := append(append([]slabAtom{}, excludedA...), excludedB...)
			kept = append(kept, pullSpecies(pool, species, want-have)...)
		}
	}

	// Drop species that exist in kept but not in target at all.
	filtered := kept[:0]
	for _, sa := range kept {
		if _, ok := target[sa.atom.AtomicNumber]; ok {
			filtered = append(filtered, sa)
		}
	}
	return filtered
}

func trimSpecies(kept []slabAtom, species uint32, remove int) []slabAtom {
	idx := make([]int, 0)
	for i, sa := range kept {
		if sa.atom.AtomicNumber == species {
			idx = append(idx, i)
		}
	}
	sort.Slice(idx, func(i, j int) bool { return kept[idx[i]].distToCut < kept[idx[j]].distToCut })
	if remove > len(idx) {
		remove = len(idx)
	}
	drop := make(map[int]bool, remove)
	for _, i := range idx[:remove] {
		drop[i] = true
	}
	out := make([]slabAtom, 0, len(kept)-remove)
	for i, sa := range kept {
		if !drop[i] {
			out = append(out, sa)
		}
	}
	return out
}

func pullSpecies(pool []slabAtom, species uint32, need int) []slabAtom {
	var candidates []slabAtom
	for _, sa := range pool {
		if sa.atom.AtomicNumber == species {
			candidates = append(candidates, sa)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].distToCut < candidates[j].distToCut })
	if need > len(candidates) {
		need = len(candidates)
	}
	return candidates[:need]
}
