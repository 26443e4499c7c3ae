package template

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
)

func coordsCartesian(c *crystal.Crystal, symbols ElementSymbols, withID bool) string {
	var b strings.Builder
	for i, atom := range c.Atoms {
		if withID {
			fmt.Fprintf(&b, "%s %.8f %.8f %.8f %d\n", symbols.symbol(atom.AtomicNumber), atom.Cart.X, atom.Cart.Y, atom.Cart.Z, i)
		} else {
			fmt.Fprintf(&b, "%s %.8f %.8f %.8f\n", symbols.symbol(atom.AtomicNumber), atom.Cart.X, atom.Cart.Y, atom.Cart.Z)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func coordsFractional(c *crystal.Crystal, symbols ElementSymbols, withID bool) string {
	var b strings.Builder
	for i, atom := range c.Atoms {
		if withID {
			fmt.Fprintf(&b, "%s %.8f %.8f %.8f %d\n", symbols.symbol(atom.AtomicNumber), atom.Frac.X, atom.Frac.Y, atom.Frac.Z, i)
		} else {
			fmt.Fprintf(&b, "%s %.8f %.8f %.8f\n", symbols.symbol(atom.AtomicNumber), atom.Frac.X, atom.Frac.Y, atom.Frac.Z)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// poscar renders the crystal in the fixed layout of spec.md §6.2: a
// comment line, scale 1.0, the three lattice vectors, per-element counts
// sorted by element symbol, "Direct", then fractional coordinates grouped
// by element in that same sorted order.
func poscar(c *crystal.Crystal, symbols ElementSymbols) string {
	groups := make(map[uint32][]int)
	for i, atom := range c.Atoms {
		groups[atom.AtomicNumber] = append(groups[atom.AtomicNumber], i)
	}

	species := make([]uint32, 0, len(groups))
	for z := range groups {
		species = append(species, z)
	}
	sort.Slice(species, func(i, j int) bool {
		return symbols.symbol(species[i]) < symbols.symbol(species[j])
	})

	var b strings.Builder
	fmt.Fprintf(&b, "xtalforge generation %d id %d\n", c.Generation, c.ID)
	fmt.Fprintf(&b, "1.0\n")
	va, vb, vc := c.Matrix.A(), c.Matrix.B(), c.Matrix.C()
	fmt.Fprintf(&b, "%s\n%s\n%s\n", vectorLine(va, 1), vectorLine(vb, 1), vectorLine(vc, 1))

	symbolLine := make([]string, len(species))
	countLine := make([]string, len(species))
	for i, z := range species {
		symbolLine[i] = symbols.symbol(z)
		countLine[i] = fmt.Sprintf("%d", len(groups[z]))
	}
	fmt.Fprintf(&b, "%s\n%s\n", strings.Join(symbolLine, " "), strings.Join(countLine, " "))
	fmt.Fprintf(&b, "Direct\n")

	for _, z := range species {
		for _, idx := range groups[z] {
			atom := c.Atoms[idx]
			fmt.Fprintf(&b, "%.8f %.8f %.8f\n", atom.Frac.X, atom.Frac.Y, atom.Frac.Z)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
