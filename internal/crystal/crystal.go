// Package crystal implements the Crystal entity: a cell matrix plus an
// ordered sequence of atoms, along with the lifecycle metadata the search
// scheduler drives through its state machine. See spec.md §3, §4.6.
package crystal

import (
	"math"

	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
	"github.com/sarat-asymmetrica/xtalforge/internal/tolerance"
)

// Status is a crystal's position in the scheduler state machine of
// spec.md §4.8. Terminal statuses are Optimized, Killed, Removed, Duplicate.
type Status int

const (
	Empty Status = iota
	WaitingForOptimization
	Submitted
	InProcess
	StepOptimized
	Optimized
	Error
	Restart
	Killed
	Removed
	Duplicate
)

func (s Status) String() string {
	switch s {
	case Empty:
		return "Empty"
	case WaitingForOptimization:
		return "WaitingForOptimization"
	case Submitted:
		return "Submitted"
	case InProcess:
		return "InProcess"
	case StepOptimized:
		return "StepOptimized"
	case Optimized:
		return "Optimized"
	case Error:
		return "Error"
	case Restart:
		return "Restart"
	case Killed:
		return "Killed"
	case Removed:
		return "Removed"
	case Duplicate:
		return "Duplicate"
	default:
		return "Unknown"
	}
}

// Terminal reports whether s is one of the statuses the scheduler never
// advances out of on its own.
func (s Status) Terminal() bool {
	switch s {
	case Optimized, Killed, Removed, Duplicate:
		return true
	default:
		return false
	}
}

// Atom is one site in a crystal. Frac and Cart must stay consistent with
// the owning Crystal's cell matrix; Crystal.SyncCartFromFrac and
// SyncFracFromCart re-derive one from the other after a mutation.
type Atom struct {
	AtomicNumber uint32
	Frac         linalg.Vector3
	Cart         linalg.Vector3
}

// Fingerprint is the cheap dedup key of spec.md §3.
type Fingerprint struct {
	SpacegroupNumber int
	Enthalpy         float64
	Volume           float64
}

// Lineage records how a crystal was produced, for the parents_description
// metadata field (e.g. "crossover([12 7]) f=0.420" or "random").
type Lineage struct {
	Operator    string
	ParentIDs   []int
	Description string
}

// Crystal is a cell matrix plus atoms, plus scheduler lifecycle metadata.
type Crystal struct {
	Matrix linalg.Matrix3
	Atoms  []Atom

	Generation    int
	ID            int
	Lineage       Lineage
	CurrentStep   int
	FailCount     int
	Status        Status
	Enthalpy      float64
	HasEnthalpy   bool
	Energy        float64
	HasEnergy     bool
	JobID         uint64
	HasJobID      bool
	SpacegroupNum int
	SpacegroupSym string
}

// New returns a Crystal with the given matrix and atoms, defaulting to
// spacegroup 1 ("P1") per spec.md §4.6/§6.3 until a spacegroup capability
// overrides it.
func New(matrix linalg.Matrix3, atoms []Atom) *Crystal {
	return &Crystal{
		Matrix:        matrix,
		Atoms:         append([]Atom(nil), atoms...),
		SpacegroupNum: 1,
		SpacegroupSym: "P1",
	}
}

// FracFromCart converts a Cartesian vector to fractional coordinates under
// this crystal's cell matrix.
func (c *Crystal) FracFromCart(cart linalg.Vector3) (linalg.Vector3, bool) {
	inv, ok := c.Matrix.Inverse()
	if !ok {
		return linalg.Vector3{}, false
	}
	return inv.MulVec(cart), true
}

// CartFromFrac converts a fractional vector to Cartesian coordinates under
// this crystal's cell matrix.
func (c *Crystal) CartFromFrac(frac linalg.Vector3) linalg.Vector3 {
	return c.Matrix.MulVec(frac)
}

// SyncCartFromFrac recomputes every atom's Cart from its Frac. Call this
// after mutating fractional coordinates directly (the genetic operators do).
func (c *Crystal) SyncCartFromFrac() {
	for i := range c.Atoms {
		c.Atoms[i].Cart = c.CartFromFrac(c.Atoms[i].Frac)
	}
}

// SyncFracFromCart recomputes every atom's Frac from its Cart. Call this
// after mutating Cartesian coordinates directly, or after replacing the
// cell matrix.
func (c *Crystal) SyncFracFromCart() bool {
	inv, ok := c.Matrix.Inverse()
	if !ok {
		return false
	}
	for i := range c.Atoms {
		c.Atoms[i].Frac = inv.MulVec(c.Atoms[i].Cart)
	}
	return true
}

// AddAtom appends an atom and keeps Cart consistent with Frac.
func (c *Crystal) AddAtom(atomicNumber uint32, frac linalg.Vector3) {
	a := Atom{AtomicNumber: atomicNumber, Frac: frac, Cart: c.CartFromFrac(frac)}
	c.Atoms = append(c.Atoms, a)
}

// RemoveAtom deletes the atom at index i.
func (c *Crystal) RemoveAtom(i int) {
	c.Atoms = append(c.Atoms[:i], c.Atoms[i+1:]...)
}

// WrapAtomsToCell wraps every atom's fractional coordinates into [0, 1),
// using fmod plus the stable comparator to guard against the negative
// results plain fmod can produce for negative inputs (spec.md §4.3).
func (c *Crystal) WrapAtomsToCell() {
	for i := range c.Atoms {
		c.Atoms[i].Frac = WrapFrac(c.Atoms[i].Frac)
	}
	c.SyncCartFromFrac()
}

// WrapFrac wraps a single fractional coordinate into [0, 1).
func WrapFrac(f linalg.Vector3) linalg.Vector3 {
	return linalg.Vector3{X: wrap1(f.X), Y: wrap1(f.Y), Z: wrap1(f.Z)}
}

func wrap1(v float64) float64 {
	w := math.Mod(v, 1.0)
	if tolerance.Lt(w, 0, tolerance.Default) {
		w += 1.0
	}
	// Guard the fence-post: fmod can leave w at exactly 1.0 - epsilon that
	// the stable comparator still calls "equal to 1".
	if tolerance.Geq(w, 1.0, tolerance.Default) {
		w = 0
	}
	return w
}

// CellParams returns (a, b, c, alphaRad, betaRad, gammaRad).
func (c *Crystal) CellParams() (a, b, cc, alpha, beta, gamma float64) {
	va, vb, vc := c.Matrix.A(), c.Matrix.B(), c.Matrix.C()
	a, b, cc = va.Norm(), vb.Norm(), vc.Norm()
	alpha = linalg.AngleRad(vb, vc)
	beta = linalg.AngleRad(va, vc)
	gamma = linalg.AngleRad(va, vb)
	return
}

// Volume returns |det(Matrix)|.
func (c *Crystal) Volume() float64 {
	return c.Matrix.Volume()
}

// Rescale scales the cell matrix so the volume becomes targetVolume,
// preserving shape (every lattice vector scaled by the same cube-root
// factor), and re-derives Cartesian atom positions from their unchanged
// fractional coordinates.
func (c *Crystal) Rescale(targetVolume float64) {
	v := c.Volume()
	if v <= 0 {
		return
	}
	factor := math.Cbrt(targetVolume / v)
	c.Matrix = c.Matrix.Scale(factor)
	c.SyncCartFromFrac()
}

// Composition returns the count of atoms per atomic number.
func (c *Crystal) Composition() map[uint32]int {
	out := make(map[uint32]int)
	for _, a := range c.Atoms {
		out[a.AtomicNumber]++
	}
	return out
}

// MatchesComposition reports whether c's composition is an exact multiset
// match for target.
func (c *Crystal) MatchesComposition(target map[uint32]int) bool {
	got := c.Composition()
	if len(got) != len(target) {
		return false
	}
	for z, n := range target {
		if got[z] != n {
			return false
		}
	}
	return true
}

// Fingerprint computes the quick dedup key of spec.md §3. Enthalpy is
// whatever the crystal currently holds (0 if HasEnthalpy is false).
func (c *Crystal) Fingerprint() Fingerprint {
	return Fingerprint{
		SpacegroupNumber: c.SpacegroupNum,
		Enthalpy:         c.Enthalpy,
		Volume:           c.Volume(),
	}
}

// Clone returns a deep copy of c.
func (c *Crystal) Clone() *Crystal {
	cp := *c
	cp.Atoms = append([]Atom(nil), c.Atoms...)
	cp.Lineage.ParentIDs = append([]int(nil), c.Lineage.ParentIDs...)
	return &cp
}
