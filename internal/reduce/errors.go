package reduce

import "errors"

// Sentinel errors for the reduced-cell engine, per spec.md §7. Wrap with
// github.com/pkg/errors.Wrapf at call boundaries that need to attach a
// crystal (generation, id) for operator-facing diagnostics; callers match
// with errors.Is against these sentinels, never by comparing messages.
var (
	// ErrLatticeNotReduced is returned when 1000 Niggli iterations elapse
	// without the characteristic settling (spec.md §4.3).
	ErrLatticeNotReduced = errors.New("reduce: lattice did not converge within iteration budget")

	// ErrLatticeIllConditioned is returned when step 4's sign search finds
	// no exactly-zero characteristic value to pin down, so i*j*k=-1 has no
	// safe assignment (spec.md §4.3 step 4).
	ErrLatticeIllConditioned = errors.New("reduce: lattice step 4 has no ill-defined sign to pin")
)
