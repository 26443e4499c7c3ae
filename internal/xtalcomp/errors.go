package xtalcomp

import "errors"

// ErrComparisonFailed is returned when canonicalization of either input
// crystal fails; per spec.md §4.5 the caller treats this as "not matched"
// rather than propagating a hard failure.
var ErrComparisonFailed = errors.New("xtalcomp: canonicalization failed, comparison undecided")
