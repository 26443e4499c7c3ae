// Package dedup implements the duplicate sweeper of spec.md §4.10: a
// periodic, all-pairs comparison over every Optimized crystal that tags
// the higher-enthalpy member of a duplicate pair as status Duplicate.
package dedup

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/xtalcomp"
)

// Config bounds the heuristic prefilter and the worker pool the sweep
// runs its pairwise comparisons on.
type Config struct {
	TolEnthalpy float64
	TolVolume   float64
	Concurrency int

	// Confirm, if set, runs an XtalComp comparison (spec.md §4.5) before
	// declaring a pair duplicates, using these tolerances. Nil skips
	// confirmation and relies on the spacegroup+enthalpy+volume heuristic
	// alone.
	Confirm *ConfirmConfig
}

// ConfirmConfig bounds the optional XtalComp confirmation step.
type ConfirmConfig struct {
	CartTol, AngleTol float64
}

// Link records which retained crystal a Duplicate-tagged crystal points
// back to.
type Link struct {
	Duplicate *crystal.Crystal
	Retained  *crystal.Crystal
}

// Sweep compares every pair of Optimized crystals in population and
// returns the links it tagged. It mutates the losing crystal of each
// confirmed pair in place, setting Status to Duplicate; it never touches
// a crystal more than once as a loser (a crystal already tagged
// Duplicate by an earlier pair in the sweep is skipped as a future
// loser, though it may still absorb a later, even-higher-enthalpy
// match). Comparisons run on a worker pool bounded by Config.Concurrency.
func Sweep(ctx context.Context, population []*crystal.Crystal, cfg Config) ([]Link, error) {
	optimized := make([]*crystal.Crystal, 0, len(population))
	for _, c := range population {
		if c.Status == crystal.Optimized {
			optimized = append(optimized, c)
		}
	}

	type pair struct{ i, j int }
	var pairs []pair
	for i := 0; i < len(optimized); i++ {
		for j := i + 1; j < len(optimized); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := semaphore.NewWeighted(int64(concurrency))
	group, gctx := errgroup.WithContext(ctx)

	results := make([]*Link, len(pairs))
	for idx, p := range pairs {
		idx, p := idx, p
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		group.Go(func() error {
			defer sem.Release(1)
			link, err := compareHeuristic(gctx, optimized[p.i], optimized[p.j], cfg)
			if err != nil {
				return err
			}
			results[idx] = link
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	alreadyLoser := make(map[*crystal.Crystal]bool)
	var links []Link
	for _, link := range results {
		if link == nil {
			continue
		}
		if alreadyLoser[link.Duplicate] {
			continue
		}
		link.Duplicate.Status = crystal.Duplicate
		alreadyLoser[link.Duplicate] = true
		links = append(links, *link)
	}
	return links, nil
}

func compareHeuristic(ctx context.Context, a, b *crystal.Crystal, cfg Config) (*Link, error) {
	if a.SpacegroupNum != b.SpacegroupNum {
		return nil, nil
	}
	if absDiff(a.Enthalpy, b.Enthalpy) >= cfg.TolEnthalpy {
		return nil, nil
	}
	if absDiff(a.Volume(), b.Volume()) >= cfg.TolVolume {
		return nil, nil
	}

	if cfg.Confirm != nil {
		ok, _, err := xtalcomp.Compare(a, b, cfg.Confirm.CartTol, cfg.Confirm.AngleTol)
		if err != nil {
			return nil, nil
		}
		if !ok {
			return nil, nil
		}
	}

	if a.Enthalpy > b.Enthalpy {
		return &Link{Duplicate: a, Retained: b}, nil
	}
	return &Link{Duplicate: b, Retained: a}, nil
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
