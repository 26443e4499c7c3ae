package dedup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
)

func optimizedCrystal(id int, enthalpy float64) *crystal.Crystal {
	c := crystal.New(linalg.Diag(5, 5, 5), nil)
	c.ID = id
	c.Status = crystal.Optimized
	c.Enthalpy = enthalpy
	c.HasEnthalpy = true
	c.AddAtom(11, linalg.Vector3{X: 0, Y: 0, Z: 0})
	return c
}

func TestSweepTagsHigherEnthalpyAsDuplicate(t *testing.T) {
	a := optimizedCrystal(1, -10.0)
	b := optimizedCrystal(2, -10.0001)
	population := []*crystal.Crystal{a, b}

	cfg := Config{TolEnthalpy: 0.01, TolVolume: 0.1, Concurrency: 4}
	links, err := Sweep(context.Background(), population, cfg)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, crystal.Duplicate, a.Status)
	assert.Equal(t, crystal.Optimized, b.Status)
	assert.Same(t, b, links[0].Retained)
}

func TestSweepIgnoresDifferentSpacegroups(t *testing.T) {
	a := optimizedCrystal(1, -10.0)
	b := optimizedCrystal(2, -10.0001)
	b.SpacegroupNum = 2
	population := []*crystal.Crystal{a, b}

	cfg := Config{TolEnthalpy: 0.01, TolVolume: 0.1, Concurrency: 4}
	links, err := Sweep(context.Background(), population, cfg)
	require.NoError(t, err)
	assert.Empty(t, links)
	assert.Equal(t, crystal.Optimized, a.Status)
	assert.Equal(t, crystal.Optimized, b.Status)
}

func TestSweepIgnoresDistantEnthalpy(t *testing.T) {
	a := optimizedCrystal(1, -10.0)
	b := optimizedCrystal(2, -50.0)
	population := []*crystal.Crystal{a, b}

	cfg := Config{TolEnthalpy: 0.01, TolVolume: 0.1, Concurrency: 4}
	links, err := Sweep(context.Background(), population, cfg)
	require.NoError(t, err)
	assert.Empty(t, links)
}
