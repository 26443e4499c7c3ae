package xtalcomp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
)

func rocksalt() *crystal.Crystal {
	m := linalg.Diag(4, 4, 4)
	c := crystal.New(m, nil)
	c.AddAtom(11, linalg.Vector3{X: 0, Y: 0, Z: 0})
	c.AddAtom(17, linalg.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
	return c
}

func TestCompareIdenticalCrystalsMatch(t *testing.T) {
	c1 := rocksalt()
	c2 := rocksalt()

	ok, transform, err := Compare(c1, c2, 0.1, 0.05)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, transform)
}

func TestCompareTranslatedCopyMatches(t *testing.T) {
	c1 := rocksalt()
	c2 := rocksalt()
	for i := range c2.Atoms {
		c2.Atoms[i].Frac = crystal.WrapFrac(c2.Atoms[i].Frac.Add(linalg.Vector3{X: 0.5, Y: 0, Z: 0}))
	}
	c2.SyncCartFromFrac()

	ok, _, err := Compare(c1, c2, 0.1, 0.05)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompareDifferentCompositionRejectedByPrefilter(t *testing.T) {
	c1 := rocksalt()
	c2 := crystal.New(linalg.Diag(4, 4, 4), nil)
	c2.AddAtom(11, linalg.Vector3{X: 0, Y: 0, Z: 0})
	c2.AddAtom(11, linalg.Vector3{X: 0.5, Y: 0.5, Z: 0.5})

	ok, transform, err := Compare(c1, c2, 0.1, 0.05)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, transform)
}

func TestCompareDifferentVolumeRejected(t *testing.T) {
	c1 := rocksalt()
	c2 := rocksalt()
	c2.Rescale(c2.Volume() * 4)

	ok, _, err := Compare(c1, c2, 0.1, 0.05)
	require.NoError(t, err)
	assert.False(t, ok)
}
