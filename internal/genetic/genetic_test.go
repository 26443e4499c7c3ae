package genetic

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
)

func binaryParent(seed int64) *crystal.Crystal {
	m := linalg.Diag(5, 5, 5)
	c := crystal.New(m, nil)
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < 4; i++ {
		species := uint32(1)
		if i%2 == 0 {
			species = 2
		}
		c.AddAtom(species, linalg.Vector3{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64()})
	}
	return c
}

func TestCrossoverPreservesTargetComposition(t *testing.T) {
	a := binaryParent(1)
	b := binaryParent(2)
	target := map[uint32]int{1: 2, 2: 2}

	rng := rand.New(rand.NewSource(42))
	child := Crossover(a, b, target, 0.25, rng)

	require.NotNil(t, child)
	assert.True(t, child.MatchesComposition(target))
	assert.Equal(t, "crossover", child.Lineage.Operator)
	assert.ElementsMatch(t, []int{a.ID, b.ID}, child.Lineage.ParentIDs)
}

func TestStripplePreservesAtomCount(t *testing.T) {
	parent := binaryParent(3)
	cfg := StrippleConfig{SigmaMin: 0.01, SigmaMax: 0.05, AmplitudeMin: 0.01, AmplitudeMax: 0.05, Period1: 1, Period2: 2}
	rng := rand.New(rand.NewSource(7))

	child := Stripple(parent, cfg, rng)
	assert.Len(t, child.Atoms, len(parent.Atoms))
	assert.Equal(t, "stripple", child.Lineage.Operator)
}

func TestPermustrainSwapsSpeciesNotPositions(t *testing.T) {
	parent := binaryParent(4)
	cfg := PermustrainConfig{SigmaMin: 0.01, SigmaMax: 0.02, Exchanges: 2}
	rng := rand.New(rand.NewSource(11))

	child := Permustrain(parent, cfg, rng)
	require.Len(t, child.Atoms, len(parent.Atoms))

	originalComposition := parent.Composition()
	childComposition := child.Composition()
	assert.Equal(t, originalComposition, childComposition)
}

func TestFinalizeCandidateResetsLifecycleFields(t *testing.T) {
	parent := binaryParent(5)
	cfg := PermustrainConfig{SigmaMin: 0.01, SigmaMax: 0.02, Exchanges: 1}
	child := Permustrain(parent, cfg, rand.New(rand.NewSource(1)))

	assert.Equal(t, crystal.Empty, child.Status)
	assert.False(t, child.HasEnthalpy)
	assert.False(t, child.HasJobID)
	assert.Zero(t, child.FailCount)
}
