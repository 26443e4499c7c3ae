package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
)

func sampleCrystal() *crystal.Crystal {
	c := crystal.New(linalg.Diag(5, 6, 7), nil)
	c.AddAtom(11, linalg.Vector3{X: 0, Y: 0, Z: 0})
	c.AddAtom(17, linalg.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
	c.Generation = 3
	c.ID = 42
	c.Status = crystal.Optimized
	c.Enthalpy = -123.456
	c.HasEnthalpy = true
	c.JobID = 9
	c.HasJobID = true
	c.Lineage = crystal.Lineage{Operator: "crossover", ParentIDs: []int{1, 2}, Description: "f=0.37"}
	return c
}

func TestCrystalStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := sampleCrystal()

	require.NoError(t, WriteCrystalState(dir, original))
	restored, err := ReadCrystalState(dir)
	require.NoError(t, err)

	assert.Equal(t, original.Generation, restored.Generation)
	assert.Equal(t, original.ID, restored.ID)
	assert.Equal(t, original.Status, restored.Status)
	assert.InDelta(t, original.Enthalpy, restored.Enthalpy, 1e-9)
	assert.True(t, restored.HasEnthalpy)
	assert.Equal(t, original.JobID, restored.JobID)
	assert.Equal(t, original.Lineage, restored.Lineage)
	require.Len(t, restored.Atoms, 2)
	assert.Equal(t, uint32(11), restored.Atoms[0].AtomicNumber)
	assert.InDelta(t, 0.5, restored.Atoms[1].Frac.X, 1e-9)
	assert.InDelta(t, original.Volume(), restored.Volume(), 1e-6)
}

func TestRunStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := RunState{
		PopSize:          20,
		GenerationTarget: 20,
		CartTol:          0.1,
		AngleTol:         2.0,
		ProbCrossover:    0.5,
		ProbStripple:     0.25,
		ProbPermustrain:  0.25,
		NextID:           7,
		CrystalDirs:      []string{"gen0_0", "gen0_1", "gen1_0"},
	}

	require.NoError(t, WriteRunState(dir, original))
	restored, err := ReadRunState(dir)
	require.NoError(t, err)

	assert.Equal(t, original, restored)
}

func TestReadCrystalStateMissingDirReturnsError(t *testing.T) {
	_, err := ReadCrystalState(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestWriteCrystalStateCreatesReadableFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteCrystalState(dir, sampleCrystal()))
	data, err := os.ReadFile(filepath.Join(dir, crystalStateFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "begin_atoms")
	assert.Contains(t, string(data), "end_atoms")
}
