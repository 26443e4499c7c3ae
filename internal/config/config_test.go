package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarat-asymmetrica/xtalforge/internal/scheduler"
)

const sampleYAML = `
pop_size: 12
fail_action: Randomize
limits:
  a: {min: 3, max: 10}
  target_composition:
    Na: 1
    Cl: 1
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))
	return path
}

func TestLoadFillsDefaultsAroundOverrides(t *testing.T) {
	run, err := Load(writeSample(t))
	require.NoError(t, err)

	assert.Equal(t, 12, run.PopSize)
	assert.Equal(t, 20, run.GenerationTarget, "unset field should keep the default")
	assert.Equal(t, "Randomize", run.FailAction)
}

func TestSchedulerConfigParsesDurationsAndFailAction(t *testing.T) {
	run, err := Load(writeSample(t))
	require.NoError(t, err)

	cfg, err := run.SchedulerConfig()
	require.NoError(t, err)
	assert.Equal(t, scheduler.Randomize, cfg.FailAction)
	assert.Equal(t, 12, cfg.PopSize)
}

func TestValidateLimitsTranslatesSymbolsToAtomicNumbers(t *testing.T) {
	run, err := Load(writeSample(t))
	require.NoError(t, err)

	limits := run.ValidateLimits()
	assert.Equal(t, 3.0, limits.A.Min)
	assert.Equal(t, map[uint32]int{11: 1, 17: 1}, limits.TargetComposition)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
