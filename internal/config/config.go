// Package config loads the YAML run configuration that seeds a search:
// population and concurrency targets, tolerances, operator weights, and
// lattice/volume/IAD limits, per spec.md §10.3 (SPEC_FULL.md). This is
// the initial configuration surface; internal/state owns the resumable
// run-time snapshot.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sarat-asymmetrica/xtalforge/internal/genetic"
	"github.com/sarat-asymmetrica/xtalforge/internal/scheduler"
	"github.com/sarat-asymmetrica/xtalforge/internal/validate"
)

// LatticeLimits is the YAML-facing mirror of validate.ParamLimits.
type LatticeLimits struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (l LatticeLimits) toValidate() validate.ParamLimits {
	return validate.ParamLimits{Min: l.Min, Max: l.Max}
}

// Run is the top-level run configuration document.
type Run struct {
	NumInitial         int     `yaml:"num_initial"`
	PopSize            int     `yaml:"pop_size"`
	GenerationTarget   int     `yaml:"generation_target"`
	ConcurrentJobLimit int     `yaml:"concurrent_job_limit"`
	FailCountLimit     int     `yaml:"fail_count_limit"`
	FailAction         string  `yaml:"fail_action"`
	QueueRefreshMinGap string  `yaml:"queue_refresh_min_gap"`
	DedupSweepInterval string  `yaml:"dedup_sweep_interval"`
	ProbCrossover      float64 `yaml:"prob_crossover"`
	ProbStripple       float64 `yaml:"prob_stripple"`
	ProbPermustrain    float64 `yaml:"prob_permustrain"`

	MinContribution float64 `yaml:"min_contribution"`

	Stripple struct {
		SigmaMin     float64 `yaml:"sigma_min"`
		SigmaMax     float64 `yaml:"sigma_max"`
		AmplitudeMin float64 `yaml:"amplitude_min"`
		AmplitudeMax float64 `yaml:"amplitude_max"`
		Period1      int     `yaml:"period1"`
		Period2      int     `yaml:"period2"`
	} `yaml:"stripple"`

	Permustrain struct {
		SigmaMin  float64 `yaml:"sigma_min"`
		SigmaMax  float64 `yaml:"sigma_max"`
		Exchanges int     `yaml:"exchanges"`
	} `yaml:"permustrain"`

	Limits struct {
		A                    LatticeLimits  `yaml:"a"`
		B                    LatticeLimits  `yaml:"b"`
		C                    LatticeLimits  `yaml:"c"`
		Alpha                LatticeLimits  `yaml:"alpha"`
		Beta                 LatticeLimits  `yaml:"beta"`
		Gamma                LatticeLimits  `yaml:"gamma"`
		VolMin               float64        `yaml:"vol_min"`
		VolMax               float64        `yaml:"vol_max"`
		UsingFixedVolume     bool           `yaml:"using_fixed_volume"`
		VolFixed             float64        `yaml:"vol_fixed"`
		UsingMinIAD          bool           `yaml:"using_min_iad"`
		IADMin               float64        `yaml:"iad_min"`
		TargetComposition    map[string]int `yaml:"target_composition"`
		FixAnglesMaxAttempts int            `yaml:"fix_angles_max_attempts"`
	} `yaml:"limits"`

	CartTol          float64 `yaml:"cart_tol"`
	AngleTol         float64 `yaml:"angle_tol"`
	DedupTolEnthalpy float64 `yaml:"dedup_tol_enthalpy"`
	DedupTolVolume   float64 `yaml:"dedup_tol_volume"`
	DedupConcurrency int     `yaml:"dedup_concurrency"`
}

// defaults mirrors the distilled spec's stated defaults where one is
// given (spec.md §4.8, §4.9); every other zero-valued field is left at
// Go's zero value.
func defaults() Run {
	var r Run
	r.NumInitial = 20
	r.PopSize = 20
	r.GenerationTarget = 20
	r.ConcurrentJobLimit = 4
	r.FailCountLimit = 3
	r.FailAction = "DoNothing"
	r.QueueRefreshMinGap = "5s"
	r.DedupSweepInterval = "5m"
	r.ProbCrossover = 0.5
	r.ProbStripple = 0.25
	r.ProbPermustrain = 0.25
	r.MinContribution = 0.25
	r.CartTol = 0.1
	r.AngleTol = 2.0
	r.DedupTolEnthalpy = 0.001
	r.DedupTolVolume = 0.1
	r.DedupConcurrency = 4
	r.Limits.FixAnglesMaxAttempts = 100
	return r
}

// Load reads a YAML run configuration from path, filling any zero-valued
// field left unset in the document with the package defaults.
func Load(path string) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, errors.Wrapf(err, "config: read %s", path)
	}
	run := defaults()
	if err := yaml.Unmarshal(data, &run); err != nil {
		return Run{}, errors.Wrapf(err, "config: parse %s", path)
	}
	return run, nil
}

// SchedulerConfig projects Run onto scheduler.Config, parsing the
// duration fields and the fail_action enum name.
func (r Run) SchedulerConfig() (scheduler.Config, error) {
	refreshGap, err := time.ParseDuration(r.QueueRefreshMinGap)
	if err != nil {
		return scheduler.Config{}, errors.Wrapf(err, "config: queue_refresh_min_gap %q", r.QueueRefreshMinGap)
	}
	sweepInterval, err := time.ParseDuration(r.DedupSweepInterval)
	if err != nil {
		return scheduler.Config{}, errors.Wrapf(err, "config: dedup_sweep_interval %q", r.DedupSweepInterval)
	}
	return scheduler.Config{
		NumInitial:          r.NumInitial,
		PopSize:             r.PopSize,
		GenerationTarget:    r.GenerationTarget,
		ConcurrentJobLimit:  r.ConcurrentJobLimit,
		FailCountLimit:      r.FailCountLimit,
		FailAction:          r.failAction(),
		QueueRefreshMinGap:  refreshGap,
		DedupSweepInterval:  sweepInterval,
		ProbCrossover:       r.ProbCrossover,
		ProbStripple:        r.ProbStripple,
		ProbPermustrain:     r.ProbPermustrain,
	}, nil
}

func (r Run) failAction() scheduler.FailAction {
	switch r.FailAction {
	case "Kill":
		return scheduler.Kill
	case "Randomize":
		return scheduler.Randomize
	default:
		return scheduler.DoNothing
	}
}

// ValidateLimits projects the YAML limits block onto validate.Limits,
// translating the symbol-keyed target composition into atomic numbers.
func (r Run) ValidateLimits() validate.Limits {
	l := r.Limits
	return validate.Limits{
		A:                    l.A.toValidate(),
		B:                    l.B.toValidate(),
		C:                    l.C.toValidate(),
		Alpha:                l.Alpha.toValidate(),
		Beta:                 l.Beta.toValidate(),
		Gamma:                l.Gamma.toValidate(),
		VolMin:               l.VolMin,
		VolMax:               l.VolMax,
		UsingFixedVolume:     l.UsingFixedVolume,
		VolFixed:             l.VolFixed,
		UsingMinIAD:          l.UsingMinIAD,
		IADMin:               l.IADMin,
		TargetComposition:    compositionToAtomicNumbers(l.TargetComposition),
		FixAnglesMaxAttempts: l.FixAnglesMaxAttempts,
	}
}

// StrippleConfig projects the YAML stripple block onto genetic.StrippleConfig.
func (r Run) StrippleConfig() genetic.StrippleConfig {
	return genetic.StrippleConfig{
		SigmaMin:     r.Stripple.SigmaMin,
		SigmaMax:     r.Stripple.SigmaMax,
		AmplitudeMin: r.Stripple.AmplitudeMin,
		AmplitudeMax: r.Stripple.AmplitudeMax,
		Period1:      r.Stripple.Period1,
		Period2:      r.Stripple.Period2,
	}
}

// PermustrainConfig projects the YAML permustrain block onto
// genetic.PermustrainConfig.
func (r Run) PermustrainConfig() genetic.PermustrainConfig {
	return genetic.PermustrainConfig{
		SigmaMin:  r.Permustrain.SigmaMin,
		SigmaMax:  r.Permustrain.SigmaMax,
		Exchanges: r.Permustrain.Exchanges,
	}
}

// TargetComposition converts the top-level target composition the same
// way ValidateLimits does, for callers (e.g. the generator config) that
// need it outside of a Limits value.
func (r Run) TargetComposition() map[uint32]int {
	return compositionToAtomicNumbers(r.Limits.TargetComposition)
}
