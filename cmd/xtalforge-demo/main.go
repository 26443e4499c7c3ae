// Command xtalforge-demo wires the file-backed LocalOptimizer stand-in
// through the search scheduler and runs a bounded number of ticks,
// logging a status overview after every tick — a runnable demonstration of the
// whole pipeline in the style of the teacher's cmd/full_pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sarat-asymmetrica/xtalforge/internal/config"
	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/dedup"
	"github.com/sarat-asymmetrica/xtalforge/internal/events"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
	"github.com/sarat-asymmetrica/xtalforge/internal/logging"
	"github.com/sarat-asymmetrica/xtalforge/internal/optimizer"
	"github.com/sarat-asymmetrica/xtalforge/internal/scheduler"
	"github.com/sarat-asymmetrica/xtalforge/internal/state"
	"github.com/sarat-asymmetrica/xtalforge/internal/template"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML run configuration (optional; defaults are used if empty)")
	baseDir := flag.String("base-dir", "xtalforge-run", "directory the file-backed optimizer reads/writes job files in")
	ticks := flag.Int("ticks", 50, "number of scheduler ticks to run before exiting")
	logLevel := flag.String("log-level", "info", "debug, info, warn, or error")
	flag.Parse()

	if err := logging.Init(*logLevel, ""); err != nil {
		fmt.Fprintf(os.Stderr, "logging init failed: %v\n", err)
		os.Exit(1)
	}

	run := config.Run{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logging.Error("failed to load run configuration", "err", err)
			os.Exit(1)
		}
		run = loaded
	} else {
		run = defaultDemoRun()
	}

	schedulerCfg, err := run.SchedulerConfig()
	if err != nil {
		logging.Error("invalid scheduler configuration", "err", err)
		os.Exit(1)
	}

	symbols := template.ElementSymbols{11: "Na", 17: "Cl"}
	if err := os.MkdirAll(*baseDir, 0o755); err != nil {
		logging.Error("failed to create base dir", "err", err, "dir", *baseDir)
		os.Exit(1)
	}
	opt, err := optimizer.NewFileBacked(*baseDir, symbols, 1)
	if err != nil {
		logging.Error("failed to start file-backed optimizer", "err", err)
		os.Exit(1)
	}
	defer opt.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano() ^ 0x5a17a1))
	tracker := scheduler.NewTracker()

	gen := scheduler.GeneratorConfig{
		MinContribution:   run.MinContribution,
		Stripple:          run.StrippleConfig(),
		Permustrain:       run.PermustrainConfig(),
		Limits:            run.ValidateLimits(),
		TargetComposition: run.TargetComposition(),
		RandomGen:         randomSaltCrystal,
	}
	s := scheduler.New(tracker, opt, schedulerCfg, gen, rng)

	bus := events.NewBus()
	overview, unsubscribe := bus.Subscribe(8)
	defer unsubscribe()
	go func() {
		for ev := range overview {
			logging.Info("status overview", "counts", ev.Payload)
		}
	}()

	sweep := func(ctx context.Context) error {
		links, err := dedup.Sweep(ctx, tracker.Snapshot(), dedup.Config{
			TolEnthalpy: run.DedupTolEnthalpy,
			TolVolume:   run.DedupTolVolume,
			Concurrency: run.DedupConcurrency,
		})
		if err != nil {
			return err
		}
		for _, link := range links {
			bus.Publish(events.Event{Kind: events.SimilarityFound, Payload: link})
		}
		return nil
	}

	ctx := context.Background()
	for i := 0; i < *ticks; i++ {
		if err := s.Tick(ctx, sweep); err != nil {
			logging.Error("tick failed", "iteration", i, "err", err)
			break
		}
		bus.Publish(events.Event{Kind: events.StatusOverview, Payload: tracker.CountByStatus()})
	}

	if err := flushRunState(*baseDir, tracker, run); err != nil {
		logging.Error("failed to flush run state", "err", err)
		os.Exit(1)
	}
	logging.Info("demo run complete", "population", len(tracker.Snapshot()))
}

func defaultDemoRun() config.Run {
	run, _ := config.Load(writeDefaultYAML())
	return run
}

// writeDefaultYAML materializes a minimal configuration document so a
// caller can run the demo with zero setup; config.Load still applies the
// package defaults on top of it.
func writeDefaultYAML() string {
	f, err := os.CreateTemp("", "xtalforge-demo-*.yaml")
	if err != nil {
		return ""
	}
	defer f.Close()
	fmt.Fprintln(f, "limits:")
	fmt.Fprintln(f, "  a: {min: 4, max: 8}")
	fmt.Fprintln(f, "  b: {min: 4, max: 8}")
	fmt.Fprintln(f, "  c: {min: 4, max: 8}")
	fmt.Fprintln(f, "  alpha: {min: 80, max: 100}")
	fmt.Fprintln(f, "  beta: {min: 80, max: 100}")
	fmt.Fprintln(f, "  gamma: {min: 80, max: 100}")
	fmt.Fprintln(f, "  vol_min: 50")
	fmt.Fprintln(f, "  vol_max: 400")
	fmt.Fprintln(f, "  target_composition: {Na: 1, Cl: 1}")
	fmt.Fprintln(f, "  fix_angles_max_attempts: 100")
	return f.Name()
}

// randomSaltCrystal is the demo's RandomCrystal generator: a single
// NaCl formula unit at a randomized cubic-ish cell, relying on the
// validity filter to reject anything pathological.
func randomSaltCrystal(rng *rand.Rand) *crystal.Crystal {
	side := 4 + rng.Float64()*4
	m := linalg.Diag(side, side, side)
	c := crystal.New(m, nil)
	c.AddAtom(11, linalg.Vector3{X: 0, Y: 0, Z: 0})
	c.AddAtom(17, linalg.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
	return c
}

func flushRunState(baseDir string, tracker *scheduler.Tracker, run config.Run) error {
	population := tracker.Snapshot()
	nextID := tracker.PeekNextID()

	dirs := make([]string, len(population))
	for i, c := range population {
		dirs[i] = fmt.Sprintf("gen%d_id%d", c.Generation, c.ID)
	}
	return state.WriteRunState(baseDir, state.RunState{
		PopSize:          run.PopSize,
		GenerationTarget: run.GenerationTarget,
		CartTol:          run.CartTol,
		AngleTol:         run.AngleTol,
		ProbCrossover:    run.ProbCrossover,
		ProbStripple:     run.ProbStripple,
		ProbPermustrain:  run.ProbPermustrain,
		NextID:           nextID,
		CrystalDirs:      dirs,
	})
}
