package scheduler

import (
	"context"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/genetic"
	"github.com/sarat-asymmetrica/xtalforge/internal/logging"
	"github.com/sarat-asymmetrica/xtalforge/internal/optimizer"
	"github.com/sarat-asymmetrica/xtalforge/internal/validate"
)

// GeneratorConfig bundles everything Scheduler needs to produce new
// candidates: the genetic operator parameters, the validity filter
// limits, and the random-generation fallback used before three optimized
// parents exist.
type GeneratorConfig struct {
	MinContribution   float64
	Stripple          genetic.StrippleConfig
	Permustrain       genetic.PermustrainConfig
	Limits            validate.Limits
	TargetComposition map[uint32]int
	RandomGen         RandomCrystal
}

// Scheduler drives the event loop of spec.md §4.8 over a Tracker and a
// LocalOptimizer back-end.
type Scheduler struct {
	Tracker *Tracker
	Opt     optimizer.LocalOptimizer
	Queue   *QueueCache
	Config  Config
	Gen     GeneratorConfig
	Rand    *rand.Rand

	sem    *semaphore.Weighted
	randMu sync.Mutex
}

// safeRand returns a private *rand.Rand seeded from the scheduler's
// shared generator, so concurrent Advance goroutines never touch the
// same *rand.Rand instance (math/rand.Rand is not safe for concurrent
// use).
func (s *Scheduler) safeRand() *rand.Rand {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return rand.New(rand.NewSource(s.Rand.Int63()))
}

// New constructs a Scheduler ready to Tick.
func New(tracker *Tracker, opt optimizer.LocalOptimizer, cfg Config, gen GeneratorConfig, rng *rand.Rand) *Scheduler {
	return &Scheduler{
		Tracker: tracker,
		Opt:     opt,
		Queue:   NewQueueCache(opt, cfg.QueueRefreshMinGap),
		Config:  cfg,
		Gen:     gen,
		Rand:    rng,
		sem:     semaphore.NewWeighted(int64(maxInt(cfg.ConcurrentJobLimit, 1))),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Tick runs one pass of the scheduler loop: refresh the queue snapshot,
// advance every non-terminal crystal's state machine, submit pending
// crystals up to the concurrency limit, generate one new candidate if the
// number of running crystals (neither terminal, waiting, nor empty) is below
// the generation target, and optionally sweep for duplicates.
func (s *Scheduler) Tick(ctx context.Context, sweep func(context.Context) error) error {
	queue, err := s.Queue.Snapshot(ctx)
	if err != nil {
		logging.Warn("scheduler: queue refresh failed, using stale snapshot", "err", err)
	}

	snapshot := s.Tracker.Snapshot()

	// Advancing one crystal's state machine is mostly a single optimizer
	// round trip; spec.md §5 runs these on a bounded worker pool so one
	// stalled back-end call cannot hold up every other crystal's tick.
	// The scheduler's shared RNG is not safe for concurrent use, so each
	// Advance call gets a private generator from safeRand, seeded from the
	// shared one under randMu; the optimizer round trip itself runs
	// unlocked.
	group, gctx := errgroup.WithContext(ctx)
	for _, c := range snapshot {
		c := c
		if c.Status.Terminal() || c.Status == crystal.WaitingForOptimization || c.Status == crystal.Empty {
			continue
		}
		if err := s.sem.Acquire(ctx, 1); err != nil {
			break
		}
		group.Go(func() error {
			defer s.sem.Release(1)
			err := Advance(gctx, c, s.Opt, queue, s.Config, s.safeRand(), s.Gen.RandomGen)
			if err != nil {
				logging.Error("scheduler: advance failed", "id", c.ID, "gen", c.Generation, "err", err)
			}
			return nil
		})
	}
	_ = group.Wait()

	s.submitPending(ctx, snapshot)

	running := 0
	for _, c := range snapshot {
		if !c.Status.Terminal() && c.Status != crystal.WaitingForOptimization && c.Status != crystal.Empty {
			running++
		}
	}
	if running < s.Config.GenerationTarget {
		s.generateCandidate(snapshot)
	}

	if sweep != nil {
		if err := sweep(ctx); err != nil {
			logging.Warn("scheduler: duplicate sweep failed", "err", err)
		}
	}
	return nil
}

// submitPending pops WaitingForOptimization crystals and submits them to
// the optimizer while the running count stays under the concurrency
// limit, per spec.md §4.8 step 3.
func (s *Scheduler) submitPending(ctx context.Context, snapshot []*crystal.Crystal) {
	running := 0
	var pending []*crystal.Crystal
	for _, c := range snapshot {
		switch c.Status {
		case crystal.WaitingForOptimization:
			pending = append(pending, c)
		case crystal.Submitted, crystal.InProcess:
			running++
		}
	}

	for _, c := range pending {
		if running >= s.Config.ConcurrentJobLimit {
			break
		}
		if err := s.Opt.WriteInputs(ctx, c); err != nil {
			logging.Warn("scheduler: write inputs failed", "id", c.ID, "gen", c.Generation, "err", err)
			continue
		}
		jobID, err := s.Opt.Start(ctx, c)
		if err != nil {
			logging.Warn("scheduler: submit failed", "id", c.ID, "gen", c.Generation, "err", err)
			continue
		}
		c.JobID = jobID
		c.HasJobID = true
		c.Status = crystal.Submitted
		running++
	}
}

// generateCandidate produces one new crystal via the genetic operators
// (once >= 3 optimized parents exist) or random generation, validates it,
// and admits it to the tracker under the naming lock. A rejected candidate
// is dropped and a new one drawn, up to 1000 attempts; if all are
// rejected, nothing is admitted and the next tick tries again.
func (s *Scheduler) generateCandidate(snapshot []*crystal.Crystal) {
	optimized := make([]*crystal.Crystal, 0)
	for _, c := range snapshot {
		if c.Status == crystal.Optimized {
			optimized = append(optimized, c)
		}
	}

	var candidate *crystal.Crystal
	for attempt := 0; attempt < 1000 && candidate == nil; attempt++ {
		var raw *crystal.Crystal
		if len(optimized) >= 3 {
			raw = s.pickOperator(optimized)
		} else if s.Gen.RandomGen != nil {
			raw = s.Gen.RandomGen(s.Rand)
		} else {
			return
		}
		if raw == nil {
			continue
		}
		if validate.Accept(raw, s.Gen.Limits) {
			candidate = raw
		}
	}
	if candidate == nil {
		logging.Warn("scheduler: generation failed after 1000 attempts")
		return
	}

	snap := s.Tracker.LockForNaming()
	nextGen := 0
	for _, c := range snap {
		if c.Generation > nextGen {
			nextGen = c.Generation
		}
	}
	candidate.Generation = nextGen
	candidate.ID = s.Tracker.NextID()
	candidate.Status = crystal.WaitingForOptimization
	s.Tracker.UnlockForNaming(candidate)
}

func (s *Scheduler) pickOperator(optimized []*crystal.Crystal) *crystal.Crystal {
	total := s.Config.ProbCrossover + s.Config.ProbStripple + s.Config.ProbPermustrain
	if total <= 0 {
		total = 1
	}
	pick := s.Rand.Float64() * total

	switch {
	case pick < s.Config.ProbCrossover:
		a := optimized[s.Rand.Intn(len(optimized))]
		b := optimized[s.Rand.Intn(len(optimized))]
		return genetic.Crossover(a, b, s.Gen.TargetComposition, s.Gen.MinContribution, s.Rand)
	case pick < s.Config.ProbCrossover+s.Config.ProbStripple:
		parent := optimized[s.Rand.Intn(len(optimized))]
		return genetic.Stripple(parent, s.Gen.Stripple, s.Rand)
	default:
		parent := optimized[s.Rand.Intn(len(optimized))]
		return genetic.Permustrain(parent, s.Gen.Permustrain, s.Rand)
	}
}
