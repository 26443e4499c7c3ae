package scheduler

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/logging"
	"github.com/sarat-asymmetrica/xtalforge/internal/optimizer"
	"github.com/sarat-asymmetrica/xtalforge/internal/reduce"
)

// RandomCrystal produces a fresh random candidate, used both for initial
// population seeding and for the Randomize fail-action. Supplied by the
// caller because only it knows the target composition and cell limits
// (spec.md §4.9); the state machine itself has no opinion on chemistry.
type RandomCrystal func(rng *rand.Rand) *crystal.Crystal

// Advance queries opt for c's job state and applies the corresponding
// transition from spec.md §4.8's table, at most one transition per call.
// The new status is left in c.Status; callers that need to know whether a
// terminal state was reached check c.Status.Terminal(). A failed status
// query is logged and leaves the status unchanged; the returned error is
// non-nil only when Update or WriteInputs fails.
func Advance(ctx context.Context, c *crystal.Crystal, opt optimizer.LocalOptimizer, queue []optimizer.QueueEntry, cfg Config, rng *rand.Rand, randomGen RandomCrystal) error {
	switch c.Status {
	case crystal.Submitted:
		status, err := opt.Status(ctx, c, queue)
		if err != nil {
			logging.Warn("scheduler: status query failed", "id", c.ID, "gen", c.Generation, "err", err)
			return nil
		}
		if status == optimizer.Started || status == optimizer.Running || status == optimizer.Queued {
			c.Status = crystal.InProcess
		}
		return nil

	case crystal.InProcess:
		status, err := opt.Status(ctx, c, queue)
		if err != nil {
			logging.Warn("scheduler: status query failed", "id", c.ID, "gen", c.Generation, "err", err)
			return nil
		}
		switch status {
		case optimizer.Success:
			if err := opt.Update(ctx, c); err != nil {
				return errors.Wrapf(err, "crystal %d (gen %d): update from optimizer output", c.ID, c.Generation)
			}
			c.Status = crystal.StepOptimized
		case optimizer.Error:
			c.FailCount++
			if c.FailCount <= cfg.FailCountLimit {
				c.Status = crystal.Restart
			} else {
				applyFailAction(c, cfg.FailAction, rng, randomGen)
			}
		}
		return nil

	case crystal.StepOptimized:
		if c.CurrentStep < int(opt.TotalOptSteps())-1 {
			c.CurrentStep++
			if err := opt.WriteInputs(ctx, c); err != nil {
				return errors.Wrapf(err, "crystal %d (gen %d): write next-step inputs", c.ID, c.Generation)
			}
			c.Status = crystal.WaitingForOptimization
			return nil
		}
		c.WrapAtomsToCell()
		if err := reduce.CanonicalizeCrystal(c); err != nil {
			logging.Warn("scheduler: canonicalize on completion failed", "id", c.ID, "gen", c.Generation, "err", err)
		}
		c.Status = crystal.Optimized
		return nil

	case crystal.Restart:
		if err := opt.WriteInputs(ctx, c); err != nil {
			return errors.Wrapf(err, "crystal %d (gen %d): rewrite inputs on restart", c.ID, c.Generation)
		}
		c.Status = crystal.WaitingForOptimization
		return nil
	}
	return nil
}

// applyFailAction implements spec.md §4.8's three fail-action policies.
// Randomize uses the caller-supplied rng rather than reseeding any
// process-wide generator.
func applyFailAction(c *crystal.Crystal, action FailAction, rng *rand.Rand, randomGen RandomCrystal) {
	switch action {
	case Kill:
		c.Status = crystal.Killed
	case Randomize:
		if randomGen == nil {
			c.Status = crystal.Killed
			return
		}
		fresh := randomGen(rng)
		id, gen, lineage := c.ID, c.Generation, c.Lineage
		*c = *fresh
		c.ID, c.Generation, c.Lineage = id, gen, lineage
		c.FailCount = 0
		c.Status = crystal.WaitingForOptimization
	default:
		// DoNothing: leave status at Error until operator intervention.
		c.Status = crystal.Error
	}
}
