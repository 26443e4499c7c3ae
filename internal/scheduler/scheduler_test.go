package scheduler

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
	"github.com/sarat-asymmetrica/xtalforge/internal/optimizer"
)

// fakeOptimizer reports Started for a Submitted crystal and Success for
// any other, for deterministic scheduler tests.
type fakeOptimizer struct {
	queue      []optimizer.QueueEntry
	totalSteps uint32
}

func (f *fakeOptimizer) WriteInputs(ctx context.Context, c *crystal.Crystal) error { return nil }

func (f *fakeOptimizer) Start(ctx context.Context, c *crystal.Crystal) (uint64, error) {
	return uint64(c.ID), nil
}

func (f *fakeOptimizer) Status(ctx context.Context, c *crystal.Crystal, queue []optimizer.QueueEntry) (optimizer.JobStatus, error) {
	if c.Status == crystal.Submitted {
		return optimizer.Started, nil
	}
	return optimizer.Success, nil
}

func (f *fakeOptimizer) GetQueue(ctx context.Context) ([]optimizer.QueueEntry, error) {
	return f.queue, nil
}

func (f *fakeOptimizer) DeleteJob(ctx context.Context, c *crystal.Crystal) error { return nil }

func (f *fakeOptimizer) Update(ctx context.Context, c *crystal.Crystal) error {
	c.Enthalpy = -5
	c.HasEnthalpy = true
	return nil
}

func (f *fakeOptimizer) TotalOptSteps() uint32 { return f.totalSteps }

func seedCrystal(id int) *crystal.Crystal {
	c := crystal.New(linalg.Diag(5, 5, 5), nil)
	c.ID = id
	c.AddAtom(11, linalg.Vector3{X: 0, Y: 0, Z: 0})
	c.AddAtom(17, linalg.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
	c.Status = crystal.Submitted
	return c
}

func TestTickAdvancesSubmittedToInProcess(t *testing.T) {
	tracker := NewTracker()
	c := seedCrystal(1)
	tracker.Add(c)

	opt := &fakeOptimizer{totalSteps: 1}
	cfg := Config{ConcurrentJobLimit: 2, GenerationTarget: 0, FailCountLimit: 3, QueueRefreshMinGap: time.Minute}
	s := New(tracker, opt, cfg, GeneratorConfig{}, rand.New(rand.NewSource(1)))

	require.NoError(t, s.Tick(context.Background(), nil))
	assert.Equal(t, crystal.InProcess, c.Status)
}

func TestTickCompletesSingleStepToOptimized(t *testing.T) {
	tracker := NewTracker()
	c := seedCrystal(1)
	c.Status = crystal.InProcess
	tracker.Add(c)

	opt := &fakeOptimizer{totalSteps: 1}
	cfg := Config{ConcurrentJobLimit: 2, GenerationTarget: 0, FailCountLimit: 3, QueueRefreshMinGap: time.Minute}
	s := New(tracker, opt, cfg, GeneratorConfig{}, rand.New(rand.NewSource(1)))

	// Each tick applies one transition: InProcess -> StepOptimized, then
	// StepOptimized -> Optimized since this is the only step.
	require.NoError(t, s.Tick(context.Background(), nil))
	require.NoError(t, s.Tick(context.Background(), nil))
	assert.Equal(t, crystal.Optimized, c.Status)
	assert.True(t, c.HasEnthalpy)
}

func TestNamingLockAssignsUniqueIDs(t *testing.T) {
	tracker := NewTracker()
	snap := tracker.LockForNaming()
	assert.Empty(t, snap)
	id1 := tracker.NextID()
	tracker.UnlockForNaming(&crystal.Crystal{ID: id1})

	snap2 := tracker.LockForNaming()
	assert.Len(t, snap2, 1)
	id2 := tracker.NextID()
	tracker.UnlockForNaming(&crystal.Crystal{ID: id2})

	assert.NotEqual(t, id1, id2)
	assert.Len(t, tracker.Snapshot(), 2)
}

func TestQueueCacheReusesWithinMinGap(t *testing.T) {
	opt := &fakeOptimizer{queue: []optimizer.QueueEntry{{JobID: 1, StateCode: "Running"}}}
	cache := NewQueueCache(opt, time.Hour)

	first, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	opt.queue = []optimizer.QueueEntry{{JobID: 2, StateCode: "Running"}}
	second, err := cache.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
