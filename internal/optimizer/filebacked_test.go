package optimizer

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
	"github.com/sarat-asymmetrica/xtalforge/internal/linalg"
	"github.com/sarat-asymmetrica/xtalforge/internal/template"
)

func TestFileBackedRoundTrip(t *testing.T) {
	dir, err := os.MkdirTemp("", "xtalforge-optimizer-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	opt, err := NewFileBacked(dir, template.ElementSymbols{11: "Na", 17: "Cl"}, 1)
	require.NoError(t, err)
	defer opt.Close()

	c := crystal.New(linalg.Diag(4, 4, 4), nil)
	c.ID = 1
	c.AddAtom(11, linalg.Vector3{X: 0, Y: 0, Z: 0})
	c.AddAtom(17, linalg.Vector3{X: 0.5, Y: 0.5, Z: 0.5})

	ctx := context.Background()
	require.NoError(t, opt.WriteInputs(ctx, c))

	jobID, err := opt.Start(ctx, c)
	require.NoError(t, err)
	assert.NotZero(t, jobID)

	queue, err := opt.GetQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "Success", queue[0].StateCode)

	status, err := opt.Status(ctx, c, queue)
	require.NoError(t, err)
	assert.Equal(t, Success, status)

	require.NoError(t, opt.Update(ctx, c))
	assert.True(t, c.HasEnthalpy)
	assert.Equal(t, crystal.StepOptimized, c.Status)

	assert.NoError(t, opt.DeleteJob(ctx, c))
	assert.EqualValues(t, 1, opt.TotalOptSteps())
}
