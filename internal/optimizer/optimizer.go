// Package optimizer defines the LocalOptimizer capability boundary of
// spec.md §6.1: the scheduler core assumes only this contract, and is
// agnostic to whatever external chemistry back-end actually runs each
// optimization step.
package optimizer

import (
	"context"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
)

// JobStatus is one of the states a back-end reports for a submitted job.
type JobStatus int

const (
	Pending JobStatus = iota
	Started
	Queued
	Running
	Success
	Error
	CommunicationError
	Unknown
)

func (s JobStatus) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Started:
		return "Started"
	case Queued:
		return "Queued"
	case Running:
		return "Running"
	case Success:
		return "Success"
	case Error:
		return "Error"
	case CommunicationError:
		return "CommunicationError"
	default:
		return "Unknown"
	}
}

// QueueEntry is one (job_id, state_code) pair from a back-end's queue
// snapshot.
type QueueEntry struct {
	JobID     uint64
	StateCode string
}

// LocalOptimizer is the capability the search scheduler drives. Write,
// Start, and Delete take a crystal by value of its current state; Update
// mutates the crystal in place with the back-end's reported outputs. All
// methods accept a context so a back-end is free to make network calls
// and honor caller timeouts (spec.md §5's job-state refresh timeout).
type LocalOptimizer interface {
	// WriteInputs renders and writes whatever input files this step needs
	// for c, in the directory the caller's filesystem policy assigns it.
	WriteInputs(ctx context.Context, c *crystal.Crystal) error

	// Start submits c for optimization and returns the back-end's job id.
	Start(ctx context.Context, c *crystal.Crystal) (jobID uint64, err error)

	// Status reports c's current job state, consulting the supplied queue
	// snapshot rather than making its own round trip.
	Status(ctx context.Context, c *crystal.Crystal, queue []QueueEntry) (JobStatus, error)

	// GetQueue returns a full snapshot of this back-end's queue.
	GetQueue(ctx context.Context) ([]QueueEntry, error)

	// DeleteJob cancels c's job if known; unknown jobs are ignored, not an
	// error.
	DeleteJob(ctx context.Context, c *crystal.Crystal) error

	// Update reads this step's outputs and applies them to c: atoms, cell,
	// energy, enthalpy. Callers set c.Status to StepOptimized afterward.
	Update(ctx context.Context, c *crystal.Crystal) error

	// TotalOptSteps reports how many optimization steps this back-end's
	// configured job sequence has.
	TotalOptSteps() uint32
}
