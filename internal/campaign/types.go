package campaign

import (
	"context"
	"time"

	"github.com/san-kum/rocketmc/internal/sim"
	"github.com/san-kum/rocketmc/internal/vehicle"
)

// DesignFunc produces a fresh design on every call.
type DesignFunc func() (*vehicle.Rocket, error)

// Campaign is the immutable description of one run. NewGenerator is called
// once per worker so that no two workers share generator state.
type Campaign struct {
	Iterations   int
	Workers      int
	NewGenerator func(workerID int) DesignFunc
}

// Shared adapts a generator that is safe for concurrent use.
func Shared(fn DesignFunc) func(workerID int) DesignFunc {
	return func(int) DesignFunc { return fn }
}

type Materializer interface {
	Materialize(design *vehicle.Rocket, dir string) error
	WriteOutput(dir, resultName string) error
}

type Invoker interface {
	Invoke(ctx context.Context, caseDir string) sim.Outcome
}

type State string

const (
	StateIdle      State = "IDLE"
	StateRunning   State = "RUNNING"
	StateCompleted State = "COMPLETED"
	StateCancelled State = "CANCELLED"
)

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Outcome records one attempted iteration. Status is sim.StatusOK only when
// the simulator ran and exited cleanly.
type Outcome struct {
	Worker    int
	Iteration int
	Index     int
	Artifact  string
	Status    sim.Status
	ExitCode  int
	Duration  time.Duration
	Err       error
}

func (o Outcome) OK() bool { return o.Err == nil && o.Status == sim.StatusOK }

// Observer receives progress from worker goroutines.
type Observer interface {
	OnWorkerStart(worker, assigned int)
	OnIteration(o Outcome)
	OnWorkerDone(r WorkerReport)
}
