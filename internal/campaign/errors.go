package campaign

import (
	"errors"
	"fmt"

	"github.com/san-kum/rocketmc/internal/casedir"
	"github.com/san-kum/rocketmc/internal/sim"
)

var (
	// ErrGenerator indicates the design generator failed or panicked.
	ErrGenerator = errors.New("campaign: design generator failed")

	// ErrWorkerPanic indicates the materializer or invoker panicked during
	// an iteration.
	ErrWorkerPanic = errors.New("campaign: iteration panicked")

	// ErrInvalidCampaign indicates a campaign that cannot be started.
	ErrInvalidCampaign = errors.New("campaign: invalid campaign")
)

// IterationError wraps a failed iteration with its position in the campaign.
// Errors never travel past the worker that produced them; they are recorded
// in the report and handed to observers.
type IterationError struct {
	Worker    int
	Iteration int
	Index     int
	Kind      error
	Err       error
}

func (e *IterationError) Error() string {
	return fmt.Sprintf("worker %d iteration %d (%s): %v", e.Worker, e.Iteration, ResultName(e.Index), e.Err)
}

func (e *IterationError) Unwrap() error {
	return e.Err
}

// failureKinds is checked in order; the first sentinel err matches names it.
var failureKinds = []struct {
	err  error
	name string
}{
	{ErrGenerator, "generator"},
	{casedir.ErrIO, "io"},
	{sim.ErrProcessLaunch, "launch"},
	{sim.ErrProcessTimeout, "timeout"},
	{sim.ErrProcessExit, "exit"},
	{ErrWorkerPanic, "panic"},
}

// FailureKind names the failure class of err for reporting.
func FailureKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range failureKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "other"
}

func kindOf(err error) error {
	for _, k := range failureKinds {
		if errors.Is(err, k.err) {
			return k.err
		}
	}
	return nil
}
