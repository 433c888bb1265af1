package campaign

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/rocketmc/internal/sim"
	"github.com/san-kum/rocketmc/internal/vehicle"
)

// Worker owns one slot of the pool and one private case directory.
type Worker struct {
	ID       int
	Count    int
	Assigned int

	dir        string
	resultsDir string
	generate   DesignFunc
	mat        Materializer
	inv        Invoker
	observers  []Observer
	log        *zap.Logger

	cancelled atomic.Bool

	mu       sync.Mutex
	state    State
	failures map[string]int
}

func newWorker(id, count, assigned int, dir, resultsDir string, gen DesignFunc, mat Materializer, inv Invoker, observers []Observer, log *zap.Logger) *Worker {
	return &Worker{
		ID:         id,
		Count:      count,
		Assigned:   assigned,
		dir:        dir,
		resultsDir: resultsDir,
		generate:   gen,
		mat:        mat,
		inv:        inv,
		observers:  observers,
		log:        log.With(zap.Int("worker", id)),
		state:      StateIdle,
		failures:   make(map[string]int),
	}
}

// Cancel asks the worker to stop before its next iteration. A simulator
// run already in progress is allowed to finish.
func (w *Worker) Cancel() { w.cancelled.Store(true) }

func (w *Worker) Cancelled() bool { return w.cancelled.Load() }

func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Worker) Dir() string { return w.dir }

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Run executes the worker loop to completion or cancellation. The flag and
// ctx are checked only between iterations. Iteration failures are recorded
// and never stop the loop.
func (w *Worker) Run(ctx context.Context) WorkerReport {
	rep := WorkerReport{ID: w.ID, Assigned: w.Assigned}
	w.setState(StateRunning)
	for _, obs := range w.observers {
		obs.OnWorkerStart(w.ID, w.Assigned)
	}
	w.log.Debug("worker started", zap.Int("assigned", w.Assigned), zap.String("dir", w.dir))

	final := StateCompleted
	for i := 0; i < w.Assigned; i++ {
		if w.cancelled.Load() || ctx.Err() != nil {
			w.Cancel()
			final = StateCancelled
			break
		}

		out := w.iterate(ctx, i)
		rep.Attempted++
		if out.OK() {
			rep.Succeeded++
			w.log.Info("iteration succeeded",
				zap.Int("iteration", i),
				zap.Int("index", out.Index),
				zap.Duration("duration", out.Duration))
		} else {
			rep.Failed++
			kind := FailureKind(out.Err)
			w.failures[kind]++
			w.log.Warn("iteration failed",
				zap.Int("iteration", i),
				zap.Int("index", out.Index),
				zap.String("status", string(out.Status)),
				zap.String("kind", kind),
				zap.Error(out.Err))
		}
		for _, obs := range w.observers {
			obs.OnIteration(out)
		}
	}

	if final == StateCancelled {
		rep.Cancelled = w.Assigned - rep.Attempted
		w.log.Info("worker cancelled", zap.Int("attempted", rep.Attempted), zap.Int("skipped", rep.Cancelled))
	}
	rep.State = final
	w.setState(final)
	for _, obs := range w.observers {
		obs.OnWorkerDone(rep)
	}
	return rep
}

func (w *Worker) iterate(ctx context.Context, i int) Outcome {
	start := time.Now()
	out := Outcome{Worker: w.ID, Iteration: i, Status: sim.StatusFailed, ExitCode: -1}
	fail := func(err error) Outcome {
		out.Duration = time.Since(start)
		out.Err = &IterationError{Worker: w.ID, Iteration: i, Index: out.Index, Kind: kindOf(err), Err: err}
		return out
	}

	out.Index = Index(i, w.ID, w.Count)
	name := ResultName(out.Index)
	out.Artifact = filepath.Join(w.resultsDir, name)

	design, err := w.design()
	if err != nil {
		return fail(err)
	}
	res, err := w.execute(ctx, design, name)
	if err != nil {
		return fail(err)
	}
	out.Status = res.Status
	out.ExitCode = res.ExitCode
	if !res.OK() {
		if res.Err == nil {
			res.Err = fmt.Errorf("%w: status %s", sim.ErrProcessExit, res.Status)
		}
		return fail(res.Err)
	}
	out.Duration = time.Since(start)
	return out
}

// execute materializes the case and runs the simulator on it. A panic in
// either is returned as ErrWorkerPanic so the loop moves on to the next
// iteration.
func (w *Worker) execute(ctx context.Context, design *vehicle.Rocket, name string) (res sim.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = sim.Outcome{}, fmt.Errorf("%w: %v", ErrWorkerPanic, r)
		}
	}()
	if err := w.mat.Materialize(design, w.dir); err != nil {
		return sim.Outcome{}, err
	}
	if err := w.mat.WriteOutput(w.dir, name); err != nil {
		return sim.Outcome{}, err
	}
	return w.inv.Invoke(ctx, w.dir), nil
}

// design calls the generator, converting errors and panics into ErrGenerator.
func (w *Worker) design() (d *vehicle.Rocket, err error) {
	defer func() {
		if r := recover(); r != nil {
			d, err = nil, fmt.Errorf("%w: panic: %v", ErrGenerator, r)
		}
	}()
	d, err = w.generate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerator, err)
	}
	if d == nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerator, errors.New("nil design"))
	}
	return d, nil
}

// Failures returns the worker's failure counts by kind.
func (w *Worker) Failures() map[string]int {
	out := make(map[string]int, len(w.failures))
	for k, v := range w.failures {
		out[k] = v
	}
	return out
}
