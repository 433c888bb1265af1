package campaign

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	ResultsDirName = "data"
	workerDirFmt   = "worker_%d"
)

// Orchestrator is the entry point for running campaigns under one root
// directory.
type Orchestrator struct {
	root      string
	mat       Materializer
	inv       Invoker
	log       *zap.Logger
	observers []Observer
}

func New(root string, mat Materializer, inv Invoker, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{root: root, mat: mat, inv: inv, log: log}
}

func (o *Orchestrator) AddObserver(obs Observer) { o.observers = append(o.observers, obs) }

func (o *Orchestrator) Root() string { return o.root }

func (o *Orchestrator) ResultsDir() string { return filepath.Join(o.root, ResultsDirName) }

func (o *Orchestrator) WorkerDir(id int) string {
	return filepath.Join(o.root, fmt.Sprintf(workerDirFmt, id))
}

func (o *Orchestrator) validate(c Campaign) error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: need at least one worker, got %d", ErrInvalidCampaign, c.Workers)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("%w: negative iteration count %d", ErrInvalidCampaign, c.Iterations)
	}
	if c.NewGenerator == nil {
		return fmt.Errorf("%w: no design generator", ErrInvalidCampaign)
	}
	if o.mat == nil || o.inv == nil {
		return fmt.Errorf("%w: orchestrator needs a materializer and an invoker", ErrInvalidCampaign)
	}
	return nil
}

// Run starts every worker and blocks until all of them stop. Cancelling ctx
// flags every worker; each finishes its current simulator run and stops.
// Iteration failures land in the report; the returned error only covers
// campaigns that could not start.
func (o *Orchestrator) Run(ctx context.Context, c Campaign) (*Report, error) {
	if err := o.validate(c); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(o.ResultsDir(), 0755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}

	report := &Report{
		ID:         uuid.NewString(),
		Iterations: c.Iterations,
		Workers:    c.Workers,
		Started:    time.Now(),
		Failures:   make(map[string]int),
	}
	log := o.log.With(zap.String("campaign", report.ID))
	log.Info("campaign started",
		zap.Int("iterations", c.Iterations),
		zap.Int("workers", c.Workers),
		zap.String("root", o.root))

	counts := Partition(c.Iterations, c.Workers)
	workers := make([]*Worker, c.Workers)
	for id := range workers {
		workers[id] = newWorker(id, c.Workers, counts[id], o.WorkerDir(id), o.ResultsDir(),
			c.NewGenerator(id), o.mat, o.inv, o.observers, log)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			log.Info("cancelling workers", zap.Error(ctx.Err()))
			for _, w := range workers {
				w.Cancel()
			}
		case <-done:
		}
	}()

	reports := make([]WorkerReport, len(workers))
	var g errgroup.Group
	for _, w := range workers {
		w := w
		g.Go(func() error {
			reports[w.ID] = w.Run(ctx)
			return nil
		})
	}
	// Workers record every failure in their reports; Wait only joins.
	g.Wait()
	close(done)

	for i, w := range workers {
		report.add(reports[i], w.Failures())
	}
	report.Finished = time.Now()

	log.Info("campaign finished",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("cancelled", report.Cancelled),
		zap.Duration("elapsed", report.Elapsed()))
	return report, nil
}
