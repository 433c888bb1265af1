package campaign

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	g "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rocketmc/internal/casedir"
	"github.com/san-kum/rocketmc/internal/jsbsim"
	"github.com/san-kum/rocketmc/internal/sim"
	"github.com/san-kum/rocketmc/internal/vehicle"
)

var _ = g.Describe("Orchestrator", func() {
	var (
		root string
		mat  *casedir.Materializer
		inv  *artifactInvoker
		rec  *recorder
		orch *Orchestrator
	)

	g.BeforeEach(func() {
		root = g.GinkgoT().TempDir()
		mat = casedir.New(jsbsim.Writer{}, casedir.DefaultOptions())
		inv = &artifactInvoker{}
		rec = newRecorder()
		orch = New(root, mat, inv, nil)
		orch.AddObserver(rec)
	})

	run := func(ctx context.Context, iterations, workers int, gen *countingGenerator) *Report {
		report, err := orch.Run(ctx, Campaign{Iterations: iterations, Workers: workers, NewGenerator: gen.ForWorker})
		Expect(err).NotTo(HaveOccurred())
		return report
	}

	g.It("interleaves result indices across workers", func() {
		report := run(context.Background(), 9, 3, newCountingGenerator(nil))

		Expect(report.Succeeded).To(Equal(9))
		Expect(report.Failed).To(BeZero())
		Expect(report.Interrupted()).To(BeFalse())
		Expect(report.ID).NotTo(BeEmpty())

		Expect(rec.Indices(0)).To(Equal([]int{0, 3, 6}))
		Expect(rec.Indices(1)).To(Equal([]int{1, 4, 7}))
		Expect(rec.Indices(2)).To(Equal([]int{2, 5, 8}))

		files, err := resultFiles(orch.ResultsDir())
		Expect(err).NotTo(HaveOccurred())
		Expect(files).To(Equal([]string{
			"sim-00000.csv", "sim-00001.csv", "sim-00002.csv",
			"sim-00003.csv", "sim-00004.csv", "sim-00005.csv",
			"sim-00006.csv", "sim-00007.csv", "sim-00008.csv",
		}))
	})

	g.It("gives the remainder to the last worker", func() {
		report := run(context.Background(), 10, 3, newCountingGenerator(nil))

		Expect(report.PerWorker).To(HaveLen(3))
		assigned := []int{}
		for _, w := range report.PerWorker {
			assigned = append(assigned, w.Assigned)
			Expect(w.State).To(Equal(StateCompleted))
		}
		Expect(assigned).To(Equal([]int{3, 3, 4}))
		Expect(report.Succeeded).To(Equal(10))

		files, err := resultFiles(orch.ResultsDir())
		Expect(err).NotTo(HaveOccurred())
		Expect(files).To(HaveLen(10))
		Expect(inv.Calls()).To(Equal(10))
	})

	g.It("completes an empty campaign", func() {
		report := run(context.Background(), 0, 4, newCountingGenerator(nil))
		Expect(report.PerWorker).To(HaveLen(4))
		for _, w := range report.PerWorker {
			Expect(w.State).To(Equal(StateCompleted))
			Expect(w.Attempted).To(BeZero())
		}
	})

	g.It("keeps each worker's case in its private directory", func() {
		run(context.Background(), 6, 2, newCountingGenerator(nil))

		for id := 0; id < 2; id++ {
			dir := orch.WorkerDir(id)
			Expect(filepath.Join(dir, casedir.RunScriptFile)).To(BeAnExistingFile())
			Expect(filepath.Join(dir, casedir.AircraftDir, "rocket", "init.xml")).To(BeAnExistingFile())
			Expect(filepath.Join(dir, casedir.EngineDir, "motor_nozzle.xml")).To(BeAnExistingFile())
		}
		out, err := os.ReadFile(filepath.Join(orch.WorkerDir(1), casedir.OutputFile))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(ContainSubstring("../data/sim-00005.csv"))
	})

	g.It("rejects campaigns that cannot start", func() {
		gen := newCountingGenerator(nil)
		for _, c := range []Campaign{
			{Iterations: 3, Workers: 0, NewGenerator: gen.ForWorker},
			{Iterations: -1, Workers: 2, NewGenerator: gen.ForWorker},
			{Iterations: 3, Workers: 2},
		} {
			_, err := orch.Run(context.Background(), c)
			Expect(errors.Is(err, ErrInvalidCampaign)).To(BeTrue())
		}
	})

	g.It("records generator failures and panics without stopping the worker", func() {
		gen := newCountingGenerator(func(worker, call int) (*vehicle.Rocket, error) {
			switch call {
			case 1:
				return nil, errors.New("bad sample")
			case 2:
				panic("generator exploded")
			case 3:
				return nil, nil
			}
			return testRocket(), nil
		})

		report := run(context.Background(), 5, 1, gen)
		Expect(report.Failed).To(Equal(3))
		Expect(report.Succeeded).To(Equal(2))
		Expect(report.Failures).To(HaveKeyWithValue("generator", 3))
		Expect(report.PerWorker[0].State).To(Equal(StateCompleted))

		for _, o := range rec.Outcomes()[:3] {
			var iterErr *IterationError
			Expect(errors.As(o.Err, &iterErr)).To(BeTrue())
			Expect(iterErr.Kind).To(Equal(ErrGenerator))
			Expect(o.Err).To(MatchError(ErrGenerator))
		}
	})

	g.It("records case I/O failures and moves on", func() {
		Expect(os.WriteFile(orch.WorkerDir(1), []byte("not a dir"), 0644)).To(Succeed())

		report := run(context.Background(), 6, 2, newCountingGenerator(nil))
		Expect(report.PerWorker[0].Succeeded).To(Equal(3))
		Expect(report.PerWorker[1].Failed).To(Equal(3))
		Expect(report.PerWorker[1].State).To(Equal(StateCompleted))
		Expect(report.Failures).To(HaveKeyWithValue("io", 3))
	})

	g.It("stops every worker at the next iteration boundary when cancelled", func() {
		inv.started = make(chan string, 16)
		inv.gate = make(chan struct{})
		gen := newCountingGenerator(nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		type result struct {
			report *Report
			err    error
		}
		done := make(chan result, 1)
		go func() {
			r, err := orch.Run(ctx, Campaign{Iterations: 15, Workers: 3, NewGenerator: gen.ForWorker})
			done <- result{r, err}
		}()

		for i := 0; i < 3; i++ {
			Eventually(inv.started).Should(Receive())
		}
		cancel()
		close(inv.gate)

		var res result
		Eventually(done, 10*time.Second).Should(Receive(&res))
		Expect(res.err).NotTo(HaveOccurred())

		report := res.report
		Expect(report.Interrupted()).To(BeTrue())
		Expect(report.Succeeded).To(Equal(3))
		Expect(report.Cancelled).To(Equal(12))
		for _, w := range report.PerWorker {
			Expect(w.State).To(Equal(StateCancelled))
			Expect(w.Attempted).To(Equal(1))
			Expect(gen.Calls(w.ID)).To(Equal(1))
		}
		Expect(inv.Calls()).To(Equal(3))
	})

	g.It("records a timed out run and continues with the next iteration", func() {
		script := filepath.Join(g.GinkgoT().TempDir(), "slow-sim")
		Expect(os.WriteFile(script, []byte(`#!/bin/sh
if [ ! -f slow.marker ]; then
  touch slow.marker
  sleep 30
fi
out=$(sed -n 's/.*<output name="\([^"]*\)".*/\1/p' output.xml)
echo "Time" > "$out"
`), 0755)).To(Succeed())

		invoker := sim.New(sim.Config{Binary: script, Args: sim.DefaultArgs(), Timeout: 300 * time.Millisecond}, nil)
		orch = New(root, mat, invoker, nil)
		orch.AddObserver(rec)

		report := run(context.Background(), 3, 1, newCountingGenerator(nil))
		Expect(report.Failed).To(Equal(1))
		Expect(report.Succeeded).To(Equal(2))
		Expect(report.Failures).To(HaveKeyWithValue("timeout", 1))

		outcomes := rec.Outcomes()
		Expect(outcomes).To(HaveLen(3))
		Expect(outcomes[0].Status).To(Equal(sim.StatusTimeout))
		Expect(outcomes[0].Err).To(MatchError(sim.ErrProcessTimeout))
		Expect(outcomes[1].OK()).To(BeTrue())
		Expect(outcomes[2].OK()).To(BeTrue())

		files, err := resultFiles(orch.ResultsDir())
		Expect(err).NotTo(HaveOccurred())
		Expect(files).To(Equal([]string{"sim-00001.csv", "sim-00002.csv"}))
	})
})
