package campaign

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/san-kum/rocketmc/internal/casedir"
	"github.com/san-kum/rocketmc/internal/jsbsim"
	"github.com/san-kum/rocketmc/internal/sim"
	"github.com/san-kum/rocketmc/internal/vehicle"
)

// artifactInvoker stands in for the simulator: it writes the result file
// named by the case's output directive.
type artifactInvoker struct {
	mu    sync.Mutex
	calls int

	started chan string
	gate    chan struct{}
}

func (f *artifactInvoker) Invoke(ctx context.Context, dir string) sim.Outcome {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.started != nil {
		f.started <- dir
	}
	if f.gate != nil {
		<-f.gate
	}

	data, err := os.ReadFile(filepath.Join(dir, casedir.OutputFile))
	if err != nil {
		return sim.Outcome{Status: sim.StatusLaunchFailed, ExitCode: -1, Err: fmt.Errorf("%w: %v", sim.ErrProcessLaunch, err)}
	}
	var out jsbsim.Output
	if err := xml.Unmarshal(data, &out); err != nil {
		return sim.Outcome{Status: sim.StatusFailed, ExitCode: 1, Err: fmt.Errorf("%w: %v", sim.ErrProcessExit, err)}
	}
	if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(out.Name)), []byte("Time,Altitude MSL [m]\n0,0\n"), 0644); err != nil {
		return sim.Outcome{Status: sim.StatusFailed, ExitCode: 1, Err: fmt.Errorf("%w: %v", sim.ErrProcessExit, err)}
	}
	return sim.Outcome{Status: sim.StatusOK}
}

func (f *artifactInvoker) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recorder is a goroutine-safe Observer.
type recorder struct {
	mu       sync.Mutex
	started  map[int]int
	outcomes []Outcome
	done     []WorkerReport
}

func newRecorder() *recorder {
	return &recorder{started: make(map[int]int)}
}

func (r *recorder) OnWorkerStart(worker, assigned int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started[worker] = assigned
}

func (r *recorder) OnIteration(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *recorder) OnWorkerDone(rep WorkerReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = append(r.done, rep)
}

func (r *recorder) Indices(worker int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int
	for _, o := range r.outcomes {
		if o.Worker == worker {
			out = append(out, o.Index)
		}
	}
	sort.Ints(out)
	return out
}

func (r *recorder) Outcomes() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Outcome(nil), r.outcomes...)
}

func testRocket() *vehicle.Rocket {
	engine := &vehicle.Engine{
		Name: "Motor", Isp: 200, MProp: 10, ThrustAvg: 1000, ImpulseTot: 19600,
		Diameter: 0.2, Length: 1.5,
	}
	body := vehicle.NewBodytube("Body", 10, 2, 0.2)
	body.Components = []*vehicle.Component{vehicle.NewEngineComponent(engine)}
	return &vehicle.Rocket{
		Name: "Rocket",
		Drag: vehicle.Drag{CD: 0.6},
		Stages: []*vehicle.Component{
			vehicle.NewStage("Sustainer", vehicle.NewNosecone(vehicle.NoseTangentOgive, 1, 3.5, 1, 0.2), body),
		},
	}
}

// countingGenerator hands each worker its own generator and counts calls.
type countingGenerator struct {
	mu    sync.Mutex
	calls map[int]int
	fn    func(worker, call int) (*vehicle.Rocket, error)
}

func newCountingGenerator(fn func(worker, call int) (*vehicle.Rocket, error)) *countingGenerator {
	if fn == nil {
		fn = func(int, int) (*vehicle.Rocket, error) { return testRocket(), nil }
	}
	return &countingGenerator{calls: make(map[int]int), fn: fn}
}

func (g *countingGenerator) ForWorker(id int) DesignFunc {
	return func() (*vehicle.Rocket, error) {
		g.mu.Lock()
		g.calls[id]++
		n := g.calls[id]
		g.mu.Unlock()
		return g.fn(id, n)
	}
}

func (g *countingGenerator) Calls(id int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[id]
}

func resultFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
