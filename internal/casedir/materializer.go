// Package casedir writes the self-contained directory a single simulator run
// reads from.
package casedir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/rocketmc/internal/jsbsim"
	"github.com/san-kum/rocketmc/internal/vehicle"
)

// ErrIO marks a case directory or artifact that could not be created,
// rendered or written.
var ErrIO = errors.New("casedir: case i/o failure")

const (
	RunScriptFile = "run.xml"
	OutputFile    = "output.xml"
	AircraftDir   = "aircraft"
	EngineDir     = "engine"
	InitName      = "init"
	NozzleSuffix  = "_nozzle"

	DefaultEnd        = 100.0
	DefaultDt         = 0.001
	DefaultOutputRate = 10.0
	DefaultResultsRel = "../data"
)

// Serializer renders the vehicle and its engines in the simulator dialect.
// Output is written verbatim.
type Serializer interface {
	Vehicle(r *vehicle.Rocket) (string, error)
	Engine(e *vehicle.Engine) (string, error)
}

type Options struct {
	End        float64
	Dt         float64
	OutputRate float64
	// ResultsRel locates the shared results directory relative to a case
	// directory.
	ResultsRel string
}

func DefaultOptions() Options {
	return Options{
		End:        DefaultEnd,
		Dt:         DefaultDt,
		OutputRate: DefaultOutputRate,
		ResultsRel: DefaultResultsRel,
	}
}

// Materializer is stateless apart from its configuration and may be shared
// by every worker.
type Materializer struct {
	ser  Serializer
	opts Options
}

func New(ser Serializer, opts Options) *Materializer {
	if ser == nil {
		ser = jsbsim.Writer{}
	}
	def := DefaultOptions()
	if opts.End <= 0 {
		opts.End = def.End
	}
	if opts.Dt <= 0 {
		opts.Dt = def.Dt
	}
	if opts.OutputRate <= 0 {
		opts.OutputRate = def.OutputRate
	}
	if opts.ResultsRel == "" {
		opts.ResultsRel = def.ResultsRel
	}
	return &Materializer{ser: ser, opts: opts}
}

// Materialize writes every artifact for design into dir, overwriting what a
// previous call left there. The output directive is written separately by
// WriteOutput once the result index is known.
func (m *Materializer) Materialize(design *vehicle.Rocket, dir string) error {
	if design == nil {
		return fmt.Errorf("%w: nil design", ErrIO)
	}
	slug := design.Slug()
	aircraftDir := filepath.Join(dir, AircraftDir, slug)
	engineDir := filepath.Join(dir, EngineDir)

	for _, d := range []string{dir, aircraftDir, engineDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("%w: create %s: %v", ErrIO, d, err)
		}
	}

	body, err := m.ser.Vehicle(design)
	if err != nil {
		return fmt.Errorf("%w: render vehicle %q: %v", ErrIO, design.Name, err)
	}
	if err := writeFile(filepath.Join(aircraftDir, slug+".xml"), []byte(body)); err != nil {
		return err
	}

	if err := writeDoc(filepath.Join(aircraftDir, InitName+".xml"), jsbsim.NewInitialize()); err != nil {
		return err
	}

	slugs := design.EngineSlugs()
	for i, e := range design.Engines() {
		body, err := m.ser.Engine(e)
		if err != nil {
			return fmt.Errorf("%w: render engine %q: %v", ErrIO, e.Name, err)
		}
		if err := writeFile(filepath.Join(engineDir, slugs[i]+".xml"), []byte(body)); err != nil {
			return err
		}
		if err := writeDoc(filepath.Join(engineDir, slugs[i]+NozzleSuffix+".xml"), jsbsim.NewNozzle()); err != nil {
			return err
		}
	}

	runName := fmt.Sprintf("%s Simulation Runner", filepath.Base(dir))
	return writeDoc(filepath.Join(dir, RunScriptFile), jsbsim.NewRunScript(runName, slug, m.opts.End, m.opts.Dt))
}

// WriteOutput points the simulator's CSV log at resultName inside the
// shared results directory.
func (m *Materializer) WriteOutput(dir, resultName string) error {
	name := filepath.ToSlash(filepath.Join(m.opts.ResultsRel, resultName))
	return writeDoc(filepath.Join(dir, OutputFile), jsbsim.NewOutput(name, m.opts.OutputRate))
}

func writeDoc(path string, v any) error {
	data, err := jsbsim.Encode(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrIO, path, err)
	}
	return nil
}
