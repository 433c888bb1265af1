package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rocketmc/internal/storage"
)

const (
	fpsToMps = 0.3048
	lbfToN   = 4.4482216152605
)

// Result column captions as written by the simulator's output directive.
const (
	ColTime     = "Time"
	ColAltitude = "Altitude MSL [m]"
	ColVDown    = "Velocity Down [fps]"
	ColThrust   = "Thrust [lbf]"
)

var ErrMissingColumn = errors.New("analysis: result is missing a required column")

// Flight holds the figures of merit of one simulated trajectory in SI units.
type Flight struct {
	Artifact   string
	Samples    int
	Duration   float64
	Apogee     float64
	ApogeeTime float64
	MaxVDown   float64
	MinVDown   float64
	PeakThrust float64
	BurnTime   float64
}

func Analyze(res *storage.Result) (Flight, error) {
	f := Flight{Artifact: res.Path, Samples: res.Len()}

	times, ok := res.Column(ColTime)
	if !ok {
		return f, fmt.Errorf("%w: %s", ErrMissingColumn, ColTime)
	}
	alt, ok := res.Column(ColAltitude)
	if !ok {
		return f, fmt.Errorf("%w: %s", ErrMissingColumn, ColAltitude)
	}
	if f.Samples == 0 {
		return f, nil
	}
	f.Duration = times[len(times)-1] - times[0]

	f.Apogee = math.Inf(-1)
	for i, h := range alt {
		if h > f.Apogee {
			f.Apogee = h
			f.ApogeeTime = times[i]
		}
	}

	if vdown, ok := res.Column(ColVDown); ok {
		f.MaxVDown, f.MinVDown = vdown[0], vdown[0]
		for _, v := range vdown[1:] {
			f.MaxVDown = math.Max(f.MaxVDown, v)
			f.MinVDown = math.Min(f.MinVDown, v)
		}
		f.MaxVDown *= fpsToMps
		f.MinVDown *= fpsToMps
	}

	if thrust, ok := res.Column(ColThrust); ok {
		for i, th := range thrust {
			f.PeakThrust = math.Max(f.PeakThrust, th)
			if th > 0 && i+1 < len(times) {
				f.BurnTime += times[i+1] - times[i]
			}
		}
		f.PeakThrust *= lbfToN
	}
	return f, nil
}

func AnalyzeFile(path string) (Flight, error) {
	res, err := storage.LoadResult(path)
	if err != nil {
		return Flight{Artifact: path}, err
	}
	return Analyze(res)
}
