package analysis

import (
	"github.com/san-kum/rocketmc/internal/storage"
)

// Survey is the analysis of every artifact in a results directory.
type Survey struct {
	Flights []Flight
	Skipped map[string]error
}

// SurveyDir analyzes each result file in dir. Unreadable or malformed
// artifacts are recorded in Skipped rather than failing the survey.
func SurveyDir(dir string) (*Survey, error) {
	files, err := storage.ResultFiles(dir)
	if err != nil {
		return nil, err
	}
	s := &Survey{Skipped: make(map[string]error)}
	for _, path := range files {
		f, err := AnalyzeFile(path)
		if err != nil {
			s.Skipped[path] = err
			continue
		}
		if f.Samples == 0 {
			continue
		}
		s.Flights = append(s.Flights, f)
	}
	return s, nil
}

func (s *Survey) Apogees() []float64 {
	return s.collect(func(f Flight) float64 { return f.Apogee })
}

func (s *Survey) Summary() map[string]Stats {
	return map[string]Stats{
		"apogee_m":      Summarize(s.Apogees()),
		"apogee_time_s": Summarize(s.collect(func(f Flight) float64 { return f.ApogeeTime })),
		"max_vdown_mps": Summarize(s.collect(func(f Flight) float64 { return f.MaxVDown })),
		"peak_thrust_n": Summarize(s.collect(func(f Flight) float64 { return f.PeakThrust })),
		"burn_time_s":   Summarize(s.collect(func(f Flight) float64 { return f.BurnTime })),
	}
}

// Best returns the flight with the highest apogee.
func (s *Survey) Best() (Flight, bool) {
	if len(s.Flights) == 0 {
		return Flight{}, false
	}
	best := s.Flights[0]
	for _, f := range s.Flights[1:] {
		if f.Apogee > best.Apogee {
			best = f
		}
	}
	return best, true
}

func (s *Survey) collect(fn func(Flight) float64) []float64 {
	out := make([]float64, len(s.Flights))
	for i, f := range s.Flights {
		out[i] = fn(f)
	}
	return out
}
