package analysis

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/rocketmc/internal/storage"
)

const flightCSV = `Time,Altitude MSL [m],Velocity Down [fps],Thrust [lbf]
0,250,0,100
1,300,-100,100
2,400,-50,0
3,420,10,0
4,380,40,0
`

func TestAnalyze(t *testing.T) {
	res, err := storage.ReadResult(strings.NewReader(flightCSV))
	if err != nil {
		t.Fatal(err)
	}

	f, err := Analyze(res)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if f.Apogee != 420 || f.ApogeeTime != 3 {
		t.Errorf("expected apogee 420 at t=3, got %f at %f", f.Apogee, f.ApogeeTime)
	}
	if math.Abs(f.MaxVDown-40*fpsToMps) > 1e-9 {
		t.Errorf("expected max vdown %f, got %f", 40*fpsToMps, f.MaxVDown)
	}
	if math.Abs(f.MinVDown+100*fpsToMps) > 1e-9 {
		t.Errorf("expected min vdown %f, got %f", -100*fpsToMps, f.MinVDown)
	}
	if math.Abs(f.PeakThrust-100*lbfToN) > 1e-9 {
		t.Errorf("expected peak thrust %f, got %f", 100*lbfToN, f.PeakThrust)
	}
	if f.BurnTime != 2 {
		t.Errorf("expected burn time 2, got %f", f.BurnTime)
	}
	if f.Duration != 4 {
		t.Errorf("expected duration 4, got %f", f.Duration)
	}
}

func TestAnalyze_MissingAltitude(t *testing.T) {
	res, err := storage.ReadResult(strings.NewReader("Time,Thrust [lbf]\n0,1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Analyze(res); err == nil {
		t.Error("expected missing column error")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	if s.N != 8 {
		t.Errorf("expected 8 samples, got %d", s.N)
	}
	if s.Mean != 5 {
		t.Errorf("expected mean 5, got %f", s.Mean)
	}
	if s.Min != 2 || s.Max != 9 {
		t.Errorf("expected range [2, 9], got [%f, %f]", s.Min, s.Max)
	}
	expected := math.Sqrt(32.0 / 7.0)
	if math.Abs(s.StdDev-expected) > 1e-9 {
		t.Errorf("expected stddev %f, got %f", expected, s.StdDev)
	}
}

func TestAccumulatorReset(t *testing.T) {
	var a Accumulator
	a.Observe(10)
	a.Observe(math.NaN())
	if a.Stats().N != 1 {
		t.Errorf("NaN should be ignored, got n=%d", a.Stats().N)
	}
	if a.Stats().StdDev != 0 {
		t.Error("single sample should have zero deviation")
	}

	a.Reset()
	a.Observe(-3)
	if s := a.Stats(); s.Min != -3 || s.Max != -3 {
		t.Errorf("expected fresh range after reset, got [%f, %f]", s.Min, s.Max)
	}
}

func TestHistogram(t *testing.T) {
	counts := Histogram([]float64{0, 1, 2, 3, 4, 10}, 5)
	if len(counts) != 5 {
		t.Fatalf("expected 5 bins, got %d", len(counts))
	}
	total := 0.0
	for _, c := range counts {
		total += c
	}
	if total != 6 {
		t.Errorf("expected 6 values binned, got %f", total)
	}
	if counts[4] != 1 {
		t.Errorf("max value should land in last bin, got %v", counts)
	}

	if got := Histogram([]float64{3, 3, 3}, 4); got[0] != 3 {
		t.Errorf("constant values should fill first bin, got %v", got)
	}
	if Histogram(nil, 3) != nil {
		t.Error("expected nil for no values")
	}
}

func TestSurveyDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, data string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("sim-00000.csv", flightCSV)
	write("sim-00001.csv", strings.Replace(flightCSV, "3,420", "3,520", 1))
	write("sim-00002.csv", "Time,Thrust [lbf]\n0,1\n")
	write("sim-00003.csv", "Time,Altitude MSL [m]\n")

	s, err := SurveyDir(dir)
	if err != nil {
		t.Fatalf("survey: %v", err)
	}
	if len(s.Flights) != 2 {
		t.Fatalf("expected 2 flights, got %d", len(s.Flights))
	}
	if len(s.Skipped) != 1 {
		t.Errorf("expected 1 skipped artifact, got %d", len(s.Skipped))
	}

	best, ok := s.Best()
	if !ok || best.Apogee != 520 {
		t.Errorf("expected best apogee 520, got %f", best.Apogee)
	}
	if filepath.Base(best.Artifact) != "sim-00001.csv" {
		t.Errorf("expected sim-00001.csv, got %s", best.Artifact)
	}

	sum := s.Summary()
	if sum["apogee_m"].Mean != 470 {
		t.Errorf("expected mean apogee 470, got %f", sum["apogee_m"].Mean)
	}
}

func TestSurveyDir_Empty(t *testing.T) {
	s, err := SurveyDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Best(); ok {
		t.Error("expected no best flight")
	}
}
