package analysis

import "math"

type Stats struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stddev"`
}

// Accumulator keeps running statistics using Welford's update.
type Accumulator struct {
	n        int
	mean, m2 float64
	min, max float64
}

func (a *Accumulator) Observe(v float64) {
	if math.IsNaN(v) {
		return
	}
	a.n++
	if a.n == 1 {
		a.min, a.max = v, v
	} else {
		a.min = math.Min(a.min, v)
		a.max = math.Max(a.max, v)
	}
	delta := v - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (v - a.mean)
}

// Stats reports the sample standard deviation; it is zero below two samples.
func (a *Accumulator) Stats() Stats {
	s := Stats{N: a.n, Mean: a.mean, Min: a.min, Max: a.max}
	if a.n > 1 {
		s.StdDev = math.Sqrt(a.m2 / float64(a.n-1))
	}
	return s
}

func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

func Summarize(values []float64) Stats {
	var a Accumulator
	for _, v := range values {
		a.Observe(v)
	}
	return a.Stats()
}

// Histogram counts values into bins equal-width buckets spanning [min, max].
func Histogram(values []float64, bins int) []float64 {
	if bins <= 0 || len(values) == 0 {
		return nil
	}
	s := Summarize(values)
	counts := make([]float64, bins)
	width := (s.Max - s.Min) / float64(bins)
	for _, v := range values {
		i := 0
		if width > 0 {
			i = int((v - s.Min) / width)
		}
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	return counts
}
