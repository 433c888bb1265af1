package campaign

import (
	"sort"
	"time"
)

type WorkerReport struct {
	ID        int   `json:"id"`
	Assigned  int   `json:"assigned"`
	Attempted int   `json:"attempted"`
	Succeeded int   `json:"succeeded"`
	Failed    int   `json:"failed"`
	Cancelled int   `json:"cancelled"`
	State     State `json:"state"`
}

type Report struct {
	ID         string         `json:"id"`
	Iterations int            `json:"iterations"`
	Workers    int            `json:"workers"`
	Started    time.Time      `json:"started"`
	Finished   time.Time      `json:"finished"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	Cancelled  int            `json:"cancelled"`
	Failures   map[string]int `json:"failures"`
	PerWorker  []WorkerReport `json:"per_worker"`
}

func (r *Report) Elapsed() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Interrupted reports whether any worker stopped before its share was done.
func (r *Report) Interrupted() bool {
	for _, w := range r.PerWorker {
		if w.State == StateCancelled {
			return true
		}
	}
	return false
}

// FailureKinds lists failure classes in a stable order.
func (r *Report) FailureKinds() []string {
	kinds := make([]string, 0, len(r.Failures))
	for k := range r.Failures {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func (r *Report) add(w WorkerReport, failures map[string]int) {
	r.PerWorker = append(r.PerWorker, w)
	r.Succeeded += w.Succeeded
	r.Failed += w.Failed
	r.Cancelled += w.Cancelled
	for k, n := range failures {
		r.Failures[k] += n
	}
}
