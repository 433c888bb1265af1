package campaign

import "fmt"

// Index returns the campaign-unique result index of a worker's iteration.
// For a fixed workerCount it is a bijection onto the non-negative integers,
// which is what keeps concurrently written result files apart.
func Index(iteration, workerID, workerCount int) int {
	return iteration*workerCount + workerID
}

// ResultName is the artifact file name for a result index.
func ResultName(index int) string {
	return fmt.Sprintf("sim-%05d.csv", index)
}

// Partition splits total iterations across workers. Every worker gets
// total/workers and the last one also takes the remainder.
func Partition(total, workers int) []int {
	if workers < 1 {
		return nil
	}
	counts := make([]int, workers)
	if total <= 0 {
		return counts
	}
	base := total / workers
	for i := range counts {
		counts[i] = base
	}
	counts[workers-1] += total % workers
	return counts
}
