// Package campaign runs a Monte-Carlo campaign across a pool of workers.
//
// The package is built around three pieces:
//
//   - [Orchestrator]: partitions iterations, starts every [Worker], joins them
//     and aggregates a [Report]
//   - [Worker]: runs generate, materialize, index, invoke for its share of
//     iterations in a private case directory
//   - [Index]: maps (iteration, worker) to a campaign-unique result index
//
// # Layout
//
//	<root>/data/sim-00000.csv    result artifacts, one per iteration
//	<root>/worker_<id>/          case directory, overwritten every iteration
//
// Only the last case of each worker survives a campaign; the result
// artifacts are the full history.
//
// # Thread Safety
//
// Workers share nothing but the results directory, and the result index is
// a bijection for a fixed worker count, so result files never collide and
// no lock guards their creation. Observers are called from worker
// goroutines and must be safe for concurrent use.
package campaign
