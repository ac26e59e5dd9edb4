// Package dynamo provides the primitives shared by every stage of the
// particle pipeline:
//
//   - [ParallelFor]: splits an index range across goroutines and acts as
//     the barrier between pipeline phases
//   - [SimulationError] and the Err* sentinels: the error taxonomy used by
//     the simulation core and its callers
//
// # Thread Safety
//
// ParallelFor hands each worker a disjoint [start, end) range. Work
// functions must only write to slots inside their own range; reads of data
// committed before the call are safe from any worker.
package dynamo
