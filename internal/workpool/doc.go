// Package workpool runs CPU-bound jobs on a fixed set of goroutines fed by a
// bounded queue.
//
// # Components
//
//   - [Pool]: fixed workers, bounded queue, non-blocking [Pool.Submit].
//   - [Future]: handle returned by Submit; [Future.Wait] blocks until the job
//     result is posted or the caller's context ends.
//
// # Architecture boundaries
//
// Submission never blocks and never retries. A full queue returns
// [ErrSaturated], a closed pool returns [ErrClosed]. Once a job has started
// it runs to completion: cancelling the context passed to Wait only stops
// the caller from waiting.
//
// # What this package must NOT do
//
//   - Import authcore or any sibling package.
//   - Inspect or log job inputs or results.
package workpool
