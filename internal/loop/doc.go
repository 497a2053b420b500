// Package loop implements the single-threaded cooperative scheduler that
// every catalogview component runs on.
//
// All component state is mutated from tasks executed by one goroutine.
// Concurrency is interleaving of continuations, not parallel execution:
// blocking work (network requests, image loads, timers) runs on helper
// goroutines and resumes by posting a task back onto the loop.
//
// Suspension points:
//   - Await: run blocking work off-loop, resume with its result
//   - After: single-shot debounce, not cancellable
//   - Join: resume once every signal channel has closed, in any order
//
// Tasks run strictly in FIFO order. A panicking task is recovered and logged;
// the loop keeps running.
package loop
