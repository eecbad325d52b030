// Package workers implements the worker pool that executes ready stories.
//
// The pool manages a fixed number of goroutines that:
//   - Pull dispatched jobs from the job queue
//   - Execute stories through the injected StoryExecutor
//   - Report completions and failures on the results channel
//
// The pool imposes no retry or per-story timeout policy; that belongs to the
// executor implementation. The health monitor tracks worker status and
// reports pool occupancy metrics.
package workers
