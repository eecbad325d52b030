// Package coordinator implements the single-writer owner of the dependency
// graph.
//
// The manager answers one-shot planning queries (topological order and
// parallel levels) and drives incremental run execution: it polls the graph
// for ready stories, dispatches them to the worker pool, folds completions
// back into the completed set and re-polls until no dispatchable work
// remains. It is the only entity that touches a run's graph, so the engine
// needs no internal locking.
//
// A story that fails simply leaves its dependents permanently un-ready; the
// coordinator never propagates failure through the graph.
package coordinator
