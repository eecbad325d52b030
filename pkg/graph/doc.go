// Package graph implements the dependency-ordering engine: a directed graph
// of stories that computes safe execution orders, parallel-execution levels
// and dynamically ready work given a completed set.
//
// The graph is a synchronous, pure in-memory structure with no internal
// locking. The contract is single-writer: when shared across goroutines, all
// calls must be serialized by the owner (typically a coordinator that is the
// only entity touching the graph).
//
// Ordering is deterministic: among equally ready nodes the engine always
// prefers higher priority, breaking ties by lexicographic id.
//
// The engine never decides that a story has failed or timed out. A story that
// never completes simply keeps its dependents out of ReadyNodes forever;
// timeout, retry and failure propagation are executor policy.
package graph
