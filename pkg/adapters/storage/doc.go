// Package storage provides run-state store implementations.
//
// Implementations:
//   - redis: Redis with JSON serialization and TTL
//   - memory: In-memory for tests and single-process deployments
//
// Only run execution snapshots are stored; the dependency graph itself is
// never persisted.
package storage
