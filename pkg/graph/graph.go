package graph

import (
	"sort"

	"go.uber.org/zap"
)

// NodeMeta holds per-node metadata: the scheduling priority plus an open
// extension bag for caller fields.
type NodeMeta struct {
	Priority int                    `json:"priority"`
	Fields   map[string]interface{} `json:"fields,omitempty"`
}

// Graph is a directed dependency graph over string node ids.
//
// Edges are stored twice for O(1) traversal in both directions: the
// dependencies map ("node requires these first") and the dependents map
// ("these wait on node") are kept as exact mirror images, and all three maps
// share an identical node set at all times.
type Graph struct {
	meta         map[string]NodeMeta
	dependencies map[string]map[string]struct{}
	dependents   map[string]map[string]struct{}
	logger       *zap.Logger
}

// New creates an empty graph
func New(logger *zap.Logger) *Graph {
	return &Graph{
		meta:         make(map[string]NodeMeta),
		dependencies: make(map[string]map[string]struct{}),
		dependents:   make(map[string]map[string]struct{}),
		logger:       logger,
	}
}

// ensureNode creates the node entry in all three maps if it is absent
func (g *Graph) ensureNode(id string, meta NodeMeta) {
	if _, ok := g.meta[id]; ok {
		return
	}
	g.meta[id] = meta
	g.dependencies[id] = make(map[string]struct{})
	g.dependents[id] = make(map[string]struct{})
}

// AddNode adds a node with the given metadata. Idempotent: if the node
// already exists the call is a no-op and the original metadata is kept.
func (g *Graph) AddNode(id string, meta NodeMeta) {
	g.ensureNode(id, meta)
}

// AddDependency records the edge "node requires dependsOn first", creating
// both endpoints if absent.
func (g *Graph) AddDependency(node, dependsOn string) {
	g.ensureNode(node, NodeMeta{})
	g.ensureNode(dependsOn, NodeMeta{})
	g.dependencies[node][dependsOn] = struct{}{}
	g.dependents[dependsOn][node] = struct{}{}
}

// RemoveDependency removes the edge from both directional maps; no-op if the
// edge is absent.
func (g *Graph) RemoveDependency(node, dependsOn string) {
	if deps, ok := g.dependencies[node]; ok {
		delete(deps, dependsOn)
	}
	if deps, ok := g.dependents[dependsOn]; ok {
		delete(deps, node)
	}
}

// RemoveNode removes a node and every edge referencing it, leaving no
// dangling references in any other node's sets. No-op for unknown ids.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.meta[id]; !ok {
		return
	}
	for dep := range g.dependencies[id] {
		delete(g.dependents[dep], id)
	}
	for dependent := range g.dependents[id] {
		delete(g.dependencies[dependent], id)
	}
	delete(g.meta, id)
	delete(g.dependencies, id)
	delete(g.dependents, id)
}

// Clear resets the graph to empty
func (g *Graph) Clear() {
	g.meta = make(map[string]NodeMeta)
	g.dependencies = make(map[string]map[string]struct{})
	g.dependents = make(map[string]map[string]struct{})
}

// Clone returns a fully independent copy of nodes, metadata and edges
func (g *Graph) Clone() *Graph {
	c := New(g.logger)
	for id, meta := range g.meta {
		m := meta
		if meta.Fields != nil {
			m.Fields = make(map[string]interface{}, len(meta.Fields))
			for k, v := range meta.Fields {
				m.Fields[k] = v
			}
		}
		c.meta[id] = m
		c.dependencies[id] = make(map[string]struct{}, len(g.dependencies[id]))
		for dep := range g.dependencies[id] {
			c.dependencies[id][dep] = struct{}{}
		}
		c.dependents[id] = make(map[string]struct{}, len(g.dependents[id]))
		for dep := range g.dependents[id] {
			c.dependents[id][dep] = struct{}{}
		}
	}
	return c
}

// HasNode reports whether the node exists
func (g *Graph) HasNode(id string) bool {
	_, ok := g.meta[id]
	return ok
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.meta)
}

// EdgeCount returns the number of dependency edges
func (g *Graph) EdgeCount() int {
	n := 0
	for _, deps := range g.dependencies {
		n += len(deps)
	}
	return n
}

// Meta returns the metadata for a node
func (g *Graph) Meta(id string) (NodeMeta, bool) {
	m, ok := g.meta[id]
	return m, ok
}

// Nodes returns all node ids in lexicographic order
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.meta))
	for id := range g.meta {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dependencies returns the ids a node requires first, in lexicographic order
func (g *Graph) Dependencies(id string) []string {
	return sortedKeys(g.dependencies[id])
}

// Dependents returns the ids waiting on a node, in lexicographic order
func (g *Graph) Dependents(id string) []string {
	return sortedKeys(g.dependents[id])
}

// sortByPriority orders ids by priority descending, breaking ties by
// lexicographic id. This is the single tie-break policy for ordering, level
// grouping and readiness queries.
func (g *Graph) sortByPriority(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		pi, pj := g.meta[ids[i]].Priority, g.meta[ids[j]].Priority
		if pi != pj {
			return pi > pj
		}
		return ids[i] < ids[j]
	})
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
