package graph

import (
	"fmt"
	"strings"

	"github.com/ecanizales/plandag/pkg/domain"
)

// Stats returns diagnostic counters: node and edge counts, leaf nodes (no
// dependencies), root nodes (no dependents), the number of dependency levels
// and the average out-degree. MaxDepth is zero when the graph is cyclic.
func (g *Graph) Stats() domain.PlanStats {
	stats := domain.PlanStats{
		NodeCount: len(g.meta),
		EdgeCount: g.EdgeCount(),
		LeafNodes: make([]string, 0),
		RootNodes: make([]string, 0),
	}

	for _, id := range g.Nodes() {
		if len(g.dependencies[id]) == 0 {
			stats.LeafNodes = append(stats.LeafNodes, id)
		}
		if len(g.dependents[id]) == 0 {
			stats.RootNodes = append(stats.RootNodes, id)
		}
	}

	if res := g.DependencyLevels(); res.Success {
		stats.MaxDepth = len(res.Levels)
	}

	if stats.NodeCount > 0 {
		stats.AvgOutDegree = float64(stats.EdgeCount) / float64(stats.NodeCount)
	}

	return stats
}

// ExportDOT renders the graph as a Graphviz digraph, a debugging aid only.
// Edges point from a node to what it depends on.
func (g *Graph) ExportDOT() string {
	var b strings.Builder
	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")

	for _, id := range g.Nodes() {
		fmt.Fprintf(&b, "  %q [label=\"%s (p%d)\"];\n", id, id, g.meta[id].Priority)
	}
	for _, id := range g.Nodes() {
		for _, dep := range g.Dependencies(id) {
			fmt.Fprintf(&b, "  %q -> %q;\n", id, dep)
		}
	}

	b.WriteString("}\n")
	return b.String()
}
