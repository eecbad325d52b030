package graph

import (
	"container/heap"

	"go.uber.org/zap"
)

// OrderResult is the outcome of a topological ordering query. On cycle
// failure Order is empty and Cycles carries the offending closed paths.
type OrderResult struct {
	Success bool       `json:"success"`
	Order   []string   `json:"order"`
	Cycles  [][]string `json:"cycles,omitempty"`
}

// readyItem is a heap entry for a node whose dependencies are all ordered
type readyItem struct {
	id       string
	priority int
}

// readyHeap is a binary max-heap: higher priority first, lexicographic id on
// ties, so selection among equally ready nodes is deterministic.
type readyHeap []readyItem

func (h readyHeap) Len() int { return len(h) }

func (h readyHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].id < h[j].id
}

func (h readyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *readyHeap) Push(x interface{}) { *h = append(*h, x.(readyItem)) }

func (h *readyHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// TopologicalOrder computes a safe execution order using Kahn's algorithm.
// For every edge "n requires d", d precedes n in the result. The graph is
// scanned for cycles first; a cyclic graph fails with the cycle list and an
// empty order.
func (g *Graph) TopologicalOrder() OrderResult {
	if report := g.DetectCycles(); report.HasCycles {
		return OrderResult{Success: false, Order: []string{}, Cycles: report.Cycles}
	}

	pending := make(map[string]int, len(g.meta))
	ready := &readyHeap{}
	for id, deps := range g.dependencies {
		pending[id] = len(deps)
		if len(deps) == 0 {
			heap.Push(ready, readyItem{id: id, priority: g.meta[id].Priority})
		}
	}

	order := make([]string, 0, len(g.meta))
	for ready.Len() > 0 {
		item := heap.Pop(ready).(readyItem)
		order = append(order, item.id)

		for dependent := range g.dependents[item.id] {
			pending[dependent]--
			if pending[dependent] == 0 {
				heap.Push(ready, readyItem{id: dependent, priority: g.meta[dependent].Priority})
			}
		}
	}

	// Unreachable once the cycle scan passed; guards against an
	// inconsistency between the edge maps.
	if len(order) != len(g.meta) {
		g.logger.Error("topological order incomplete on acyclic graph",
			zap.Int("ordered", len(order)),
			zap.Int("nodes", len(g.meta)))
		return OrderResult{Success: false, Order: []string{}}
	}

	return OrderResult{Success: true, Order: order}
}
