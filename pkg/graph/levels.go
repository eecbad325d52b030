package graph

// LevelsResult is the outcome of a level-partitioning query. A failed
// topological order propagates verbatim: Success false, empty levels and the
// same cycle list.
type LevelsResult struct {
	Success bool       `json:"success"`
	Levels  [][]string `json:"levels"`
	Cycles  [][]string `json:"cycles,omitempty"`
}

// DependencyLevels groups nodes into parallel-execution layers. A node's
// level is one past the deepest of its dependencies, with leaf nodes at level
// zero, so every dependency of a node in level L lives strictly below L and a
// whole level can run in parallel. Within a level, nodes are ordered by
// priority descending, lexicographic id on ties.
func (g *Graph) DependencyLevels() LevelsResult {
	res := g.TopologicalOrder()
	if !res.Success {
		return LevelsResult{Success: false, Levels: [][]string{}, Cycles: res.Cycles}
	}

	level := make(map[string]int, len(res.Order))
	maxLevel := -1
	for _, id := range res.Order {
		l := 0
		for dep := range g.dependencies[id] {
			if level[dep]+1 > l {
				l = level[dep] + 1
			}
		}
		level[id] = l
		if l > maxLevel {
			maxLevel = l
		}
	}

	levels := make([][]string, maxLevel+1)
	for _, id := range res.Order {
		l := level[id]
		levels[l] = append(levels[l], id)
	}
	for _, ids := range levels {
		g.sortByPriority(ids)
	}

	return LevelsResult{Success: true, Levels: levels}
}
