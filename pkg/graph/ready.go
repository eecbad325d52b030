package graph

// ReadyNodes returns the ids that can run now: nodes not in completed whose
// entire dependency set is in completed, ordered by priority descending with
// lexicographic id tie-break.
//
// This is a pure function of the graph and the caller-supplied completed set.
// It mutates nothing and is meant to be polled repeatedly by an incremental
// executor as completions arrive.
func (g *Graph) ReadyNodes(completed map[string]struct{}) []string {
	ready := make([]string, 0)
	for id, deps := range g.dependencies {
		if _, done := completed[id]; done {
			continue
		}
		satisfied := true
		for dep := range deps {
			if _, done := completed[dep]; !done {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, id)
		}
	}
	g.sortByPriority(ready)
	return ready
}
