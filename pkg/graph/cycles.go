package graph

// CycleReport is the result of an exhaustive cycle scan
type CycleReport struct {
	HasCycles bool       `json:"has_cycles"`
	Cycles    [][]string `json:"cycles,omitempty"`
}

const (
	colorWhite = iota // unvisited
	colorGray         // on the current DFS path
	colorBlack        // fully explored
)

// dfsFrame is one node on the explicit DFS stack, tracking how far into its
// dependency list the traversal has progressed.
type dfsFrame struct {
	id   string
	deps []string
	next int
}

// DetectCycles scans the whole graph for dependency cycles. Every unvisited
// node is used as a DFS start so disconnected components are covered, and the
// scan continues after a cycle is found. Each cycle is reported as a closed
// path with the entry node repeated at the end. O(V+E).
func (g *Graph) DetectCycles() CycleReport {
	color := make(map[string]int, len(g.meta))
	var cycles [][]string

	for _, start := range g.Nodes() {
		if color[start] != colorWhite {
			continue
		}
		cycles = append(cycles, g.collectCycles(start, color)...)
	}

	return CycleReport{HasCycles: len(cycles) > 0, Cycles: cycles}
}

// collectCycles runs an iterative DFS from start. The recursion stack is kept
// explicit so memory stays bounded on deep graphs.
func (g *Graph) collectCycles(start string, color map[string]int) [][]string {
	var cycles [][]string

	pathIndex := make(map[string]int)
	var path []string
	var stack []dfsFrame

	push := func(id string) {
		color[id] = colorGray
		pathIndex[id] = len(path)
		path = append(path, id)
		stack = append(stack, dfsFrame{id: id, deps: g.Dependencies(id)})
	}

	push(start)
	for len(stack) > 0 {
		frame := &stack[len(stack)-1]
		if frame.next < len(frame.deps) {
			dep := frame.deps[frame.next]
			frame.next++

			switch color[dep] {
			case colorWhite:
				push(dep)
			case colorGray:
				// Back edge: the sub-path from dep's position closes a cycle.
				idx := pathIndex[dep]
				cycle := make([]string, 0, len(path)-idx+1)
				cycle = append(cycle, path[idx:]...)
				cycle = append(cycle, dep)
				cycles = append(cycles, cycle)
			}
			continue
		}

		color[frame.id] = colorBlack
		delete(pathIndex, frame.id)
		path = path[:len(path)-1]
		stack = stack[:len(stack)-1]
	}

	return cycles
}
