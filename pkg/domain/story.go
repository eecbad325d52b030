package domain

// Story describes one unit of plannable work: a caller-defined id, the ids it
// depends on, a scheduling priority and an open metadata bag for caller fields.
type Story struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title,omitempty"`
	Dependencies []string               `json:"dependencies,omitempty"`
	Priority     int                    `json:"priority"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// Plan is the static scheduling answer for a set of stories: a safe execution
// order and the parallel-execution levels it partitions into.
type Plan struct {
	Order  []string   `json:"order"`
	Levels [][]string `json:"levels"`
	Stats  PlanStats  `json:"stats"`
}

// PlanStats carries the diagnostic counters reported alongside a plan.
type PlanStats struct {
	NodeCount    int      `json:"node_count"`
	EdgeCount    int      `json:"edge_count"`
	LeafNodes    []string `json:"leaf_nodes"`
	RootNodes    []string `json:"root_nodes"`
	MaxDepth     int      `json:"max_depth"`
	AvgOutDegree float64  `json:"avg_out_degree"`
}
