package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCyclesAcyclic(t *testing.T) {
	g := newTestGraph()
	g.AddDependency("b", "a")
	g.AddDependency("c", "a")
	g.AddDependency("d", "b")
	g.AddDependency("d", "c")

	report := g.DetectCycles()
	assert.False(t, report.HasCycles)
	assert.Empty(t, report.Cycles)
}

func TestDetectCyclesTwoNodeCycle(t *testing.T) {
	g := newTestGraph()
	g.AddDependency("a", "b")
	g.AddDependency("b", "a")

	report := g.DetectCycles()
	require.True(t, report.HasCycles)
	require.Len(t, report.Cycles, 1)
	assert.Equal(t, []string{"a", "b", "a"}, report.Cycles[0])
}

func TestDetectCyclesSelfLoop(t *testing.T) {
	g := newTestGraph()
	g.AddDependency("x", "x")

	report := g.DetectCycles()
	require.True(t, report.HasCycles)
	require.Len(t, report.Cycles, 1)
	assert.Equal(t, []string{"x", "x"}, report.Cycles[0])
}

// A forest of one cycle-free component and two cycle-bearing ones: the scan
// must not stop at the first cycle.
func TestDetectCyclesDisconnectedComponents(t *testing.T) {
	g := newTestGraph()

	// Acyclic component.
	g.AddDependency("b", "a")

	// Two independent cycles.
	g.AddDependency("p", "q")
	g.AddDependency("q", "p")
	g.AddDependency("x", "y")
	g.AddDependency("y", "z")
	g.AddDependency("z", "x")

	report := g.DetectCycles()
	require.True(t, report.HasCycles)
	require.Len(t, report.Cycles, 2)
	assert.Equal(t, []string{"p", "q", "p"}, report.Cycles[0])
	assert.Equal(t, []string{"x", "y", "z", "x"}, report.Cycles[1])
}

func TestDetectCyclesEmptyGraph(t *testing.T) {
	g := newTestGraph()

	report := g.DetectCycles()
	assert.False(t, report.HasCycles)
}
