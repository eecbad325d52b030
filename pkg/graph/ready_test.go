package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedSet(ids ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func TestReadyNodesIncremental(t *testing.T) {
	g := newTestGraph()
	buildDiamond(g)

	assert.Equal(t, []string{"a"}, g.ReadyNodes(completedSet()))
	assert.Equal(t, []string{"b", "c"}, g.ReadyNodes(completedSet("a")))
	assert.Equal(t, []string{"c"}, g.ReadyNodes(completedSet("a", "b")))
	assert.Equal(t, []string{"d"}, g.ReadyNodes(completedSet("a", "b", "c")))
	assert.Empty(t, g.ReadyNodes(completedSet("a", "b", "c", "d")))
}

func TestReadyNodesNeverReturnsCompleted(t *testing.T) {
	g := newTestGraph()
	buildDiamond(g)

	completed := completedSet("a", "b")
	for _, id := range g.ReadyNodes(completed) {
		_, done := completed[id]
		assert.False(t, done, "ready node %q is already completed", id)
	}
}

func TestReadyNodesRequiresAllDependencies(t *testing.T) {
	g := newTestGraph()
	buildDiamond(g)

	// d requires both b and c; only b is done.
	ready := g.ReadyNodes(completedSet("a", "b"))
	assert.NotContains(t, ready, "d")
}

func TestReadyNodesPriorityOrder(t *testing.T) {
	g := newTestGraph()
	g.AddNode("a", NodeMeta{Priority: 1})
	g.AddNode("b", NodeMeta{Priority: 5})
	g.AddNode("c", NodeMeta{Priority: 5})

	assert.Equal(t, []string{"b", "c", "a"}, g.ReadyNodes(completedSet()))
}

func TestReadyNodesDoesNotMutate(t *testing.T) {
	g := newTestGraph()
	buildDiamond(g)
	completed := completedSet("a")

	before := g.EdgeCount()
	for i := 0; i < 5; i++ {
		g.ReadyNodes(completed)
	}
	require.Equal(t, before, g.EdgeCount())
	require.Len(t, completed, 1)
	assertConsistent(t, g)
}

func TestReadyNodesStuckDependencyBlocksDependents(t *testing.T) {
	g := newTestGraph()
	g.AddDependency("b", "a")
	g.AddDependency("c", "b")

	// a never completes: b and c stay excluded no matter how often we poll.
	for i := 0; i < 3; i++ {
		assert.Equal(t, []string{"a"}, g.ReadyNodes(completedSet()))
	}
}
