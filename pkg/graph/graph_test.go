package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGraph() *Graph {
	return New(zap.NewNop())
}

// assertConsistent checks the structural invariants: the three maps share one
// node set and the two edge maps are exact mirror images.
func assertConsistent(t *testing.T, g *Graph) {
	t.Helper()

	require.Len(t, g.dependencies, len(g.meta))
	require.Len(t, g.dependents, len(g.meta))
	for id := range g.meta {
		_, ok := g.dependencies[id]
		require.True(t, ok, "node %q missing from dependencies map", id)
		_, ok = g.dependents[id]
		require.True(t, ok, "node %q missing from dependents map", id)
	}

	for id, deps := range g.dependencies {
		for dep := range deps {
			_, ok := g.dependents[dep][id]
			assert.True(t, ok, "edge (%q requires %q) has no mirror", id, dep)
		}
	}
	for id, deps := range g.dependents {
		for dependent := range deps {
			_, ok := g.dependencies[dependent][id]
			assert.True(t, ok, "mirror edge (%q waited on by %q) has no forward entry", id, dependent)
		}
	}
}

func TestAddNode(t *testing.T) {
	g := newTestGraph()

	g.AddNode("a", NodeMeta{Priority: 3})
	require.True(t, g.HasNode("a"))
	require.Equal(t, 1, g.Len())

	meta, ok := g.Meta("a")
	require.True(t, ok)
	assert.Equal(t, 3, meta.Priority)

	// Idempotent: a second add keeps the original metadata.
	g.AddNode("a", NodeMeta{Priority: 9})
	meta, _ = g.Meta("a")
	assert.Equal(t, 3, meta.Priority)
	assert.Equal(t, 1, g.Len())

	assertConsistent(t, g)
}

func TestAddDependency(t *testing.T) {
	t.Run("auto-creates endpoints", func(t *testing.T) {
		g := newTestGraph()

		g.AddDependency("b", "a")
		assert.True(t, g.HasNode("a"))
		assert.True(t, g.HasNode("b"))
		assert.Equal(t, []string{"a"}, g.Dependencies("b"))
		assert.Equal(t, []string{"b"}, g.Dependents("a"))
		assertConsistent(t, g)
	})

	t.Run("duplicate edge is a no-op", func(t *testing.T) {
		g := newTestGraph()

		g.AddDependency("b", "a")
		g.AddDependency("b", "a")
		assert.Equal(t, 1, g.EdgeCount())
		assertConsistent(t, g)
	})
}

func TestRemoveDependency(t *testing.T) {
	g := newTestGraph()
	g.AddDependency("b", "a")

	g.RemoveDependency("b", "a")
	assert.Empty(t, g.Dependencies("b"))
	assert.Empty(t, g.Dependents("a"))
	assert.Equal(t, 2, g.Len())

	// Removing a missing edge is a silent no-op.
	g.RemoveDependency("b", "a")
	g.RemoveDependency("x", "y")
	assert.Equal(t, 2, g.Len())
	assertConsistent(t, g)
}

func TestRemoveNode(t *testing.T) {
	g := newTestGraph()
	g.AddDependency("b", "a")
	g.AddDependency("c", "b")
	g.AddDependency("d", "b")

	g.RemoveNode("b")

	assert.False(t, g.HasNode("b"))
	assert.Equal(t, 3, g.Len())
	assert.Empty(t, g.Dependents("a"))
	assert.Empty(t, g.Dependencies("c"))
	assert.Empty(t, g.Dependencies("d"))
	assert.Equal(t, 0, g.EdgeCount())
	assertConsistent(t, g)

	// Unknown id is a no-op.
	g.RemoveNode("zz")
	assert.Equal(t, 3, g.Len())
}

func TestClear(t *testing.T) {
	g := newTestGraph()
	g.AddDependency("b", "a")

	g.Clear()
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 0, g.EdgeCount())
	assertConsistent(t, g)
}

func TestClone(t *testing.T) {
	g := newTestGraph()
	g.AddNode("a", NodeMeta{Priority: 2, Fields: map[string]interface{}{"team": "core"}})
	g.AddDependency("b", "a")
	g.AddDependency("c", "b")

	c := g.Clone()

	require.Equal(t, g.Nodes(), c.Nodes())
	require.Equal(t, g.EdgeCount(), c.EdgeCount())
	meta, _ := c.Meta("a")
	assert.Equal(t, 2, meta.Priority)
	assert.Equal(t, "core", meta.Fields["team"])

	// Mutating the clone never affects the original.
	c.RemoveNode("b")
	c.AddDependency("d", "a")
	cMeta, _ := c.Meta("a")
	cMeta.Fields["team"] = "other"

	assert.True(t, g.HasNode("b"))
	assert.False(t, g.HasNode("d"))
	assert.Equal(t, []string{"a"}, g.Dependencies("b"))
	origMeta, _ := g.Meta("a")
	assert.Equal(t, "core", origMeta.Fields["team"])
	assertConsistent(t, g)
	assertConsistent(t, c)
}
