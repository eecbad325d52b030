package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyLevelsDiamond(t *testing.T) {
	g := newTestGraph()
	buildDiamond(g)

	res := g.DependencyLevels()
	require.True(t, res.Success)
	require.Len(t, res.Levels, 3)
	assert.Equal(t, []string{"a"}, res.Levels[0])
	assert.Equal(t, []string{"b", "c"}, res.Levels[1])
	assert.Equal(t, []string{"d"}, res.Levels[2])
}

// The levels must partition the node set exactly once each, with every
// dependency strictly below its dependent's level.
func TestDependencyLevelsPartitionProperty(t *testing.T) {
	g := newTestGraph()
	g.AddDependency("b", "a")
	g.AddDependency("c", "a")
	g.AddDependency("d", "b")
	g.AddDependency("e", "b")
	g.AddDependency("e", "c")
	g.AddDependency("f", "e")
	g.AddNode("lone", NodeMeta{})

	res := g.DependencyLevels()
	require.True(t, res.Success)

	levelOf := make(map[string]int)
	total := 0
	for l, ids := range res.Levels {
		for _, id := range ids {
			_, seen := levelOf[id]
			require.False(t, seen, "node %q appears in more than one level", id)
			levelOf[id] = l
			total++
		}
	}
	require.Equal(t, g.Len(), total)

	for _, id := range g.Nodes() {
		for _, dep := range g.Dependencies(id) {
			assert.Less(t, levelOf[dep], levelOf[id],
				"dependency %q of %q must live in a strictly lower level", dep, id)
		}
	}
}

func TestDependencyLevelsPriorityWithinLevel(t *testing.T) {
	g := newTestGraph()
	g.AddNode("low", NodeMeta{Priority: 1})
	g.AddNode("high", NodeMeta{Priority: 9})
	g.AddNode("mid", NodeMeta{Priority: 5})

	res := g.DependencyLevels()
	require.True(t, res.Success)
	require.Len(t, res.Levels, 1)
	assert.Equal(t, []string{"high", "mid", "low"}, res.Levels[0])
}

func TestDependencyLevelsCyclePropagates(t *testing.T) {
	g := newTestGraph()
	g.AddDependency("a", "b")
	g.AddDependency("b", "a")

	res := g.DependencyLevels()
	assert.False(t, res.Success)
	assert.Empty(t, res.Levels)
	require.Len(t, res.Cycles, 1)
	assert.Equal(t, []string{"a", "b", "a"}, res.Cycles[0])
}

func TestDependencyLevelsEmptyGraph(t *testing.T) {
	g := newTestGraph()

	res := g.DependencyLevels()
	assert.True(t, res.Success)
	assert.Empty(t, res.Levels)
}
