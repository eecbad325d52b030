package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecanizales/plandag/pkg/domain"
)

func TestBuildFromStories(t *testing.T) {
	g := newTestGraph()
	g.BuildFromStories([]domain.Story{
		{ID: "auth", Priority: 5},
		{ID: "api", Priority: 3, Dependencies: []string{"auth"}},
		{ID: "ui", Priority: 1, Dependencies: []string{"api", "auth"}},
	})

	require.Equal(t, 3, g.Len())
	assert.Equal(t, 3, g.EdgeCount())
	assert.Equal(t, []string{"auth"}, g.Dependencies("api"))
	assert.Equal(t, []string{"api", "auth"}, g.Dependencies("ui"))

	meta, _ := g.Meta("auth")
	assert.Equal(t, 5, meta.Priority)
	assertConsistent(t, g)
}

func TestBuildFromStoriesClearsPreviousGraph(t *testing.T) {
	g := newTestGraph()
	g.AddDependency("old-b", "old-a")

	g.BuildFromStories([]domain.Story{{ID: "fresh"}})

	assert.Equal(t, 1, g.Len())
	assert.False(t, g.HasNode("old-a"))
}

// A dependency id never declared as a story materializes as an empty
// placeholder node instead of failing the build.
func TestBuildFromStoriesUndeclaredDependency(t *testing.T) {
	g := newTestGraph()
	g.BuildFromStories([]domain.Story{
		{ID: "s1", Dependencies: []string{"s0"}},
	})

	require.Equal(t, 2, g.Len())
	require.True(t, g.HasNode("s0"))

	meta, ok := g.Meta("s0")
	require.True(t, ok)
	assert.Equal(t, NodeMeta{}, meta)

	assert.Equal(t, 2, g.Stats().NodeCount)
}

// Declaration order must not matter: a story may depend on one declared later.
func TestBuildFromStoriesForwardReference(t *testing.T) {
	g := newTestGraph()
	g.BuildFromStories([]domain.Story{
		{ID: "s1", Priority: 1, Dependencies: []string{"s2"}},
		{ID: "s2", Priority: 4},
	})

	meta, _ := g.Meta("s2")
	assert.Equal(t, 4, meta.Priority)

	res := g.TopologicalOrder()
	require.True(t, res.Success)
	assert.Equal(t, []string{"s2", "s1"}, res.Order)
}
