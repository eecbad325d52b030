package graph

import (
	"go.uber.org/zap"

	"github.com/ecanizales/plandag/pkg/domain"
)

// BuildFromStories resets the graph and populates it from a story list in two
// passes: first every declared story becomes a node, then the declared edges
// are wired. A dependency id that was never declared as a story materializes
// as an empty placeholder node — the graph treats it as an external
// dependency rather than rejecting the batch.
func (g *Graph) BuildFromStories(stories []domain.Story) {
	g.Clear()

	for _, s := range stories {
		g.AddNode(s.ID, NodeMeta{Priority: s.Priority, Fields: s.Metadata})
	}

	for _, s := range stories {
		for _, dep := range s.Dependencies {
			if !g.HasNode(dep) {
				g.logger.Warn("story references undeclared dependency, creating placeholder",
					zap.String("story_id", s.ID),
					zap.String("dependency_id", dep))
			}
			g.AddDependency(s.ID, dep)
		}
	}
}
