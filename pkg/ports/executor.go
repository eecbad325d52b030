package ports

import (
	"context"

	"github.com/ecanizales/plandag/pkg/domain"
)

// StoryExecutor performs the actual work for a single story. Implementations
// own all retry, timeout and failure policy; the coordinator only observes the
// returned error.
type StoryExecutor interface {
	Execute(ctx context.Context, story domain.Story) error
}

// StoryExecutorFunc adapts a function to the StoryExecutor interface
type StoryExecutorFunc func(ctx context.Context, story domain.Story) error

// Execute implements StoryExecutor
func (f StoryExecutorFunc) Execute(ctx context.Context, story domain.Story) error {
	return f(ctx, story)
}
