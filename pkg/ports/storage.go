package ports

import (
	"context"

	"github.com/ecanizales/plandag/pkg/domain"
)

// RunStore persists run execution snapshots for status queries and dashboards.
// The dependency graph itself is never persisted; only run progress is.
type RunStore interface {
	SaveRun(ctx context.Context, state *domain.RunState) error
	GetRun(ctx context.Context, runID string) (*domain.RunState, error)
	DeleteRun(ctx context.Context, runID string) error
	ListRuns(ctx context.Context) ([]string, error)
}
