package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ecanizales/plandag/pkg/domain"
)

// RunStore implements ports.RunStore with an in-memory map
type RunStore struct {
	mu   sync.RWMutex
	runs map[string][]byte
}

// NewRunStore creates a new in-memory run store
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string][]byte),
	}
}

// SaveRun stores a snapshot of the run state. The state is serialized so the
// caller can keep mutating its copy without affecting the stored snapshot.
func (s *RunStore) SaveRun(ctx context.Context, state *domain.RunState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal run state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[state.RunID] = data
	return nil
}

// GetRun retrieves a run state snapshot
func (s *RunStore) GetRun(ctx context.Context, runID string) (*domain.RunState, error) {
	s.mu.RLock()
	data, ok := s.runs[runID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}

	var state domain.RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run state: %w", err)
	}

	return &state, nil
}

// DeleteRun removes a run state snapshot
func (s *RunStore) DeleteRun(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.runs, runID)
	return nil
}

// ListRuns returns all run ids with stored state
func (s *RunStore) ListRuns(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}

	return ids, nil
}
