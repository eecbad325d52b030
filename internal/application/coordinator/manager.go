package coordinator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecanizales/plandag/internal/application/workers"
	"github.com/ecanizales/plandag/pkg/domain"
	"github.com/ecanizales/plandag/pkg/graph"
	"github.com/ecanizales/plandag/pkg/ports"
)

// EventsTopic is the bus topic carrying all run progress events
const EventsTopic = "run.events"

// Dispatch stall policy: how long a run keeps re-offering ready stories to a
// pool that will not take them before it fails.
const (
	dispatchRetryDelay = 50 * time.Millisecond
	maxDispatchStalls  = 20
)

// Manager coordinates planning and run execution
type Manager struct {
	eventBus  ports.EventBus
	store     ports.RunStore
	metrics   ports.MetricsCollector
	pool      *workers.Pool
	validator *Validator
	logger    *zap.Logger

	runTimeout time.Duration

	// runMu serializes execution loops. The loop is the single writer of
	// its run's graph and the sole reader of the pool results channel.
	runMu sync.Mutex

	executions sync.Map // map[string]*runContext
	activeRuns int64
}

// runContext holds everything one run execution needs
type runContext struct {
	runID      string
	graph      *graph.Graph
	stories    map[string]domain.Story
	state      *domain.RunState
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// NewManager creates a new coordinator manager
func NewManager(
	eventBus ports.EventBus,
	store ports.RunStore,
	metrics ports.MetricsCollector,
	pool *workers.Pool,
	validator *Validator,
	logger *zap.Logger,
	runTimeout time.Duration,
) *Manager {
	return &Manager{
		eventBus:   eventBus,
		store:      store,
		metrics:    metrics,
		pool:       pool,
		validator:  validator,
		logger:     logger,
		runTimeout: runTimeout,
	}
}

// Plan answers the one-shot planning query for a story batch: a safe
// execution order, the parallel-execution levels and graph statistics.
// Cyclic batches fail with a CycleError carrying every offending path.
func (m *Manager) Plan(stories []domain.Story) (*domain.Plan, error) {
	if err := m.validator.Validate(stories); err != nil {
		m.metrics.RecordPlanComputed("rejected")
		return nil, fmt.Errorf("invalid story batch: %w", err)
	}

	g := graph.New(m.logger)
	g.BuildFromStories(stories)
	m.metrics.SetGraphSize(g.Len(), g.EdgeCount())

	order := g.TopologicalOrder()
	if !order.Success {
		m.metrics.RecordPlanComputed("failed")
		if len(order.Cycles) > 0 {
			m.metrics.RecordCyclesDetected(len(order.Cycles))
			m.logger.Warn("planning rejected cyclic story batch",
				zap.Int("cycles", len(order.Cycles)))
			return nil, &domain.CycleError{Cycles: order.Cycles}
		}
		return nil, fmt.Errorf("internal: ordering incomplete without a detected cycle")
	}

	levels := g.DependencyLevels()
	if !levels.Success {
		m.metrics.RecordPlanComputed("failed")
		return nil, fmt.Errorf("internal: level partitioning failed on acyclic graph")
	}

	m.metrics.RecordPlanComputed("computed")
	return &domain.Plan{
		Order:  order.Order,
		Levels: levels.Levels,
		Stats:  g.Stats(),
	}, nil
}

// ExportDOT renders a story batch as a Graphviz digraph for debugging
func (m *Manager) ExportDOT(stories []domain.Story) (string, error) {
	if err := m.validator.Validate(stories); err != nil {
		return "", fmt.Errorf("invalid story batch: %w", err)
	}

	g := graph.New(m.logger)
	g.BuildFromStories(stories)
	return g.ExportDOT(), nil
}

// SubmitRun validates a batch and starts executing it in the background,
// returning the run id. Execution polls ready stories and dispatches them to
// the worker pool as their dependencies complete.
func (m *Manager) SubmitRun(ctx context.Context, stories []domain.Story) (string, error) {
	if err := m.validator.ValidateExecutable(stories); err != nil {
		m.metrics.RecordRunSubmitted("rejected")
		return "", fmt.Errorf("invalid story batch: %w", err)
	}

	g := graph.New(m.logger)
	g.BuildFromStories(stories)
	m.metrics.SetGraphSize(g.Len(), g.EdgeCount())

	if report := g.DetectCycles(); report.HasCycles {
		m.metrics.RecordRunSubmitted("rejected")
		m.metrics.RecordCyclesDetected(len(report.Cycles))
		return "", &domain.CycleError{Cycles: report.Cycles}
	}

	runID := uuid.New().String()

	byID := make(map[string]domain.Story, len(stories))
	state := &domain.RunState{
		RunID:       runID,
		Status:      domain.ExecutionStatusSubmitted,
		Stories:     make(map[string]*domain.StoryState, len(stories)),
		SubmittedAt: time.Now(),
	}
	for _, s := range stories {
		byID[s.ID] = s
		state.Stories[s.ID] = &domain.StoryState{
			StoryID: s.ID,
			Status:  domain.ExecutionStatusPending,
		}
	}

	if err := m.store.SaveRun(ctx, state); err != nil {
		m.logger.Error("failed to save initial run state",
			zap.String("run_id", runID),
			zap.Error(err))
		return "", fmt.Errorf("failed to save run state: %w", err)
	}

	runCtx, cancel := context.WithTimeout(context.Background(), m.runTimeout)
	rc := &runContext{
		runID:      runID,
		graph:      g,
		stories:    byID,
		state:      state,
		cancelFunc: cancel,
		done:       make(chan struct{}),
	}
	m.executions.Store(runID, rc)
	m.metrics.SetActiveRuns(int(atomic.AddInt64(&m.activeRuns, 1)))
	m.metrics.RecordRunSubmitted("submitted")

	m.publishEvent(ctx, runID, "", domain.EventTypeRunSubmitted, map[string]interface{}{
		"stories": len(stories),
	})
	m.logger.Info("run submitted",
		zap.String("run_id", runID),
		zap.Int("stories", len(stories)))

	go m.executeRun(runCtx, rc)

	return runID, nil
}

// GetStatus retrieves the stored state of a run
func (m *Manager) GetStatus(ctx context.Context, runID string) (*domain.RunState, error) {
	state, err := m.store.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run state: %w", err)
	}
	return state, nil
}

// Cancel stops a running execution
func (m *Manager) Cancel(ctx context.Context, runID string) error {
	val, ok := m.executions.Load(runID)
	if !ok {
		return fmt.Errorf("run not found or already finished: %s", runID)
	}

	rc := val.(*runContext)
	rc.cancelFunc()

	m.logger.Info("run cancellation requested", zap.String("run_id", runID))
	return nil
}

// Shutdown cancels all active runs and waits for their loops to exit
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("shutting down coordinator")

	var pending []*runContext
	m.executions.Range(func(key, value interface{}) bool {
		rc := value.(*runContext)
		rc.cancelFunc()
		pending = append(pending, rc)
		return true
	})

	for _, rc := range pending {
		select {
		case <-rc.done:
		case <-ctx.Done():
			return fmt.Errorf("shutdown timeout")
		}
	}

	m.logger.Info("coordinator shut down complete")
	return nil
}

// executeRun drives one run to completion. Runs execute one at a time: the
// loop owns its graph and the pool results channel for its whole lifetime.
func (m *Manager) executeRun(ctx context.Context, rc *runContext) {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	defer close(rc.done)
	defer rc.cancelFunc()

	start := time.Now()
	state := rc.state

	now := time.Now()
	state.Status = domain.ExecutionStatusRunning
	state.StartedAt = &now
	m.saveState(ctx, state)
	m.publishEvent(ctx, rc.runID, "", domain.EventTypeRunStarted, nil)

	completed := make(map[string]struct{}, len(rc.stories))
	failed := make(map[string]struct{})
	inflight := make(map[string]struct{})
	stalls := 0

	for {
		submitFailed := false
		for _, id := range rc.graph.ReadyNodes(completed) {
			if _, running := inflight[id]; running {
				continue
			}
			if _, bad := failed[id]; bad {
				continue
			}
			if !m.pool.Submit(workers.Job{RunID: rc.runID, Story: rc.stories[id]}) {
				// Queue full or pool stopping; retry on the next poll.
				submitFailed = true
				break
			}
			inflight[id] = struct{}{}

			startedAt := time.Now()
			st := state.Stories[id]
			st.Status = domain.ExecutionStatusRunning
			st.StartedAt = &startedAt
			m.publishEvent(ctx, rc.runID, id, domain.EventTypeStoryStarted, nil)
		}

		if len(inflight) == 0 {
			if !submitFailed {
				break
			}
			// Ready stories exist but the pool would not take them. The
			// queue may still hold another run's leftovers, so wait a
			// little before giving up.
			stalls++
			if stalls > maxDispatchStalls {
				break
			}
			select {
			case <-ctx.Done():
				m.finishInterrupted(ctx, rc, start)
				return
			case <-time.After(dispatchRetryDelay):
			}
			continue
		}
		stalls = 0

		select {
		case <-ctx.Done():
			m.finishInterrupted(ctx, rc, start)
			return
		case res := <-m.pool.Results():
			if res.RunID != rc.runID {
				// Leftover from an interrupted run; drop it.
				continue
			}
			delete(inflight, res.StoryID)

			finishedAt := time.Now()
			st := state.Stories[res.StoryID]
			st.CompletedAt = &finishedAt
			if res.Err != nil {
				st.Status = domain.ExecutionStatusFailed
				st.Error = res.Err.Error()
				failed[res.StoryID] = struct{}{}
				m.publishEvent(ctx, rc.runID, res.StoryID, domain.EventTypeStoryFailed, map[string]interface{}{
					"error": res.Err.Error(),
				})
			} else {
				st.Status = domain.ExecutionStatusCompleted
				completed[res.StoryID] = struct{}{}
				state.Completed = append(state.Completed, res.StoryID)
				m.publishEvent(ctx, rc.runID, res.StoryID, domain.EventTypeStoryCompleted, nil)
			}
			m.saveState(ctx, state)
		}
	}

	m.finishRun(ctx, rc, completed, failed, start)
}

// finishRun records the terminal state once no dispatchable work remains
func (m *Manager) finishRun(ctx context.Context, rc *runContext, completed, failed map[string]struct{}, start time.Time) {
	state := rc.state
	now := time.Now()
	state.CompletedAt = &now

	switch {
	case len(completed) == rc.graph.Len():
		state.Status = domain.ExecutionStatusCompleted
		m.publishEvent(ctx, rc.runID, "", domain.EventTypeRunCompleted, nil)
		m.metrics.RecordRunCompleted(string(domain.ExecutionStatusCompleted), time.Since(start))

	case len(failed) > 0:
		// A failed story keeps its dependents un-ready forever; they end
		// blocked rather than failed.
		state.Status = domain.ExecutionStatusFailed
		state.Error = "one or more stories failed; their dependents were never ready"
		for _, st := range state.Stories {
			if st.Status == domain.ExecutionStatusPending {
				st.Status = domain.ExecutionStatusBlocked
			}
		}
		m.publishEvent(ctx, rc.runID, "", domain.EventTypeRunFailed, map[string]interface{}{
			"error": state.Error,
		})
		m.metrics.RecordRunCompleted(string(domain.ExecutionStatusFailed), time.Since(start))

	default:
		// Nothing failed and nothing was running: ready stories could not
		// be handed to the pool at all. Stories stay pending.
		state.Status = domain.ExecutionStatusFailed
		state.Error = "ready stories could not be dispatched; worker pool unavailable"
		m.publishEvent(ctx, rc.runID, "", domain.EventTypeRunFailed, map[string]interface{}{
			"error": state.Error,
		})
		m.metrics.RecordRunCompleted(string(domain.ExecutionStatusFailed), time.Since(start))
		m.logger.Error("run could not dispatch any story",
			zap.String("run_id", rc.runID))
	}

	m.saveState(ctx, state)
	m.cleanup(rc)

	m.logger.Info("run finished",
		zap.String("run_id", rc.runID),
		zap.String("status", string(state.Status)),
		zap.Duration("duration", time.Since(start)))
}

// finishInterrupted records cancellation or timeout as the terminal state
func (m *Manager) finishInterrupted(ctx context.Context, rc *runContext, start time.Time) {
	state := rc.state
	now := time.Now()
	state.CompletedAt = &now

	eventType := domain.EventTypeRunCancelled
	if ctx.Err() == context.DeadlineExceeded {
		state.Status = domain.ExecutionStatusFailed
		state.Error = "run timeout"
		eventType = domain.EventTypeRunFailed
		m.logger.Warn("run timed out", zap.String("run_id", rc.runID))
	} else {
		state.Status = domain.ExecutionStatusCancelled
		m.logger.Info("run cancelled", zap.String("run_id", rc.runID))
	}

	// Persist with a fresh context; the run context is already dead.
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.saveState(saveCtx, state)
	m.publishEvent(saveCtx, rc.runID, "", eventType, nil)
	m.metrics.RecordRunCompleted(string(state.Status), time.Since(start))
	m.cleanup(rc)
}

func (m *Manager) cleanup(rc *runContext) {
	m.executions.Delete(rc.runID)
	m.metrics.SetActiveRuns(int(atomic.AddInt64(&m.activeRuns, -1)))
}

// saveState persists a snapshot, logging instead of failing the run
func (m *Manager) saveState(ctx context.Context, state *domain.RunState) {
	if err := m.store.SaveRun(ctx, state); err != nil {
		m.logger.Error("failed to save run state",
			zap.String("run_id", state.RunID),
			zap.Error(err))
	}
}

// publishEvent publishes a run event to the event bus
func (m *Manager) publishEvent(ctx context.Context, runID, storyID string, eventType domain.EventType, data map[string]interface{}) {
	event := domain.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		RunID:     runID,
		StoryID:   storyID,
		Timestamp: time.Now(),
		Data:      data,
	}

	if err := m.eventBus.Publish(ctx, EventsTopic, event); err != nil {
		m.logger.Error("failed to publish event",
			zap.String("run_id", runID),
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}
