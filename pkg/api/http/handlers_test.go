package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecanizales/plandag/internal/application/coordinator"
	"github.com/ecanizales/plandag/internal/application/workers"
	eventsmem "github.com/ecanizales/plandag/pkg/adapters/events/memory"
	storagemem "github.com/ecanizales/plandag/pkg/adapters/storage/memory"
	"github.com/ecanizales/plandag/pkg/domain"
	"github.com/ecanizales/plandag/pkg/ports"
)

// nopMetrics satisfies ports.MetricsCollector for tests
type nopMetrics struct{}

func (nopMetrics) RecordPlanComputed(string)                 {}
func (nopMetrics) RecordCyclesDetected(int)                  {}
func (nopMetrics) RecordRunSubmitted(string)                 {}
func (nopMetrics) RecordRunCompleted(string, time.Duration)  {}
func (nopMetrics) RecordStoryExecuted(string, time.Duration) {}
func (nopMetrics) RecordWorkerPoolStatus(int, int, int)      {}
func (nopMetrics) SetActiveRuns(int)                         {}
func (nopMetrics) SetGraphSize(int, int)                     {}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := zap.NewNop()
	executor := ports.StoryExecutorFunc(func(ctx context.Context, s domain.Story) error {
		return nil
	})
	pool := workers.NewPool(2, executor, nopMetrics{}, logger, time.Minute)
	require.NoError(t, pool.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = pool.Shutdown(ctx)
	})

	mgr := coordinator.NewManager(
		eventsmem.NewBus(),
		storagemem.NewRunStore(),
		nopMetrics{},
		pool,
		coordinator.NewValidator(),
		logger,
		time.Minute,
	)

	return NewServer(&Config{
		Port:        0,
		Coordinator: mgr,
		Pool:        pool,
		Logger:      logger,
	})
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), "worker_pool")
}

func TestHealthEndpointDegraded(t *testing.T) {
	logger := zap.NewNop()
	executor := ports.StoryExecutorFunc(func(ctx context.Context, s domain.Story) error {
		return nil
	})
	pool := workers.NewPool(1, executor, nopMetrics{}, logger, time.Minute)
	require.NoError(t, pool.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Shutdown(ctx))

	mgr := coordinator.NewManager(
		eventsmem.NewBus(),
		storagemem.NewRunStore(),
		nopMetrics{},
		pool,
		coordinator.NewValidator(),
		logger,
		time.Minute,
	)
	s := NewServer(&Config{Port: 0, Coordinator: mgr, Pool: pool, Logger: logger})

	w := doRequest(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestComputePlan(t *testing.T) {
	s := newTestServer(t)

	body := `{"stories":[
		{"id":"a","priority":1},
		{"id":"b","priority":1,"dependencies":["a"]},
		{"id":"c","priority":1,"dependencies":["a"]},
		{"id":"d","priority":1,"dependencies":["b","c"]}
	]}`
	w := doRequest(s, http.MethodPost, "/api/v1/plans", body)
	require.Equal(t, http.StatusOK, w.Code)

	var plan domain.Plan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	assert.Equal(t, []string{"a"}, plan.Levels[0])
	assert.Equal(t, "a", plan.Order[0])
	assert.Equal(t, "d", plan.Order[3])
	assert.Equal(t, 4, plan.Stats.NodeCount)
}

func TestComputePlanCycle(t *testing.T) {
	s := newTestServer(t)

	body := `{"stories":[
		{"id":"a","dependencies":["b"]},
		{"id":"b","dependencies":["a"]}
	]}`
	w := doRequest(s, http.MethodPost, "/api/v1/plans", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CYCLE_DETECTED", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "a -> b -> a")
}

func TestComputePlanBadRequest(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/v1/plans", `{"nope":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportDOT(t *testing.T) {
	s := newTestServer(t)

	body := `{"stories":[{"id":"a"},{"id":"b","dependencies":["a"]}]}`
	w := doRequest(s, http.MethodPost, "/api/v1/plans/dot", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "digraph dependencies")
	assert.Contains(t, w.Body.String(), `"b" -> "a";`)
}

func TestSubmitAndQueryRun(t *testing.T) {
	s := newTestServer(t)

	body := `{"stories":[{"id":"a"},{"id":"b","dependencies":["a"]}]}`
	w := doRequest(s, http.MethodPost, "/api/v1/runs", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var submitted RunSubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	require.NotEmpty(t, submitted.RunID)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		w = doRequest(s, http.MethodGet, "/api/v1/runs/"+submitted.RunID, "")
		require.Equal(t, http.StatusOK, w.Code)

		var state domain.RunState
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
		if state.Status == domain.ExecutionStatusCompleted {
			assert.Equal(t, []string{"a", "b"}, state.Completed)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("run never completed")
}

func TestSubmitRunCycle(t *testing.T) {
	s := newTestServer(t)

	body := `{"stories":[
		{"id":"a","dependencies":["b"]},
		{"id":"b","dependencies":["a"]}
	]}`
	w := doRequest(s, http.MethodPost, "/api/v1/runs", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CYCLE_DETECTED", resp.Error.Code)
}

func TestGetRunNotFound(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/v1/runs/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListWorkers(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodGet, "/api/v1/workers", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			TotalWorkers int  `json:"totalWorkers"`
			IdleWorkers  int  `json:"idleWorkers"`
			Saturated    bool `json:"saturated"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.TotalWorkers)
	assert.Equal(t, 2, resp.Data.IdleWorkers)
	assert.False(t, resp.Data.Saturated)
}
