package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ecanizales/plandag/pkg/domain"
	"github.com/ecanizales/plandag/pkg/ports"
)

// Job is one story dispatched for execution
type Job struct {
	RunID string
	Story domain.Story
}

// Result reports the outcome of one executed job
type Result struct {
	RunID    string
	StoryID  string
	Err      error
	Duration time.Duration
}

// WorkerStatus represents worker status
type WorkerStatus string

const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusBusy    WorkerStatus = "busy"
	WorkerStatusStopped WorkerStatus = "stopped"
)

// Pool manages a fixed set of worker goroutines executing stories
type Pool struct {
	size     int
	executor ports.StoryExecutor
	metrics  ports.MetricsCollector
	logger   *zap.Logger
	health   *healthMonitor

	jobs    chan Job
	results chan Result
	workers []*worker
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// worker represents a single worker goroutine
type worker struct {
	id      string
	pool    *Pool
	status  WorkerStatus
	mu      sync.RWMutex
	lastJob time.Time
}

// NewPool creates a new worker pool
func NewPool(
	size int,
	executor ports.StoryExecutor,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
	healthCheckInterval time.Duration,
) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	pool := &Pool{
		size:     size,
		executor: executor,
		metrics:  metrics,
		logger:   logger,
		jobs:     make(chan Job, size*2),
		results:  make(chan Result, size*2),
		workers:  make([]*worker, size),
		ctx:      ctx,
		cancel:   cancel,
	}

	pool.health = newHealthMonitor(pool, healthCheckInterval, logger)

	return pool
}

// Start starts the worker pool
func (p *Pool) Start() error {
	p.logger.Info("starting worker pool", zap.Int("size", p.size))

	for i := 0; i < p.size; i++ {
		w := &worker{
			id:      fmt.Sprintf("worker-%d", i),
			pool:    p,
			status:  WorkerStatusIdle,
			lastJob: time.Now(),
		}
		p.workers[i] = w

		p.wg.Add(1)
		go w.run(p.ctx)
	}

	p.health.start()

	p.logger.Info("worker pool started", zap.Int("workers", p.size))
	return nil
}

// Submit queues a job without blocking. It returns false when the queue is
// full or the pool is shutting down; the caller re-dispatches on a later
// readiness poll.
func (p *Pool) Submit(job Job) bool {
	// Checked on its own so a ready buffered send can never race a
	// cancelled context into accepting a job no worker will consume.
	select {
	case <-p.ctx.Done():
		return false
	default:
	}

	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// Results returns the channel carrying job outcomes
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Shutdown gracefully shuts down the worker pool
func (p *Pool) Shutdown(ctx context.Context) error {
	p.logger.Info("shutting down worker pool")

	p.health.stop()
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool shut down complete")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout")
	}
}

// GetStatus returns the status of all workers
func (p *Pool) GetStatus() map[string]WorkerStatus {
	status := make(map[string]WorkerStatus)
	for _, w := range p.workers {
		w.mu.RLock()
		status[w.id] = w.status
		w.mu.RUnlock()
	}
	return status
}

// run is the main worker loop
func (w *worker) run(ctx context.Context) {
	defer w.pool.wg.Done()

	w.pool.logger.Debug("worker started", zap.String("worker_id", w.id))

	for {
		select {
		case <-ctx.Done():
			w.setStatus(WorkerStatusStopped)
			w.pool.logger.Debug("worker stopped", zap.String("worker_id", w.id))
			return
		case job := <-w.pool.jobs:
			w.execute(ctx, job)
		}
	}
}

// execute runs a single story and reports the outcome
func (w *worker) execute(ctx context.Context, job Job) {
	w.mu.Lock()
	w.status = WorkerStatusBusy
	w.lastJob = time.Now()
	w.mu.Unlock()
	defer w.setStatus(WorkerStatusIdle)

	w.pool.logger.Info("executing story",
		zap.String("worker_id", w.id),
		zap.String("run_id", job.RunID),
		zap.String("story_id", job.Story.ID))

	start := time.Now()
	err := w.pool.executor.Execute(ctx, job.Story)
	duration := time.Since(start)

	status := string(domain.ExecutionStatusCompleted)
	if err != nil {
		status = string(domain.ExecutionStatusFailed)
	}
	w.pool.metrics.RecordStoryExecuted(status, duration)

	w.pool.logger.Info("story execution finished",
		zap.String("worker_id", w.id),
		zap.String("run_id", job.RunID),
		zap.String("story_id", job.Story.ID),
		zap.String("status", status),
		zap.Duration("duration", duration))

	select {
	case w.pool.results <- Result{RunID: job.RunID, StoryID: job.Story.ID, Err: err, Duration: duration}:
	case <-ctx.Done():
	}
}

func (w *worker) setStatus(status WorkerStatus) {
	w.mu.Lock()
	w.status = status
	w.mu.Unlock()
}
