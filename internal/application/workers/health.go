package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// PoolHealth is a point-in-time occupancy snapshot of the pool. Healthy means
// every worker goroutine is still alive; Saturated means none of them is free
// to pick up a ready story, so dispatched jobs will queue.
type PoolHealth struct {
	Total     int       `json:"total"`
	Idle      int       `json:"idle"`
	Busy      int       `json:"busy"`
	Stopped   int       `json:"stopped"`
	Healthy   bool      `json:"healthy"`
	Saturated bool      `json:"saturated"`
	CheckedAt time.Time `json:"checked_at"`
}

// healthMonitor samples pool occupancy on a ticker, feeding the gauges and
// flagging pools that lost workers or cannot absorb more ready stories.
type healthMonitor struct {
	pool     *Pool
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func newHealthMonitor(pool *Pool, interval time.Duration, logger *zap.Logger) *healthMonitor {
	return &healthMonitor{
		pool:     pool,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (h *healthMonitor) start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

func (h *healthMonitor) stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.stopCh)
}

func (h *healthMonitor) run() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.sample()
		}
	}
}

// sample takes one occupancy snapshot and pushes it to logs and metrics
func (h *healthMonitor) sample() {
	health := h.pool.Health()

	h.logger.Debug("worker pool occupancy",
		zap.Int("total", health.Total),
		zap.Int("idle", health.Idle),
		zap.Int("busy", health.Busy),
		zap.Int("stopped", health.Stopped))

	h.pool.metrics.RecordWorkerPoolStatus(health.Idle, health.Busy, health.Stopped)

	if !health.Healthy {
		h.logger.Warn("worker pool lost workers",
			zap.Int("stopped", health.Stopped),
			zap.Int("total", health.Total))
	}

	if health.Saturated {
		h.logger.Warn("worker pool saturated, ready stories will queue",
			zap.Int("busy", health.Busy))
	}
}

// Health reports a point-in-time occupancy snapshot of the pool
func (p *Pool) Health() PoolHealth {
	var idle, busy, stopped int
	for _, status := range p.GetStatus() {
		switch status {
		case WorkerStatusIdle:
			idle++
		case WorkerStatusBusy:
			busy++
		case WorkerStatusStopped:
			stopped++
		}
	}

	total := len(p.workers)
	return PoolHealth{
		Total:     total,
		Idle:      idle,
		Busy:      busy,
		Stopped:   stopped,
		Healthy:   total > 0 && stopped == 0,
		Saturated: total > 0 && busy == total,
		CheckedAt: time.Now(),
	}
}

// IsHealthy reports whether every worker goroutine is still alive
func (p *Pool) IsHealthy() bool {
	return p.Health().Healthy
}
