package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements ports.MetricsCollector using Prometheus
type Collector struct {
	plansComputed  *prometheus.CounterVec
	cyclesDetected prometheus.Counter
	runsSubmitted  *prometheus.CounterVec
	runsCompleted  *prometheus.CounterVec
	storiesDone    *prometheus.CounterVec
	storyDuration  prometheus.Histogram
	runDuration    prometheus.Histogram

	activeRuns        prometheus.Gauge
	graphNodes        prometheus.Gauge
	graphEdges        prometheus.Gauge
	workerPoolIdle    prometheus.Gauge
	workerPoolBusy    prometheus.Gauge
	workerPoolStopped prometheus.Gauge
}

// NewCollector creates a new Prometheus metrics collector. It registers on
// the default registry, so create it once per process.
func NewCollector() *Collector {
	return &Collector{
		plansComputed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plandag_plans_computed_total",
				Help: "Total number of plans computed",
			},
			[]string{"status"},
		),
		cyclesDetected: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "plandag_cycles_detected_total",
				Help: "Total number of dependency cycles reported",
			},
		),
		runsSubmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plandag_runs_submitted_total",
				Help: "Total number of runs submitted",
			},
			[]string{"status"},
		),
		runsCompleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plandag_runs_completed_total",
				Help: "Total number of runs finished",
			},
			[]string{"status"},
		),
		storiesDone: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plandag_stories_executed_total",
				Help: "Total number of stories executed",
			},
			[]string{"status"},
		),
		storyDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "plandag_story_duration_seconds",
				Help:    "Story execution duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
		),
		runDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "plandag_run_duration_seconds",
				Help:    "Run execution duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		activeRuns: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "plandag_active_runs",
				Help: "Number of currently active runs",
			},
		),
		graphNodes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "plandag_graph_nodes",
				Help: "Node count of the most recently built graph",
			},
		),
		graphEdges: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "plandag_graph_edges",
				Help: "Edge count of the most recently built graph",
			},
		),
		workerPoolIdle: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "plandag_worker_pool_idle",
				Help: "Number of idle workers",
			},
		),
		workerPoolBusy: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "plandag_worker_pool_busy",
				Help: "Number of busy workers",
			},
		),
		workerPoolStopped: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "plandag_worker_pool_stopped",
				Help: "Number of stopped workers",
			},
		),
	}
}

// RecordPlanComputed records one planning query by outcome
func (c *Collector) RecordPlanComputed(status string) {
	c.plansComputed.WithLabelValues(status).Inc()
}

// RecordCyclesDetected records reported dependency cycles
func (c *Collector) RecordCyclesDetected(count int) {
	c.cyclesDetected.Add(float64(count))
}

// RecordRunSubmitted records a run submission
func (c *Collector) RecordRunSubmitted(status string) {
	c.runsSubmitted.WithLabelValues(status).Inc()
}

// RecordRunCompleted records a finished run and its duration
func (c *Collector) RecordRunCompleted(status string, duration time.Duration) {
	c.runsCompleted.WithLabelValues(status).Inc()
	c.runDuration.Observe(duration.Seconds())
}

// RecordStoryExecuted records a story execution and its duration
func (c *Collector) RecordStoryExecuted(status string, duration time.Duration) {
	c.storiesDone.WithLabelValues(status).Inc()
	c.storyDuration.Observe(duration.Seconds())
}

// RecordWorkerPoolStatus records worker pool occupancy
func (c *Collector) RecordWorkerPoolStatus(idle, busy, stopped int) {
	c.workerPoolIdle.Set(float64(idle))
	c.workerPoolBusy.Set(float64(busy))
	c.workerPoolStopped.Set(float64(stopped))
}

// SetActiveRuns sets the number of currently active runs
func (c *Collector) SetActiveRuns(count int) {
	c.activeRuns.Set(float64(count))
}

// SetGraphSize records the size of the most recently built graph
func (c *Collector) SetGraphSize(nodes, edges int) {
	c.graphNodes.Set(float64(nodes))
	c.graphEdges.Set(float64(edges))
}
