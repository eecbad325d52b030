package ports

import "time"

// MetricsCollector records planning and execution metrics
type MetricsCollector interface {
	RecordPlanComputed(status string)
	RecordCyclesDetected(count int)
	RecordRunSubmitted(status string)
	RecordRunCompleted(status string, duration time.Duration)
	RecordStoryExecuted(status string, duration time.Duration)
	RecordWorkerPoolStatus(idle, busy, stopped int)
	SetActiveRuns(count int)
	SetGraphSize(nodes, edges int)
}
