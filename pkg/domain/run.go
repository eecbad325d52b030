package domain

import "time"

// ExecutionStatus represents the lifecycle status of a run or a story
type ExecutionStatus string

const (
	ExecutionStatusSubmitted ExecutionStatus = "submitted"
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
	ExecutionStatusBlocked   ExecutionStatus = "blocked"
)

// RunState is the observable state of a single run execution
type RunState struct {
	RunID        string                 `json:"run_id"`
	Status       ExecutionStatus        `json:"status"`
	Stories      map[string]*StoryState `json:"stories"`
	Completed    []string               `json:"completed,omitempty"`
	Error        string                 `json:"error,omitempty"`
	SubmittedAt  time.Time              `json:"submitted_at"`
	StartedAt    *time.Time             `json:"started_at,omitempty"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
}

// StoryState tracks a single story within a run
type StoryState struct {
	StoryID     string          `json:"story_id"`
	Status      ExecutionStatus `json:"status"`
	Error       string          `json:"error,omitempty"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}
